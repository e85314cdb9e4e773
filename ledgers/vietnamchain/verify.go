package vietnamchain

import (
	"context"
	"fmt"
	"net/http"

	commonerrors "github.com/tracepost/anchor-relay/common/errors"
	"github.com/tracepost/anchor-relay/common/types"
)

// shipmentResponse is the gateway's stored shipment record.
type shipmentResponse struct {
	ShipmentID     string `json:"shipmentId"`
	TrackingNumber string `json:"trackingNumber"`
	DataHash       string `json:"dataHash"`
	Timestamp      int64  `json:"timestamp"`
	Metadata       string `json:"metadata"`
	TxHash         string `json:"transactionId"`
}

// eventResponse is the gateway's stored event record.
type eventResponse struct {
	EventID    string `json:"eventId"`
	ShipmentID string `json:"shipmentId"`
	EventType  string `json:"eventType"`
	DataHash   string `json:"dataHash"`
	Timestamp  int64  `json:"timestamp"`
	Metadata   string `json:"metadata"`
	TxHash     string `json:"transactionId"`
}

// documentResponse is the gateway's stored document record.
type documentResponse struct {
	DocumentID   string `json:"documentId"`
	DocumentHash string `json:"documentHash"`
	Timestamp    int64  `json:"timestamp"`
	Metadata     string `json:"metadata"`
	TxHash       string `json:"transactionId"`
}

// VerifyShipment checks the anchored shipment record against the caller's
// tracking number. Mismatch and absence are reported through the result.
func (l *ledger) VerifyShipment(ctx context.Context, shipmentID, trackingNumber string) (*types.VerificationResult, error) {
	result := &types.VerificationResult{
		ShipmentID:     shipmentID,
		TrackingNumber: trackingNumber,
		Network:        l.config.Name.String(),
	}

	var resp shipmentResponse
	err := l.doRequest(ctx, http.MethodGet, shipmentsEndpoint+"/"+shipmentID, nil, &resp)
	if err != nil {
		if commonerrors.IsNotFound(err) {
			result.Reason = "Shipment not found on ledger"
			return result, nil
		}
		return nil, err
	}

	result.DataHash = resp.DataHash
	result.Timestamp = resp.Timestamp
	result.Metadata = resp.Metadata
	result.TxHash = resp.TxHash

	if resp.TrackingNumber != trackingNumber {
		result.Reason = fmt.Sprintf("Tracking number mismatch (stored: %s)", resp.TrackingNumber)
		return result, nil
	}

	result.Verified = true
	return result, nil
}

// VerifyEvent checks the anchored event record against the caller's shipment
// linkage.
func (l *ledger) VerifyEvent(ctx context.Context, shipmentID, eventID string) (*types.VerificationResult, error) {
	result := &types.VerificationResult{
		ShipmentID: shipmentID,
		EventID:    eventID,
		Network:    l.config.Name.String(),
	}

	var resp eventResponse
	err := l.doRequest(ctx, http.MethodGet, eventsEndpoint+"/"+eventID, nil, &resp)
	if err != nil {
		if commonerrors.IsNotFound(err) {
			result.Reason = "Event not found on ledger"
			return result, nil
		}
		return nil, err
	}

	result.EventType = resp.EventType
	result.DataHash = resp.DataHash
	result.Timestamp = resp.Timestamp
	result.Metadata = resp.Metadata
	result.TxHash = resp.TxHash

	if resp.ShipmentID != shipmentID {
		result.Reason = fmt.Sprintf("Shipment ID mismatch (stored: %s)", resp.ShipmentID)
		return result, nil
	}

	result.Verified = true
	return result, nil
}

// VerifyDocument checks whether the document hash is anchored.
func (l *ledger) VerifyDocument(ctx context.Context, documentHash string) (*types.VerificationResult, error) {
	result := &types.VerificationResult{
		DocumentHash: documentHash,
		Network:      l.config.Name.String(),
	}

	var resp documentResponse
	err := l.doRequest(ctx, http.MethodGet, documentsEndpoint+"/hash/"+documentHash, nil, &resp)
	if err != nil {
		if commonerrors.IsNotFound(err) {
			result.Reason = "Document not found on ledger"
			return result, nil
		}
		return nil, err
	}

	result.Timestamp = resp.Timestamp
	result.Metadata = resp.Metadata
	result.TxHash = resp.TxHash
	result.Verified = true
	return result, nil
}
