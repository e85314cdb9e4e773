package vietnamchain

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	commonerrors "github.com/tracepost/anchor-relay/common/errors"
)

// registerResponse is the gateway's acknowledgement of an anchoring request.
type registerResponse struct {
	TransactionID string `json:"transactionId"`
}

// requestTimestamp is the submission-time marker the gateway expects in
// every anchoring payload.
func requestTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// RegisterShipment anchors a shipment through the logistics shipments
// endpoint.
//
// Parameters:
// - ctx: the context for managing the request.
// - shipmentID: unique identifier for the shipment.
// - trackingNumber: the shipment tracking number.
// - dataHash: hash of the shipment data.
// - metadata: JSON string with additional metadata.
//
// Returns:
// - string: the gateway transaction identifier.
// - error: an error if the gateway rejects the request.
func (l *ledger) RegisterShipment(ctx context.Context, shipmentID, trackingNumber, dataHash, metadata string) (string, error) {
	body := map[string]string{
		"shipmentId":     shipmentID,
		"trackingNumber": trackingNumber,
		"dataHash":       dataHash,
		"metadata":       metadata,
		"organizationId": l.config.OrganizationID,
		"timestamp":      requestTimestamp(),
	}

	var resp registerResponse
	if err := l.doRequest(ctx, http.MethodPost, shipmentsEndpoint, body, &resp); err != nil {
		return "", err
	}
	if resp.TransactionID == "" {
		return "", errors.Wrap(commonerrors.ErrLedgerRejected, "gateway response missing transactionId")
	}

	l.logger.WithFields(logrus.Fields{
		"ledger":      l.config.Name,
		"shipment_id": shipmentID,
		"tx_hash":     resp.TransactionID,
	}).Info("Shipment anchored")

	return resp.TransactionID, nil
}

// RegisterEvent anchors a logistics event through the logistics events
// endpoint.
func (l *ledger) RegisterEvent(ctx context.Context, shipmentID, eventID, eventType, dataHash, metadata string) (string, error) {
	body := map[string]string{
		"shipmentId":     shipmentID,
		"eventId":        eventID,
		"eventType":      eventType,
		"dataHash":       dataHash,
		"metadata":       metadata,
		"organizationId": l.config.OrganizationID,
		"timestamp":      requestTimestamp(),
	}

	var resp registerResponse
	if err := l.doRequest(ctx, http.MethodPost, eventsEndpoint, body, &resp); err != nil {
		return "", err
	}
	if resp.TransactionID == "" {
		return "", errors.Wrap(commonerrors.ErrLedgerRejected, "gateway response missing transactionId")
	}

	l.logger.WithFields(logrus.Fields{
		"ledger":     l.config.Name,
		"event_id":   eventID,
		"event_type": eventType,
		"tx_hash":    resp.TransactionID,
	}).Info("Event anchored")

	return resp.TransactionID, nil
}

// RegisterDocument anchors a document hash. The gateway requires a caller
// supplied document identifier, generated here as a fresh UUID.
func (l *ledger) RegisterDocument(ctx context.Context, documentHash, metadata string) (string, error) {
	documentID := uuid.New().String()
	body := map[string]string{
		"documentId":     documentID,
		"documentHash":   documentHash,
		"metadata":       metadata,
		"organizationId": l.config.OrganizationID,
		"timestamp":      requestTimestamp(),
	}

	var resp registerResponse
	if err := l.doRequest(ctx, http.MethodPost, documentsEndpoint, body, &resp); err != nil {
		return "", err
	}
	if resp.TransactionID == "" {
		return "", errors.Wrap(commonerrors.ErrLedgerRejected, "gateway response missing transactionId")
	}

	l.logger.WithFields(logrus.Fields{
		"ledger":        l.config.Name,
		"document_id":   documentID,
		"document_hash": documentHash,
		"tx_hash":       resp.TransactionID,
	}).Info("Document anchored")

	return resp.TransactionID, nil
}
