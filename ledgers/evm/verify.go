package evm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/pkg/errors"

	commonerrors "github.com/tracepost/anchor-relay/common/errors"
	"github.com/tracepost/anchor-relay/common/types"
)

// callContract executes a read-only contract call and unpacks the outputs.
func (l *ledger) callContract(ctx context.Context, contract *boundContract, method string, args ...interface{}) ([]interface{}, error) {
	client, err := l.getClient()
	if err != nil {
		return nil, err
	}

	data, err := contract.abi.Pack(method, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to pack %s call data", method)
	}

	to := contract.address
	out, err := client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, errors.Wrap(commonerrors.ErrConnectivity, err.Error())
	}

	return contract.abi.Unpack(method, out)
}

// VerifyShipment checks the anchored shipment record against the caller's
// tracking number. Mismatch and absence are reported through the result.
func (l *ledger) VerifyShipment(ctx context.Context, shipmentID, trackingNumber string) (*types.VerificationResult, error) {
	if l.shipmentRegistry == nil {
		return nil, errors.Wrap(commonerrors.ErrNotConfigured, "ShipmentRegistry contract not initialized")
	}

	vals, err := l.callContract(ctx, l.shipmentRegistry, "getShipment", shipmentID)
	if err != nil {
		return nil, err
	}

	storedTracking, dataHash, timestamp, metadata := unpackRecord4(vals)

	result := &types.VerificationResult{
		ShipmentID:     shipmentID,
		TrackingNumber: trackingNumber,
		DataHash:       dataHash,
		Timestamp:      timestamp,
		Metadata:       metadata,
		Network:        l.networkName(),
	}

	if storedTracking == "" && timestamp == 0 {
		result.Reason = "Shipment not found on ledger"
		return result, nil
	}
	if storedTracking != trackingNumber {
		result.Reason = fmt.Sprintf("Tracking number mismatch (stored: %s)", storedTracking)
		return result, nil
	}

	result.Verified = true
	return result, nil
}

// VerifyEvent checks the anchored event record against the caller's shipment
// linkage.
func (l *ledger) VerifyEvent(ctx context.Context, shipmentID, eventID string) (*types.VerificationResult, error) {
	if l.eventLog == nil {
		return nil, errors.Wrap(commonerrors.ErrNotConfigured, "EventLog contract not initialized")
	}

	vals, err := l.callContract(ctx, l.eventLog, "getEvent", eventID)
	if err != nil {
		return nil, err
	}

	result := &types.VerificationResult{
		ShipmentID: shipmentID,
		EventID:    eventID,
		Network:    l.networkName(),
	}

	if len(vals) < 5 {
		result.Reason = "Event not found on ledger"
		return result, nil
	}

	storedShipmentID, _ := vals[0].(string)
	eventType, _ := vals[1].(string)
	dataHash, _ := vals[2].(string)
	timestamp := bigToInt64(vals[3])
	metadata, _ := vals[4].(string)

	result.EventType = eventType
	result.DataHash = dataHash
	result.Timestamp = timestamp
	result.Metadata = metadata

	if storedShipmentID == "" && timestamp == 0 {
		result.Reason = "Event not found on ledger"
		return result, nil
	}
	if storedShipmentID != shipmentID {
		result.Reason = fmt.Sprintf("Shipment ID mismatch (stored: %s)", storedShipmentID)
		return result, nil
	}

	result.Verified = true
	return result, nil
}

// VerifyDocument checks whether the document hash is anchored.
func (l *ledger) VerifyDocument(ctx context.Context, documentHash string) (*types.VerificationResult, error) {
	if l.eventLog == nil {
		return nil, errors.Wrap(commonerrors.ErrNotConfigured, "EventLog contract not initialized")
	}

	vals, err := l.callContract(ctx, l.eventLog, "getDocument", documentHash)
	if err != nil {
		return nil, err
	}

	result := &types.VerificationResult{
		DocumentHash: documentHash,
		Network:      l.networkName(),
	}

	if len(vals) < 2 {
		result.Reason = "Document not found on ledger"
		return result, nil
	}

	timestamp := bigToInt64(vals[0])
	metadata, _ := vals[1].(string)

	if timestamp == 0 {
		result.Reason = "Document not found on ledger"
		return result, nil
	}

	result.Timestamp = timestamp
	result.Metadata = metadata
	result.Verified = true
	return result, nil
}

// unpackRecord4 pulls the (string, string, uint256, string) shape shared by
// the registry getters.
func unpackRecord4(vals []interface{}) (string, string, int64, string) {
	if len(vals) < 4 {
		return "", "", 0, ""
	}
	first, _ := vals[0].(string)
	second, _ := vals[1].(string)
	third := bigToInt64(vals[2])
	fourth, _ := vals[3].(string)
	return first, second, third, fourth
}

func bigToInt64(v interface{}) int64 {
	b, ok := v.(*big.Int)
	if !ok || b == nil {
		return 0
	}
	return b.Int64()
}
