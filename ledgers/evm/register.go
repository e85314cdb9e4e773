package evm

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	commonerrors "github.com/tracepost/anchor-relay/common/errors"
)

// RegisterShipment anchors a shipment through the ShipmentRegistry contract.
// Submission returns the transaction hash immediately; confirmation is polled
// separately.
func (l *ledger) RegisterShipment(ctx context.Context, shipmentID, trackingNumber, dataHash, metadata string) (string, error) {
	if l.shipmentRegistry == nil {
		return "", errors.Wrap(commonerrors.ErrNotConfigured, "ShipmentRegistry contract not initialized")
	}

	txHash, err := l.submitContractCall(ctx, l.shipmentRegistry, "registerShipment", shipmentID, trackingNumber, dataHash, metadata)
	if err != nil {
		return "", err
	}

	l.logger.WithFields(logrus.Fields{
		"ledger":   l.config.Name,
		"shipment": shipmentID,
		"txHash":   txHash,
	}).Info("Shipment registered")

	return txHash, nil
}

// RegisterEvent anchors a logistics event through the EventLog contract.
func (l *ledger) RegisterEvent(ctx context.Context, shipmentID, eventID, eventType, dataHash, metadata string) (string, error) {
	if l.eventLog == nil {
		return "", errors.Wrap(commonerrors.ErrNotConfigured, "EventLog contract not initialized")
	}

	txHash, err := l.submitContractCall(ctx, l.eventLog, "logEvent", shipmentID, eventID, eventType, dataHash, metadata)
	if err != nil {
		return "", err
	}

	l.logger.WithFields(logrus.Fields{
		"ledger":   l.config.Name,
		"shipment": shipmentID,
		"event":    eventID,
		"txHash":   txHash,
	}).Info("Event registered")

	return txHash, nil
}

// RegisterDocument anchors a document hash through the EventLog contract.
// The document ID is derived from the submission time and the hash prefix.
func (l *ledger) RegisterDocument(ctx context.Context, documentHash, metadata string) (string, error) {
	if l.eventLog == nil {
		return "", errors.Wrap(commonerrors.ErrNotConfigured, "EventLog contract not initialized")
	}

	hashPrefix := documentHash
	if len(hashPrefix) > 8 {
		hashPrefix = hashPrefix[:8]
	}
	documentID := fmt.Sprintf("doc_%d_%s", time.Now().Unix(), hashPrefix)

	txHash, err := l.submitContractCall(ctx, l.eventLog, "logDocument", documentID, documentHash, metadata)
	if err != nil {
		return "", err
	}

	l.logger.WithFields(logrus.Fields{
		"ledger":   l.config.Name,
		"document": documentHash,
		"txHash":   txHash,
	}).Info("Document registered")

	return txHash, nil
}
