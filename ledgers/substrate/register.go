package substrate

import (
	"context"

	subtypes "github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/sirupsen/logrus"
)

// RegisterShipment anchors a shipment through the register_shipment call.
//
// Parameters:
// - ctx: the context for managing the request.
// - shipmentID: unique identifier for the shipment.
// - trackingNumber: the shipment tracking number.
// - dataHash: hash of the shipment data.
// - metadata: JSON string with additional metadata.
//
// Returns:
// - string: the hex-encoded extrinsic hash.
// - error: an error if the submission fails.
func (l *ledger) RegisterShipment(ctx context.Context, shipmentID, trackingNumber, dataHash, metadata string) (string, error) {
	txHash, err := l.submitCall(ctx, palletName+".register_shipment",
		subtypes.NewBytes([]byte(shipmentID)),
		subtypes.NewBytes([]byte(trackingNumber)),
		subtypes.NewBytes([]byte(dataHash)),
		subtypes.NewBytes([]byte(metadata)),
	)
	if err != nil {
		return "", err
	}

	l.logger.WithFields(logrus.Fields{
		"ledger":      l.config.Name,
		"shipment_id": shipmentID,
		"tx_hash":     txHash,
	}).Info("Shipment anchored")

	return txHash, nil
}

// RegisterEvent anchors a logistics event through the register_event call.
func (l *ledger) RegisterEvent(ctx context.Context, shipmentID, eventID, eventType, dataHash, metadata string) (string, error) {
	txHash, err := l.submitCall(ctx, palletName+".register_event",
		subtypes.NewBytes([]byte(shipmentID)),
		subtypes.NewBytes([]byte(eventID)),
		subtypes.NewBytes([]byte(eventType)),
		subtypes.NewBytes([]byte(dataHash)),
		subtypes.NewBytes([]byte(metadata)),
	)
	if err != nil {
		return "", err
	}

	l.logger.WithFields(logrus.Fields{
		"ledger":     l.config.Name,
		"event_id":   eventID,
		"event_type": eventType,
		"tx_hash":    txHash,
	}).Info("Event anchored")

	return txHash, nil
}

// RegisterDocument anchors a document hash through the register_document call.
func (l *ledger) RegisterDocument(ctx context.Context, documentHash, metadata string) (string, error) {
	txHash, err := l.submitCall(ctx, palletName+".register_document",
		subtypes.NewBytes([]byte(documentHash)),
		subtypes.NewBytes([]byte(metadata)),
	)
	if err != nil {
		return "", err
	}

	l.logger.WithFields(logrus.Fields{
		"ledger":        l.config.Name,
		"document_hash": documentHash,
		"tx_hash":       txHash,
	}).Info("Document anchored")

	return txHash, nil
}
