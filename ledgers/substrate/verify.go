package substrate

import (
	"context"
	"fmt"

	subtypes "github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/pkg/errors"

	commonerrors "github.com/tracepost/anchor-relay/common/errors"
	"github.com/tracepost/anchor-relay/common/types"
)

// shipmentRecord mirrors the Shipments storage map value layout.
type shipmentRecord struct {
	TrackingNumber subtypes.Bytes
	DataHash       subtypes.Bytes
	Timestamp      subtypes.U64
	Metadata       subtypes.Bytes
	Registrar      subtypes.AccountID
}

// eventRecord mirrors the Events storage map value layout.
type eventRecord struct {
	ShipmentID subtypes.Bytes
	EventType  subtypes.Bytes
	DataHash   subtypes.Bytes
	Timestamp  subtypes.U64
	Metadata   subtypes.Bytes
	Registrar  subtypes.AccountID
}

// documentRecord mirrors the Documents storage map value layout.
type documentRecord struct {
	Timestamp subtypes.U64
	Metadata  subtypes.Bytes
	Registrar subtypes.AccountID
}

// readStorage fetches one value from a pallet storage map keyed by an
// identifier string. The bool result reports whether the key exists.
func (l *ledger) readStorage(ctx context.Context, storageMap, id string, target interface{}) (bool, error) {
	api, err := l.getAPI()
	if err != nil {
		return false, err
	}
	meta, err := l.getMetadata()
	if err != nil {
		return false, err
	}

	key, err := subtypes.CreateStorageKey(meta, palletName, storageMap, []byte(id))
	if err != nil {
		return false, errors.Wrapf(err, "failed to create %s storage key", storageMap)
	}

	ok, err := api.RPC.State.GetStorageLatest(key, target)
	if err != nil {
		return false, errors.Wrap(commonerrors.ErrConnectivity, err.Error())
	}
	return ok, nil
}

// VerifyShipment checks the anchored shipment record against the caller's
// tracking number. Mismatch and absence are reported through the result.
func (l *ledger) VerifyShipment(ctx context.Context, shipmentID, trackingNumber string) (*types.VerificationResult, error) {
	result := &types.VerificationResult{
		ShipmentID:     shipmentID,
		TrackingNumber: trackingNumber,
		Network:        l.config.Name.String(),
	}

	var record shipmentRecord
	ok, err := l.readStorage(ctx, "Shipments", shipmentID, &record)
	if err != nil {
		return nil, err
	}
	if !ok {
		result.Reason = "Shipment not found on ledger"
		return result, nil
	}

	result.DataHash = string(record.DataHash)
	result.Timestamp = int64(record.Timestamp)
	result.Metadata = string(record.Metadata)

	if stored := string(record.TrackingNumber); stored != trackingNumber {
		result.Reason = fmt.Sprintf("Tracking number mismatch (stored: %s)", stored)
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

	var record eventRecord
	ok, err := l.readStorage(ctx, "Events", eventID, &record)
	if err != nil {
		return nil, err
	}
	if !ok {
		result.Reason = "Event not found on ledger"
		return result, nil
	}

	result.EventType = string(record.EventType)
	result.DataHash = string(record.DataHash)
	result.Timestamp = int64(record.Timestamp)
	result.Metadata = string(record.Metadata)

	if stored := string(record.ShipmentID); stored != shipmentID {
		result.Reason = fmt.Sprintf("Shipment ID mismatch (stored: %s)", stored)
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

	var record documentRecord
	ok, err := l.readStorage(ctx, "Documents", documentHash, &record)
	if err != nil {
		return nil, err
	}
	if !ok {
		result.Reason = "Document not found on ledger"
		return result, nil
	}

	result.Timestamp = int64(record.Timestamp)
	result.Metadata = string(record.Metadata)
	result.Verified = true
	return result, nil
}
