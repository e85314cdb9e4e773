package types

import (
	"context"
)

// LedgerConfig holds the configuration for a specific ledger implementation.
//
// Fields:
// - Name: the ledger identity used as a registry key.
// - ChainType: the ledger family the configuration targets.
// - NodeURL: the URL of the ledger node or API gateway.
// - ChainID: the numeric chain identifier for account-based chains.
// - PrivateKey: hex-encoded ECDSA key for signing contract-call transactions.
// - ShipmentRegistryAddress: deployed ShipmentRegistry contract address.
// - EventLogAddress: deployed EventLog contract address.
// - Mnemonic: seed phrase for the pallet-chain signing keypair.
// - SS58Format: address format for the pallet chain.
// - WaitForInclusion: block extrinsic submission until inclusion when true.
// - APIKey, APISecret: credentials for the REST ledger's HMAC signing scheme.
// - OrganizationID: registered organization on the REST ledger.
type LedgerConfig struct {
	Name                    ChainName
	ChainType               ChainType
	NodeURL                 string
	ChainID                 uint64
	PrivateKey              string
	ShipmentRegistryAddress string
	EventLogAddress         string
	Mnemonic                string
	SS58Format              uint16
	WaitForInclusion        bool
	APIKey                  string
	APISecret               string
	OrganizationID          string
}

// ShipmentRegistrar anchors shipment records.
type ShipmentRegistrar interface {
	// RegisterShipment anchors a shipment on the ledger.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - shipmentID: unique identifier for the shipment.
	// - trackingNumber: the shipment tracking number.
	// - dataHash: hash of the shipment data.
	// - metadata: JSON string with additional metadata.
	//
	// Returns:
	// - string: the ledger-specific transaction handle.
	// - error: an error if the registration fails; never a partial result.
	RegisterShipment(ctx context.Context, shipmentID, trackingNumber, dataHash, metadata string) (string, error)
}

// EventRegistrar anchors logistics events.
type EventRegistrar interface {
	// RegisterEvent anchors a logistics event on the ledger.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - shipmentID: the shipment the event belongs to.
	// - eventID: unique identifier for the event.
	// - eventType: the type of the event.
	// - dataHash: hash of the event data.
	// - metadata: JSON string with additional metadata.
	//
	// Returns:
	// - string: the ledger-specific transaction handle.
	// - error: an error if the registration fails; never a partial result.
	RegisterEvent(ctx context.Context, shipmentID, eventID, eventType, dataHash, metadata string) (string, error)
}

// DocumentRegistrar anchors document hashes.
type DocumentRegistrar interface {
	// RegisterDocument anchors a document hash on the ledger.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - documentHash: hash of the document.
	// - metadata: JSON string with additional metadata.
	//
	// Returns:
	// - string: the ledger-specific transaction handle.
	// - error: an error if the registration fails; never a partial result.
	RegisterDocument(ctx context.Context, documentHash, metadata string) (string, error)
}

// StatusReader reports normalized transaction status.
type StatusReader interface {
	// TransactionStatus returns the unified status of a transaction handle.
	// An unknown handle yields Status=TxStatusNotFound rather than an error.
	TransactionStatus(ctx context.Context, txHash string) (*TxStatusInfo, error)
}

// Verifier provides read-only verification of anchored records. Verify calls
// must not mutate ledger state; a data mismatch is reported through the
// result, not as an error.
type Verifier interface {
	VerifyShipment(ctx context.Context, shipmentID, trackingNumber string) (*VerificationResult, error)
	VerifyEvent(ctx context.Context, shipmentID, eventID string) (*VerificationResult, error)
	VerifyDocument(ctx context.Context, documentHash string) (*VerificationResult, error)
}

// Ledger combines the full anchoring capability set implemented by every
// ledger variant.
type Ledger interface {
	ShipmentRegistrar
	EventRegistrar
	DocumentRegistrar
	StatusReader
	Verifier

	// Close releases underlying connections. Safe to call more than once.
	Close()
}

// EventSource is the optional event-log facility a ledger variant exposes
// when it can enumerate confirmed anchoring events by block range. The bridge
// requires its source ledger to implement it.
type EventSource interface {
	// HeadBlock returns the current head block number of the ledger.
	HeadBlock(ctx context.Context) (uint64, error)

	// Events returns anchoring events in the inclusive block range
	// [fromBlock, toBlock].
	Events(ctx context.Context, fromBlock, toBlock uint64) ([]ChainEvent, error)
}
