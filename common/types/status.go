package types

// TxStatus is the unified transaction status vocabulary. Every ledger variant
// maps its native status set onto these values; unmapped native values map to
// TxStatusError, never silently to something else.
type TxStatus string

const (
	// TxStatusPending indicates the transaction was submitted but not yet included.
	TxStatusPending TxStatus = "pending"
	// TxStatusConfirmed indicates the transaction was included and succeeded.
	TxStatusConfirmed TxStatus = "confirmed"
	// TxStatusFailed indicates the transaction was included but reverted or failed.
	TxStatusFailed TxStatus = "failed"
	// TxStatusNotFound indicates the ledger does not know the transaction handle.
	TxStatusNotFound TxStatus = "not_found"
	// TxStatusError indicates the status could not be determined.
	TxStatusError TxStatus = "error"
)

// EntityKind names the kind of record anchored on a ledger.
type EntityKind string

const (
	EntityShipment EntityKind = "shipment"
	EntityEvent    EntityKind = "event"
	EntityDocument EntityKind = "document"
)

// TxStatusInfo is the normalized result of a transaction status query.
//
// Fields:
// - TxHash: the ledger-specific transaction handle that was queried.
// - Status: the unified transaction status.
// - BlockNumber: the block the transaction was included in, if known.
// - Confirmations: blocks mined on top of the inclusion block.
// - EntityKind: the kind of anchored entity, when decodable from the transaction.
// - EntityID: the identifier of the anchored entity, when decodable.
// - Network: the name of the ledger network that answered the query.
// - Err: native error detail for TxStatusError results.
type TxStatusInfo struct {
	TxHash        string     `json:"tx_hash"`
	Status        TxStatus   `json:"status"`
	BlockNumber   uint64     `json:"block_number,omitempty"`
	Confirmations uint64     `json:"confirmations,omitempty"`
	EntityKind    EntityKind `json:"entity_kind,omitempty"`
	EntityID      string     `json:"entity_id,omitempty"`
	Network       string     `json:"network,omitempty"`
	Err           string     `json:"error,omitempty"`
}
