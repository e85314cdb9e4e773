package types

// VerificationResult is the outcome of a read-only verification call against
// a ledger. A mismatch between the caller's data and the anchored data is
// reported through Verified=false plus Reason; only connectivity or protocol
// failures surface as errors from the verify methods themselves.
//
// Fields:
// - Verified: true when the anchored record matches the caller's data.
// - Reason: human-readable explanation for a negative result.
// - ShipmentID, EventID, TrackingNumber, DocumentHash: the identifiers checked.
// - EventType: the anchored event type, when applicable.
// - DataHash: the anchored data hash.
// - Timestamp: the ledger timestamp of the anchored record.
// - Metadata: the anchored metadata blob, verbatim.
// - TxHash: the transaction handle the record was anchored with, if reported.
// - Network: the ledger network that answered.
type VerificationResult struct {
	Verified       bool   `json:"verified"`
	Reason         string `json:"reason,omitempty"`
	ShipmentID     string `json:"shipment_id,omitempty"`
	EventID        string `json:"event_id,omitempty"`
	TrackingNumber string `json:"tracking_number,omitempty"`
	DocumentHash   string `json:"document_hash,omitempty"`
	EventType      string `json:"event_type,omitempty"`
	DataHash       string `json:"data_hash,omitempty"`
	Timestamp      int64  `json:"timestamp,omitempty"`
	Metadata       string `json:"metadata,omitempty"`
	TxHash         string `json:"tx_hash,omitempty"`
	Network        string `json:"network,omitempty"`
}
