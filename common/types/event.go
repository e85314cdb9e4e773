package types

import (
	"time"
)

// ChainEvent represents a confirmed anchoring event discovered on a ledger.
//
// Fields:
// - EventID: the identifier the event was registered under on the source ledger.
// - ShipmentID: the shipment the event belongs to.
// - EventType: the type of the logistics event.
// - BlockNumber: the block the event was included in.
// - TxHash: the transaction handle that carried the event.
// - SourceChain: the ledger the event was discovered on.
// - DiscoveredAt: the time the event was picked up by the scanner.
type ChainEvent struct {
	EventID      string    `json:"event_id"`
	ShipmentID   string    `json:"shipment_id"`
	EventType    string    `json:"event_type"`
	BlockNumber  uint64    `json:"block_number"`
	TxHash       string    `json:"tx_hash"`
	SourceChain  ChainName `json:"source_chain"`
	DiscoveredAt time.Time `json:"discovered_at"`
}
