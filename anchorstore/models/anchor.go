package models

import "time"

// Shipment is the subset of a platform shipment needed for anchoring.
type Shipment struct {
	ShipmentID     string
	TrackingNumber string
	Metadata       string
	UpdatedAt      time.Time
}

// Event is the subset of a platform logistics event needed for anchoring.
type Event struct {
	EventID    string
	ShipmentID string
	EventType  string
	Metadata   string
	UpdatedAt  time.Time
}

// AnchorResult is one row of the anchor status table.
type AnchorResult struct {
	EntityKind string    `json:"entity_kind"`
	EntityID   string    `json:"entity_id"`
	TxHash     string    `json:"tx_hash"`
	Ledger     string    `json:"ledger"`
	Status     string    `json:"status"`
	UpdatedAt  time.Time `json:"updated_at"`
}
