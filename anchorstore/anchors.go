package anchorstore

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/tracepost/anchor-relay/anchorstore/models"
	commonerrors "github.com/tracepost/anchor-relay/common/errors"
	"github.com/tracepost/anchor-relay/common/types"
)

// LookupShipment returns the shipment fields needed for hashing, or
// ErrNotFound when the platform has no such shipment.
func (s *AnchorStore) LookupShipment(ctx context.Context, shipmentID string) (*models.Shipment, error) {
	if shipmentID == "" {
		return nil, errors.Wrap(commonerrors.ErrNotFound, "empty shipment id")
	}

	db, err := sql.Open("postgres", s.dbConnStr)
	if err != nil {
		return nil, commonerrors.ErrDatabaseConnect
	}
	defer db.Close()

	var shipment models.Shipment
	var metadata sql.NullString

	err = db.QueryRowContext(ctx, `
       SELECT
           shipment_id,
           tracking_number,
           metadata,
           updated_at
       FROM shipments
       WHERE shipment_id = $1
    `, shipmentID).Scan(
		&shipment.ShipmentID,
		&shipment.TrackingNumber,
		&metadata,
		&shipment.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.Wrap(commonerrors.ErrNotFound, shipmentID)
	}
	if err != nil {
		return nil, commonerrors.ErrDatabaseConnect
	}

	if metadata.Valid {
		shipment.Metadata = metadata.String
	}

	return &shipment, nil
}

// LookupEvent returns the event fields needed for hashing, or ErrNotFound
// when the platform has no such event.
func (s *AnchorStore) LookupEvent(ctx context.Context, eventID string) (*models.Event, error) {
	if eventID == "" {
		return nil, errors.Wrap(commonerrors.ErrNotFound, "empty event id")
	}

	db, err := sql.Open("postgres", s.dbConnStr)
	if err != nil {
		return nil, commonerrors.ErrDatabaseConnect
	}
	defer db.Close()

	var event models.Event
	var metadata sql.NullString

	err = db.QueryRowContext(ctx, `
       SELECT
           event_id,
           shipment_id,
           event_type,
           metadata,
           updated_at
       FROM logistics_events
       WHERE event_id = $1
    `, eventID).Scan(
		&event.EventID,
		&event.ShipmentID,
		&event.EventType,
		&metadata,
		&event.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.Wrap(commonerrors.ErrNotFound, eventID)
	}
	if err != nil {
		return nil, commonerrors.ErrDatabaseConnect
	}

	if metadata.Valid {
		event.Metadata = metadata.String
	}

	return &event, nil
}

// RecordAnchorResult upserts one anchor outcome. The upsert is idempotent on
// (entity_kind, entity_id, ledger); repeating the same outcome only bumps
// the row timestamp.
func (s *AnchorStore) RecordAnchorResult(ctx context.Context, entityKind types.EntityKind, entityID, txHash, ledger string, status types.TxStatus) error {
	db, err := sql.Open("postgres", s.dbConnStr)
	if err != nil {
		return commonerrors.ErrDatabaseConnect
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `
       INSERT INTO anchor_results (
           entity_kind,
           entity_id,
           tx_hash,
           ledger,
           status,
           updated_at
       ) VALUES ($1, $2, $3, $4, $5, NOW())
       ON CONFLICT (entity_kind, entity_id, ledger) DO UPDATE
       SET
           tx_hash = EXCLUDED.tx_hash,
           status = EXCLUDED.status,
           updated_at = NOW()
    `, entityKind, entityID, txHash, ledger, status)
	if err != nil {
		return errors.Wrap(err, "failed to record anchor result")
	}

	return nil
}

// AnchorResults returns the recorded outcomes for one entity across all
// ledgers.
func (s *AnchorStore) AnchorResults(ctx context.Context, entityKind types.EntityKind, entityID string) ([]models.AnchorResult, error) {
	db, err := sql.Open("postgres", s.dbConnStr)
	if err != nil {
		return nil, commonerrors.ErrDatabaseConnect
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
       SELECT
           entity_kind,
           entity_id,
           tx_hash,
           ledger,
           status,
           updated_at
       FROM anchor_results
       WHERE entity_kind = $1 AND entity_id = $2
       ORDER BY ledger
    `, entityKind, entityID)
	if err != nil {
		return nil, commonerrors.ErrDatabaseConnect
	}
	defer rows.Close()

	var results []models.AnchorResult
	for rows.Next() {
		var result models.AnchorResult
		if err := rows.Scan(
			&result.EntityKind,
			&result.EntityID,
			&result.TxHash,
			&result.Ledger,
			&result.Status,
			&result.UpdatedAt,
		); err != nil {
			return nil, commonerrors.ErrDatabaseConnect
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, commonerrors.ErrDatabaseConnect
	}

	return results, nil
}
