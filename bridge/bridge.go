// Package bridge implements the cross-ledger event relay. A ChainBridge
// polls a source ledger's event log behind a confirmation-depth gate and
// re-anchors each newly discovered event on a target ledger under a derived
// bridge identifier. Bridges are supervised by the Manager.
package bridge

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tracepost/anchor-relay/common/types"
	"github.com/tracepost/anchor-relay/oracle"
)

// defaultLookback bounds the initial scan window when a bridge has no cursor
// yet.
const defaultLookback = 1000

// bridgedEventPrefix marks relayed events on the target ledger.
const bridgedEventPrefix = "BRIDGED_"

// AnchorRecorder receives the outcome of each relay attempt. Implementations
// must make RecordAnchorResult an idempotent upsert; the bridge may report
// the same outcome more than once.
type AnchorRecorder interface {
	RecordAnchorResult(ctx context.Context, entityKind types.EntityKind, entityID, txHash, ledger string, status types.TxStatus) error
}

// EventResult is the per-event outcome of one relay batch.
type EventResult struct {
	OriginalEventID string `json:"original_event_id"`
	BridgeID        string `json:"bridge_id,omitempty"`
	TxHash          string `json:"tx_hash,omitempty"`
	Relayed         bool   `json:"relayed"`
	Err             string `json:"error,omitempty"`
}

// Status is a point-in-time snapshot of a bridge. The Running flag is filled
// in by the Manager from its worker registry.
type Status struct {
	Name               string        `json:"name"`
	SourceChain        string        `json:"source_chain"`
	TargetChain        string        `json:"target_chain"`
	Running            bool          `json:"running"`
	LastRun            time.Time     `json:"last_run"`
	PollInterval       time.Duration `json:"poll_interval"`
	ConfirmationBlocks uint64        `json:"confirmation_blocks"`
	LastProcessedBlock uint64        `json:"last_processed_block"`
	ProcessedEvents    int           `json:"processed_events"`
}

// ChainBridge relays confirmed anchoring events from a source ledger to a
// target ledger. It is the oracle.Source of its own polling loop.
type ChainBridge struct {
	name       string
	sourceName types.ChainName
	targetName types.ChainName

	source       types.Ledger
	sourceEvents types.EventSource
	target       types.Ledger

	eventTypes         map[string]struct{}
	confirmationBlocks uint64
	lookback           uint64

	cursorMutex        sync.RWMutex
	lastProcessedBlock uint64

	processed *processedSet
	recorder  AnchorRecorder
	logger    *logrus.Logger

	loop *oracle.Oracle[[]types.ChainEvent, []EventResult]
}

// Name returns the bridge name.
func (b *ChainBridge) Name() string { return b.name }

// Run executes the relay loop until the context is cancelled or Stop is
// called.
func (b *ChainBridge) Run(ctx context.Context) error {
	return b.loop.Run(ctx)
}

// Stop signals the relay loop to exit.
func (b *ChainBridge) Stop() {
	b.loop.Stop()
}

// RunOnce executes a single fetch-and-relay cycle, for manual triggering.
func (b *ChainBridge) RunOnce(ctx context.Context) ([]EventResult, error) {
	return b.loop.RunOnce(ctx)
}

// Status returns a snapshot of the bridge state without the Running flag.
func (b *ChainBridge) Status() Status {
	loopStatus := b.loop.Status()

	b.cursorMutex.RLock()
	lastBlock := b.lastProcessedBlock
	b.cursorMutex.RUnlock()

	return Status{
		Name:               b.name,
		SourceChain:        b.sourceName.String(),
		TargetChain:        b.targetName.String(),
		LastRun:            loopStatus.LastRun,
		PollInterval:       loopStatus.Interval,
		ConfirmationBlocks: b.confirmationBlocks,
		LastProcessedBlock: lastBlock,
		ProcessedEvents:    b.processed.Len(),
	}
}

// FetchData queries the source ledger for confirmed events past the bridge
// cursor. The upper bound is gated at head minus the confirmation depth so a
// reorganized-out event is never relayed. On success the cursor advances to
// the gated bound even when the range held no events.
//
// Parameters:
// - ctx: the context for managing the request.
//
// Returns:
// - []types.ChainEvent: the confirmed events, filtered by the allow-list.
// - error: an error if the source ledger is unreachable.
func (b *ChainBridge) FetchData(ctx context.Context) ([]types.ChainEvent, error) {
	head, err := b.sourceEvents.HeadBlock(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch source head block")
	}

	if head <= b.confirmationBlocks {
		return nil, nil
	}
	upper := head - b.confirmationBlocks

	b.cursorMutex.RLock()
	cursor := b.lastProcessedBlock
	b.cursorMutex.RUnlock()

	var from uint64
	if cursor > 0 {
		from = cursor + 1
	} else if head > b.lookback {
		from = head - b.lookback
	}

	if from > upper {
		return nil, nil
	}

	events, err := b.sourceEvents.Events(ctx, from, upper)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch source events in range [%d, %d]", from, upper)
	}

	if b.eventTypes != nil {
		filtered := events[:0]
		for _, ev := range events {
			if _, ok := b.eventTypes[ev.EventType]; ok {
				filtered = append(filtered, ev)
			}
		}
		events = filtered
	}

	b.cursorMutex.Lock()
	if upper > b.lastProcessedBlock {
		b.lastProcessedBlock = upper
	}
	b.cursorMutex.Unlock()

	if len(events) > 0 {
		b.logger.WithFields(logrus.Fields{
			"bridge":     b.name,
			"from_block": from,
			"to_block":   upper,
			"events":     len(events),
		}).Info("Fetched source events")
	}

	return events, nil
}

// ProcessData relays each event not already in the processed set. One
// event's failure is recorded in its result and never aborts the batch.
//
// Parameters:
// - ctx: the context for managing the requests.
// - events: the fetched source events.
//
// Returns:
// - []EventResult: one outcome per relayed or failed event.
// - error: never; batch-level problems are carried in the results.
func (b *ChainBridge) ProcessData(ctx context.Context, events []types.ChainEvent) ([]EventResult, error) {
	results := make([]EventResult, 0, len(events))

	for _, ev := range events {
		if b.processed.Contains(ev.EventID) {
			continue
		}

		result := b.relayEvent(ctx, ev)
		results = append(results, result)
	}

	b.processed.Trim()
	return results, nil
}

// relayEvent re-anchors one source event on the target ledger.
func (b *ChainBridge) relayEvent(ctx context.Context, ev types.ChainEvent) EventResult {
	now := time.Now().UTC()
	bridgeID := newBridgeID(ev.EventID, b.sourceName.String(), b.targetName.String(), now)

	envelope, err := json.Marshal(map[string]interface{}{
		"source_chain":      b.sourceName.String(),
		"source_tx_hash":    ev.TxHash,
		"source_block":      ev.BlockNumber,
		"bridge_id":         bridgeID,
		"original_event_id": ev.EventID,
		"bridged_at":        now.Unix(),
	})
	if err != nil {
		return EventResult{OriginalEventID: ev.EventID, BridgeID: bridgeID, Err: err.Error()}
	}

	dataHash := relayDataHash(ev.ShipmentID, ev.EventID, ev.EventType, bridgeID)
	eventType := bridgedEventPrefix + ev.EventType

	txHash, err := b.target.RegisterEvent(ctx, ev.ShipmentID, bridgeID, eventType, dataHash, string(envelope))
	if err != nil {
		b.logger.WithFields(logrus.Fields{
			"bridge":            b.name,
			"original_event_id": ev.EventID,
			"bridge_id":         bridgeID,
			"error":             err,
		}).Error("Failed to relay event to target ledger")

		b.recordAnchor(ctx, ev.EventID, "", types.TxStatusFailed)
		return EventResult{OriginalEventID: ev.EventID, BridgeID: bridgeID, Err: err.Error()}
	}

	b.processed.Add(ev.EventID)
	b.recordAnchor(ctx, ev.EventID, txHash, types.TxStatusPending)

	b.logger.WithFields(logrus.Fields{
		"bridge":            b.name,
		"original_event_id": ev.EventID,
		"bridge_id":         bridgeID,
		"tx_hash":           txHash,
	}).Info("Event relayed to target ledger")

	return EventResult{
		OriginalEventID: ev.EventID,
		BridgeID:        bridgeID,
		TxHash:          txHash,
		Relayed:         true,
	}
}

// recordAnchor reports a relay outcome to the anchor-status collaborator,
// when one is wired. Failures are logged and swallowed; persistence must
// never stall the relay loop.
func (b *ChainBridge) recordAnchor(ctx context.Context, eventID, txHash string, status types.TxStatus) {
	if b.recorder == nil {
		return
	}

	if err := b.recorder.RecordAnchorResult(ctx, types.EntityEvent, eventID, txHash, b.targetName.String(), status); err != nil {
		b.logger.WithFields(logrus.Fields{
			"bridge":   b.name,
			"event_id": eventID,
			"error":    err,
		}).Warn("Failed to record anchor result")
	}
}

// newBridgeID derives the relay identifier for one relay attempt. The
// timestamp input keeps retries after a gap from colliding with an earlier
// attempt for the same source event; it is an audit label, not a stable
// exactly-once key.
func newBridgeID(originalEventID, source, target string, at time.Time) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%s:%d", originalEventID, source, target, at.Unix())))
	return fmt.Sprintf("bridge_%s_%s", source, hex.EncodeToString(sum[:])[:16])
}

// relayDataHash computes the anchored digest binding the relayed event to
// its bridge identifier.
func relayDataHash(shipmentID, eventID, eventType, bridgeID string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%s:%s", shipmentID, eventID, eventType, bridgeID)))
	return hex.EncodeToString(sum[:])
}
