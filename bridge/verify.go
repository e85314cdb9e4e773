package bridge

import (
	"context"

	"github.com/tracepost/anchor-relay/common/types"
)

// BridgedVerification is the outcome of an end-to-end relay audit.
type BridgedVerification struct {
	Verified       bool                      `json:"verified"`
	SourceVerified bool                      `json:"source_verified"`
	TargetVerified bool                      `json:"target_verified"`
	Source         *types.VerificationResult `json:"source"`
	Target         *types.VerificationResult `json:"target"`
}

// VerifyBridgedEvent audits one relayed event on both sides: the original
// event on the source ledger and the bridged copy on the target ledger. The
// overall result verifies only when both sides do. A missing record is
// reported through the per-side result, not as an error.
//
// Parameters:
// - ctx: the context for managing the requests.
// - bridgeID: the identifier under which the event was relayed.
// - originalEventID: the event identifier on the source ledger.
// - shipmentID: the shipment the event belongs to.
//
// Returns:
// - *BridgedVerification: both raw payloads plus the combined verdict.
// - error: an error if either ledger is unreachable.
func (b *ChainBridge) VerifyBridgedEvent(ctx context.Context, bridgeID, originalEventID, shipmentID string) (*BridgedVerification, error) {
	sourceResult, err := b.source.VerifyEvent(ctx, shipmentID, originalEventID)
	if err != nil {
		return nil, err
	}

	targetResult, err := b.target.VerifyEvent(ctx, shipmentID, bridgeID)
	if err != nil {
		return nil, err
	}

	return &BridgedVerification{
		Verified:       sourceResult.Verified && targetResult.Verified,
		SourceVerified: sourceResult.Verified,
		TargetVerified: targetResult.Verified,
		Source:         sourceResult,
		Target:         targetResult,
	}, nil
}
