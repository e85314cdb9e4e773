package substrate

import (
	"context"

	"github.com/tracepost/anchor-relay/common/types"
)

// TransactionStatus returns the unified status of an extrinsic hash. The
// runtime keeps no extrinsic index by hash, so the client answers from its
// own submission log; a hash this client never submitted reports
// TxStatusNotFound.
//
// Parameters:
// - ctx: the context for managing the request.
// - txHash: the hex-encoded extrinsic hash.
//
// Returns:
// - *types.TxStatusInfo: the normalized status information.
// - error: never for an unknown hash; reserved for internal failures.
func (l *ledger) TransactionStatus(ctx context.Context, txHash string) (*types.TxStatusInfo, error) {
	l.submissionsMutex.RLock()
	defer l.submissionsMutex.RUnlock()

	if info, ok := l.submissions[txHash]; ok {
		out := *info
		return &out, nil
	}

	return &types.TxStatusInfo{
		TxHash:  txHash,
		Status:  types.TxStatusNotFound,
		Network: l.config.Name.String(),
	}, nil
}
