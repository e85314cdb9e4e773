package vietnamchain

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	commonerrors "github.com/tracepost/anchor-relay/common/errors"
	"github.com/tracepost/anchor-relay/common/types"
)

// txStatusResponse is the gateway's transaction lookup payload.
type txStatusResponse struct {
	Status        string `json:"status"`
	BlockNumber   uint64 `json:"blockNumber"`
	Confirmations uint64 `json:"confirmations"`
	EntityType    string `json:"entityType"`
	EntityID      string `json:"entityId"`
}

// TransactionStatus returns the unified status of a gateway transaction.
// Gateway statuses map as PENDING and PROCESSING to pending, CONFIRMED to
// confirmed and FAILED to failed; any status outside the published set is
// surfaced as TxStatusError so callers never treat it as settled.
//
// Parameters:
// - ctx: the context for managing the request.
// - txHash: the gateway transaction identifier.
//
// Returns:
// - *types.TxStatusInfo: the normalized status information.
// - error: never for an unknown transaction; reserved for request failures.
func (l *ledger) TransactionStatus(ctx context.Context, txHash string) (*types.TxStatusInfo, error) {
	info := &types.TxStatusInfo{
		TxHash:  txHash,
		Network: l.config.Name.String(),
	}

	var resp txStatusResponse
	err := l.doRequest(ctx, http.MethodGet, transactionsEndpoint+"/"+txHash, nil, &resp)
	if err != nil {
		if commonerrors.IsNotFound(err) {
			info.Status = types.TxStatusNotFound
			return info, nil
		}
		info.Status = types.TxStatusError
		info.Err = err.Error()
		return info, nil
	}

	info.BlockNumber = resp.BlockNumber
	info.Confirmations = resp.Confirmations
	info.EntityKind = types.EntityKind(resp.EntityType)
	info.EntityID = resp.EntityID

	switch resp.Status {
	case "PENDING", "PROCESSING":
		info.Status = types.TxStatusPending
	case "CONFIRMED":
		info.Status = types.TxStatusConfirmed
	case "FAILED":
		info.Status = types.TxStatusFailed
	default:
		info.Status = types.TxStatusError
		info.Err = "unrecognized gateway status: " + resp.Status
		l.logger.WithFields(logrus.Fields{
			"ledger":  l.config.Name,
			"tx_hash": txHash,
			"status":  resp.Status,
		}).Warn("Gateway returned unrecognized transaction status")
	}

	return info, nil
}
