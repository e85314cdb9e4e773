package evm

import (
	"context"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"

	"github.com/tracepost/anchor-relay/common/types"
)

// TransactionStatus returns the unified status for an anchoring transaction.
// An unknown hash yields TxStatusNotFound; a submitted-but-unmined hash
// yields TxStatusPending. Entity kind and ID are decoded from the anchoring
// contract logs when present in the receipt.
func (l *ledger) TransactionStatus(ctx context.Context, txHash string) (*types.TxStatusInfo, error) {
	client, err := l.getClient()
	if err != nil {
		return nil, err
	}

	hash := common.HexToHash(txHash)

	receipt, err := client.TransactionReceipt(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return l.unminedStatus(ctx, txHash, hash)
		}
		return &types.TxStatusInfo{
			TxHash:  txHash,
			Status:  types.TxStatusError,
			Network: l.networkName(),
			Err:     err.Error(),
		}, nil
	}

	head, err := client.BlockNumber(ctx)
	if err != nil {
		return &types.TxStatusInfo{
			TxHash:  txHash,
			Status:  types.TxStatusError,
			Network: l.networkName(),
			Err:     err.Error(),
		}, nil
	}

	status := types.TxStatusConfirmed
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		status = types.TxStatusFailed
	}

	info := &types.TxStatusInfo{
		TxHash:      txHash,
		Status:      status,
		BlockNumber: receipt.BlockNumber.Uint64(),
		Network:     l.networkName(),
	}
	if head >= info.BlockNumber {
		info.Confirmations = head - info.BlockNumber
	}

	info.EntityKind, info.EntityID = l.decodeEntity(receipt.Logs)

	return info, nil
}

// unminedStatus distinguishes a pending transaction from one the node has
// never seen.
func (l *ledger) unminedStatus(ctx context.Context, txHash string, hash common.Hash) (*types.TxStatusInfo, error) {
	client, err := l.getClient()
	if err != nil {
		return nil, err
	}

	_, isPending, err := client.TransactionByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return &types.TxStatusInfo{
				TxHash:  txHash,
				Status:  types.TxStatusNotFound,
				Network: l.networkName(),
			}, nil
		}
		return &types.TxStatusInfo{
			TxHash:  txHash,
			Status:  types.TxStatusError,
			Network: l.networkName(),
			Err:     err.Error(),
		}, nil
	}

	if isPending {
		return &types.TxStatusInfo{
			TxHash:  txHash,
			Status:  types.TxStatusPending,
			Network: l.networkName(),
		}, nil
	}

	// Known but unmined and not pending: treat as pending until the receipt
	// becomes visible.
	return &types.TxStatusInfo{
		TxHash:  txHash,
		Status:  types.TxStatusPending,
		Network: l.networkName(),
	}, nil
}

// decodeEntity extracts the anchored entity kind and identifier from the
// anchoring contract logs, if any.
func (l *ledger) decodeEntity(logs []*ethtypes.Log) (types.EntityKind, string) {
	for _, entry := range logs {
		if l.shipmentRegistry != nil && entry.Address == l.shipmentRegistry.address {
			ev, ok := l.shipmentRegistry.abi.Events["ShipmentRegistered"]
			if ok && len(entry.Topics) > 0 && entry.Topics[0] == ev.ID {
				vals, err := ev.Inputs.Unpack(entry.Data)
				if err == nil && len(vals) > 0 {
					if id, ok := vals[0].(string); ok {
						return types.EntityShipment, id
					}
				}
			}
		}

		if l.eventLog != nil && entry.Address == l.eventLog.address {
			if ev, ok := l.eventLog.abi.Events["EventLogged"]; ok && len(entry.Topics) > 0 && entry.Topics[0] == ev.ID {
				vals, err := ev.Inputs.Unpack(entry.Data)
				if err == nil && len(vals) > 0 {
					if id, ok := vals[0].(string); ok {
						return types.EntityEvent, id
					}
				}
			}
			if ev, ok := l.eventLog.abi.Events["DocumentLogged"]; ok && len(entry.Topics) > 0 && entry.Topics[0] == ev.ID {
				vals, err := ev.Inputs.Unpack(entry.Data)
				if err == nil && len(vals) > 1 {
					if hash, ok := vals[1].(string); ok {
						return types.EntityDocument, hash
					}
				}
			}
		}
	}

	return "", ""
}
