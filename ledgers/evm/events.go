package evm

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"

	commonerrors "github.com/tracepost/anchor-relay/common/errors"
	"github.com/tracepost/anchor-relay/common/types"
)

// HeadBlock returns the current head block number.
func (l *ledger) HeadBlock(ctx context.Context) (uint64, error) {
	client, err := l.getClient()
	if err != nil {
		return 0, err
	}

	head, err := client.BlockNumber(ctx)
	if err != nil {
		return 0, errors.Wrap(commonerrors.ErrConnectivity, err.Error())
	}
	return head, nil
}

// Events scans the EventLog contract for EventLogged entries in the inclusive
// block range [fromBlock, toBlock].
func (l *ledger) Events(ctx context.Context, fromBlock, toBlock uint64) ([]types.ChainEvent, error) {
	if l.eventLog == nil {
		return nil, errors.Wrap(commonerrors.ErrNotConfigured, "EventLog contract not initialized")
	}

	client, err := l.getClient()
	if err != nil {
		return nil, err
	}

	ev, ok := l.eventLog.abi.Events["EventLogged"]
	if !ok {
		return nil, errors.Wrap(commonerrors.ErrNotConfigured, "EventLogged event missing from ABI")
	}

	logs, err := client.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: []common.Address{l.eventLog.address},
		Topics:    [][]common.Hash{{ev.ID}},
	})
	if err != nil {
		return nil, errors.Wrap(commonerrors.ErrConnectivity, err.Error())
	}

	events := make([]types.ChainEvent, 0, len(logs))
	for _, entry := range logs {
		event, err := l.decodeEventLogged(ev, entry)
		if err != nil {
			l.logger.WithError(err).WithField("txHash", entry.TxHash.Hex()).Warn("Skipping undecodable event log")
			continue
		}
		events = append(events, event)
	}

	return events, nil
}

// decodeEventLogged turns a raw EventLogged log entry into a ChainEvent.
func (l *ledger) decodeEventLogged(ev abi.Event, entry ethtypes.Log) (types.ChainEvent, error) {
	vals, err := ev.Inputs.Unpack(entry.Data)
	if err != nil {
		return types.ChainEvent{}, errors.Wrap(err, "failed to unpack EventLogged data")
	}
	if len(vals) < 3 {
		return types.ChainEvent{}, errors.New("EventLogged data too short")
	}

	eventID, _ := vals[0].(string)
	shipmentID, _ := vals[1].(string)
	eventType, _ := vals[2].(string)

	return types.ChainEvent{
		EventID:      eventID,
		ShipmentID:   shipmentID,
		EventType:    eventType,
		BlockNumber:  entry.BlockNumber,
		TxHash:       entry.TxHash.Hex(),
		SourceChain:  l.config.Name,
		DiscoveredAt: time.Now().UTC(),
	}, nil
}
