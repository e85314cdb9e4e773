package evm

import (
	"context"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"

	"github.com/tracepost/anchor-relay/connectionmonitor"
)

// evmConnectionManager implements the LedgerConn interface and manages the
// connection to the account-chain node.
type evmConnectionManager struct {
	chain *ledger
}

// initMonitor initializes the connection monitor for the account-chain client.
func (l *ledger) initMonitor(ctx context.Context) error {
	l.monitorMutex.Lock()
	defer l.monitorMutex.Unlock()

	connectionManager := &evmConnectionManager{chain: l}
	l.monitor = connectionmonitor.NewConnectionMonitor(connectionManager, l.logger, l.config.Name.String())
	return l.monitor.Start(ctx)
}

// CheckConnection checks the connection to the node by retrieving the current
// block number.
func (m *evmConnectionManager) CheckConnection(ctx context.Context) error {
	m.chain.clientMutex.RLock()
	client := m.chain.client
	m.chain.clientMutex.RUnlock()

	if client == nil {
		return errors.New("client not initialized")
	}

	_, err := client.BlockNumber(ctx)
	return err
}

// Reconnect re-establishes the connection to the node.
func (m *evmConnectionManager) Reconnect(ctx context.Context) error {
	m.chain.clientMutex.Lock()
	defer m.chain.clientMutex.Unlock()

	if m.chain.client != nil {
		m.chain.client.Close()
	}

	client, err := ethclient.Dial(m.chain.config.NodeURL)
	if err != nil {
		return err
	}

	m.chain.client = client
	return nil
}
