package substrate

import (
	"context"

	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v4"
	"github.com/pkg/errors"

	"github.com/tracepost/anchor-relay/connectionmonitor"
)

// substrateConnectionManager implements the LedgerConn interface and manages
// the connection to the pallet-chain node.
type substrateConnectionManager struct {
	chain *ledger
}

// initMonitor initializes the connection monitor for the pallet-chain client.
func (l *ledger) initMonitor(ctx context.Context) error {
	l.monitorMutex.Lock()
	defer l.monitorMutex.Unlock()

	connectionManager := &substrateConnectionManager{chain: l}
	l.monitor = connectionmonitor.NewConnectionMonitor(connectionManager, l.logger, l.config.Name.String())
	return l.monitor.Start(ctx)
}

// CheckConnection checks the connection to the node by retrieving the latest
// block hash.
func (m *substrateConnectionManager) CheckConnection(ctx context.Context) error {
	m.chain.apiMutex.RLock()
	api := m.chain.api
	m.chain.apiMutex.RUnlock()

	if api == nil {
		return errors.New("client not initialized")
	}

	_, err := api.RPC.Chain.GetBlockHashLatest()
	return err
}

// Reconnect re-establishes the connection to the node and refreshes the
// cached runtime metadata.
func (m *substrateConnectionManager) Reconnect(ctx context.Context) error {
	api, err := gsrpc.NewSubstrateAPI(m.chain.config.NodeURL)
	if err != nil {
		return err
	}

	meta, err := api.RPC.State.GetMetadataLatest()
	if err != nil {
		return err
	}

	m.chain.apiMutex.Lock()
	m.chain.api = api
	m.chain.meta = meta
	m.chain.apiMutex.Unlock()
	return nil
}
