// Package substrate implements the anchoring ledger client for pallet-based
// chains. Anchors are submitted as extrinsics to the LogisticsTraceability
// pallet and verified against its storage maps.
package substrate

import (
	"context"
	"sync"

	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v4"
	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
	subtypes "github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	commonerrors "github.com/tracepost/anchor-relay/common/errors"
	"github.com/tracepost/anchor-relay/common/types"
	"github.com/tracepost/anchor-relay/connectionmonitor"
)

// palletName is the runtime pallet that owns the anchoring calls and storage.
const palletName = "LogisticsTraceability"

// ledger is the pallet-chain implementation of types.Ledger.
type ledger struct {
	config  *types.LedgerConfig
	logger  *logrus.Logger
	keypair signature.KeyringPair

	apiMutex sync.RWMutex
	api      *gsrpc.SubstrateAPI
	meta     *subtypes.Metadata

	// submissions tracks the extrinsics this client has sent, keyed by
	// extrinsic hash. The chain itself has no transaction lookup by hash.
	submissionsMutex sync.RWMutex
	submissions      map[string]*types.TxStatusInfo

	monitorMutex sync.RWMutex
	monitor      connectionmonitor.ConnectionMonitor
}

// NewLedger creates a pallet-chain ledger client. The signing keypair is
// derived from the configured mnemonic; a client without a mnemonic can still
// read and verify but not anchor.
//
// Parameters:
// - ctx: the context for managing construction.
// - config: the ledger configuration.
// - logger: the logger for logging purposes.
//
// Returns:
// - types.Ledger: a new pallet-chain ledger instance.
// - error: an error if the node is unreachable or the keypair cannot be derived.
func NewLedger(ctx context.Context, config *types.LedgerConfig, logger *logrus.Logger) (types.Ledger, error) {
	api, err := gsrpc.NewSubstrateAPI(config.NodeURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create client")
	}

	meta, err := api.RPC.State.GetMetadataLatest()
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch runtime metadata")
	}

	l := &ledger{
		config:      config,
		logger:      logger,
		api:         api,
		meta:        meta,
		submissions: make(map[string]*types.TxStatusInfo),
	}

	if config.Mnemonic != "" {
		keypair, err := signature.KeyringPairFromSecret(config.Mnemonic, config.SS58Format)
		if err != nil {
			return nil, errors.Wrap(err, "failed to derive keypair from mnemonic")
		}
		l.keypair = keypair
	}

	if err := l.initMonitor(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to init connection monitor")
	}

	logger.WithFields(logrus.Fields{
		"ledger": config.Name,
		"pallet": palletName,
	}).Info("Pallet-chain ledger client initialized")

	return l, nil
}

// Close stops the connection monitor. The underlying RPC client has no
// explicit close.
func (l *ledger) Close() {
	l.monitorMutex.Lock()
	if l.monitor != nil {
		l.monitor.Stop()
		l.monitor = nil
	}
	l.monitorMutex.Unlock()

	l.apiMutex.Lock()
	l.api = nil
	l.apiMutex.Unlock()
}

// getAPI returns the node client with thread-safe access.
func (l *ledger) getAPI() (*gsrpc.SubstrateAPI, error) {
	l.apiMutex.RLock()
	defer l.apiMutex.RUnlock()

	if l.api == nil {
		return nil, errors.Wrap(commonerrors.ErrNotConfigured, "client not initialized")
	}
	return l.api, nil
}

// getMetadata returns the cached runtime metadata with thread-safe access.
func (l *ledger) getMetadata() (*subtypes.Metadata, error) {
	l.apiMutex.RLock()
	defer l.apiMutex.RUnlock()

	if l.meta == nil {
		return nil, errors.Wrap(commonerrors.ErrNotConfigured, "runtime metadata not loaded")
	}
	return l.meta, nil
}
