// Package evm implements the anchoring ledger client for account-based
// smart-contract chains. Anchors are written through the ShipmentRegistry and
// EventLog contracts; submission is non-blocking and confirmation is polled
// separately through TransactionStatus.
package evm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	commonerrors "github.com/tracepost/anchor-relay/common/errors"
	"github.com/tracepost/anchor-relay/common/types"
	"github.com/tracepost/anchor-relay/connectionmonitor"
	"github.com/tracepost/anchor-relay/ledgers/evm/generated"
	"github.com/tracepost/anchor-relay/ledgers/evm/signer"
)

// boundContract couples a deployed contract address with its parsed ABI.
type boundContract struct {
	address common.Address
	abi     abi.ABI
}

// ledger is the account-chain implementation of types.Ledger.
type ledger struct {
	config *types.LedgerConfig
	logger *logrus.Logger
	signer signer.Signer

	clientMutex sync.RWMutex
	client      *ethclient.Client

	shipmentRegistry *boundContract
	eventLog         *boundContract

	monitorMutex sync.RWMutex
	monitor      connectionmonitor.ConnectionMonitor
}

// NewLedger creates an account-chain ledger client. The client dials the node
// once; reconnection is handled by the connection monitor. At least one of
// the anchoring contracts must be configured.
//
// Parameters:
// - ctx: the context for managing construction.
// - config: the ledger configuration.
// - logger: the logger for logging purposes.
//
// Returns:
// - types.Ledger: a new account-chain ledger instance.
// - error: an error if the node is unreachable or the configuration is incomplete.
func NewLedger(ctx context.Context, config *types.LedgerConfig, logger *logrus.Logger) (types.Ledger, error) {
	if config.ShipmentRegistryAddress == "" && config.EventLogAddress == "" {
		return nil, errors.Wrap(commonerrors.ErrNotConfigured, "no anchoring contract address configured")
	}

	client, err := ethclient.Dial(config.NodeURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create client")
	}

	l := &ledger{
		config: config,
		logger: logger,
		client: client,
	}

	if config.PrivateKey != "" {
		s, err := signer.NewSigner(config.PrivateKey)
		if err != nil {
			return nil, err
		}
		l.signer = s
	}

	if config.ShipmentRegistryAddress != "" {
		parsed, err := abi.JSON(strings.NewReader(generated.ShipmentRegistryABI))
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse ShipmentRegistry ABI")
		}
		l.shipmentRegistry = &boundContract{
			address: common.HexToAddress(config.ShipmentRegistryAddress),
			abi:     parsed,
		}
	}

	if config.EventLogAddress != "" {
		parsed, err := abi.JSON(strings.NewReader(generated.EventLogABI))
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse EventLog ABI")
		}
		l.eventLog = &boundContract{
			address: common.HexToAddress(config.EventLogAddress),
			abi:     parsed,
		}
	}

	if err := l.initMonitor(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to init connection monitor")
	}

	logger.WithFields(logrus.Fields{
		"ledger":  config.Name,
		"network": l.networkName(),
	}).Info("Account-chain ledger client initialized")

	return l, nil
}

// Close stops the connection monitor and closes the node client.
func (l *ledger) Close() {
	l.monitorMutex.Lock()
	if l.monitor != nil {
		l.monitor.Stop()
		l.monitor = nil
	}
	l.monitorMutex.Unlock()

	l.clientMutex.Lock()
	if l.client != nil {
		l.client.Close()
		l.client = nil
	}
	l.clientMutex.Unlock()
}

// getClient returns the node client with thread-safe access.
func (l *ledger) getClient() (*ethclient.Client, error) {
	l.clientMutex.RLock()
	defer l.clientMutex.RUnlock()

	if l.client == nil {
		return nil, errors.Wrap(commonerrors.ErrNotConfigured, "client not initialized")
	}
	return l.client, nil
}

// networkName resolves a human-readable network name from the chain ID.
func (l *ledger) networkName() string {
	switch l.config.ChainID {
	case 1:
		return "ethereum"
	case 5:
		return "goerli"
	case 11155111:
		return "sepolia"
	case 137:
		return "polygon"
	case 80001:
		return "polygon_mumbai"
	default:
		return fmt.Sprintf("chain_%d", l.config.ChainID)
	}
}
