// Package ledgers wires the ledger implementations behind a factory and a
// name-keyed registry so callers deal only with the types.Ledger interface.
package ledgers

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	commonerrors "github.com/tracepost/anchor-relay/common/errors"
	commontypes "github.com/tracepost/anchor-relay/common/types"
	"github.com/tracepost/anchor-relay/ledgers/evm"
	"github.com/tracepost/anchor-relay/ledgers/substrate"
	"github.com/tracepost/anchor-relay/ledgers/vietnamchain"
)

// LedgerConstructor represents a function that constructs a new ledger instance.
//
// Parameters:
// - ctx: the context for managing construction.
// - config: the configuration for the ledger.
// - logger: the logger for logging purposes.
//
// Returns:
// - commontypes.Ledger: the constructed ledger instance.
// - error: an error if the ledger construction fails.
type LedgerConstructor func(ctx context.Context, config *commontypes.LedgerConfig, logger *logrus.Logger) (commontypes.Ledger, error)

// LedgerFactory defines the interface for ledger creation.
type LedgerFactory interface {
	// RegisterConstructor registers a new ledger constructor for a given
	// ledger family.
	RegisterConstructor(chainType commontypes.ChainType, constructor LedgerConstructor)

	// CreateLedger creates a new ledger instance based on the configuration.
	//
	// Parameters:
	// - ctx: the context for managing construction.
	// - config: the configuration for the ledger.
	// - logger: the logger for logging purposes.
	//
	// Returns:
	// - commontypes.Ledger: the created ledger instance.
	// - error: an error if the configured ledger family is unknown.
	CreateLedger(ctx context.Context, config *commontypes.LedgerConfig, logger *logrus.Logger) (commontypes.Ledger, error)
}

type ledgerFactory struct {
	// constructors stores the mapping of ledger families to their constructors.
	constructors map[commontypes.ChainType]LedgerConstructor
	// constructorsMutex protects access to the constructors map.
	constructorsMutex sync.RWMutex
}

// NewLedgerFactory creates a new instance of the ledger factory.
//
// Returns:
// - LedgerFactory: the new ledger factory instance.
func NewLedgerFactory() LedgerFactory {
	factory := &ledgerFactory{
		constructors: make(map[commontypes.ChainType]LedgerConstructor),
	}

	// Initialize with default constructors.
	factory.registerConstructors()

	return factory
}

// RegisterConstructor registers a new ledger constructor.
func (f *ledgerFactory) RegisterConstructor(chainType commontypes.ChainType, constructor LedgerConstructor) {
	f.constructorsMutex.Lock()
	defer f.constructorsMutex.Unlock()

	f.constructors[chainType] = constructor
}

// CreateLedger creates a new ledger instance based on the configuration.
func (f *ledgerFactory) CreateLedger(ctx context.Context, config *commontypes.LedgerConfig, logger *logrus.Logger) (commontypes.Ledger, error) {
	f.constructorsMutex.RLock()
	constructor, exists := f.constructors[config.ChainType]
	f.constructorsMutex.RUnlock()

	if !exists {
		return nil, errors.Wrapf(commonerrors.ErrInvalidChainType, "no constructor for %s", config.ChainType)
	}

	return constructor(ctx, config, logger)
}

// registerConstructors registers the ledger constructors for the factory
// instance.
func (f *ledgerFactory) registerConstructors() {
	f.RegisterConstructor(commontypes.EVM, func(ctx context.Context, config *commontypes.LedgerConfig, logger *logrus.Logger) (commontypes.Ledger, error) {
		return evm.NewLedger(ctx, config, logger)
	})

	f.RegisterConstructor(commontypes.SUBSTRATE, func(ctx context.Context, config *commontypes.LedgerConfig, logger *logrus.Logger) (commontypes.Ledger, error) {
		return substrate.NewLedger(ctx, config, logger)
	})

	f.RegisterConstructor(commontypes.RESTLEDGER, func(ctx context.Context, config *commontypes.LedgerConfig, logger *logrus.Logger) (commontypes.Ledger, error) {
		return vietnamchain.NewLedger(ctx, config, logger)
	})
}
