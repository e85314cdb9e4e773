package ledgers

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	commonerrors "github.com/tracepost/anchor-relay/common/errors"
	commontypes "github.com/tracepost/anchor-relay/common/types"
)

// Registry holds the live ledger clients keyed by ledger name.
type Registry interface {
	// Add constructs a ledger from its configuration and registers it. A
	// second Add under the same name fails with ErrLedgerExists.
	Add(ctx context.Context, config *commontypes.LedgerConfig) error

	// Get returns the ledger registered under the given name.
	Get(name commontypes.ChainName) (commontypes.Ledger, error)

	// Names returns the names of all registered ledgers.
	Names() []commontypes.ChainName

	// Remove closes and unregisters the named ledger.
	Remove(name commontypes.ChainName)

	// CloseAll closes every registered ledger and empties the registry.
	CloseAll()
}

type ledgerRegistry struct {
	logger       *logrus.Logger
	ledgers      map[commontypes.ChainName]commontypes.Ledger
	ledgersMutex sync.RWMutex
	factory      LedgerFactory
	factoryMutex sync.RWMutex
}

// NewRegistry creates a ledger registry backed by the given factory.
func NewRegistry(factory LedgerFactory, logger *logrus.Logger) Registry {
	return &ledgerRegistry{
		ledgers: make(map[commontypes.ChainName]commontypes.Ledger),
		factory: factory,
		logger:  logger,
	}
}

func (r *ledgerRegistry) Add(ctx context.Context, config *commontypes.LedgerConfig) error {
	r.ledgersMutex.RLock()
	_, exists := r.ledgers[config.Name]
	r.ledgersMutex.RUnlock()
	if exists {
		return errors.Wrap(commonerrors.ErrLedgerExists, config.Name.String())
	}

	// Lock factory for reading to prevent changes during ledger creation.
	r.factoryMutex.RLock()
	ledger, err := r.factory.CreateLedger(ctx, config, r.logger)
	r.factoryMutex.RUnlock()

	if err != nil {
		return err
	}

	r.ledgersMutex.Lock()
	r.ledgers[config.Name] = ledger
	r.ledgersMutex.Unlock()

	r.logger.WithFields(logrus.Fields{
		"ledger": config.Name,
		"type":   config.ChainType,
	}).Info("Ledger registered")

	return nil
}

func (r *ledgerRegistry) Get(name commontypes.ChainName) (commontypes.Ledger, error) {
	r.ledgersMutex.RLock()
	ledger, exists := r.ledgers[name]
	r.ledgersMutex.RUnlock()

	if !exists {
		return nil, errors.Wrap(commonerrors.ErrLedgerNotFound, name.String())
	}
	return ledger, nil
}

func (r *ledgerRegistry) Names() []commontypes.ChainName {
	r.ledgersMutex.RLock()
	defer r.ledgersMutex.RUnlock()

	names := make([]commontypes.ChainName, 0, len(r.ledgers))
	for name := range r.ledgers {
		names = append(names, name)
	}
	return names
}

func (r *ledgerRegistry) Remove(name commontypes.ChainName) {
	r.ledgersMutex.Lock()
	if ledger, exists := r.ledgers[name]; exists {
		ledger.Close()
		delete(r.ledgers, name)
	}
	r.ledgersMutex.Unlock()
}

func (r *ledgerRegistry) CloseAll() {
	r.ledgersMutex.Lock()
	for name, ledger := range r.ledgers {
		ledger.Close()
		delete(r.ledgers, name)
	}
	r.ledgersMutex.Unlock()
}
