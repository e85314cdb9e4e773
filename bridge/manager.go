package bridge

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	commonerrors "github.com/tracepost/anchor-relay/common/errors"
)

// worker tracks one running bridge loop.
type worker struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager registers bridges and supervises one goroutine per started bridge.
// All registry mutations are serialized through its mutex so concurrent
// admin callers are safe.
type Manager struct {
	mutex   sync.Mutex
	bridges map[string]*ChainBridge
	workers map[string]*worker
	logger  *logrus.Logger
}

// NewManager creates an empty bridge manager.
func NewManager(logger *logrus.Logger) *Manager {
	return &Manager{
		bridges: make(map[string]*ChainBridge),
		workers: make(map[string]*worker),
		logger:  logger,
	}
}

// AddBridge registers a bridge under its name. A second bridge with the same
// name fails with ErrBridgeExists.
func (m *Manager) AddBridge(b *ChainBridge) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.bridges[b.Name()]; exists {
		return errors.Wrap(commonerrors.ErrBridgeExists, b.Name())
	}

	m.bridges[b.Name()] = b
	m.logger.WithField("bridge", b.Name()).Info("Bridge registered")
	return nil
}

// RemoveBridge stops the named bridge if running and unregisters it.
func (m *Manager) RemoveBridge(name string) error {
	m.mutex.Lock()
	_, exists := m.bridges[name]
	m.mutex.Unlock()

	if !exists {
		return errors.Wrap(commonerrors.ErrBridgeNotFound, name)
	}

	if _, err := m.StopBridge(name); err != nil {
		return err
	}

	m.mutex.Lock()
	delete(m.bridges, name)
	m.mutex.Unlock()

	m.logger.WithField("bridge", name).Info("Bridge removed")
	return nil
}

// GetBridge returns the named bridge.
func (m *Manager) GetBridge(name string) (*ChainBridge, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	b, exists := m.bridges[name]
	if !exists {
		return nil, errors.Wrap(commonerrors.ErrBridgeNotFound, name)
	}
	return b, nil
}

// StartBridge spawns the worker goroutine for the named bridge.
//
// Parameters:
// - name: the bridge registry key.
//
// Returns:
// - bool: false without error when the bridge is already running.
// - error: an error if the bridge is not registered.
func (m *Manager) StartBridge(name string) (bool, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	b, exists := m.bridges[name]
	if !exists {
		return false, errors.Wrap(commonerrors.ErrBridgeNotFound, name)
	}
	if _, running := m.workers[name]; running {
		return false, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &worker{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	m.workers[name] = w

	go func() {
		if err := b.Run(ctx); err != nil {
			m.logger.WithFields(logrus.Fields{
				"bridge": name,
				"error":  err,
			}).Error("Bridge loop exited with error")
		}

		// The loop may exit on its own; drop the worker entry if it is
		// still the current one.
		m.mutex.Lock()
		if m.workers[name] == w {
			delete(m.workers, name)
		}
		m.mutex.Unlock()

		close(w.done)
	}()

	m.logger.WithField("bridge", name).Info("Bridge started")
	return true, nil
}

// StopBridge cancels the named bridge's worker and waits for its loop to
// exit.
//
// Parameters:
// - name: the bridge registry key.
//
// Returns:
// - bool: false without error when the bridge is not running.
// - error: an error if the bridge is not registered.
func (m *Manager) StopBridge(name string) (bool, error) {
	m.mutex.Lock()
	b, exists := m.bridges[name]
	if !exists {
		m.mutex.Unlock()
		return false, errors.Wrap(commonerrors.ErrBridgeNotFound, name)
	}

	w, running := m.workers[name]
	if running {
		delete(m.workers, name)
	}
	m.mutex.Unlock()

	if !running {
		return false, nil
	}

	b.Stop()
	w.cancel()
	<-w.done

	m.logger.WithField("bridge", name).Info("Bridge stopped")
	return true, nil
}

// StartAll starts every registered bridge that is not already running.
func (m *Manager) StartAll() {
	for _, name := range m.bridgeNames() {
		if _, err := m.StartBridge(name); err != nil {
			m.logger.WithFields(logrus.Fields{
				"bridge": name,
				"error":  err,
			}).Error("Failed to start bridge")
		}
	}
}

// StopAll stops every running bridge.
func (m *Manager) StopAll() {
	for _, name := range m.bridgeNames() {
		if _, err := m.StopBridge(name); err != nil {
			m.logger.WithFields(logrus.Fields{
				"bridge": name,
				"error":  err,
			}).Error("Failed to stop bridge")
		}
	}
}

// BridgeStatus returns the named bridge's status with its Running flag.
func (m *Manager) BridgeStatus(name string) (Status, error) {
	m.mutex.Lock()
	b, exists := m.bridges[name]
	_, running := m.workers[name]
	m.mutex.Unlock()

	if !exists {
		return Status{}, errors.Wrap(commonerrors.ErrBridgeNotFound, name)
	}

	status := b.Status()
	status.Running = running
	return status, nil
}

// AllStatuses returns the status of every registered bridge, sorted by name.
func (m *Manager) AllStatuses() []Status {
	statuses := make([]Status, 0)
	for _, name := range m.bridgeNames() {
		status, err := m.BridgeStatus(name)
		if err != nil {
			continue
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// bridgeNames snapshots the registry keys in sorted order.
func (m *Manager) bridgeNames() []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	names := make([]string, 0, len(m.bridges))
	for name := range m.bridges {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
