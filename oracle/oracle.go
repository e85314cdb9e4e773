// Package oracle provides the generic poll-and-process primitive the relay
// is built on. An Oracle repeatedly pulls data from a Source on a fixed
// interval and hands it back to the Source for processing; a cycle that
// fails is logged and the loop carries on.
package oracle

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Source produces the data an Oracle polls and consumes the fetch result.
// FetchData and ProcessData are never called concurrently by the same Oracle.
type Source[F, R any] interface {
	// FetchData pulls the next batch of external data.
	FetchData(ctx context.Context) (F, error)

	// ProcessData handles one fetched batch and returns the cycle outcome.
	ProcessData(ctx context.Context, data F) (R, error)
}

// Status is a point-in-time snapshot of an oracle loop.
type Status struct {
	Name     string        `json:"name"`
	Running  bool          `json:"running"`
	LastRun  time.Time     `json:"last_run"`
	Interval time.Duration `json:"interval"`
}

// Oracle drives a Source on a fixed polling interval.
type Oracle[F, R any] struct {
	name     string
	interval time.Duration
	source   Source[F, R]
	logger   *logrus.Logger

	stateMutex sync.RWMutex
	running    bool
	lastRun    time.Time
	stopChan   chan struct{}
}

// New creates an oracle around the given source.
//
// Parameters:
// - name: the oracle identity used in logs and status reports.
// - interval: the polling cadence.
// - source: the data source to drive.
// - logger: the logger for logging purposes.
//
// Returns:
// - *Oracle[F, R]: the new oracle instance, not yet running.
func New[F, R any](name string, interval time.Duration, source Source[F, R], logger *logrus.Logger) *Oracle[F, R] {
	return &Oracle[F, R]{
		name:     name,
		interval: interval,
		source:   source,
		logger:   logger,
	}
}

// RunOnce executes a single fetch-and-process cycle.
//
// Parameters:
// - ctx: the context for managing the cycle.
//
// Returns:
// - R: the cycle outcome from the source.
// - error: an error if either phase fails.
func (o *Oracle[F, R]) RunOnce(ctx context.Context) (R, error) {
	var zero R

	data, err := o.source.FetchData(ctx)
	if err != nil {
		return zero, errors.Wrap(err, "fetch failed")
	}

	result, err := o.source.ProcessData(ctx, data)
	if err != nil {
		return zero, errors.Wrap(err, "process failed")
	}

	o.stateMutex.Lock()
	o.lastRun = time.Now().UTC()
	o.stateMutex.Unlock()

	return result, nil
}

// Run executes the polling loop until the context is cancelled or Stop is
// called. A failed cycle is logged and the loop continues on the normal
// cadence.
//
// Parameters:
// - ctx: the context for managing the loop.
//
// Returns:
// - error: an error if the oracle is already running.
func (o *Oracle[F, R]) Run(ctx context.Context) error {
	o.stateMutex.Lock()
	if o.running {
		o.stateMutex.Unlock()
		return errors.Errorf("oracle %s is already running", o.name)
	}
	o.running = true
	o.stopChan = make(chan struct{})
	stopChan := o.stopChan
	o.stateMutex.Unlock()

	defer func() {
		o.stateMutex.Lock()
		o.running = false
		o.stateMutex.Unlock()
	}()

	o.logger.WithFields(logrus.Fields{
		"oracle":   o.name,
		"interval": o.interval,
	}).Info("Oracle loop started")

	for {
		if _, err := o.RunOnce(ctx); err != nil {
			o.logger.WithFields(logrus.Fields{
				"oracle": o.name,
				"error":  err,
			}).Error("Oracle cycle failed")
		}

		select {
		case <-ctx.Done():
			o.logger.WithField("oracle", o.name).Info("Oracle loop stopped due to context cancellation")
			return nil
		case <-stopChan:
			o.logger.WithField("oracle", o.name).Info("Oracle loop stopped")
			return nil
		case <-time.After(o.interval):
		}
	}
}

// Stop signals the running loop to exit. Safe to call when the oracle is not
// running.
func (o *Oracle[F, R]) Stop() {
	o.stateMutex.Lock()
	defer o.stateMutex.Unlock()

	if !o.running || o.stopChan == nil {
		return
	}

	select {
	case <-o.stopChan:
	default:
		close(o.stopChan)
	}
}

// Status returns a snapshot of the oracle state.
func (o *Oracle[F, R]) Status() Status {
	o.stateMutex.RLock()
	defer o.stateMutex.RUnlock()

	return Status{
		Name:     o.name,
		Running:  o.running,
		LastRun:  o.lastRun,
		Interval: o.interval,
	}
}
