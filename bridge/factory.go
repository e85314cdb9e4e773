package bridge

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	commonerrors "github.com/tracepost/anchor-relay/common/errors"
	"github.com/tracepost/anchor-relay/common/types"
	"github.com/tracepost/anchor-relay/oracle"
)

// defaultPollInterval is used when a bridge configuration leaves the cadence
// unset.
const defaultPollInterval = 30 * time.Second

// Config describes one unidirectional bridge.
//
// Fields:
// - SourceName, TargetName: ledger identities; the bridge name derives from them.
// - Source: the source ledger; it must also implement types.EventSource.
// - Target: the target ledger receiving relayed events.
// - EventTypes: optional allow-list; empty relays every event type.
// - PollInterval: the loop cadence; defaults to defaultPollInterval.
// - ConfirmationBlocks: confirmation depth gating fetched events.
// - Lookback: initial scan window when no cursor exists; defaults to 1000.
// - Recorder: optional anchor-status collaborator.
type Config struct {
	SourceName         types.ChainName
	TargetName         types.ChainName
	Source             types.Ledger
	Target             types.Ledger
	EventTypes         []string
	PollInterval       time.Duration
	ConfirmationBlocks uint64
	Lookback           uint64
	Recorder           AnchorRecorder
}

// NewBridge builds a unidirectional bridge from the configuration.
//
// Parameters:
// - config: the bridge configuration.
// - logger: the logger for logging purposes.
//
// Returns:
// - *ChainBridge: the constructed bridge, not yet running.
// - error: an error if the source ledger exposes no event log.
func NewBridge(config Config, logger *logrus.Logger) (*ChainBridge, error) {
	if config.Source == nil || config.Target == nil {
		return nil, errors.Wrap(commonerrors.ErrInvalidConfig, "bridge requires both a source and a target ledger")
	}

	sourceEvents, ok := config.Source.(types.EventSource)
	if !ok {
		return nil, errors.Wrapf(commonerrors.ErrInvalidConfig,
			"source ledger %s does not expose an event log", config.SourceName)
	}

	interval := config.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	lookback := config.Lookback
	if lookback == 0 {
		lookback = defaultLookback
	}

	var allowList map[string]struct{}
	if len(config.EventTypes) > 0 {
		allowList = make(map[string]struct{}, len(config.EventTypes))
		for _, t := range config.EventTypes {
			allowList[t] = struct{}{}
		}
	}

	b := &ChainBridge{
		name:               BridgeName(config.SourceName, config.TargetName),
		sourceName:         config.SourceName,
		targetName:         config.TargetName,
		source:             config.Source,
		sourceEvents:       sourceEvents,
		target:             config.Target,
		eventTypes:         allowList,
		confirmationBlocks: config.ConfirmationBlocks,
		lookback:           lookback,
		processed:          newProcessedSet(),
		recorder:           config.Recorder,
		logger:             logger,
	}
	b.loop = oracle.New[[]types.ChainEvent, []EventResult](b.name, interval, b, logger)

	return b, nil
}

// NewTwoWayPair builds two independent bridges relaying in opposite
// directions. The pair shares no mutable state; both ledgers must expose an
// event log.
//
// Parameters:
// - config: the forward-direction configuration; the reverse one is derived.
// - logger: the logger for logging purposes.
//
// Returns:
// - *ChainBridge: the forward bridge.
// - *ChainBridge: the reverse bridge.
// - error: an error if either direction cannot be built.
func NewTwoWayPair(config Config, logger *logrus.Logger) (*ChainBridge, *ChainBridge, error) {
	forward, err := NewBridge(config, logger)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to build forward bridge")
	}

	reverse := config
	reverse.SourceName, reverse.TargetName = config.TargetName, config.SourceName
	reverse.Source, reverse.Target = config.Target, config.Source

	backward, err := NewBridge(reverse, logger)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to build reverse bridge")
	}

	return forward, backward, nil
}

// BridgeName derives the registry key for a source and target pair.
func BridgeName(source, target types.ChainName) string {
	return fmt.Sprintf("%s_to_%s", source, target)
}
