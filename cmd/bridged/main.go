package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tracepost/anchor-relay/admin"
	"github.com/tracepost/anchor-relay/anchorstore"
	"github.com/tracepost/anchor-relay/bridge"
	"github.com/tracepost/anchor-relay/common/types"
	"github.com/tracepost/anchor-relay/config"
	"github.com/tracepost/anchor-relay/ledgers"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithError(err).Fatal("Invalid log level")
	}
	logger.SetLevel(level)

	var recorder bridge.AnchorRecorder
	var directory admin.AnchorDirectory
	if cfg.DatabaseURL != "" {
		store, err := anchorstore.NewAnchorStore(cfg.DatabaseURL)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create anchor store")
		}
		recorder = store
		directory = store
	} else {
		logger.Warn("No database configured, anchor results will not be recorded")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := ledgers.NewRegistry(ledgers.NewLedgerFactory(), logger)
	for _, ledgerConfig := range cfg.LedgerConfigs() {
		lc := ledgerConfig
		if err := registry.Add(ctx, &lc); err != nil {
			logger.WithFields(logrus.Fields{
				"ledger": lc.Name,
				"error":  err,
			}).Fatal("Failed to initialize ledger")
		}
	}
	defer registry.CloseAll()

	manager := bridge.NewManager(logger)
	if err := buildConfiguredBridges(cfg, registry, manager, recorder, logger); err != nil {
		logger.WithError(err).Fatal("Failed to build configured bridges")
	}

	handlers := admin.NewHandlers(manager, registry, recorder, directory, logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: handlers.Router(),
	}

	go func() {
		logger.WithField("addr", server.Addr).Info("Admin server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Admin server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.WithField("signal", sig.String()).Info("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Admin server shutdown failed")
	}

	manager.StopAll()
	logger.Info("Shutdown complete")
}

// buildConfiguredBridges registers and optionally starts the bridges named
// in the configuration file.
func buildConfiguredBridges(
	cfg *config.Config,
	registry ledgers.Registry,
	manager *bridge.Manager,
	recorder bridge.AnchorRecorder,
	logger *logrus.Logger,
) error {
	for _, entry := range cfg.Bridges {
		source, err := registry.Get(types.ChainName(entry.Source))
		if err != nil {
			return err
		}
		target, err := registry.Get(types.ChainName(entry.Target))
		if err != nil {
			return err
		}

		bridgeConfig := bridge.Config{
			SourceName:         types.ChainName(entry.Source),
			TargetName:         types.ChainName(entry.Target),
			Source:             source,
			Target:             target,
			EventTypes:         entry.EventTypes,
			PollInterval:       entry.PollInterval(),
			ConfirmationBlocks: entry.ConfirmationBlocks,
			Lookback:           entry.Lookback,
			Recorder:           recorder,
		}

		var built []*bridge.ChainBridge
		if entry.TwoWay {
			forward, backward, err := bridge.NewTwoWayPair(bridgeConfig, logger)
			if err != nil {
				return err
			}
			built = append(built, forward, backward)
		} else {
			b, err := bridge.NewBridge(bridgeConfig, logger)
			if err != nil {
				return err
			}
			built = append(built, b)
		}

		for _, b := range built {
			if err := manager.AddBridge(b); err != nil {
				return err
			}
			if entry.AutoStart {
				if _, err := manager.StartBridge(b.Name()); err != nil {
					return err
				}
			}
		}
	}

	return nil
}
