// Package config loads the relay configuration from a YAML file with
// environment overrides for secrets, so credentials never need to live in
// the file itself.
package config

import (
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	commonerrors "github.com/tracepost/anchor-relay/common/errors"
	"github.com/tracepost/anchor-relay/common/types"
)

// Ledger is one ledger entry in the configuration file.
type Ledger struct {
	Name                    string `yaml:"name"`
	Type                    string `yaml:"type"`
	NodeURL                 string `yaml:"node_url"`
	ChainID                 uint64 `yaml:"chain_id"`
	PrivateKey              string `yaml:"private_key"`
	ShipmentRegistryAddress string `yaml:"shipment_registry_address"`
	EventLogAddress         string `yaml:"event_log_address"`
	Mnemonic                string `yaml:"mnemonic"`
	SS58Format              uint16 `yaml:"ss58_format"`
	WaitForInclusion        bool   `yaml:"wait_for_inclusion"`
	APIKey                  string `yaml:"api_key"`
	APISecret               string `yaml:"api_secret"`
	OrganizationID          string `yaml:"organization_id"`
}

// Bridge is one bridge entry in the configuration file.
type Bridge struct {
	Source              string   `yaml:"source"`
	Target              string   `yaml:"target"`
	TwoWay              bool     `yaml:"two_way"`
	EventTypes          []string `yaml:"event_types"`
	PollIntervalSeconds int      `yaml:"poll_interval_seconds"`
	ConfirmationBlocks  uint64   `yaml:"confirmation_blocks"`
	Lookback            uint64   `yaml:"lookback"`
	AutoStart           bool     `yaml:"auto_start"`
}

// Config is the full relay configuration.
type Config struct {
	LogLevel    string   `yaml:"log_level"`
	HTTPPort    int      `yaml:"http_port"`
	DatabaseURL string   `yaml:"database_url"`
	Ledgers     []Ledger `yaml:"ledgers"`
	Bridges     []Bridge `yaml:"bridges"`
}

// secrets are the environment overrides applied after the file is parsed.
// Every variable is optional; a set variable wins over the file value.
type secrets struct {
	DatabaseURL           string `envconfig:"DATABASE_URL"`
	EthereumPrivateKey    string `envconfig:"ETHEREUM_PRIVATE_KEY"`
	SubstrateMnemonic     string `envconfig:"SUBSTRATE_MNEMONIC"`
	VietnamchainAPIKey    string `envconfig:"VIETNAMCHAIN_API_KEY"`
	VietnamchainAPISecret string `envconfig:"VIETNAMCHAIN_API_SECRET"`
	VietnamchainOrgID     string `envconfig:"VIETNAMCHAIN_ORG_ID"`
}

// Load reads the configuration file and applies environment overrides.
//
// Parameters:
// - path: the YAML configuration file path.
//
// Returns:
// - *Config: the loaded configuration.
// - error: an error if the file is unreadable or invalid.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	var env secrets
	if err := envconfig.Process("anchor_relay", &env); err != nil {
		return nil, errors.Wrap(err, "failed to process environment overrides")
	}
	cfg.applySecrets(env)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.HTTPPort == 0 {
		cfg.HTTPPort = 8080
	}

	return &cfg, nil
}

// applySecrets overwrites file values with set environment variables.
func (c *Config) applySecrets(env secrets) {
	if env.DatabaseURL != "" {
		c.DatabaseURL = env.DatabaseURL
	}

	for i := range c.Ledgers {
		switch types.ParseChainType(c.Ledgers[i].Type) {
		case types.EVM:
			if env.EthereumPrivateKey != "" {
				c.Ledgers[i].PrivateKey = env.EthereumPrivateKey
			}
		case types.SUBSTRATE:
			if env.SubstrateMnemonic != "" {
				c.Ledgers[i].Mnemonic = env.SubstrateMnemonic
			}
		case types.RESTLEDGER:
			if env.VietnamchainAPIKey != "" {
				c.Ledgers[i].APIKey = env.VietnamchainAPIKey
			}
			if env.VietnamchainAPISecret != "" {
				c.Ledgers[i].APISecret = env.VietnamchainAPISecret
			}
			if env.VietnamchainOrgID != "" {
				c.Ledgers[i].OrganizationID = env.VietnamchainOrgID
			}
		}
	}
}

// validate rejects configurations the process cannot start with.
func (c *Config) validate() error {
	seen := make(map[string]struct{}, len(c.Ledgers))
	for _, ledger := range c.Ledgers {
		if ledger.Name == "" {
			return errors.Wrap(commonerrors.ErrInvalidConfig, "ledger entry without a name")
		}
		if types.ParseChainType(ledger.Type) == types.UNKNOWN {
			return errors.Wrapf(commonerrors.ErrInvalidConfig, "ledger %s has unknown type %q", ledger.Name, ledger.Type)
		}
		if ledger.NodeURL == "" {
			return errors.Wrapf(commonerrors.ErrInvalidConfig, "ledger %s has no node_url", ledger.Name)
		}
		if _, dup := seen[ledger.Name]; dup {
			return errors.Wrapf(commonerrors.ErrInvalidConfig, "duplicate ledger name %s", ledger.Name)
		}
		seen[ledger.Name] = struct{}{}
	}

	for _, b := range c.Bridges {
		if _, ok := seen[b.Source]; !ok {
			return errors.Wrapf(commonerrors.ErrInvalidConfig, "bridge references unknown source ledger %s", b.Source)
		}
		if _, ok := seen[b.Target]; !ok {
			return errors.Wrapf(commonerrors.ErrInvalidConfig, "bridge references unknown target ledger %s", b.Target)
		}
		if b.Source == b.Target {
			return errors.Wrapf(commonerrors.ErrInvalidConfig, "bridge source and target are both %s", b.Source)
		}
	}

	return nil
}

// LedgerConfigs converts the file entries into the runtime ledger
// configurations.
func (c *Config) LedgerConfigs() []types.LedgerConfig {
	configs := make([]types.LedgerConfig, 0, len(c.Ledgers))
	for _, ledger := range c.Ledgers {
		configs = append(configs, types.LedgerConfig{
			Name:                    types.ChainName(ledger.Name),
			ChainType:               types.ParseChainType(ledger.Type),
			NodeURL:                 ledger.NodeURL,
			ChainID:                 ledger.ChainID,
			PrivateKey:              ledger.PrivateKey,
			ShipmentRegistryAddress: ledger.ShipmentRegistryAddress,
			EventLogAddress:         ledger.EventLogAddress,
			Mnemonic:                ledger.Mnemonic,
			SS58Format:              ledger.SS58Format,
			WaitForInclusion:        ledger.WaitForInclusion,
			APIKey:                  ledger.APIKey,
			APISecret:               ledger.APISecret,
			OrganizationID:          ledger.OrganizationID,
		})
	}
	return configs
}

// PollInterval returns the bridge cadence as a duration, zero when unset.
func (b Bridge) PollInterval() time.Duration {
	return time.Duration(b.PollIntervalSeconds) * time.Second
}
