// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package config loads the wallet configuration from defaults, an optional
// config file and ALGOWALLET_ prefixed environment variables, in increasing
// order of precedence.
package config // import "perun.network/go-algowallet/config"

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"perun.network/go-algowallet/backend/algorand"
	"perun.network/go-algowallet/secret/keyring"
	"perun.network/go-algowallet/wallet"
)

// EnvPrefix prefixes all environment variables read by Load.
const EnvPrefix = "ALGOWALLET"

// Secret store backends.
const (
	BackendAuto    = "auto"
	BackendKeyring = "keyring"
	BackendFile    = "file"
	BackendMemory  = "memory"
)

// Backends lists the valid values of Secrets.Backend.
var Backends = []string{BackendAuto, BackendKeyring, BackendFile, BackendMemory}

type (
	// Config is the complete wallet configuration.
	Config struct {
		DataDir        string                       `mapstructure:"datadir"`
		Ledger         string                       `mapstructure:"ledger"`
		LogLevel       string                       `mapstructure:"loglevel"`
		DefaultNetwork string                       `mapstructure:"defaultnetwork"`
		Secrets        Secrets                      `mapstructure:"secrets"`
		Metrics        Metrics                      `mapstructure:"metrics"`
		Networks       map[string]algorand.Endpoint `mapstructure:"networks"`
	}

	// Secrets configures where account secrets are kept. The file backend
	// encrypts them with Passphrase, which is normally only set through
	// ALGOWALLET_SECRETS_PASSPHRASE.
	Secrets struct {
		Backend    string `mapstructure:"backend"`
		Service    string `mapstructure:"service"`
		Path       string `mapstructure:"path"`
		Passphrase string `mapstructure:"passphrase"`
	}

	// Metrics configures the Prometheus endpoint. It is disabled when Addr
	// is empty.
	Metrics struct {
		Addr string `mapstructure:"addr"`
	}
)

// DefaultDataDir returns ~/.algorand-mcp, or a relative directory if the
// home directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".algorand-mcp"
	}
	return filepath.Join(home, ".algorand-mcp")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("datadir", DefaultDataDir())
	v.SetDefault("ledger", "wallet.db")
	v.SetDefault("loglevel", logrus.InfoLevel.String())
	v.SetDefault("defaultnetwork", wallet.DefaultNetwork)
	v.SetDefault("secrets.backend", BackendKeyring)
	v.SetDefault("secrets.service", keyring.DefaultService)
	v.SetDefault("secrets.path", "secrets")
	v.SetDefault("secrets.passphrase", "")
	v.SetDefault("metrics.addr", "")
	// Per key defaults so that single endpoints can be overridden from the
	// environment.
	for name, ep := range algorand.DefaultEndpoints() {
		v.SetDefault("networks."+name+".url", ep.URL)
		v.SetDefault("networks."+name+".token", ep.Token)
	}
}

// Load reads the configuration. path names an optional config file in any
// format viper understands. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config file %s", path)
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	return cfg, cfg.Validate()
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("datadir must not be empty")
	}
	if !lo.Contains(Backends, c.Secrets.Backend) {
		return errors.Errorf("unknown secrets backend %q, want one of %s",
			c.Secrets.Backend, strings.Join(Backends, ", "))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "loglevel")
	}
	if _, ok := c.Networks[strings.ToLower(c.DefaultNetwork)]; !ok {
		return errors.Errorf("default network %q is not configured", c.DefaultNetwork)
	}
	for name, ep := range c.Networks {
		if ep.URL == "" {
			return errors.Errorf("network %s: url must not be empty", name)
		}
	}
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// LedgerPath returns the path of the account database. Relative paths are
// resolved against DataDir.
func (c *Config) LedgerPath() string { return c.resolve(c.Ledger) }

// SecretsPath returns the directory of the encrypted file secret store.
func (c *Config) SecretsPath() string { return c.resolve(c.Secrets.Path) }

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}
