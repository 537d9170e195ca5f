// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Command algowallet runs the local Algorand wallet. It serves the wallet
// tools over stdin and stdout and can call single tools from the shell.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"perun.network/go-algowallet/config"
	plogrus "perun.network/go-algowallet/log/logrus"
)

type flags struct {
	configPath string
	logLevel   string
	secrets    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := new(flags)
	root := &cobra.Command{
		Use:          "algowallet",
		Short:        "Local Algorand wallet with per-account spending limits",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&f.configPath, "config", "c", "", "path to a config file")
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "log level, overrides the config")
	root.PersistentFlags().StringVar(&f.secrets, "secrets", "", "secrets backend: auto, keyring, file or memory")

	root.AddCommand(newServeCmd(f), newCallCmd(f), newToolsCmd())
	return root
}

// load reads the configuration, applies the command line overrides and sets
// up logging on stderr.
func (f *flags) load() (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if f.secrets != "" {
		cfg.Secrets.Backend = f.secrets
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// logrus writes to stderr, stdout carries responses.
	plogrus.Set(cfg.Level(), &logrus.TextFormatter{FullTimestamp: true})
	return cfg, nil
}
