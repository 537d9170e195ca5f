// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"perun.network/go-algowallet/backend/algorand"
	"perun.network/go-algowallet/config"
	"perun.network/go-algowallet/db/sqlite"
	"perun.network/go-algowallet/log"
	"perun.network/go-algowallet/secret/keyring"
	"perun.network/go-algowallet/secret/leveldb"
	"perun.network/go-algowallet/secret/memory"
	"perun.network/go-algowallet/wallet"
)

// closer releases the resources of an opened wallet.
type closer func()

// openWallet assembles a wallet manager from cfg.
func openWallet(ctx context.Context, cfg *config.Config) (*wallet.Manager, closer, error) {
	ledger, err := sqlite.Open(ctx, cfg.LedgerPath())
	if err != nil {
		return nil, nil, errors.WithMessage(err, "opening ledger")
	}
	secrets, closeSecrets, err := openSecrets(cfg)
	if err != nil {
		ledger.Close()
		return nil, nil, errors.WithMessage(err, "opening secret store")
	}

	m := wallet.NewManager(ledger, secrets, algorand.NewProvider(cfg.Networks),
		wallet.WithDefaultNetwork(cfg.DefaultNetwork),
		wallet.WithLogger(log.WithField("component", "wallet")),
	)
	return m, func() {
		closeSecrets()
		if err := ledger.Close(); err != nil {
			log.WithError(err).Warn("Closing ledger")
		}
	}, nil
}

func openSecrets(cfg *config.Config) (wallet.SecretStore, closer, error) {
	noop := func() {}
	switch cfg.Secrets.Backend {
	case config.BackendKeyring:
		return keyring.NewStore(cfg.Secrets.Service), noop, nil
	case config.BackendMemory:
		log.Warn("Using the in-memory secret store, secrets are lost on exit")
		return memory.NewStore(), noop, nil
	case config.BackendFile:
		return openFileSecrets(cfg)
	case config.BackendAuto:
		if ks := keyring.NewStore(cfg.Secrets.Service); ks.Available() {
			return ks, noop, nil
		}
		log.Info("OS keychain unavailable, falling back to the encrypted file store")
		return openFileSecrets(cfg)
	}
	return nil, nil, errors.Errorf("unknown secrets backend %q", cfg.Secrets.Backend)
}

func openFileSecrets(cfg *config.Config) (wallet.SecretStore, closer, error) {
	pass := []byte(cfg.Secrets.Passphrase)
	if len(pass) == 0 {
		var err error
		if pass, err = readPassphrase(); err != nil {
			return nil, nil, err
		}
	}
	s, err := leveldb.Open(cfg.SecretsPath(), pass)
	if err != nil {
		return nil, nil, err
	}
	return s, func() {
		if err := s.Close(); err != nil {
			log.WithError(err).Warn("Closing secret store")
		}
	}, nil
}

// readPassphrase prompts on the controlling terminal. Stdin is not used
// since it carries tool requests.
func readPassphrase() ([]byte, error) {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return nil, errors.New("no terminal for the passphrase prompt, set " +
			config.EnvPrefix + "_SECRETS_PASSPHRASE")
	}
	defer tty.Close()

	fmt.Fprint(tty, "Secret store passphrase: ")
	pass, err := term.ReadPassword(int(tty.Fd()))
	fmt.Fprintln(tty)
	return pass, errors.Wrap(err, "reading passphrase")
}
