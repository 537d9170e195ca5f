// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package keyring stores account secrets in the operating system's keychain:
// the macOS Keychain, the Secret Service on Linux or the Windows Credential
// Manager.
package keyring // import "perun.network/go-algowallet/secret/keyring"

import (
	"github.com/pkg/errors"
	"github.com/zalando/go-keyring"

	"perun.network/go-algowallet/wallet"
)

// DefaultService is the keychain service all secrets are filed under.
const DefaultService = "algorand-mcp-wallet"

// Store is a wallet.SecretStore backed by the OS keychain. Entries are keyed
// by service and account address.
type Store struct {
	service string
}

var _ wallet.SecretStore = (*Store)(nil)

// NewStore returns a store filing secrets under service. An empty service
// selects DefaultService.
func NewStore(service string) *Store {
	if service == "" {
		service = DefaultService
	}
	return &Store{service: service}
}

// Service returns the keychain service name.
func (s *Store) Service() string { return s.service }

// Put implements wallet.SecretStore.
func (s *Store) Put(address, secret string) error {
	if secret == "" {
		return errors.New("empty secret")
	}
	return errors.Wrap(keyring.Set(s.service, address, secret), "writing keychain")
}

// Get implements wallet.SecretStore.
func (s *Store) Get(address string) (string, error) {
	secret, err := keyring.Get(s.service, address)
	if err != nil {
		return "", wrap(err, address, "reading keychain")
	}
	if secret == "" {
		return "", errors.WithMessage(wallet.ErrSecretNotFound, address)
	}
	return secret, nil
}

// Delete implements wallet.SecretStore.
func (s *Store) Delete(address string) error {
	if err := keyring.Delete(s.service, address); err != nil {
		return wrap(err, address, "deleting from keychain")
	}
	return nil
}

// availabilityKey is looked up by Available. It is never written.
const availabilityKey = "algowallet-availability-check"

// Available reports whether the OS keychain can be used. Lookups of a missing
// entry succeed with keyring.ErrNotFound on a working keychain.
func (s *Store) Available() bool {
	_, err := keyring.Get(s.service, availabilityKey)
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

func wrap(err error, address, msg string) error {
	if errors.Is(err, keyring.ErrNotFound) {
		return errors.WithMessage(wallet.ErrSecretNotFound, address)
	}
	return errors.Wrap(err, msg)
}
