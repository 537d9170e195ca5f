// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package memory provides a wallet.SecretStore that keeps secrets in process
// memory only.
package memory // import "perun.network/go-algowallet/secret/memory"

import (
	"sync"

	"github.com/pkg/errors"

	"perun.network/go-algowallet/wallet"
)

// Store is an in-memory secret store.
type Store struct {
	mu      sync.RWMutex
	secrets map[string]string
}

var _ wallet.SecretStore = (*Store)(nil)

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{secrets: make(map[string]string)}
}

// Put implements wallet.SecretStore.
func (s *Store) Put(address, secret string) error {
	if secret == "" {
		return errors.New("empty secret")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secrets[address] = secret
	return nil
}

// Get implements wallet.SecretStore.
func (s *Store) Get(address string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	secret, ok := s.secrets[address]
	if !ok {
		return "", errors.WithMessage(wallet.ErrSecretNotFound, address)
	}
	return secret, nil
}

// Delete implements wallet.SecretStore.
func (s *Store) Delete(address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.secrets[address]; !ok {
		return errors.WithMessage(wallet.ErrSecretNotFound, address)
	}
	delete(s.secrets, address)
	return nil
}

// Len returns the number of stored secrets.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.secrets)
}
