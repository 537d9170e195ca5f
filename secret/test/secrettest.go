// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package test contains the generic conformance tests every
// wallet.SecretStore implementation has to pass.
package test // import "perun.network/go-algowallet/secret/test"

import (
	"testing"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/mnemonic"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perun.network/go-algowallet/wallet"
)

// NewSecret returns the address and mnemonic of a freshly generated account.
func NewSecret(t require.TestingT) (address, secret string) {
	kp := crypto.GenerateAccount()
	m, err := mnemonic.FromPrivateKey(kp.PrivateKey)
	require.NoError(t, err)
	return kp.Address.String(), m
}

// GenericSecretStoreTest runs all secret store conformance tests on s. The
// store may be shared with other tests, the suite only touches fresh keys.
func GenericSecretStoreTest(t *testing.T, s wallet.SecretStore) {
	t.Run("PutGet", func(t *testing.T) {
		addr, secret := NewSecret(t)
		require.NoError(t, s.Put(addr, secret))
		got, err := s.Get(addr)
		require.NoError(t, err)
		assert.Equal(t, secret, got)
	})

	t.Run("Overwrite", func(t *testing.T) {
		addr, first := NewSecret(t)
		_, second := NewSecret(t)
		require.NoError(t, s.Put(addr, first))
		require.NoError(t, s.Put(addr, second))
		got, err := s.Get(addr)
		require.NoError(t, err)
		assert.Equal(t, second, got)
	})

	t.Run("Missing", func(t *testing.T) {
		addr, _ := NewSecret(t)
		got, err := s.Get(addr)
		assert.True(t, errors.Is(err, wallet.ErrSecretNotFound), "got %v", err)
		assert.Empty(t, got)
		err = s.Delete(addr)
		assert.True(t, errors.Is(err, wallet.ErrSecretNotFound), "got %v", err)
	})

	t.Run("Delete", func(t *testing.T) {
		addr, secret := NewSecret(t)
		other, otherSecret := NewSecret(t)
		require.NoError(t, s.Put(addr, secret))
		require.NoError(t, s.Put(other, otherSecret))

		require.NoError(t, s.Delete(addr))
		_, err := s.Get(addr)
		assert.True(t, errors.Is(err, wallet.ErrSecretNotFound), "got %v", err)

		got, err := s.Get(other)
		require.NoError(t, err)
		assert.Equal(t, otherSecret, got, "deleting one secret must not touch another")
	})
}
