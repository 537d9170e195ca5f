// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package keyring

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"perun.network/go-algowallet/secret/test"
	"perun.network/go-algowallet/wallet"
)

func TestStore(t *testing.T) {
	keyring.MockInit()

	t.Run("Generic SecretStore test", func(t *testing.T) {
		test.GenericSecretStoreTest(t, NewStore(""))
	})
}

func TestStore_Available(t *testing.T) {
	keyring.MockInit()
	assert.True(t, NewStore("").Available())
}

func TestNewStore_Service(t *testing.T) {
	assert.Equal(t, DefaultService, NewStore("").Service())
	assert.Equal(t, "custom", NewStore("custom").Service())
}

func TestStore_ServiceNamespace(t *testing.T) {
	keyring.MockInit()
	a, b := NewStore("service-a"), NewStore("service-b")
	addr, secret := test.NewSecret(t)

	require.NoError(t, a.Put(addr, secret))
	_, err := b.Get(addr)
	assert.True(t, errors.Is(err, wallet.ErrSecretNotFound))
	got, err := a.Get(addr)
	require.NoError(t, err)
	assert.Equal(t, secret, got)
}

func TestStore_Error(t *testing.T) {
	boom := errors.New("keychain locked")
	keyring.MockInitWithError(boom)
	defer keyring.MockInit()

	s := NewStore("")
	assert.False(t, s.Available())
	addr, secret := test.NewSecret(t)
	err := s.Put(addr, secret)
	assert.True(t, errors.Is(err, boom))
	_, err = s.Get(addr)
	assert.True(t, errors.Is(err, boom))
	assert.False(t, errors.Is(err, wallet.ErrSecretNotFound))
}
