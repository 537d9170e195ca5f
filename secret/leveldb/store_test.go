// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package leveldb

import (
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb/storage"

	"perun.network/go-algowallet/secret/test"
)

func init() {
	// Cheap key derivation for tests.
	scryptN = 1 << 10
}

func TestStore(t *testing.T) {
	s, err := OpenStorage(storage.NewMemStorage(), []byte("passphrase"))
	require.NoError(t, err)
	defer s.Close()

	t.Run("Generic SecretStore test", func(t *testing.T) {
		test.GenericSecretStoreTest(t, s)
	})
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets")
	addr, secret := test.NewSecret(t)

	s, err := Open(path, []byte("correct horse"))
	require.NoError(t, err)
	require.NoError(t, s.Put(addr, secret))
	require.NoError(t, s.Close())

	_, err = Open(path, []byte("battery staple"))
	assert.True(t, errors.Is(err, ErrWrongPassphrase), "got %v", err)

	s, err = Open(path, []byte("correct horse"))
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(addr)
	require.NoError(t, err)
	assert.Equal(t, secret, got)
}

func TestStore_SecretsAreSealed(t *testing.T) {
	s, err := OpenStorage(storage.NewMemStorage(), []byte("passphrase"))
	require.NoError(t, err)
	defer s.Close()
	addr, secret := test.NewSecret(t)
	require.NoError(t, s.Put(addr, secret))

	raw, err := s.db.Get(secretKey(addr), nil)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), secret)
	assert.Len(t, raw, nonceLen+len(secret)+16)
}

func TestStore_WrongKeyOnGet(t *testing.T) {
	s, err := OpenStorage(storage.NewMemStorage(), []byte("passphrase"))
	require.NoError(t, err)
	defer s.Close()
	addr, secret := test.NewSecret(t)
	require.NoError(t, s.Put(addr, secret))

	s.key[0] ^= 0xff
	_, err = s.Get(addr)
	assert.True(t, errors.Is(err, ErrWrongPassphrase), "got %v", err)
}

func TestOpenStorage_EmptyPassphrase(t *testing.T) {
	_, err := OpenStorage(storage.NewMemStorage(), nil)
	assert.Error(t, err)
}
