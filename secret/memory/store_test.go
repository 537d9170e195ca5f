// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"perun.network/go-algowallet/secret/test"
)

func TestStore(t *testing.T) {
	t.Run("Generic SecretStore test", func(t *testing.T) {
		test.GenericSecretStoreTest(t, NewStore())
	})
}

func TestStore_Put_Empty(t *testing.T) {
	s := NewStore()
	assert.Error(t, s.Put("addr", ""))
	assert.Zero(t, s.Len())
}
