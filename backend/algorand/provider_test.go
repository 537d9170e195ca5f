// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package algorand

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perun.network/go-algowallet/wallet"
)

func TestDefaultEndpoints(t *testing.T) {
	eps := DefaultEndpoints()
	assert.Contains(t, eps, "mainnet")
	assert.Contains(t, eps, "testnet")
	assert.Equal(t, LocalnetToken, eps["localnet"].Token)
	assert.Len(t, LocalnetToken, 64)
}

func TestProvider_Client(t *testing.T) {
	p := NewProvider(DefaultEndpoints())
	assert.ElementsMatch(t, []string{"mainnet", "testnet", "localnet"}, p.Networks())

	c, err := p.Client("TestNet")
	require.NoError(t, err)
	assert.Equal(t, "testnet", c.Network())

	again, err := p.Client("testnet")
	require.NoError(t, err)
	assert.Same(t, c, again, "clients are reused")

	_, err = p.Client("devnet")
	assert.True(t, errors.Is(err, wallet.ErrUnknownNetwork))
}

func TestClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, LocalnetToken, r.Header.Get("X-Algo-API-Token"))
		http.Error(w, `{"message":"node is catching up"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := NewClient("localnet", Endpoint{URL: srv.URL, Token: LocalnetToken})
	require.NoError(t, err)

	_, err = c.SuggestedParams(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "localnet")
	_, err = c.SendRawTransaction(context.Background(), []byte{1})
	assert.Error(t, err)
}
