// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package sim provides an in-process simulated chain for tests and the
// ephemeral wallet mode.
package sim // import "perun.network/go-algowallet/backend/sim"

import (
	"context"
	"crypto/sha256"
	"sync"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/common/models"
	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/encoding/msgpack"
	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/pkg/errors"

	"perun.network/go-algowallet/wallet"
)

// DefaultMinFee is the per transaction fee of a simulated chain.
const DefaultMinFee = 1000

// Chain is a simulated network. It serves configurable account state and
// suggested parameters and collects submitted transactions. All methods are
// safe for concurrent use.
type Chain struct {
	network string

	mu        sync.Mutex
	params    types.SuggestedParams
	accounts  map[string]models.Account
	submitted []types.SignedTxn
	err       error
}

var _ wallet.ChainClient = (*Chain)(nil)

// NewChain creates a simulated network called network at round 1000.
func NewChain(network string) *Chain {
	gh := sha256.Sum256([]byte(network))
	return &Chain{
		network: network,
		params: types.SuggestedParams{
			GenesisID:       network + "-v1.0",
			GenesisHash:     gh[:],
			FirstRoundValid: 1000,
			LastRoundValid:  2000,
			MinFee:          DefaultMinFee,
		},
		accounts: make(map[string]models.Account),
	}
}

// Network returns the name of the simulated network.
func (c *Chain) Network() string { return c.network }

// SetParams replaces the suggested parameters.
func (c *Chain) SetParams(sp types.SuggestedParams) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params = sp
}

// SetAccount sets the on-chain state of an account.
func (c *Chain) SetAccount(acc models.Account) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accounts[acc.Address] = acc
}

// Fail makes every following request fail with err. A nil err heals the
// chain.
func (c *Chain) Fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// Submitted returns the transactions submitted so far.
func (c *Chain) Submitted() []types.SignedTxn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]types.SignedTxn(nil), c.submitted...)
}

// SuggestedParams returns the configured suggested parameters.
func (c *Chain) SuggestedParams(ctx context.Context) (types.SuggestedParams, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check(ctx); err != nil {
		return types.SuggestedParams{}, err
	}
	sp := c.params
	sp.GenesisHash = append([]byte(nil), c.params.GenesisHash...)
	return sp, nil
}

// AccountInformation returns the configured state of address. Unknown
// addresses are reported as unfunded accounts.
func (c *Chain) AccountInformation(ctx context.Context, address string) (models.Account, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check(ctx); err != nil {
		return models.Account{}, err
	}
	if _, err := types.DecodeAddress(address); err != nil {
		return models.Account{}, errors.Wrap(err, "decoding address")
	}
	acc, ok := c.accounts[address]
	if !ok {
		return models.Account{Address: address, Status: "Offline", Round: uint64(c.params.FirstRoundValid)}, nil
	}
	return acc, nil
}

// SendRawTransaction decodes and stores a signed transaction and returns its
// id. Unsigned transactions are rejected.
func (c *Chain) SendRawTransaction(ctx context.Context, stx []byte) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check(ctx); err != nil {
		return "", err
	}
	var signed types.SignedTxn
	if err := msgpack.Decode(stx, &signed); err != nil {
		return "", errors.Wrap(err, "decoding signed transaction")
	}
	if signed.Sig == (types.Signature{}) {
		return "", errors.New("transaction is not signed")
	}
	c.submitted = append(c.submitted, signed)
	return crypto.GetTxID(signed.Txn), nil
}

func (c *Chain) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.err
}
