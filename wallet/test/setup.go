// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package test provides wallet setups for tests of the wallet and of the
// layers built on it.
package test // import "perun.network/go-algowallet/wallet/test"

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"perun.network/go-algowallet/backend/sim"
	"perun.network/go-algowallet/db/memorydb"
	"perun.network/go-algowallet/db/sqlite"
	"perun.network/go-algowallet/secret/memory"
	"perun.network/go-algowallet/wallet"
)

// Networks are the simulated networks of a Setup.
var Networks = []string{"mainnet", "testnet", "localnet"}

// Clock is a settable clock.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock standing at now.
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

// Now returns the current time of the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Setup holds a Manager and direct access to its collaborators.
type Setup struct {
	Manager *wallet.Manager
	Ledger  wallet.Ledger
	Secrets *memory.Store
	Chains  *sim.Provider
	Clock   *Clock
}

// NewSetup creates a manager on a memory ledger, a memory secret store and
// simulated networks. The clock starts at noon local time on 2024-03-01.
// opts are applied after the setup's own options.
func NewSetup(opts ...wallet.Option) *Setup {
	return NewSetupWithLedger(memorydb.NewLedger(), opts...)
}

// NewSetupWithLedger is NewSetup on the given ledger.
func NewSetupWithLedger(ledger wallet.Ledger, opts ...wallet.Option) *Setup {
	s := &Setup{
		Ledger:  ledger,
		Secrets: memory.NewStore(),
		Chains:  sim.NewProvider(Networks...),
		Clock:   NewClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local)),
	}
	s.Manager = wallet.NewManager(s.Ledger, s.Secrets, s.Chains,
		append([]wallet.Option{wallet.WithClock(s.Clock.Now)}, opts...)...)
	return s
}

// Ledgers are the ledger engines the manager is tested on. Each constructor
// returns a fresh ledger that is closed when the test ends.
var Ledgers = []struct {
	Name string
	New  func(t *testing.T) wallet.Ledger
}{
	{"memorydb", func(*testing.T) wallet.Ledger { return memorydb.NewLedger() }},
	{"sqlite", func(t *testing.T) wallet.Ledger {
		l, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "wallet.db"))
		require.NoError(t, err)
		t.Cleanup(func() { l.Close() })
		return l
	}},
}

// ForEachLedger runs fn as a subtest on a fresh Setup for every engine in
// Ledgers.
func ForEachLedger(t *testing.T, fn func(t *testing.T, s *Setup), opts ...wallet.Option) {
	for _, engine := range Ledgers {
		engine := engine
		t.Run(engine.Name, func(t *testing.T) {
			fn(t, NewSetupWithLedger(engine.New(t), opts...))
		})
	}
}

// Chain returns the simulated default network.
func (s *Setup) Chain() *sim.Chain {
	return s.Chains.Chain(wallet.DefaultNetwork)
}
