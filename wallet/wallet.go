// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package wallet implements a local multi-account Algorand signing wallet.
//
// The Manager composes three collaborators: a SecretStore holding each
// account's mnemonic, a Ledger holding account metadata and spending counters,
// and a ChainProvider giving access to the network. Storage engines and chain
// backends live in the db/, secret/ and backend/ packages.
package wallet // import "perun.network/go-algowallet/wallet"

import (
	"context"
	"math"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/common/models"
	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/pkg/errors"
)

var (
	// ErrDuplicateKey is returned by Ledger.Insert on an address or nickname
	// conflict.
	ErrDuplicateKey = errors.New("duplicate account key")
	// ErrAccountNotFound is returned by the ledger for an unknown address.
	ErrAccountNotFound = errors.New("account not found")
	// ErrSecretNotFound is returned by a SecretStore for a missing entry.
	ErrSecretNotFound = errors.New("secret not found")
	// ErrUnknownNetwork is returned by a ChainProvider for an unconfigured
	// network name.
	ErrUnknownNetwork = errors.New("unknown network")
	// ErrCounterOverflow is returned by Ledger.RecordSpend if the daily
	// counter would exceed MaxAmount.
	ErrCounterOverflow = errors.New("daily spend counter overflow")
)

// MaxAmount is the largest amount, allowance or spend counter a Ledger can
// store. Ledgers keep these values in signed 64 bit columns.
const MaxAmount uint64 = math.MaxInt64

// SecretStore stores account secrets keyed by account address.
type SecretStore interface {
	// Put stores or replaces the secret of address.
	Put(address, secret string) error
	// Get returns the secret of address or ErrSecretNotFound.
	Get(address string) (string, error)
	// Delete removes the secret of address. A missing entry yields
	// ErrSecretNotFound.
	Delete(address string) error
}

// Ledger is the durable account table plus the active account pointer.
// Every mutating call is durable when it returns.
type Ledger interface {
	// Insert atomically checks address and nickname uniqueness and inserts
	// the account. It returns the assigned id or ErrDuplicateKey.
	Insert(ctx context.Context, acc *Account) (int64, error)
	// ListAll returns all accounts ordered by id.
	ListAll(ctx context.Context) ([]Account, error)
	// ActiveIndex returns the stored active account index, 0 if unset.
	ActiveIndex(ctx context.Context) (int, error)
	// SetActiveIndex stores the active account index without bounds checks.
	SetActiveIndex(ctx context.Context, idx int) error
	// Delete removes the account with the given address.
	Delete(ctx context.Context, address string) error
	// RecordSpend adds amount to the daily counter of address for the given
	// calendar day in one atomic read-modify-write. If the stored day differs,
	// the counter restarts at amount. An amount of 0 is a no-op. A counter
	// that would exceed MaxAmount is left unchanged and ErrCounterOverflow is
	// returned.
	RecordSpend(ctx context.Context, address string, amount uint64, day string) error
	// Close releases the ledger.
	Close() error
}

// ChainClient is the part of an algod node the wallet needs.
type ChainClient interface {
	// Network returns the network name the client is connected to.
	Network() string
	SuggestedParams(ctx context.Context) (types.SuggestedParams, error)
	AccountInformation(ctx context.Context, address string) (models.Account, error)
	// SendRawTransaction submits signed transaction bytes and returns the
	// transaction id.
	SendRawTransaction(ctx context.Context, stx []byte) (string, error)
}

// ChainProvider resolves network names to clients.
type ChainProvider interface {
	// Client returns the client of network or ErrUnknownNetwork.
	Client(network string) (ChainClient, error)
}
