// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package memorydb provides an in-memory wallet.Ledger for tests and the
// ephemeral wallet mode. Nothing survives the process.
package memorydb // import "perun.network/go-algowallet/db/memorydb"

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	pkgsync "perun.network/go-algowallet/pkg/sync"
	"perun.network/go-algowallet/wallet"
)

// Ledger is an in-memory account ledger. It is safe for concurrent use.
type Ledger struct {
	mu       sync.RWMutex
	accounts []wallet.Account
	nextID   int64
	active   int
	closer   pkgsync.Closer
}

var _ wallet.Ledger = (*Ledger)(nil)

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{nextID: 1}
}

var errClosed = errors.New("ledger closed")

// Insert implements wallet.Ledger.
func (l *Ledger) Insert(ctx context.Context, acc *wallet.Account) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closer.IsClosed() {
		return 0, errClosed
	}
	if lo.ContainsBy(l.accounts, func(a wallet.Account) bool {
		return a.Address == acc.Address || a.Nickname == acc.Nickname
	}) {
		return 0, errors.WithMessagef(wallet.ErrDuplicateKey, "inserting %q", acc.Nickname)
	}
	row := *acc
	row.ID = l.nextID
	l.nextID++
	l.accounts = append(l.accounts, row)
	return row.ID, nil
}

// ListAll implements wallet.Ledger. Accounts are kept in id order.
func (l *Ledger) ListAll(context.Context) ([]wallet.Account, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closer.IsClosed() {
		return nil, errClosed
	}
	return append(make([]wallet.Account, 0, len(l.accounts)), l.accounts...), nil
}

// ActiveIndex implements wallet.Ledger.
func (l *Ledger) ActiveIndex(context.Context) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closer.IsClosed() {
		return 0, errClosed
	}
	return l.active, nil
}

// SetActiveIndex implements wallet.Ledger.
func (l *Ledger) SetActiveIndex(_ context.Context, idx int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closer.IsClosed() {
		return errClosed
	}
	l.active = idx
	return nil
}

// Delete implements wallet.Ledger.
func (l *Ledger) Delete(_ context.Context, address string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closer.IsClosed() {
		return errClosed
	}
	_, i, ok := lo.FindIndexOf(l.accounts, func(a wallet.Account) bool { return a.Address == address })
	if !ok {
		return errors.WithMessage(wallet.ErrAccountNotFound, address)
	}
	l.accounts = append(l.accounts[:i], l.accounts[i+1:]...)
	return nil
}

// RecordSpend implements wallet.Ledger.
func (l *Ledger) RecordSpend(_ context.Context, address string, amount uint64, day string) error {
	if amount == 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closer.IsClosed() {
		return errClosed
	}
	_, i, ok := lo.FindIndexOf(l.accounts, func(a wallet.Account) bool { return a.Address == address })
	if !ok {
		return errors.WithMessage(wallet.ErrAccountNotFound, address)
	}
	acc := &l.accounts[i]
	var spent uint64
	if acc.LastSpendDate == day {
		spent = acc.DailySpent
	}
	if amount > wallet.MaxAmount || spent > wallet.MaxAmount-amount {
		return errors.WithMessagef(wallet.ErrCounterOverflow, "adding %d to %d", amount, spent)
	}
	acc.DailySpent = spent + amount
	acc.LastSpendDate = day
	return nil
}

// Close implements wallet.Ledger. Every later call fails.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closer.IsClosed() {
		return errors.New("ledger already closed")
	}
	l.closer.Close()
	return nil
}
