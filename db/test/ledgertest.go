// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package test contains the generic conformance tests every wallet.Ledger
// implementation has to pass.
package test // import "perun.network/go-algowallet/db/test"

import (
	"context"
	"testing"
	"time"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perun.network/go-algowallet/common"
	pkgtest "perun.network/go-algowallet/pkg/test"
	"perun.network/go-algowallet/wallet"
)

// NewAccount returns a ledger row for a freshly generated key.
func NewAccount(nickname string, allowance, dailyAllowance uint64) *wallet.Account {
	kp := crypto.GenerateAccount()
	return &wallet.Account{
		Address:        kp.Address.String(),
		PublicKey:      common.EncodeHex(kp.PublicKey),
		Nickname:       nickname,
		Allowance:      allowance,
		DailyAllowance: dailyAllowance,
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
	}
}

// GenericLedgerTest runs all ledger conformance tests. newLedger must return
// a fresh, empty ledger on every call.
func GenericLedgerTest(t *testing.T, newLedger func(t *testing.T) wallet.Ledger) {
	t.Run("Insert", func(t *testing.T) { testInsert(t, newLedger(t)) })
	t.Run("Duplicate", func(t *testing.T) { testDuplicate(t, newLedger(t)) })
	t.Run("ActiveIndex", func(t *testing.T) { testActiveIndex(t, newLedger(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, newLedger(t)) })
	t.Run("RecordSpend", func(t *testing.T) { testRecordSpend(t, newLedger(t)) })
	t.Run("RecordSpendOverflow", func(t *testing.T) { testRecordSpendOverflow(t, newLedger(t)) })
	t.Run("ConcurrentRecordSpend", func(t *testing.T) { testConcurrentRecordSpend(t, newLedger(t)) })
}

func testInsert(t *testing.T, l wallet.Ledger) {
	ctx := context.Background()
	accs, err := l.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, accs)

	a, b := NewAccount("alice", 10, 100), NewAccount("bob", 0, 0)
	idA, err := l.Insert(ctx, a)
	require.NoError(t, err)
	idB, err := l.Insert(ctx, b)
	require.NoError(t, err)
	assert.Less(t, idA, idB, "ids must increase")

	accs, err = l.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, accs, 2)
	assert.Equal(t, idA, accs[0].ID)
	assert.Equal(t, a.Address, accs[0].Address)
	assert.Equal(t, a.PublicKey, accs[0].PublicKey)
	assert.Equal(t, "alice", accs[0].Nickname)
	assert.EqualValues(t, 10, accs[0].Allowance)
	assert.EqualValues(t, 100, accs[0].DailyAllowance)
	assert.Zero(t, accs[0].DailySpent)
	assert.Empty(t, accs[0].LastSpendDate)
	assert.True(t, a.CreatedAt.Equal(accs[0].CreatedAt), "createdAt %v != %v", a.CreatedAt, accs[0].CreatedAt)
	assert.Equal(t, "bob", accs[1].Nickname)
}

func testDuplicate(t *testing.T, l wallet.Ledger) {
	ctx := context.Background()
	a := NewAccount("alice", 0, 0)
	_, err := l.Insert(ctx, a)
	require.NoError(t, err)

	sameNick := NewAccount("alice", 0, 0)
	_, err = l.Insert(ctx, sameNick)
	assert.True(t, errors.Is(err, wallet.ErrDuplicateKey), "got %v", err)

	sameAddr := NewAccount("other", 0, 0)
	sameAddr.Address = a.Address
	_, err = l.Insert(ctx, sameAddr)
	assert.True(t, errors.Is(err, wallet.ErrDuplicateKey), "got %v", err)

	accs, err := l.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, accs, 1)
}

func testActiveIndex(t *testing.T, l wallet.Ledger) {
	ctx := context.Background()
	idx, err := l.ActiveIndex(ctx)
	require.NoError(t, err)
	assert.Zero(t, idx, "unset index must read as 0")

	for _, i := range []int{3, 0, 7} {
		require.NoError(t, l.SetActiveIndex(ctx, i))
		idx, err = l.ActiveIndex(ctx)
		require.NoError(t, err)
		assert.Equal(t, i, idx)
	}
}

func testDelete(t *testing.T, l wallet.Ledger) {
	ctx := context.Background()
	a, b, c := NewAccount("a", 0, 0), NewAccount("b", 0, 0), NewAccount("c", 0, 0)
	for _, acc := range []*wallet.Account{a, b, c} {
		_, err := l.Insert(ctx, acc)
		require.NoError(t, err)
	}

	require.NoError(t, l.Delete(ctx, b.Address))
	accs, err := l.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, accs, 2)
	assert.Equal(t, "a", accs[0].Nickname)
	assert.Equal(t, "c", accs[1].Nickname)

	err = l.Delete(ctx, b.Address)
	assert.True(t, errors.Is(err, wallet.ErrAccountNotFound), "got %v", err)

	// A deleted nickname may be reused.
	_, err = l.Insert(ctx, NewAccount("b", 0, 0))
	assert.NoError(t, err)
}

func testRecordSpend(t *testing.T, l wallet.Ledger) {
	ctx := context.Background()
	a := NewAccount("a", 0, 0)
	_, err := l.Insert(ctx, a)
	require.NoError(t, err)

	spent := func() (uint64, string) {
		accs, err := l.ListAll(ctx)
		require.NoError(t, err)
		return accs[0].DailySpent, accs[0].LastSpendDate
	}

	require.NoError(t, l.RecordSpend(ctx, a.Address, 5, "2024-03-01"))
	require.NoError(t, l.RecordSpend(ctx, a.Address, 7, "2024-03-01"))
	amount, day := spent()
	assert.EqualValues(t, 12, amount)
	assert.Equal(t, "2024-03-01", day)

	require.NoError(t, l.RecordSpend(ctx, a.Address, 0, "2024-03-02"))
	amount, day = spent()
	assert.EqualValues(t, 12, amount, "zero spend must not touch the counter")
	assert.Equal(t, "2024-03-01", day)

	require.NoError(t, l.RecordSpend(ctx, a.Address, 3, "2024-03-02"))
	amount, day = spent()
	assert.EqualValues(t, 3, amount, "a new day restarts the counter")
	assert.Equal(t, "2024-03-02", day)

	err = l.RecordSpend(ctx, NewAccount("x", 0, 0).Address, 1, "2024-03-02")
	assert.True(t, errors.Is(err, wallet.ErrAccountNotFound), "got %v", err)
}

func testRecordSpendOverflow(t *testing.T, l wallet.Ledger) {
	ctx := context.Background()
	a := NewAccount("a", wallet.MaxAmount, wallet.MaxAmount)
	_, err := l.Insert(ctx, a)
	require.NoError(t, err)

	spent := func() uint64 {
		accs, err := l.ListAll(ctx)
		require.NoError(t, err, "the ledger must stay readable")
		return accs[0].DailySpent
	}

	err = l.RecordSpend(ctx, a.Address, wallet.MaxAmount+1, "2024-03-01")
	assert.True(t, errors.Is(err, wallet.ErrCounterOverflow), "got %v", err)
	assert.Zero(t, spent())

	require.NoError(t, l.RecordSpend(ctx, a.Address, wallet.MaxAmount-1, "2024-03-01"))
	require.NoError(t, l.RecordSpend(ctx, a.Address, 1, "2024-03-01"))
	assert.Equal(t, wallet.MaxAmount, spent())

	err = l.RecordSpend(ctx, a.Address, 1, "2024-03-01")
	assert.True(t, errors.Is(err, wallet.ErrCounterOverflow), "got %v", err)
	assert.Equal(t, wallet.MaxAmount, spent(), "a rejected spend leaves the counter unchanged")

	require.NoError(t, l.RecordSpend(ctx, a.Address, wallet.MaxAmount, "2024-03-02"), "a new day restarts the counter")
	assert.Equal(t, wallet.MaxAmount, spent())

	err = l.RecordSpend(ctx, NewAccount("x", 0, 0).Address, wallet.MaxAmount+1, "2024-03-02")
	assert.Error(t, err)
}

func testConcurrentRecordSpend(t *testing.T, l wallet.Ledger) {
	const (
		goroutines = 8
		spends     = 10
		day        = "2024-03-01"
	)
	ctx := context.Background()
	a := NewAccount("a", 0, 0)
	_, err := l.Insert(ctx, a)
	require.NoError(t, err)

	pkgtest.Parallel(t, goroutines, func(t require.TestingT, g int) {
		for i := 0; i < spends; i++ {
			require.NoError(t, l.RecordSpend(ctx, a.Address, uint64(g+1), day))
		}
	})

	accs, err := l.ListAll(ctx)
	require.NoError(t, err)
	// sum over g of (g+1)*spends
	assert.EqualValues(t, spends*goroutines*(goroutines+1)/2, accs[0].DailySpent)
}
