// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package wallet

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	day1 = "2024-03-01"
	day2 = "2024-03-02"
)

func TestCheckSpend(t *testing.T) {
	tests := []struct {
		name   string
		acc    Account
		amount uint64
		ok     bool
	}{
		{"zero amount ignores limits", Account{Allowance: 1, DailyAllowance: 1, DailySpent: 1, LastSpendDate: day1}, 0, true},
		{"unlimited", Account{}, math.MaxUint64, true},
		{"at allowance", Account{Allowance: 1000}, 1000, true},
		{"above allowance", Account{Allowance: 1000}, 1001, false},
		{"first spend of day", Account{DailyAllowance: 5000}, 3000, true},
		{"daily accumulation", Account{DailyAllowance: 5000, DailySpent: 3000, LastSpendDate: day1}, 3000, false},
		{"exactly daily limit", Account{DailyAllowance: 5000, DailySpent: 3000, LastSpendDate: day1}, 2000, true},
		{"stale counter", Account{DailyAllowance: 5000, DailySpent: 3000, LastSpendDate: "2024-02-29"}, 3000, true},
		{"above daily limit alone", Account{DailyAllowance: 5000}, 5001, false},
		{"overflow guard", Account{DailyAllowance: math.MaxUint64, DailySpent: 2, LastSpendDate: day1}, math.MaxUint64 - 1, false},
		{"both limits pass", Account{Allowance: 100, DailyAllowance: 300, DailySpent: 200, LastSpendDate: day1}, 100, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.acc.Nickname = "alice"
			err := CheckSpend(&tt.acc, tt.amount, day1)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, KindLimitExceeded, KindOf(err))
			assert.True(t, IsInvalidRequest(err))
		})
	}
}

func TestCheckSpend_Message(t *testing.T) {
	err := CheckSpend(&Account{Nickname: "bob", Allowance: 1000}, 1001, day1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1001")
	assert.Contains(t, err.Error(), "1000")
	assert.Contains(t, err.Error(), `"bob"`)

	err = CheckSpend(&Account{Nickname: "carol", DailyAllowance: 5000, DailySpent: 3000, LastSpendDate: day1}, 3000, day1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "5000")
	assert.Contains(t, err.Error(), `"carol"`)
}

func TestEffectiveDailySpent(t *testing.T) {
	acc := &Account{DailySpent: 42, LastSpendDate: day1}
	assert.Equal(t, uint64(42), EffectiveDailySpent(acc, day1))
	assert.Equal(t, uint64(0), EffectiveDailySpent(acc, day2))
	assert.Equal(t, uint64(42), acc.DailySpent, "reading must not reset the counter")
}

func TestToday(t *testing.T) {
	now := time.Date(2024, 3, 1, 23, 59, 0, 0, time.Local)
	assert.Equal(t, day1, Today(now))
	assert.Equal(t, day2, Today(now.Add(2*time.Minute)))
}
