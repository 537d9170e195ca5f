// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package wallet

import "time"

// DayLayout is the layout of Account.LastSpendDate.
const DayLayout = "2006-01-02"

// Today returns the local calendar day of now. Daily counters reset at local
// midnight, not after a sliding 24 hour window.
func Today(now time.Time) string {
	return now.Local().Format(DayLayout)
}

// EffectiveDailySpent returns the amount spent by acc on day. A counter that
// belongs to another day counts as zero.
func EffectiveDailySpent(acc *Account, day string) uint64 {
	if acc.LastSpendDate != day {
		return 0
	}
	return acc.DailySpent
}

// CheckSpend validates a spend of amount from acc on day against the
// per-transaction allowance and the daily allowance. A zero amount always
// passes.
func CheckSpend(acc *Account, amount uint64, day string) error {
	if amount == 0 {
		return nil
	}
	if acc.Allowance > 0 && amount > acc.Allowance {
		return limitExceeded("amount %d exceeds the per-transaction allowance %d of account %q",
			amount, acc.Allowance, acc.Nickname)
	}
	if acc.DailyAllowance > 0 {
		spent := EffectiveDailySpent(acc, day)
		// spent+amount could wrap around for huge amounts.
		if amount > acc.DailyAllowance || spent > acc.DailyAllowance-amount {
			return limitExceeded("amount %d exceeds the daily allowance %d of account %q (already spent %d today)",
				amount, acc.DailyAllowance, acc.Nickname, spent)
		}
	}
	return nil
}
