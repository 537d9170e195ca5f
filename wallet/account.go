// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package wallet

import "time"

// Account is a ledger row. Amounts are in microAlgos; an allowance of 0 means
// unlimited.
type Account struct {
	ID             int64     `db:"id"`
	Address        string    `db:"address"`
	PublicKey      string    `db:"public_key"`
	Nickname       string    `db:"nickname"`
	Allowance      uint64    `db:"allowance"`
	DailyAllowance uint64    `db:"daily_allowance"`
	DailySpent     uint64    `db:"daily_spent"`
	LastSpendDate  string    `db:"last_spend_date"`
	CreatedAt      time.Time `db:"created_at"`
}

// AccountView is the caller facing representation of an account.
type AccountView struct {
	Index          int       `json:"index"`
	Nickname       string    `json:"nickname"`
	Address        string    `json:"address"`
	PublicKey      string    `json:"publicKey"`
	Allowance      uint64    `json:"allowance"`
	DailyAllowance uint64    `json:"dailyAllowance"`
	DailySpent     uint64    `json:"dailySpent"`
	LastSpendDate  string    `json:"lastSpendDate,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	Active         bool      `json:"active"`
}

func (acc *Account) view(index int, active bool, day string) AccountView {
	return AccountView{
		Index:          index,
		Nickname:       acc.Nickname,
		Address:        acc.Address,
		PublicKey:      acc.PublicKey,
		Allowance:      acc.Allowance,
		DailyAllowance: acc.DailyAllowance,
		DailySpent:     EffectiveDailySpent(acc, day),
		LastSpendDate:  acc.LastSpendDate,
		CreatedAt:      acc.CreatedAt,
		Active:         active,
	}
}
