// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package tool

import (
	"context"
	"encoding/json"

	"perun.network/go-algowallet/wallet"
)

// Tool names.
const (
	AddAccount           = "wallet_add_account"
	RemoveAccount        = "wallet_remove_account"
	ListAccounts         = "wallet_list_accounts"
	SwitchAccount        = "wallet_switch_account"
	GetInfo              = "wallet_get_info"
	GetAssets            = "wallet_get_assets"
	SignTransaction      = "wallet_sign_transaction"
	SignTransactionGroup = "wallet_sign_transaction_group"
	SignData             = "wallet_sign_data"
	OptInAsset           = "wallet_optin_asset"
)

type networkArgs struct {
	Network string `json:"network,omitempty"`
}

type signTransactionArgs struct {
	Transaction wallet.TxnSpec `json:"transaction"`
	networkArgs
}

type signGroupArgs struct {
	Transactions []wallet.TxnSpec `json:"transactions"`
	networkArgs
}

type signDataArgs struct {
	Data string `json:"data"`
}

type optInArgs struct {
	AssetID uint64 `json:"assetId"`
	networkArgs
}

func (s *Server) register(m *wallet.Manager) {
	s.add(AddAccount,
		"Create a new account with a fresh key, or import one from a 25 word mnemonic, and store its secret in the keychain. The first account becomes active.",
		[]string{"nickname"},
		func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var args wallet.AddAccountParams
			if err := decode(raw, &args); err != nil {
				return nil, err
			}
			return result(m.AddAccount(ctx, args))
		})

	s.add(RemoveAccount,
		"Remove an account by nickname or index and delete its secret. If both are given, index wins.",
		nil,
		func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var args wallet.Selector
			if err := decode(raw, &args); err != nil {
				return nil, err
			}
			return result(m.RemoveAccount(ctx, args))
		})

	s.add(ListAccounts,
		"List all accounts with their limits, today's spending and the active account.",
		nil,
		func(ctx context.Context, _ json.RawMessage) (interface{}, error) {
			return result(m.ListAccounts(ctx))
		})

	s.add(SwitchAccount,
		"Make the account with the given nickname or index the active one. If both are given, index wins.",
		nil,
		func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var args wallet.Selector
			if err := decode(raw, &args); err != nil {
				return nil, err
			}
			return result(m.SwitchAccount(ctx, args))
		})

	s.add(GetInfo,
		"Show the active account with its limits and its on-chain balance and status.",
		nil,
		func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var args networkArgs
			if err := decode(raw, &args); err != nil {
				return nil, err
			}
			return result(m.GetInfo(ctx, args.Network))
		})

	s.add(GetAssets,
		"List the assets held by the active account.",
		nil,
		func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var args networkArgs
			if err := decode(raw, &args); err != nil {
				return nil, err
			}
			return result(m.GetAssets(ctx, args.Network))
		})

	s.add(SignTransaction,
		"Sign a payment or asset transfer with the active account after checking its spending limits. Returns the signed transaction, it is not submitted.",
		[]string{"transaction"},
		func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var args signTransactionArgs
			if err := decode(raw, &args); err != nil {
				return nil, err
			}
			return result(m.SignTransaction(ctx, args.Transaction, args.Network))
		})

	s.add(SignTransactionGroup,
		"Assign a group id to up to 16 transactions and sign all of them with the active account. The summed amount is checked against the spending limits; either all or none are signed.",
		[]string{"transactions"},
		func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var args signGroupArgs
			if err := decode(raw, &args); err != nil {
				return nil, err
			}
			return result(m.SignTransactionGroup(ctx, args.Transactions, args.Network))
		})

	s.add(SignData,
		"Sign arbitrary hex encoded bytes with the active account's ed25519 key. No prefix is added.",
		[]string{"data"},
		func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var args signDataArgs
			if err := decode(raw, &args); err != nil {
				return nil, err
			}
			return result(m.SignData(ctx, args.Data))
		})

	s.add(OptInAsset,
		"Opt the active account in to an asset by submitting a zero amount transfer to itself.",
		[]string{"assetId"},
		func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var args optInArgs
			if err := decode(raw, &args); err != nil {
				return nil, err
			}
			return result(m.OptInAsset(ctx, args.AssetID, args.Network))
		})
}

// Describe returns the descriptors of all wallet tools ordered by name.
func Describe() []Descriptor {
	return NewServer(nil).Tools()
}
