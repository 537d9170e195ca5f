// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package wallet

import (
	"context"
	"encoding/base64"

	"github.com/algorand/go-algorand-sdk/v2/transaction"
	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/pkg/errors"
)

// Transaction types accepted in a TxnSpec.
const (
	TxnPayment       = "pay"
	TxnAssetTransfer = "axfer"
)

// MinFee is the minimum fee in microAlgos per transaction. Lower flat fees
// are raised to it when the transaction is built.
const MinFee uint64 = 1000

// TxnSpec is the caller supplied description of a transaction to sign.
// Validity and genesis fields left empty are taken from the network's
// suggested parameters.
type TxnSpec struct {
	Type             string  `json:"type,omitempty"`
	From             string  `json:"from,omitempty"`
	To               string  `json:"to"`
	Amount           uint64  `json:"amount"`
	AssetID          uint64  `json:"assetId,omitempty"`
	Fee              *uint64 `json:"fee,omitempty"`
	FirstValid       uint64  `json:"firstValid,omitempty"`
	LastValid        uint64  `json:"lastValid,omitempty"`
	GenesisID        string  `json:"genesisId,omitempty"`
	GenesisHash      string  `json:"genesisHash,omitempty"`
	Note             string  `json:"note,omitempty"`
	CloseRemainderTo string  `json:"closeRemainderTo,omitempty"`
}

// needsParams reports whether spec lacks fields only the network can supply.
func (spec *TxnSpec) needsParams() bool {
	return spec.FirstValid == 0 || spec.LastValid == 0 || spec.GenesisHash == ""
}

// cost returns what spec takes from the sender's balance as known before
// signing: the amount plus an explicit flat fee, at least MinFee. ok is
// false on overflow.
func (spec *TxnSpec) cost() (cost uint64, ok bool) {
	cost = spec.Amount
	if spec.Fee != nil {
		fee := *spec.Fee
		if fee < MinFee {
			fee = MinFee
		}
		if cost+fee < cost {
			return 0, false
		}
		cost += fee
	}
	return cost, true
}

// validate checks the spec without building it.
func (spec *TxnSpec) validate() error {
	switch spec.Type {
	case "", TxnPayment:
	case TxnAssetTransfer:
		if spec.AssetID == 0 {
			return invalidParams("asset transfer requires assetId")
		}
	default:
		return invalidParams("unsupported transaction type %q", spec.Type)
	}
	if spec.To == "" {
		return invalidParams("transaction requires a receiver (to)")
	}
	for field, addr := range map[string]string{"to": spec.To, "from": spec.From, "closeRemainderTo": spec.CloseRemainderTo} {
		if addr == "" {
			continue
		}
		if _, err := types.DecodeAddress(addr); err != nil {
			return invalidParams("invalid %s address %q", field, addr)
		}
	}
	if spec.FirstValid != 0 && spec.LastValid != 0 && spec.LastValid < spec.FirstValid {
		return invalidParams("lastValid %d is before firstValid %d", spec.LastValid, spec.FirstValid)
	}
	return nil
}

// suggestedParams merges network parameters with the fields given in spec.
// sp is only consulted when spec.needsParams().
func (spec *TxnSpec) suggestedParams(sp types.SuggestedParams) (types.SuggestedParams, error) {
	if spec.FirstValid != 0 {
		sp.FirstRoundValid = types.Round(spec.FirstValid)
	}
	if spec.LastValid != 0 {
		sp.LastRoundValid = types.Round(spec.LastValid)
	}
	if spec.GenesisID != "" {
		sp.GenesisID = spec.GenesisID
	}
	if spec.GenesisHash != "" {
		gh, err := base64.StdEncoding.DecodeString(spec.GenesisHash)
		if err != nil || len(gh) != len(types.Digest{}) {
			return sp, invalidParams("genesisHash must be a base64 encoded 32 byte hash")
		}
		sp.GenesisHash = gh
	}
	if spec.Fee != nil {
		sp.Fee = types.MicroAlgos(*spec.Fee)
		sp.FlatFee = true
	}
	return sp, nil
}

// build materializes spec into a transaction sent from signer.
func (spec *TxnSpec) build(signer string, sp types.SuggestedParams) (types.Transaction, error) {
	params, err := spec.suggestedParams(sp)
	if err != nil {
		return types.Transaction{}, err
	}
	from := spec.From
	if from == "" {
		from = signer
	}
	var note []byte
	if spec.Note != "" {
		note = []byte(spec.Note)
	}

	var txn types.Transaction
	switch spec.Type {
	case TxnAssetTransfer:
		txn, err = transaction.MakeAssetTransferTxn(from, spec.To, spec.Amount, note, params, spec.CloseRemainderTo, spec.AssetID)
	default:
		txn, err = transaction.MakePaymentTxn(from, spec.To, spec.Amount, note, spec.CloseRemainderTo, params)
	}
	if err != nil {
		return types.Transaction{}, &Error{Kind: KindInvalidParams, Message: "building transaction", cause: err}
	}
	return txn, nil
}

// buildAll validates and materializes specs. Suggested parameters are fetched
// at most once and only if a spec needs them.
func buildAll(ctx context.Context, specs []TxnSpec, signer string, client func() (ChainClient, error)) ([]types.Transaction, error) {
	for i := range specs {
		if err := specs[i].validate(); err != nil {
			return nil, err
		}
	}

	var sp types.SuggestedParams
	var fetched bool
	txns := make([]types.Transaction, 0, len(specs))
	for i := range specs {
		if specs[i].needsParams() && !fetched {
			c, err := client()
			if err != nil {
				return nil, err
			}
			if sp, err = c.SuggestedParams(ctx); err != nil {
				return nil, internalError(errors.WithMessage(err, c.Network()), "fetching suggested params")
			}
			fetched = true
		}
		txn, err := specs[i].build(signer, sp)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	return txns, nil
}
