// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package wallet

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/mnemonic"
	"github.com/algorand/go-algorand-sdk/v2/transaction"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"perun.network/go-algowallet/common"
	"perun.network/go-algowallet/log"
)

// MaxGroupSize is the largest atomic group the chain accepts.
const MaxGroupSize = 16

// SignedTxn is a signed transaction in wire encoding.
type SignedTxn struct {
	TxID string `json:"txID"`
	// Blob is the base64 encoded msgpack of the signed transaction.
	Blob string `json:"blob"`
}

// SignTransactionResult is returned by SignTransaction.
type SignTransactionResult struct {
	SignedTxn
	Signer   string `json:"signer"`
	Nickname string `json:"nickname"`
}

// SignGroupResult is returned by SignTransactionGroup.
type SignGroupResult struct {
	GroupSize    int         `json:"groupSize"`
	Signer       string      `json:"signer"`
	Nickname     string      `json:"nickname"`
	Transactions []SignedTxn `json:"transactions"`
}

// SignDataResult is returned by SignData.
type SignDataResult struct {
	Signature  string `json:"signature"`
	PublicKey  string `json:"publicKey"`
	Address    string `json:"address"`
	DataLength int    `json:"dataLength"`
}

// OptInResult is returned by OptInAsset.
type OptInResult struct {
	TxID      string `json:"txID"`
	AssetID   uint64 `json:"assetId"`
	Address   string `json:"address"`
	Nickname  string `json:"nickname"`
	Network   string `json:"network"`
	Submitted bool   `json:"submitted"`
}

// privateKey loads the signing key of acc from the secret store. The key must
// not outlive the calling operation.
func (m *Manager) privateKey(acc *Account) (ed25519.PrivateKey, error) {
	secret, err := m.secrets.Get(acc.Address)
	if errors.Is(err, ErrSecretNotFound) {
		return nil, invalidRequest("no secret stored for account %q", acc.Nickname)
	} else if err != nil {
		return nil, internalError(err, "reading secret of account %q", acc.Nickname)
	}
	sk, err := mnemonic.ToPrivateKey(secret)
	if err != nil {
		return nil, internalError(err, "decoding secret of account %q", acc.Nickname)
	}
	return sk, nil
}

// SignTransaction signs spec with the active account after checking its
// spending limits, then records the spend. The spend is the amount plus an
// explicit flat fee. Accounts with a limit may not close out.
//
// If recording the spend fails the signed transaction is still returned,
// together with an InternalError. The caller then holds a valid signature
// whose amount is missing from the daily counter.
func (m *Manager) SignTransaction(ctx context.Context, spec TxnSpec, network string) (*SignTransactionResult, error) {
	res, err := m.signGroup(ctx, []TxnSpec{spec}, network)
	if res == nil {
		return nil, err
	}
	return &SignTransactionResult{
		SignedTxn: res.Transactions[0],
		Signer:    res.Signer,
		Nickname:  res.Nickname,
	}, err
}

// SignTransactionGroup signs all specs as one atomic group. The summed amount
// is checked against the spending limits before anything is signed, so either
// every transaction is signed or none is. Spend recording behaves as in
// SignTransaction.
func (m *Manager) SignTransactionGroup(ctx context.Context, specs []TxnSpec, network string) (*SignGroupResult, error) {
	if len(specs) == 0 {
		return nil, invalidParams("transactions must not be empty")
	}
	if len(specs) > MaxGroupSize {
		return nil, invalidParams("group of %d transactions exceeds the maximum of %d", len(specs), MaxGroupSize)
	}
	return m.signGroup(ctx, specs, network)
}

func (m *Manager) signGroup(ctx context.Context, specs []TxnSpec, network string) (*SignGroupResult, error) {
	if err := m.lock(ctx); err != nil {
		return nil, err
	}
	defer m.mutex.Unlock()

	acc, _, err := m.active(ctx)
	if err != nil {
		return nil, err
	}

	total, err := groupCost(acc, specs)
	if err != nil {
		return nil, err
	}
	day := m.today()
	if err := CheckSpend(acc, total, day); err != nil {
		m.log.WithFields(log.Fields{"nickname": acc.Nickname, "amount": total}).Info("Spend rejected by policy")
		return nil, err
	}
	if spent := EffectiveDailySpent(acc, day); spent > MaxAmount-total {
		return nil, invalidParams("amount %d would overflow the daily counter of account %q (already spent %d today)",
			total, acc.Nickname, spent)
	}

	txns, err := buildAll(ctx, specs, acc.Address, func() (ChainClient, error) { return m.client(network) })
	if err != nil {
		return nil, err
	}
	if len(txns) > 1 {
		gid, err := crypto.ComputeGroupID(txns)
		if err != nil {
			return nil, internalError(err, "computing group id")
		}
		for i := range txns {
			txns[i].Group = gid
		}
	}

	sk, err := m.privateKey(acc)
	if err != nil {
		return nil, err
	}
	signed := make([]SignedTxn, 0, len(txns))
	for i := range txns {
		txID, stx, err := crypto.SignTransaction(sk, txns[i])
		if err != nil {
			return nil, internalError(err, "signing transaction %d", i)
		}
		signed = append(signed, SignedTxn{TxID: txID, Blob: base64.StdEncoding.EncodeToString(stx)})
	}

	res := &SignGroupResult{
		GroupSize:    len(signed),
		Signer:       acc.Address,
		Nickname:     acc.Nickname,
		Transactions: signed,
	}
	logger := m.log.WithFields(log.Fields{
		"nickname": acc.Nickname,
		"amount":   total,
		"txIDs":    lo.Map(signed, func(s SignedTxn, _ int) string { return s.TxID }),
	})
	if err := m.ledger.RecordSpend(ctx, acc.Address, total, day); err != nil {
		logger.WithError(err).Error("Signed but could not record spend")
		return res, internalError(err, "recording spend of %d for account %q", total, acc.Nickname)
	}
	logger.Info("Signed transactions")
	return res, nil
}

// groupCost sums the cost of specs. Closing the account moves a balance the
// spending limits cannot bound, so it is refused for limited accounts.
func groupCost(acc *Account, specs []TxnSpec) (uint64, error) {
	limited := acc.Allowance > 0 || acc.DailyAllowance > 0
	var total uint64
	for i := range specs {
		if limited && specs[i].CloseRemainderTo != "" {
			return 0, limitExceeded("transaction %d closes out to %s, which account %q may not do under spending limits",
				i, specs[i].CloseRemainderTo, acc.Nickname)
		}
		cost, ok := specs[i].cost()
		if !ok || total+cost < total {
			return 0, invalidParams("total amount overflows")
		}
		total += cost
	}
	if total > MaxAmount {
		return 0, invalidParams("total amount %d exceeds the maximum of %d", total, MaxAmount)
	}
	return total, nil
}

// SignData signs the hex encoded data with the active account's key. The raw
// bytes are signed as they are, without the prefix the chain applies to
// transactions and programs.
func (m *Manager) SignData(ctx context.Context, data string) (*SignDataResult, error) {
	raw, err := common.DecodeHex(data)
	if err != nil {
		return nil, invalidParams("data must be hex encoded")
	}
	if len(raw) == 0 {
		return nil, invalidParams("data is required")
	}

	acc, _, err := m.active(ctx)
	if err != nil {
		return nil, err
	}
	sk, err := m.privateKey(acc)
	if err != nil {
		return nil, err
	}
	sig := ed25519.Sign(sk, raw)
	m.log.WithFields(log.Fields{
		"nickname":   acc.Nickname,
		"dataLength": len(raw),
		"signature":  common.EncodeHex0x(sig),
	}).Info("Signed data")

	return &SignDataResult{
		Signature:  common.EncodeHex(sig),
		PublicKey:  acc.PublicKey,
		Address:    acc.Address,
		DataLength: len(raw),
	}, nil
}

// OptInAsset submits a zero amount asset transfer from the active account to
// itself, which lets it receive assetID.
func (m *Manager) OptInAsset(ctx context.Context, assetID uint64, network string) (*OptInResult, error) {
	if assetID == 0 {
		return nil, invalidParams("assetId is required")
	}
	acc, _, err := m.active(ctx)
	if err != nil {
		return nil, err
	}
	client, err := m.client(network)
	if err != nil {
		return nil, err
	}

	sp, err := client.SuggestedParams(ctx)
	if err != nil {
		return nil, internalError(err, "fetching suggested params")
	}
	txn, err := transaction.MakeAssetAcceptanceTxn(acc.Address, nil, sp, assetID)
	if err != nil {
		return nil, internalError(err, "building opt-in transaction")
	}
	sk, err := m.privateKey(acc)
	if err != nil {
		return nil, err
	}
	txID, stx, err := crypto.SignTransaction(sk, txn)
	if err != nil {
		return nil, internalError(err, "signing opt-in transaction")
	}
	if _, err := client.SendRawTransaction(ctx, stx); err != nil {
		return nil, internalError(err, "submitting opt-in transaction")
	}
	m.log.WithFields(log.Fields{"nickname": acc.Nickname, "assetId": assetID, "txID": txID}).Info("Opted in to asset")

	return &OptInResult{
		TxID:      txID,
		AssetID:   assetID,
		Address:   acc.Address,
		Nickname:  acc.Nickname,
		Network:   client.Network(),
		Submitted: true,
	}, nil
}
