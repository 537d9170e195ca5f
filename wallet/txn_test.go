// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package wallet

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/common/models"
	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingClient serves fixed suggested params and counts the requests.
type countingClient struct {
	sp    types.SuggestedParams
	calls int
	err   error
}

func (c *countingClient) Network() string { return "testnet" }

func (c *countingClient) SuggestedParams(context.Context) (types.SuggestedParams, error) {
	c.calls++
	return c.sp, c.err
}

func (c *countingClient) AccountInformation(context.Context, string) (models.Account, error) {
	return models.Account{}, nil
}

func (c *countingClient) SendRawTransaction(context.Context, []byte) (string, error) {
	return "", nil
}

func newAddress() string {
	return crypto.GenerateAccount().Address.String()
}

func suggested() types.SuggestedParams {
	return types.SuggestedParams{
		GenesisID:       "testnet-v1.0",
		GenesisHash:     make([]byte, 32),
		FirstRoundValid: 100,
		LastRoundValid:  1100,
		MinFee:          1000,
	}
}

func TestTxnSpec_Validate(t *testing.T) {
	to := newAddress()
	tests := []struct {
		name  string
		spec  TxnSpec
		valid bool
	}{
		{"payment", TxnSpec{To: to, Amount: 1}, true},
		{"explicit payment", TxnSpec{Type: TxnPayment, To: to}, true},
		{"asset transfer", TxnSpec{Type: TxnAssetTransfer, To: to, AssetID: 5}, true},
		{"asset transfer without asset", TxnSpec{Type: TxnAssetTransfer, To: to}, false},
		{"unknown type", TxnSpec{Type: "keyreg", To: to}, false},
		{"missing receiver", TxnSpec{Amount: 1}, false},
		{"bad receiver", TxnSpec{To: "ABC"}, false},
		{"bad sender", TxnSpec{To: to, From: "ABC"}, false},
		{"bad close", TxnSpec{To: to, CloseRemainderTo: "ABC"}, false},
		{"inverted validity", TxnSpec{To: to, FirstValid: 10, LastValid: 5}, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, KindInvalidParams, KindOf(err))
			}
		})
	}
}

func TestTxnSpec_SuggestedParams(t *testing.T) {
	fee := uint64(5000)
	gh := make([]byte, 32)
	gh[31] = 1
	spec := TxnSpec{
		Fee:         &fee,
		FirstValid:  7,
		LastValid:   8,
		GenesisID:   "x",
		GenesisHash: base64.StdEncoding.EncodeToString(gh),
	}
	sp, err := spec.suggestedParams(suggested())
	require.NoError(t, err)
	assert.EqualValues(t, 7, sp.FirstRoundValid)
	assert.EqualValues(t, 8, sp.LastRoundValid)
	assert.Equal(t, "x", sp.GenesisID)
	assert.Equal(t, gh, sp.GenesisHash)
	assert.EqualValues(t, 5000, sp.Fee)
	assert.True(t, sp.FlatFee)

	sp, err = (&TxnSpec{}).suggestedParams(suggested())
	require.NoError(t, err)
	assert.Equal(t, suggested(), sp, "an empty spec keeps the network params")

	_, err = (&TxnSpec{GenesisHash: base64.StdEncoding.EncodeToString([]byte("short"))}).suggestedParams(suggested())
	assert.Equal(t, KindInvalidParams, KindOf(err))
	_, err = (&TxnSpec{GenesisHash: "%%%"}).suggestedParams(suggested())
	assert.Equal(t, KindInvalidParams, KindOf(err))
}

func TestTxnSpec_Build(t *testing.T) {
	signer, other, to := newAddress(), newAddress(), newAddress()

	txn, err := (&TxnSpec{To: to, Amount: 9}).build(signer, suggested())
	require.NoError(t, err)
	assert.Equal(t, signer, txn.Sender.String(), "sender defaults to the signer")
	assert.Equal(t, types.PaymentTx, txn.Type)
	assert.EqualValues(t, 9, txn.Amount)
	assert.EqualValues(t, 1000, txn.Fee)

	txn, err = (&TxnSpec{From: other, To: to, CloseRemainderTo: signer}).build(signer, suggested())
	require.NoError(t, err)
	assert.Equal(t, other, txn.Sender.String())
	assert.Equal(t, signer, txn.CloseRemainderTo.String())

	txn, err = (&TxnSpec{Type: TxnAssetTransfer, To: to, Amount: 2, AssetID: 77}).build(signer, suggested())
	require.NoError(t, err)
	assert.Equal(t, types.AssetTransferTx, txn.Type)
	assert.EqualValues(t, 77, txn.XferAsset)
	assert.EqualValues(t, 2, txn.AssetAmount)
	assert.Equal(t, to, txn.AssetReceiver.String())
}

func TestBuildAll_FetchesParamsOnce(t *testing.T) {
	to := newAddress()
	c := &countingClient{sp: suggested()}
	client := func() (ChainClient, error) { return c, nil }

	txns, err := buildAll(context.Background(), []TxnSpec{{To: to}, {To: to}, {To: to}}, newAddress(), client)
	require.NoError(t, err)
	assert.Len(t, txns, 3)
	assert.Equal(t, 1, c.calls)
}

func TestBuildAll_CompleteSpecsSkipNetwork(t *testing.T) {
	to := newAddress()
	client := func() (ChainClient, error) { return nil, errors.New("must not be called") }
	spec := TxnSpec{
		To:          to,
		FirstValid:  1,
		LastValid:   2,
		GenesisHash: base64.StdEncoding.EncodeToString(make([]byte, 32)),
	}

	txns, err := buildAll(context.Background(), []TxnSpec{spec}, newAddress(), client)
	require.NoError(t, err)
	assert.Len(t, txns, 1)
}

func TestBuildAll_Errors(t *testing.T) {
	to := newAddress()
	c := &countingClient{err: errors.New("timeout")}
	client := func() (ChainClient, error) { return c, nil }

	_, err := buildAll(context.Background(), []TxnSpec{{To: to}}, newAddress(), client)
	assert.Equal(t, KindInternal, KindOf(err))

	_, err = buildAll(context.Background(), []TxnSpec{{To: to}, {}}, newAddress(), client)
	assert.Equal(t, KindInvalidParams, KindOf(err))
	assert.Equal(t, 1, c.calls, "invalid specs are rejected before any network access")
}

func TestTxnSpec_Cost(t *testing.T) {
	fee := func(f uint64) *uint64 { return &f }
	tests := []struct {
		name string
		spec TxnSpec
		want uint64
		ok   bool
	}{
		{"amount only", TxnSpec{Amount: 7}, 7, true},
		{"explicit fee", TxnSpec{Amount: 7, Fee: fee(2000)}, 2007, true},
		{"fee below minimum", TxnSpec{Amount: 7, Fee: fee(0)}, 7 + MinFee, true},
		{"overflow", TxnSpec{Amount: ^uint64(0), Fee: fee(MinFee)}, 0, false},
	}
	for _, tt := range tests {
		got, ok := tt.spec.cost()
		assert.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestGroupCost(t *testing.T) {
	limited := &Account{Nickname: "a", Allowance: 10}
	unlimited := &Account{Nickname: "b"}
	closeOut := TxnSpec{To: newAddress(), CloseRemainderTo: newAddress()}

	tests := []struct {
		name  string
		acc   *Account
		specs []TxnSpec
		want  uint64
		kind  ErrorKind
	}{
		{"sum", limited, []TxnSpec{{Amount: 3}, {Amount: 4}}, 7, ""},
		{"close out limited", limited, []TxnSpec{{Amount: 1}, closeOut}, 0, KindLimitExceeded},
		{"close out daily limited", &Account{DailyAllowance: 1}, []TxnSpec{closeOut}, 0, KindLimitExceeded},
		{"close out unlimited", unlimited, []TxnSpec{closeOut}, 0, ""},
		{"above maximum", unlimited, []TxnSpec{{Amount: MaxAmount}, {Amount: 1}}, 0, KindInvalidParams},
		{"wraps", unlimited, []TxnSpec{{Amount: ^uint64(0)}, {Amount: 2}}, 0, KindInvalidParams},
	}
	for _, tt := range tests {
		got, err := groupCost(tt.acc, tt.specs)
		assert.Equal(t, tt.kind, KindOf(err), tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}
