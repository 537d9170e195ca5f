// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package algorand connects the wallet to algod nodes.
package algorand // import "perun.network/go-algowallet/backend/algorand"

import (
	"context"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/algod"
	"github.com/algorand/go-algorand-sdk/v2/client/v2/common/models"
	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/pkg/errors"

	"perun.network/go-algowallet/wallet"
)

// Client is a wallet.ChainClient talking to one algod node.
type Client struct {
	network string
	algod   *algod.Client
}

var _ wallet.ChainClient = (*Client)(nil)

// NewClient creates a client for the node at ep. No request is made.
func NewClient(network string, ep Endpoint) (*Client, error) {
	c, err := algod.MakeClient(ep.URL, ep.Token)
	if err != nil {
		return nil, errors.Wrapf(err, "creating algod client for %s", network)
	}
	return &Client{network: network, algod: c}, nil
}

// Network implements wallet.ChainClient.
func (c *Client) Network() string { return c.network }

// SuggestedParams implements wallet.ChainClient.
func (c *Client) SuggestedParams(ctx context.Context) (types.SuggestedParams, error) {
	sp, err := c.algod.SuggestedParams().Do(ctx)
	return sp, errors.Wrapf(err, "%s: suggested params", c.network)
}

// AccountInformation implements wallet.ChainClient.
func (c *Client) AccountInformation(ctx context.Context, address string) (models.Account, error) {
	info, err := c.algod.AccountInformation(address).Do(ctx)
	return info, errors.Wrapf(err, "%s: account information", c.network)
}

// SendRawTransaction implements wallet.ChainClient.
func (c *Client) SendRawTransaction(ctx context.Context, stx []byte) (string, error) {
	txID, err := c.algod.SendRawTransaction(stx).Do(ctx)
	return txID, errors.Wrapf(err, "%s: sending transaction", c.network)
}
