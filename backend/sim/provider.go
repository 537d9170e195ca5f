// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package sim

import (
	"github.com/pkg/errors"

	"perun.network/go-algowallet/wallet"
)

// Provider is a wallet.ChainProvider over a fixed set of simulated chains.
type Provider struct {
	chains map[string]*Chain
}

var _ wallet.ChainProvider = (*Provider)(nil)

// NewProvider creates a provider with one simulated chain per network name.
func NewProvider(networks ...string) *Provider {
	p := &Provider{chains: make(map[string]*Chain, len(networks))}
	for _, n := range networks {
		p.chains[n] = NewChain(n)
	}
	return p
}

// Chain returns the simulated chain of network or nil.
func (p *Provider) Chain(network string) *Chain {
	return p.chains[network]
}

// Client implements wallet.ChainProvider.
func (p *Provider) Client(network string) (wallet.ChainClient, error) {
	if c, ok := p.chains[network]; ok {
		return c, nil
	}
	return nil, errors.WithMessage(wallet.ErrUnknownNetwork, network)
}
