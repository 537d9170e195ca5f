// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package algorand

import (
	"strings"
	"sync"

	"github.com/pkg/errors"

	"perun.network/go-algowallet/wallet"
)

// Endpoint is the address and API token of an algod node.
type Endpoint struct {
	URL   string `mapstructure:"url"`
	Token string `mapstructure:"token"`
}

// LocalnetToken is the API token of a default sandbox or AlgoKit localnet.
var LocalnetToken = strings.Repeat("a", 64)

// DefaultEndpoints returns the public AlgoNode endpoints for mainnet and
// testnet and the default localnet node.
func DefaultEndpoints() map[string]Endpoint {
	return map[string]Endpoint{
		"mainnet":  {URL: "https://mainnet-api.algonode.cloud"},
		"testnet":  {URL: "https://testnet-api.algonode.cloud"},
		"localnet": {URL: "http://localhost:4001", Token: LocalnetToken},
	}
}

// Provider is a wallet.ChainProvider over configured algod endpoints. Clients
// are created on first use and reused afterwards.
type Provider struct {
	endpoints map[string]Endpoint

	mu      sync.Mutex
	clients map[string]*Client
}

var _ wallet.ChainProvider = (*Provider)(nil)

// NewProvider creates a provider for the given network endpoints.
func NewProvider(endpoints map[string]Endpoint) *Provider {
	eps := make(map[string]Endpoint, len(endpoints))
	for name, ep := range endpoints {
		eps[strings.ToLower(name)] = ep
	}
	return &Provider{endpoints: eps, clients: make(map[string]*Client)}
}

// Networks returns the configured network names.
func (p *Provider) Networks() []string {
	names := make([]string, 0, len(p.endpoints))
	for name := range p.endpoints {
		names = append(names, name)
	}
	return names
}

// Client implements wallet.ChainProvider. Network names are case
// insensitive.
func (p *Provider) Client(network string) (wallet.ChainClient, error) {
	network = strings.ToLower(network)
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.clients[network]; ok {
		return c, nil
	}
	ep, ok := p.endpoints[network]
	if !ok {
		return nil, errors.WithMessage(wallet.ErrUnknownNetwork, network)
	}
	c, err := NewClient(network, ep)
	if err != nil {
		return nil, err
	}
	p.clients[network] = c
	return c, nil
}
