// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package wallet

import (
	"context"
	"time"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/mnemonic"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"perun.network/go-algowallet/common"
	"perun.network/go-algowallet/log"
	pkgsync "perun.network/go-algowallet/pkg/sync"
)

// DefaultNetwork is used when neither the caller nor the options name one.
const DefaultNetwork = "testnet"

// Manager is the wallet core. It owns the account lifecycle, the active
// account pointer and all signing operations.
//
// Mutations and sign operations are serialized inside the process so that the
// spending check, the signature and the spend record happen as one unit.
type Manager struct {
	ledger  Ledger
	secrets SecretStore
	chains  ChainProvider

	clock          func() time.Time
	defaultNetwork string
	log            log.Logger

	mutex pkgsync.Mutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the clock used to determine the spend day.
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) { m.clock = clock }
}

// WithDefaultNetwork sets the network used when a call names none.
func WithDefaultNetwork(network string) Option {
	return func(m *Manager) { m.defaultNetwork = network }
}

// WithLogger sets the manager's logger.
func WithLogger(l log.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// NewManager creates a manager on top of the given collaborators.
func NewManager(ledger Ledger, secrets SecretStore, chains ChainProvider, opts ...Option) *Manager {
	if ledger == nil || secrets == nil || chains == nil {
		panic("wallet: NewManager called with nil collaborator")
	}
	m := &Manager{
		ledger:         ledger,
		secrets:        secrets,
		chains:         chains,
		clock:          time.Now,
		defaultNetwork: DefaultNetwork,
		log:            log.WithField("component", "wallet"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Selector addresses an account by position or nickname. If both are set,
// Index takes precedence.
type Selector struct {
	Nickname string `json:"nickname,omitempty"`
	Index    *int   `json:"index,omitempty"`
}

// AddAccountParams are the arguments of AddAccount.
type AddAccountParams struct {
	Nickname       string `json:"nickname"`
	Allowance      uint64 `json:"allowance,omitempty"`
	DailyAllowance uint64 `json:"dailyAllowance,omitempty"`
	// Mnemonic optionally imports an existing 25 word account instead of
	// generating a fresh key.
	Mnemonic string `json:"mnemonic,omitempty"`
}

// AddAccountResult is returned by AddAccount. It never carries the secret.
type AddAccountResult struct {
	Address        string `json:"address"`
	PublicKey      string `json:"publicKey"`
	Nickname       string `json:"nickname"`
	Index          int    `json:"index"`
	Allowance      uint64 `json:"allowance"`
	DailyAllowance uint64 `json:"dailyAllowance"`
}

// RemoveAccountResult is returned by RemoveAccount.
type RemoveAccountResult struct {
	Removed  bool   `json:"removed"`
	Address  string `json:"address"`
	Nickname string `json:"nickname"`
}

// ListAccountsResult is returned by ListAccounts.
type ListAccountsResult struct {
	ActiveIndex int           `json:"activeIndex"`
	Count       int           `json:"count"`
	Accounts    []AccountView `json:"accounts"`
}

// SwitchAccountResult is returned by SwitchAccount.
type SwitchAccountResult struct {
	Switched    bool   `json:"switched"`
	ActiveIndex int    `json:"activeIndex"`
	Nickname    string `json:"nickname"`
	Address     string `json:"address"`
	PublicKey   string `json:"publicKey"`
}

// InfoResult is returned by GetInfo. On-chain fields are omitted and Error is
// set when the network could not be read.
type InfoResult struct {
	Nickname           string  `json:"nickname"`
	Address            string  `json:"address"`
	PublicKey          string  `json:"publicKey"`
	Network            string  `json:"network"`
	Balance            *uint64 `json:"balance,omitempty"`
	MinBalance         *uint64 `json:"minBalance,omitempty"`
	PendingRewards     *uint64 `json:"pendingRewards,omitempty"`
	Rewards            *uint64 `json:"rewards,omitempty"`
	Round              *uint64 `json:"round,omitempty"`
	Status             string  `json:"status,omitempty"`
	AuthAddr           string  `json:"authAddr,omitempty"`
	TotalAssetsOptedIn *uint64 `json:"totalAssetsOptedIn,omitempty"`
	TotalAppsOptedIn   *uint64 `json:"totalAppsOptedIn,omitempty"`
	TotalCreatedAssets *uint64 `json:"totalCreatedAssets,omitempty"`
	TotalCreatedApps   *uint64 `json:"totalCreatedApps,omitempty"`
	Allowance          uint64  `json:"allowance"`
	DailyAllowance     uint64  `json:"dailyAllowance"`
	DailySpent         uint64  `json:"dailySpent"`
	Error              string  `json:"error,omitempty"`
}

// AssetHolding is one asset held by an account.
type AssetHolding struct {
	AssetID  uint64 `json:"assetId"`
	Amount   uint64 `json:"amount"`
	IsFrozen bool   `json:"isFrozen"`
}

// AssetsResult is returned by GetAssets.
type AssetsResult struct {
	Nickname string         `json:"nickname"`
	Address  string         `json:"address"`
	Network  string         `json:"network"`
	Assets   []AssetHolding `json:"assets"`
	Error    string         `json:"error,omitempty"`
}

func (m *Manager) lock(ctx context.Context) error {
	if !m.mutex.TryLockCtx(ctx) {
		return internalError(ctx.Err(), "waiting for wallet lock")
	}
	return nil
}

func (m *Manager) today() string {
	return Today(m.clock())
}

func (m *Manager) network(name string) string {
	if name == "" {
		return m.defaultNetwork
	}
	return name
}

func (m *Manager) client(network string) (ChainClient, error) {
	network = m.network(network)
	c, err := m.chains.Client(network)
	if errors.Is(err, ErrUnknownNetwork) {
		return nil, invalidParams("unknown network %q", network)
	} else if err != nil {
		return nil, internalError(err, "connecting to network %q", network)
	}
	return c, nil
}

func (m *Manager) accounts(ctx context.Context) ([]Account, error) {
	accs, err := m.ledger.ListAll(ctx)
	if err != nil {
		return nil, internalError(err, "listing accounts")
	}
	return accs, nil
}

func (m *Manager) activeIndex(ctx context.Context, count int) (int, error) {
	idx, err := m.ledger.ActiveIndex(ctx)
	if err != nil {
		return 0, internalError(err, "reading active account index")
	}
	if idx < 0 || idx >= count {
		m.log.Warnf("active account index %d out of range [0,%d), using 0", idx, count)
		idx = 0
	}
	return idx, nil
}

// active returns the active account and its index.
func (m *Manager) active(ctx context.Context) (*Account, int, error) {
	accs, err := m.accounts(ctx)
	if err != nil {
		return nil, 0, err
	}
	if len(accs) == 0 {
		return nil, 0, invalidRequest("no accounts, add one with wallet_add_account")
	}
	idx, err := m.activeIndex(ctx, len(accs))
	if err != nil {
		return nil, 0, err
	}
	return &accs[idx], idx, nil
}

// resolve finds the account sel points to in accs.
func resolve(accs []Account, sel Selector) (int, error) {
	switch {
	case sel.Index != nil:
		if *sel.Index < 0 || *sel.Index >= len(accs) {
			return 0, invalidParams("account index %d out of range, %d accounts", *sel.Index, len(accs))
		}
		return *sel.Index, nil
	case sel.Nickname != "":
		_, idx, ok := lo.FindIndexOf(accs, func(acc Account) bool { return acc.Nickname == sel.Nickname })
		if !ok {
			return 0, invalidParams("no account with nickname %q", sel.Nickname)
		}
		return idx, nil
	default:
		return 0, invalidParams("either nickname or index is required")
	}
}

// AddAccount creates an account with a fresh key, or imports
// params.Mnemonic, and stores its secret. The first account becomes active.
func (m *Manager) AddAccount(ctx context.Context, params AddAccountParams) (*AddAccountResult, error) {
	if params.Nickname == "" {
		return nil, invalidParams("nickname is required")
	}
	if params.Allowance > MaxAmount {
		return nil, invalidParams("allowance %d exceeds the maximum of %d", params.Allowance, MaxAmount)
	}
	if params.DailyAllowance > MaxAmount {
		return nil, invalidParams("dailyAllowance %d exceeds the maximum of %d", params.DailyAllowance, MaxAmount)
	}

	var kp crypto.Account
	if params.Mnemonic != "" {
		sk, err := mnemonic.ToPrivateKey(params.Mnemonic)
		if err != nil {
			return nil, invalidParams("invalid mnemonic")
		}
		if kp, err = crypto.AccountFromPrivateKey(sk); err != nil {
			return nil, invalidParams("invalid mnemonic")
		}
	} else {
		kp = crypto.GenerateAccount()
	}
	secret, err := mnemonic.FromPrivateKey(kp.PrivateKey)
	if err != nil {
		return nil, internalError(err, "encoding mnemonic")
	}
	address := kp.Address.String()

	if err := m.lock(ctx); err != nil {
		return nil, err
	}
	defer m.mutex.Unlock()

	accs, err := m.accounts(ctx)
	if err != nil {
		return nil, err
	}
	for _, acc := range accs {
		if acc.Nickname == params.Nickname {
			return nil, invalidRequest("nickname %q is already used", params.Nickname)
		}
		if acc.Address == address {
			return nil, invalidRequest("account %s already exists as %q", address, acc.Nickname)
		}
	}

	if err := m.secrets.Put(address, secret); err != nil {
		return nil, internalError(err, "storing secret")
	}
	acc := &Account{
		Address:        address,
		PublicKey:      common.EncodeHex(kp.PublicKey),
		Nickname:       params.Nickname,
		Allowance:      params.Allowance,
		DailyAllowance: params.DailyAllowance,
		CreatedAt:      m.clock().UTC(),
	}
	if acc.ID, err = m.ledger.Insert(ctx, acc); err != nil {
		m.rollbackSecret(ctx, address)
		if errors.Is(err, ErrDuplicateKey) {
			return nil, invalidRequest("account %q or address %s already exists", params.Nickname, address)
		}
		return nil, internalError(err, "inserting account")
	}

	index := len(accs)
	if index == 0 {
		if err := m.ledger.SetActiveIndex(ctx, 0); err != nil {
			return nil, internalError(err, "activating first account")
		}
	}
	m.log.WithFields(log.Fields{"nickname": acc.Nickname, "address": address, "index": index}).Info("Account added")

	return &AddAccountResult{
		Address:        address,
		PublicKey:      acc.PublicKey,
		Nickname:       acc.Nickname,
		Index:          index,
		Allowance:      acc.Allowance,
		DailyAllowance: acc.DailyAllowance,
	}, nil
}

// rollbackSecret deletes a freshly stored secret after a failed insert, unless
// another process owns a ledger row with that address by now.
func (m *Manager) rollbackSecret(ctx context.Context, address string) {
	accs, err := m.ledger.ListAll(ctx)
	if err != nil {
		m.log.WithError(err).Warn("Could not verify secret ownership, keeping secret")
		return
	}
	if lo.ContainsBy(accs, func(acc Account) bool { return acc.Address == address }) {
		return
	}
	if err := m.secrets.Delete(address); err != nil {
		m.log.WithError(err).WithField("address", address).Warn("Could not roll back secret")
	}
}

// RemoveAccount deletes the selected account and its secret and keeps the
// active index in range. A failure to delete the secret is logged and
// otherwise ignored.
func (m *Manager) RemoveAccount(ctx context.Context, sel Selector) (*RemoveAccountResult, error) {
	if sel.Index == nil && sel.Nickname == "" {
		return nil, invalidParams("either nickname or index is required")
	}
	if err := m.lock(ctx); err != nil {
		return nil, err
	}
	defer m.mutex.Unlock()

	accs, err := m.accounts(ctx)
	if err != nil {
		return nil, err
	}
	if len(accs) == 0 {
		return nil, invalidRequest("no accounts")
	}
	idx, err := resolve(accs, sel)
	if err != nil {
		return nil, err
	}
	target := accs[idx]
	active, err := m.activeIndex(ctx, len(accs))
	if err != nil {
		return nil, err
	}

	if err := m.secrets.Delete(target.Address); err != nil {
		m.log.WithError(err).WithField("address", target.Address).Warn("Could not delete secret of removed account")
	}
	if err := m.ledger.Delete(ctx, target.Address); err != nil {
		return nil, internalError(err, "deleting account %q", target.Nickname)
	}

	if err := m.ledger.SetActiveIndex(ctx, nextActiveIndex(active, idx, len(accs)-1)); err != nil {
		return nil, internalError(err, "updating active account index")
	}
	m.log.WithFields(log.Fields{"nickname": target.Nickname, "address": target.Address}).Info("Account removed")

	return &RemoveAccountResult{Removed: true, Address: target.Address, Nickname: target.Nickname}, nil
}

// nextActiveIndex returns the active index after removing position removed
// from a list that now holds count accounts.
func nextActiveIndex(active, removed, count int) int {
	if count == 0 {
		return 0
	}
	if removed < active {
		active--
	}
	if active >= count {
		active = count - 1
	}
	return active
}

// ListAccounts returns all accounts with today's spending counters.
func (m *Manager) ListAccounts(ctx context.Context) (*ListAccountsResult, error) {
	accs, err := m.accounts(ctx)
	if err != nil {
		return nil, err
	}
	res := &ListAccountsResult{Count: len(accs), Accounts: make([]AccountView, 0, len(accs))}
	if len(accs) == 0 {
		return res, nil
	}
	if res.ActiveIndex, err = m.activeIndex(ctx, len(accs)); err != nil {
		return nil, err
	}
	day := m.today()
	for i := range accs {
		res.Accounts = append(res.Accounts, accs[i].view(i, i == res.ActiveIndex, day))
	}
	return res, nil
}

// SwitchAccount makes the selected account the active one.
func (m *Manager) SwitchAccount(ctx context.Context, sel Selector) (*SwitchAccountResult, error) {
	if err := m.lock(ctx); err != nil {
		return nil, err
	}
	defer m.mutex.Unlock()

	accs, err := m.accounts(ctx)
	if err != nil {
		return nil, err
	}
	if len(accs) == 0 {
		return nil, invalidParams("no accounts to switch to")
	}
	idx, err := resolve(accs, sel)
	if err != nil {
		return nil, err
	}
	if err := m.ledger.SetActiveIndex(ctx, idx); err != nil {
		return nil, internalError(err, "updating active account index")
	}
	acc := accs[idx]
	m.log.WithFields(log.Fields{"nickname": acc.Nickname, "index": idx}).Info("Switched active account")

	return &SwitchAccountResult{
		Switched:    true,
		ActiveIndex: idx,
		Nickname:    acc.Nickname,
		Address:     acc.Address,
		PublicKey:   acc.PublicKey,
	}, nil
}

// GetInfo returns the active account's limits together with its on-chain
// state. Network failures are reported in InfoResult.Error; an unfunded
// account is a normal state.
func (m *Manager) GetInfo(ctx context.Context, network string) (*InfoResult, error) {
	acc, _, err := m.active(ctx)
	if err != nil {
		return nil, err
	}
	client, err := m.client(network)
	if KindOf(err) == KindInvalidParams {
		return nil, err
	}

	res := &InfoResult{
		Nickname:       acc.Nickname,
		Address:        acc.Address,
		PublicKey:      acc.PublicKey,
		Network:        m.network(network),
		Allowance:      acc.Allowance,
		DailyAllowance: acc.DailyAllowance,
		DailySpent:     EffectiveDailySpent(acc, m.today()),
	}
	if err != nil {
		res.Error = err.Error()
		return res, nil
	}
	info, err := client.AccountInformation(ctx, acc.Address)
	if err != nil {
		m.log.WithError(err).WithField("address", acc.Address).Debug("Account information unavailable")
		res.Error = err.Error()
		return res, nil
	}
	res.Balance = &info.Amount
	res.MinBalance = &info.MinBalance
	res.PendingRewards = &info.PendingRewards
	res.Rewards = &info.Rewards
	res.Round = &info.Round
	res.Status = info.Status
	res.AuthAddr = info.AuthAddr
	res.TotalAssetsOptedIn = &info.TotalAssetsOptedIn
	res.TotalAppsOptedIn = &info.TotalAppsOptedIn
	res.TotalCreatedAssets = &info.TotalCreatedAssets
	res.TotalCreatedApps = &info.TotalCreatedApps
	return res, nil
}

// GetAssets returns the assets held by the active account. Network failures
// are reported in AssetsResult.Error.
func (m *Manager) GetAssets(ctx context.Context, network string) (*AssetsResult, error) {
	acc, _, err := m.active(ctx)
	if err != nil {
		return nil, err
	}
	client, err := m.client(network)
	if KindOf(err) == KindInvalidParams {
		return nil, err
	}

	res := &AssetsResult{
		Nickname: acc.Nickname,
		Address:  acc.Address,
		Network:  m.network(network),
		Assets:   []AssetHolding{},
	}
	if err != nil {
		res.Error = err.Error()
		return res, nil
	}
	info, err := client.AccountInformation(ctx, acc.Address)
	if err != nil {
		m.log.WithError(err).WithField("address", acc.Address).Debug("Account assets unavailable")
		res.Error = err.Error()
		return res, nil
	}
	for _, a := range info.Assets {
		res.Assets = append(res.Assets, AssetHolding{AssetID: a.AssetId, Amount: a.Amount, IsFrozen: a.IsFrozen})
	}
	return res, nil
}
