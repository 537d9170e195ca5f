// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package sqlite implements the durable wallet.Ledger on a single SQLite file.
package sqlite // import "perun.network/go-algowallet/db/sqlite"

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"perun.network/go-algowallet/log"
	"perun.network/go-algowallet/wallet"
)

const (
	// dsnOptions: write transactions take the write lock at BEGIN and a
	// commit is on disk when it returns.
	dsnOptions = "_txlock=immediate&_busy_timeout=5000&_journal_mode=WAL&_synchronous=FULL"

	activeIndexKey = "active_account_index"
	dirPermissions = 0o700
)

// Ledger is a wallet.Ledger stored in a SQLite database.
type Ledger struct {
	db   *sqlx.DB
	path string
}

var _ wallet.Ledger = (*Ledger)(nil)

func dsn(path string) string {
	return fmt.Sprintf("file:%s?%s", path, dsnOptions)
}

// Open opens the ledger at path, creating the file and its directory if
// needed. A file that is not a readable SQLite database is moved aside to
// "<path>.corrupt-<unix time>" and a fresh ledger is created in its place.
func Open(ctx context.Context, path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return nil, errors.Wrap(err, "creating ledger directory")
	}

	l, err := open(ctx, path)
	if err == nil || !isCorrupt(err) {
		return l, err
	}

	aside := fmt.Sprintf("%s.corrupt-%d", path, time.Now().Unix())
	log.WithError(err).WithField("path", aside).Warn("Ledger is corrupt, moving it aside")
	if err := quarantine(path, aside); err != nil {
		return nil, err
	}
	return open(ctx, path)
}

func open(ctx context.Context, path string) (*Ledger, error) {
	db, err := sqlx.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, errors.Wrap(err, "opening ledger")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "connecting to ledger")
	}
	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Ledger{db: db, path: path}, nil
}

// isCorrupt reports whether err says the file is not a usable database.
func isCorrupt(err error) bool {
	var serr sqlite3.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.Code == sqlite3.ErrNotADB || serr.Code == sqlite3.ErrCorrupt
}

// quarantine moves the database file and its WAL companions to aside.
func quarantine(path, aside string) error {
	if err := os.Rename(path, aside); err != nil {
		return errors.Wrap(err, "moving corrupt ledger aside")
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Rename(path+suffix, aside+suffix); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "moving corrupt ledger%s aside", suffix)
		}
	}
	return nil
}

// Path returns the file the ledger is stored in.
func (l *Ledger) Path() string { return l.path }

// Insert implements wallet.Ledger. The uniqueness check and the insert run in
// one immediate transaction.
func (l *Ledger) Insert(ctx context.Context, acc *wallet.Account) (int64, error) {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "beginning insert")
	}
	defer tx.Rollback() // nolint: errcheck

	var n int
	if err := tx.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM accounts WHERE address = ? OR nickname = ?",
		acc.Address, acc.Nickname); err != nil {
		return 0, errors.Wrap(err, "checking uniqueness")
	}
	if n > 0 {
		return 0, errors.WithMessagef(wallet.ErrDuplicateKey, "inserting %q", acc.Nickname)
	}

	res, err := tx.NamedExecContext(ctx, `INSERT INTO accounts
		(address, public_key, nickname, allowance, daily_allowance, daily_spent, last_spend_date, created_at)
		VALUES (:address, :public_key, :nickname, :allowance, :daily_allowance, :daily_spent, :last_spend_date, :created_at)`,
		acc)
	if isConstraint(err) {
		return 0, errors.WithMessagef(wallet.ErrDuplicateKey, "inserting %q", acc.Nickname)
	} else if err != nil {
		return 0, errors.Wrap(err, "inserting account")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "reading account id")
	}
	return id, errors.Wrap(tx.Commit(), "committing insert")
}

func isConstraint(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) && serr.Code == sqlite3.ErrConstraint
}

// ListAll implements wallet.Ledger.
func (l *Ledger) ListAll(ctx context.Context) ([]wallet.Account, error) {
	accs := []wallet.Account{}
	err := l.db.SelectContext(ctx, &accs, `SELECT
		id, address, public_key, nickname, allowance, daily_allowance, daily_spent, last_spend_date, created_at
		FROM accounts ORDER BY id`)
	return accs, errors.Wrap(err, "listing accounts")
}

// ActiveIndex implements wallet.Ledger.
func (l *Ledger) ActiveIndex(ctx context.Context) (int, error) {
	var value string
	err := l.db.GetContext(ctx, &value, "SELECT value FROM wallet_state WHERE key = ?", activeIndexKey)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	} else if err != nil {
		return 0, errors.Wrap(err, "reading active index")
	}
	idx, err := strconv.Atoi(value)
	return idx, errors.Wrapf(err, "parsing active index %q", value)
}

// SetActiveIndex implements wallet.Ledger.
func (l *Ledger) SetActiveIndex(ctx context.Context, idx int) error {
	_, err := l.db.ExecContext(ctx, `INSERT INTO wallet_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		activeIndexKey, strconv.Itoa(idx))
	return errors.Wrap(err, "writing active index")
}

// Delete implements wallet.Ledger.
func (l *Ledger) Delete(ctx context.Context, address string) error {
	res, err := l.db.ExecContext(ctx, "DELETE FROM accounts WHERE address = ?", address)
	if err != nil {
		return errors.Wrap(err, "deleting account")
	}
	return expectRow(res, address)
}

// RecordSpend implements wallet.Ledger as a single UPDATE, so concurrent
// writers from any process cannot lose updates. The WHERE clause keeps the
// counter within wallet.MaxAmount; SQLite would otherwise turn an overflowing
// sum into a REAL.
func (l *Ledger) RecordSpend(ctx context.Context, address string, amount uint64, day string) error {
	if amount == 0 {
		return nil
	}
	if amount > wallet.MaxAmount {
		return errors.WithMessagef(wallet.ErrCounterOverflow, "amount %d", amount)
	}
	res, err := l.db.ExecContext(ctx, `UPDATE accounts SET
		daily_spent = CASE WHEN last_spend_date = ? THEN daily_spent + ? ELSE ? END,
		last_spend_date = ?
		WHERE address = ? AND (last_spend_date <> ? OR daily_spent <= ?)`,
		day, int64(amount), int64(amount), day, address, day, int64(wallet.MaxAmount-amount))
	if err != nil {
		return errors.Wrap(err, "recording spend")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "reading affected rows")
	}
	if n > 0 {
		return nil
	}

	var exists int
	if err := l.db.GetContext(ctx, &exists, "SELECT COUNT(*) FROM accounts WHERE address = ?", address); err != nil {
		return errors.Wrap(err, "checking account")
	}
	if exists == 0 {
		return errors.WithMessage(wallet.ErrAccountNotFound, address)
	}
	return errors.WithMessagef(wallet.ErrCounterOverflow, "adding %d for %s", amount, address)
}

func expectRow(res sql.Result, address string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "reading affected rows")
	}
	if n == 0 {
		return errors.WithMessage(wallet.ErrAccountNotFound, address)
	}
	return nil
}

// Close implements wallet.Ledger.
func (l *Ledger) Close() error {
	return errors.Wrap(l.db.Close(), "closing ledger")
}
