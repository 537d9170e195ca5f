// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package sqlite

import (
	"context"
	"embed"
	"io/fs"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"perun.network/go-algowallet/log"
)

//go:embed migrations/*.sql
var migrations embed.FS

// migrate applies all embedded migrations that are not yet recorded in
// schema_migrations, each in its own transaction and in file name order.
func migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    TEXT PRIMARY KEY,
		applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return errors.Wrap(err, "creating schema_migrations")
	}

	files, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return errors.Wrap(err, "listing migrations")
	}
	sort.Strings(files)

	var applied []string
	if err := db.SelectContext(ctx, &applied, "SELECT version FROM schema_migrations"); err != nil {
		return errors.Wrap(err, "reading applied migrations")
	}
	done := make(map[string]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	for _, file := range files {
		version := strings.TrimSuffix(strings.TrimPrefix(file, "migrations/"), ".sql")
		if done[version] {
			continue
		}
		script, err := migrations.ReadFile(file)
		if err != nil {
			return errors.Wrapf(err, "reading migration %s", version)
		}
		if err := applyMigration(ctx, db, version, string(script)); err != nil {
			return err
		}
		log.WithField("version", version).Debug("Applied ledger migration")
	}
	return nil
}

func applyMigration(ctx context.Context, db *sqlx.DB, version, script string) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrapf(err, "beginning migration %s", version)
	}
	defer tx.Rollback() // nolint: errcheck

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return errors.Wrapf(err, "executing migration %s", version)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return errors.Wrapf(err, "recording migration %s", version)
	}
	return errors.Wrapf(tx.Commit(), "committing migration %s", version)
}
