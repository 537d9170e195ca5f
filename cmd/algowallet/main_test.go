// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perun.network/go-algowallet/tool"
)

func run(t *testing.T, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestToolsCmd(t *testing.T) {
	out, err := run(t, "tools")
	require.NoError(t, err)

	var ds []tool.Descriptor
	require.NoError(t, json.Unmarshal([]byte(out), &ds))
	assert.Equal(t, tool.Describe(), ds)
}

func TestCallCmd(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ALGOWALLET_DATADIR", dir)

	out, err := run(t, "call", "--secrets", "memory", tool.ListAccounts)
	require.NoError(t, err)
	var res map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.EqualValues(t, 0, res["count"])
	assert.FileExists(t, filepath.Join(dir, "wallet.db"))

	_, err = run(t, "call", "--secrets", "memory", "wallet_rename", "{}")
	assert.Error(t, err)
}

func TestLoadFlags(t *testing.T) {
	t.Setenv("ALGOWALLET_DATADIR", t.TempDir())

	_, err := run(t, "call", "--secrets", "vault", tool.ListAccounts)
	assert.Error(t, err)
	_, err = run(t, "call", "--log-level", "loud", tool.ListAccounts)
	assert.Error(t, err)
}
