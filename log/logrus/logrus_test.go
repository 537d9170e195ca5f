// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package logrus

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perun.network/go-algowallet/log"
)

func TestFromLogrus_Fields(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	l := FromLogrus(logger)

	l.WithField("nickname", "alice").
		WithFields(log.Fields{"index": 1}).
		WithError(errors.New("boom")).
		Warnf("removed %d", 2)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "removed 2", entry.Message)
	assert.Equal(t, "alice", entry.Data["nickname"])
	assert.Equal(t, 1, entry.Data["index"])
	assert.EqualError(t, entry.Data[logrus.ErrorKey].(error), "boom")
}

func TestFromLogrus_Level(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.InfoLevel)
	l := FromLogrus(logger)

	l.Debug("hidden")
	assert.Empty(t, hook.AllEntries())
	l.Info("shown")
	assert.Len(t, hook.AllEntries(), 1)
}

func TestSet(t *testing.T) {
	defer log.Set(nil)

	Set(logrus.ErrorLevel, &logrus.JSONFormatter{})
	_, ok := log.Log.(*Logger)
	assert.True(t, ok, "Set must install a logrus logger")

	log.Set(nil)
	assert.Equal(t, log.None, log.Log)
}
