// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package logrus adapts a logrus logger to the go-algowallet log interface.
package logrus // import "perun.network/go-algowallet/log/logrus"

import (
	"github.com/sirupsen/logrus"

	"perun.network/go-algowallet/log"
)

// Logger wraps a logrus entry so that it satisfies log.Logger.
type Logger struct {
	*logrus.Entry
}

var _ log.Logger = (*Logger)(nil)

// FromLogrus creates a log.Logger from a logrus logger.
func FromLogrus(l *logrus.Logger) *Logger {
	return &Logger{logrus.NewEntry(l)}
}

// Set installs a logrus logger with the given level and formatter as the
// package logger.
func Set(level logrus.Level, formatter logrus.Formatter) {
	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(formatter)
	log.Set(FromLogrus(logger))
}

// WithField returns a child logger carrying the field.
func (l *Logger) WithField(key string, value interface{}) log.Logger {
	return &Logger{l.Entry.WithField(key, value)}
}

// WithFields returns a child logger carrying the fields.
func (l *Logger) WithFields(fs log.Fields) log.Logger {
	return &Logger{l.Entry.WithFields(logrus.Fields(fs))}
}

// WithError returns a child logger carrying the error.
func (l *Logger) WithError(err error) log.Logger {
	return &Logger{l.Entry.WithError(err)}
}
