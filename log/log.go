// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package log is the logging facade of go-algowallet. Applications install
// their logger with Set; until then nothing is logged.
//
// The interface mirrors logrus, which is the logger of choice. A logrus
// logger is adapted with the log/logrus subpackage.
package log // import "perun.network/go-algowallet/log"

// Log is the package logger used by the forwarding functions below.
var Log Logger = None

// LevelLogger is a leveled printf-style logger.
type LevelLogger interface {
	Tracef(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})

	Trace(...interface{})
	Debug(...interface{})
	Info(...interface{})
	Warn(...interface{})
	Error(...interface{})
	Fatal(...interface{})
}

// Fields is a collection of fields that can be passed to Logger.WithFields.
type Fields map[string]interface{}

// Logger is a LevelLogger with structured field logging capabilities.
type Logger interface {
	LevelLogger

	WithField(key string, value interface{}) Logger
	WithFields(Fields) Logger
	WithError(error) Logger
}

// Set sets the package logger. A nil logger disables logging.
func Set(l Logger) {
	if l == nil {
		l = None
	}
	Log = l
}

func Tracef(format string, args ...interface{}) { Log.Tracef(format, args...) }
func Debugf(format string, args ...interface{}) { Log.Debugf(format, args...) }
func Infof(format string, args ...interface{})  { Log.Infof(format, args...) }
func Warnf(format string, args ...interface{})  { Log.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { Log.Errorf(format, args...) }
func Fatalf(format string, args ...interface{}) { Log.Fatalf(format, args...) }

func Trace(args ...interface{}) { Log.Trace(args...) }
func Debug(args ...interface{}) { Log.Debug(args...) }
func Info(args ...interface{})  { Log.Info(args...) }
func Warn(args ...interface{})  { Log.Warn(args...) }
func Error(args ...interface{}) { Log.Error(args...) }
func Fatal(args ...interface{}) { Log.Fatal(args...) }

func WithField(key string, value interface{}) Logger { return Log.WithField(key, value) }
func WithFields(fs Fields) Logger                    { return Log.WithFields(fs) }
func WithError(err error) Logger                     { return Log.WithError(err) }
