// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package log

import "os"

// None is a logger that discards everything. Fatal still exits.
var None Logger = &none{}

type none struct{}

var _ Logger = (*none)(nil)

func (*none) Tracef(string, ...interface{}) {}
func (*none) Debugf(string, ...interface{}) {}
func (*none) Infof(string, ...interface{})  {}
func (*none) Warnf(string, ...interface{})  {}
func (*none) Errorf(string, ...interface{}) {}
func (*none) Fatalf(string, ...interface{}) { os.Exit(1) }

func (*none) Trace(...interface{}) {}
func (*none) Debug(...interface{}) {}
func (*none) Info(...interface{})  {}
func (*none) Warn(...interface{})  {}
func (*none) Error(...interface{}) {}
func (*none) Fatal(...interface{}) { os.Exit(1) }

func (n *none) WithField(string, interface{}) Logger { return n }
func (n *none) WithFields(Fields) Logger             { return n }
func (n *none) WithError(error) Logger               { return n }
