// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package wallet

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies errors returned by the Manager.
type ErrorKind string

const (
	// KindInvalidParams marks malformed, missing or ambiguous arguments.
	KindInvalidParams ErrorKind = "InvalidParams"
	// KindInvalidRequest marks valid arguments in an invalid wallet state.
	KindInvalidRequest ErrorKind = "InvalidRequest"
	// KindInternal marks keychain, storage or network failures.
	KindInternal ErrorKind = "InternalError"
	// KindLimitExceeded marks a spending policy violation. It is a subtype of
	// KindInvalidRequest.
	KindLimitExceeded ErrorKind = "LimitExceeded"
)

// Error is the error type returned by Manager operations.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Cause returns the underlying error, if any.
func (e *Error) Cause() error { return e.cause }

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error { return e.cause }

func invalidParams(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidParams, Message: fmt.Sprintf(format, args...)}
}

func invalidRequest(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidRequest, Message: fmt.Sprintf(format, args...)}
}

func internalError(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...), cause: err}
}

func limitExceeded(format string, args ...interface{}) *Error {
	return &Error{Kind: KindLimitExceeded, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err. Errors that are not a *Error are internal,
// a nil error has no kind.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var werr *Error
	if errors.As(err, &werr) {
		return werr.Kind
	}
	return KindInternal
}

// IsInvalidRequest reports whether err is an InvalidRequest, including
// LimitExceeded.
func IsInvalidRequest(err error) bool {
	k := KindOf(err)
	return k == KindInvalidRequest || k == KindLimitExceeded
}
