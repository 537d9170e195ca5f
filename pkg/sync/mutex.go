// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package sync contains synchronization primitives that complement the
// standard library's sync package.
package sync // import "perun.network/go-algowallet/pkg/sync"

import (
	"context"
	stdsync "sync"
)

// Mutex is a mutex that can be acquired with a context. The zero value is an
// unlocked mutex. A Mutex must not be copied after first use.
type Mutex struct {
	once   stdsync.Once
	locked chan struct{}
}

func (m *Mutex) init() {
	m.once.Do(func() { m.locked = make(chan struct{}, 1) })
}

// Lock blocks until the mutex is acquired.
func (m *Mutex) Lock() {
	m.init()
	m.locked <- struct{}{}
}

// TryLock acquires the mutex only if it is free and reports whether it did.
func (m *Mutex) TryLock() bool {
	m.init()
	select {
	case m.locked <- struct{}{}:
		return true
	default:
		return false
	}
}

// TryLockCtx waits for the mutex until ctx is done. A nil context behaves
// like TryLock. A context that is already done never acquires the mutex.
func (m *Mutex) TryLockCtx(ctx context.Context) bool {
	if ctx == nil {
		return m.TryLock()
	}
	m.init()
	select {
	case <-ctx.Done():
		return false
	default:
	}

	select {
	case m.locked <- struct{}{}:
		return true
	case <-ctx.Done():
		return false
	}
}

// Unlock releases the mutex. Unlocking an unlocked mutex panics.
func (m *Mutex) Unlock() {
	m.init()
	select {
	case <-m.locked:
	default:
		panic("unlock of unlocked mutex")
	}
}
