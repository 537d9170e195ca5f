// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package test contains helpers for tests that run code in several goroutines.
package test // import "perun.network/go-algowallet/pkg/test"

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	pkgsync "perun.network/go-algowallet/pkg/sync"
)

// worker is the require.TestingT handed to a single goroutine. Failures are
// collected and reported on the parent after all workers returned.
type worker struct {
	index  int
	failed *atomic.Bool

	mu   sync.Mutex
	msgs []string
}

func (w *worker) Errorf(format string, args ...interface{}) {
	w.failed.Store(true)
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, fmt.Sprintf(format, args...))
}

// FailNow stops the calling goroutine. It must only be called from the
// worker's own goroutine.
func (w *worker) FailNow() {
	w.failed.Store(true)
	runtime.Goexit()
}

// Parallel runs fn in n goroutines that are released at the same time and
// waits until all of them returned. fn receives its goroutine index. If any
// goroutine failed, t is failed with all collected messages.
func Parallel(t require.TestingT, n int, fn func(t require.TestingT, i int)) {
	if n <= 0 {
		panic(fmt.Sprintf("Parallel: invalid goroutine count %d", n))
	}

	var (
		start   pkgsync.Closer
		done    sync.WaitGroup
		failed  atomic.Bool
		workers = make([]*worker, n)
	)
	done.Add(n)
	for i := range workers {
		w := &worker{index: i, failed: &failed}
		workers[i] = w
		go func() {
			defer done.Done()
			<-start.Closed()
			fn(w, w.index)
		}()
	}
	start.Close()
	done.Wait()

	if !failed.Load() {
		return
	}
	for _, w := range workers {
		for _, msg := range w.msgs {
			t.Errorf("goroutine %d: %s", w.index, msg)
		}
	}
	t.FailNow()
}
