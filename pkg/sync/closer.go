// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package sync

import stdsync "sync"

// Closer is a one-shot signal. The zero value is open.
type Closer struct {
	once   stdsync.Once
	mutex  stdsync.Mutex
	closed chan struct{}
}

func (c *Closer) ch() chan struct{} {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.closed == nil {
		c.closed = make(chan struct{})
	}
	return c.closed
}

// Close closes the Closer. Further calls have no effect.
func (c *Closer) Close() {
	ch := c.ch()
	c.once.Do(func() { close(ch) })
}

// Closed returns a channel that is closed once Close is called.
func (c *Closer) Closed() <-chan struct{} {
	return c.ch()
}

// IsClosed reports whether Close was called.
func (c *Closer) IsClosed() bool {
	select {
	case <-c.Closed():
		return true
	default:
		return false
	}
}
