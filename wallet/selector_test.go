// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextActiveIndex(t *testing.T) {
	tests := []struct {
		name                   string
		active, removed, count int
		want                   int
	}{
		{"removed before active", 2, 0, 2, 1},
		{"removed after active", 0, 2, 2, 0},
		{"removed active in middle", 1, 1, 2, 1},
		{"removed active at end", 2, 2, 2, 1},
		{"removed only account", 0, 0, 0, 0},
		{"removed first active", 0, 0, 3, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, nextActiveIndex(tt.active, tt.removed, tt.count), tt.name)
	}
}

func TestResolve(t *testing.T) {
	accs := []Account{{Nickname: "a"}, {Nickname: "b"}, {Nickname: "c"}}
	idx := func(i int) *int { return &i }

	i, err := resolve(accs, Selector{Nickname: "c"})
	require.NoError(t, err)
	assert.Equal(t, 2, i)

	i, err = resolve(accs, Selector{Index: idx(1)})
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	i, err = resolve(accs, Selector{Nickname: "c", Index: idx(0)})
	require.NoError(t, err)
	assert.Equal(t, 0, i, "index wins over nickname")

	for _, sel := range []Selector{{}, {Nickname: "z"}, {Index: idx(3)}, {Index: idx(-1)}} {
		_, err := resolve(accs, sel)
		assert.Equal(t, KindInvalidParams, KindOf(err), "%+v", sel)
	}
}
