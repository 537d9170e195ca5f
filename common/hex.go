// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package common provides encoding helpers used throughout go-algowallet.
package common // import "perun.network/go-algowallet/common"

import (
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

// DecodeHex decodes a hex string with or without a 0x prefix.
func DecodeHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if !has0xPrefix(s) {
		s = "0x" + s
	}
	b, err := hexutil.Decode(s)
	return b, errors.Wrap(err, "decoding hex")
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// EncodeHex returns the lowercase hex encoding of b without prefix.
func EncodeHex(b []byte) string {
	return hex.EncodeToString(b)
}

// EncodeHex0x returns the lowercase hex encoding of b with a 0x prefix.
func EncodeHex0x(b []byte) string {
	return hexutil.Encode(b)
}
