// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var EmptyAddress = solana.PublicKey{}

// ParseAddress decodes a base58 account address.
func ParseAddress(s string) (solana.PublicKey, error) {
	pk, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return EmptyAddress, fmt.Errorf("%w: %q: %w", ErrInvalidAddress, s, err)
	}
	return pk, nil
}
