// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package ed25519

import "errors"

var (
	ErrInvalidPrivateKey = errors.New("invalid ed25519 private key")
	ErrInvalidSignature  = errors.New("signature verification failed")
)
