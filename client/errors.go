// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package client

import "errors"

var (
	ErrUnknownTree    = errors.New("tree is not tracked by this client")
	ErrTreeMismatch   = errors.New("tracked tree does not match the ledger")
	ErrAssetBurned    = errors.New("asset already burned")
	ErrInvalidCanopy  = errors.New("canopy depth exceeds max depth")
	ErrMissingKeypair = errors.New("missing keypair")
)
