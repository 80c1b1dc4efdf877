// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package merkle

import "errors"

var (
	ErrUnsupportedParameters  = errors.New("unsupported max depth and max buffer size pair")
	ErrCanopyTooDeep          = errors.New("canopy depth exceeds max depth")
	ErrSizeMismatch           = errors.New("account size does not match tree parameters")
	ErrInvalidHeader          = errors.New("invalid tree header")
	ErrTreeNotInitialized     = errors.New("tree not initialized")
	ErrTreeAlreadyInitialized = errors.New("tree already initialized")
	ErrTreeFull               = errors.New("tree is full")
	ErrLeafIndexOutOfBounds   = errors.New("leaf index out of bounds")
	ErrProofTooShort          = errors.New("proof too short")
	ErrRootNotFound           = errors.New("root not found in change log buffer")
	ErrLeafContentsModified   = errors.New("leaf contents modified")
	ErrInvalidProof           = errors.New("invalid proof")
)
