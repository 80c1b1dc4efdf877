// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import "errors"

var (
	ErrInsufficientLength     = errors.New("insufficient length")
	ErrDiscriminatorMismatch  = errors.New("discriminator mismatch")
	ErrInvalidAddress         = errors.New("invalid address")
	ErrUnexpectedTrailingData = errors.New("unexpected trailing data")
)
