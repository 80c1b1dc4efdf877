// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package tstate

import "errors"

var (
	ErrInvalidKeyOrPermission = errors.New("invalid key or key permission")
	ErrAllocationDisabled     = errors.New("allocation disabled")
)
