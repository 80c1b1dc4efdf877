// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import "errors"

var (
	ErrInvalidPlan        = errors.New("invalid plan")
	ErrInvalidStep        = errors.New("invalid step")
	ErrInvalidAction      = errors.New("invalid action")
	ErrDuplicateKeyName   = errors.New("duplicate key name")
	ErrNamedKeyNotFound   = errors.New("named key not found")
	ErrCollectionNotFound = errors.New("no collection initialized for authority")
	ErrNoUnburnedAssets   = errors.New("no unburned compressed assets")
	ErrUnexpectedError    = errors.New("step failed with an unexpected error")
	ErrExpectedError      = errors.New("step succeeded but an error was expected")
)
