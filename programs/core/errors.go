// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package core

import "github.com/amxrac/ovwigho/ledger"

var (
	ErrDeserialization = &ledger.CustomError{
		Code: 1,
		Name: "DeserializationError",
		Msg:  "Error deserializing account",
	}
	ErrNumericalOverflow = &ledger.CustomError{
		Code: 5,
		Name: "NumericalOverflow",
		Msg:  "Numerical overflow",
	}
	ErrIncorrectAccount = &ledger.CustomError{
		Code: 6,
		Name: "IncorrectAccount",
		Msg:  "Invalid account",
	}
	ErrInvalidPlugin = &ledger.CustomError{
		Code: 8,
		Name: "InvalidPlugin",
		Msg:  "Invalid plugin",
	}
	ErrInvalidAuthority = &ledger.CustomError{
		Code: 9,
		Name: "InvalidAuthority",
		Msg:  "Neither the asset or any plugins have approved this operation",
	}
	ErrInvalidCollection = &ledger.CustomError{
		Code: 19,
		Name: "InvalidCollection",
		Msg:  "Invalid collection, incorrect collection account",
	}
	ErrUnknownInstruction = &ledger.CustomError{
		Code: 23,
		Name: "NotAvailable",
		Msg:  "Feature not available",
	}
)
