// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package system

import (
	"errors"

	"github.com/amxrac/ovwigho/ledger"
)

var (
	ErrAccountAlreadyInUse = &ledger.CustomError{
		Code: 0,
		Name: "AccountAlreadyInUse",
		Msg:  "an account with the same address already exists",
	}
	ErrInsufficientFunds = &ledger.CustomError{
		Code: 1,
		Name: "ResultWithNegativeLamports",
		Msg:  "account does not have enough SOL to perform the operation",
	}
	ErrAccountDataTooLarge = &ledger.CustomError{
		Code: 3,
		Name: "InvalidAccountDataLength",
		Msg:  "cannot allocate account data of this length",
	}

	ErrAccountNotRentExempt = errors.New("account not rent exempt")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrUnknownInstruction   = errors.New("unknown system instruction")
)
