// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"errors"
	"fmt"
)

// Preflight errors reject a transaction before any instruction runs.
var (
	ErrSanitizeFailure         = errors.New("transaction failed to sanitize")
	ErrSignatureFailure        = errors.New("transaction signature verification failure")
	ErrBlockhashNotFound       = errors.New("blockhash not found")
	ErrAlreadyProcessed        = errors.New("transaction already processed")
	ErrAccountNotFound         = errors.New("account not found")
	ErrInsufficientFundsForFee = errors.New("insufficient funds for fee")
	ErrInvalidAccountForFee    = errors.New("invalid account for fee")
	ErrTransactionNotFound     = errors.New("transaction not found")
	ErrProgramAccountNotFound  = errors.New("program account not found")
	ErrInvalidProgram          = errors.New("invalid program for execution")
	ErrUnbalancedTransaction   = errors.New("sum of account balances before and after transaction do not match")
)

// Instruction errors are wrapped in a [TransactionError].
var (
	ErrInvalidInstructionData      = errors.New("invalid instruction data")
	ErrInvalidAccountData          = errors.New("invalid account data for instruction")
	ErrNotEnoughAccountKeys        = errors.New("insufficient account keys for instruction")
	ErrMissingRequiredSignature    = errors.New("missing required signature for instruction")
	ErrIncorrectProgramID          = errors.New("incorrect program id for instruction")
	ErrMissingAccount              = errors.New("an account required by the instruction is missing")
	ErrPrivilegeEscalation         = errors.New("cross-program invocation with unauthorized signer or writable account")
	ErrCallDepth                   = errors.New("cross-program invocation call depth too deep")
	ErrReadonlyAccountModified     = errors.New("instruction modified a read-only account")
	ErrModifiedProgramID           = errors.New("instruction illegally modified the program id of an account")
	ErrExternalAccountLamportSpend = errors.New("instruction spent from the balance of an account it does not own")
	ErrExternalAccountDataModified = errors.New("instruction modified data of an account it does not own")
	ErrExecutableModified          = errors.New("instruction changed executable bit of an account")
	ErrInsufficientFundsForRent    = errors.New("insufficient funds for rent")
)

// AnchorErrorOffset is the first code of framework style program errors.
const AnchorErrorOffset = 6000

// CustomError is returned by programs for their own failure modes. Codes
// are unique per program.
type CustomError struct {
	Code uint32
	Name string
	Msg  string
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("custom program error: 0x%x", e.Code)
}

// Is matches any CustomError with the same code and name.
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	return ok && t.Code == e.Code && t.Name == e.Name
}

// TransactionError carries the index of the failing instruction and the
// program logs produced up to the failure.
type TransactionError struct {
	Index int
	Err   error
	Logs  []string
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("error processing instruction %d: %v", e.Index, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

// AccountIndexError reports which transaction account failed a post
// execution check.
type AccountIndexError struct {
	Index int
	Err   error
}

func (e *AccountIndexError) Error() string {
	return fmt.Sprintf("transaction results in an account (%d) with %v", e.Index, e.Err)
}

func (e *AccountIndexError) Unwrap() error {
	return e.Err
}
