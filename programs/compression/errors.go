// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package compression

import "github.com/amxrac/ovwigho/ledger"

var (
	ErrConcurrentMerkleTree = &ledger.CustomError{
		Code: 6000,
		Name: "ConcurrentMerkleTreeError",
		Msg:  "Concurrent merkle tree error",
	}
	ErrZeroCopy = &ledger.CustomError{
		Code: 6001,
		Name: "ZeroCopyError",
		Msg:  "Error zero copying account",
	}
	ErrConcurrentMerkleTreeConstants = &ledger.CustomError{
		Code: 6002,
		Name: "ConcurrentMerkleTreeConstantsError",
		Msg:  "An unsupported max depth or max buffer size constant was provided",
	}
	ErrCanopyLengthMismatch = &ledger.CustomError{
		Code: 6003,
		Name: "CanopyLengthMismatch",
		Msg:  "Expected a different byte length for the merkle tree canopy",
	}
	ErrIncorrectAuthority = &ledger.CustomError{
		Code: 6004,
		Name: "IncorrectAuthority",
		Msg:  "Provided authority does not match expected tree authority",
	}
	ErrIncorrectAccountOwner = &ledger.CustomError{
		Code: 6005,
		Name: "IncorrectAccountOwner",
		Msg:  "Account is owned by a different program, expected it to be owned by this program",
	}
	ErrIncorrectAccountType = &ledger.CustomError{
		Code: 6006,
		Name: "IncorrectAccountType",
		Msg:  "Account provided has incorrect account type",
	}
	ErrLeafIndexOutOfBounds = &ledger.CustomError{
		Code: 6007,
		Name: "LeafIndexOutOfBounds",
		Msg:  "Leaf index of concurrent merkle tree is out of bounds",
	}
)
