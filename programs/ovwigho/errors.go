// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package ovwigho

import "github.com/amxrac/ovwigho/ledger"

var (
	ErrCollectionAlreadyInitialized = &ledger.CustomError{
		Code: ledger.AnchorErrorOffset,
		Name: "CollectionAlreadyInitialized",
		Msg:  "The collection has already been initialized.",
	}
	ErrCollectionNotInitialized = &ledger.CustomError{
		Code: ledger.AnchorErrorOffset + 1,
		Name: "CollectionNotInitialized",
		Msg:  "The collection has not been initialized.",
	}
	ErrAssetAlreadyInitialized = &ledger.CustomError{
		Code: ledger.AnchorErrorOffset + 2,
		Name: "AssetAlreadyInitialized",
		Msg:  "The asset has already been initialized.",
	}
	ErrNotEnoughBurns = &ledger.CustomError{
		Code: ledger.AnchorErrorOffset + 3,
		Name: "NotEnoughBurns",
		Msg:  "Not enough cNFTs burned",
	}
	ErrAlreadyInitialized = &ledger.CustomError{
		Code: ledger.AnchorErrorOffset + 4,
		Name: "AlreadyInitialized",
		Msg:  "The authority already has a collection config.",
	}
	ErrUnsupportedTreeParameters = &ledger.CustomError{
		Code: ledger.AnchorErrorOffset + 5,
		Name: "UnsupportedTreeParameters",
		Msg:  "The max depth and max buffer size pair is not supported.",
	}
	ErrTreeNotPreallocated = &ledger.CustomError{
		Code: ledger.AnchorErrorOffset + 6,
		Name: "TreeNotPreallocated",
		Msg:  "The merkle tree must be allocated and owned by the compression program.",
	}
	ErrTreeSizeMismatch = &ledger.CustomError{
		Code: ledger.AnchorErrorOffset + 7,
		Name: "TreeSizeMismatch",
		Msg:  "The merkle tree account size does not match the tree parameters.",
	}
	ErrTreeAlreadyBound = &ledger.CustomError{
		Code: ledger.AnchorErrorOffset + 8,
		Name: "TreeAlreadyBound",
		Msg:  "The merkle tree is already bound to a tree config.",
	}
	ErrInvalidMetadata = &ledger.CustomError{
		Code: ledger.AnchorErrorOffset + 9,
		Name: "InvalidMetadata",
		Msg:  "The collection metadata is invalid.",
	}
	ErrInsufficientFunds = &ledger.CustomError{
		Code: ledger.AnchorErrorOffset + 10,
		Name: "InsufficientFunds",
		Msg:  "The authority cannot fund the collection accounts.",
	}
	ErrNumericalOverflow = &ledger.CustomError{
		Code: ledger.AnchorErrorOffset + 11,
		Name: "NumericalOverflow",
		Msg:  "A counter overflowed.",
	}
)
