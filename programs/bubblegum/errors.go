// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package bubblegum

import "github.com/amxrac/ovwigho/ledger"

var (
	ErrAssetOwnerMismatch = &ledger.CustomError{
		Code: 6000,
		Name: "AssetOwnerMismatch",
		Msg:  "Asset Owner Does not match",
	}
	ErrMetadataNameTooLong = &ledger.CustomError{
		Code: 6012,
		Name: "MetadataNameTooLong",
		Msg:  "Name in metadata is too long",
	}
	ErrMetadataSymbolTooLong = &ledger.CustomError{
		Code: 6013,
		Name: "MetadataSymbolTooLong",
		Msg:  "Symbol in metadata is too long",
	}
	ErrMetadataURITooLong = &ledger.CustomError{
		Code: 6014,
		Name: "MetadataUriTooLong",
		Msg:  "Uri in metadata is too long",
	}
	ErrMetadataBasisPointsTooHigh = &ledger.CustomError{
		Code: 6015,
		Name: "MetadataBasisPointsTooHigh",
		Msg:  "Basis points in metadata cannot exceed 10000",
	}
	ErrTreeAuthorityIncorrect = &ledger.CustomError{
		Code: 6016,
		Name: "TreeAuthorityIncorrect",
		Msg:  "Tree creator or tree delegate must sign.",
	}
	ErrInsufficientMintCapacity = &ledger.CustomError{
		Code: 6017,
		Name: "InsufficientMintCapacity",
		Msg:  "Not enough unapproved mints left",
	}
	ErrNumericalOverflow = &ledger.CustomError{
		Code: 6018,
		Name: "NumericalOverflowError",
		Msg:  "NumericalOverflowError",
	}
	ErrLeafAuthorityMustSign = &ledger.CustomError{
		Code: 6025,
		Name: "LeafAuthorityMustSign",
		Msg:  "This transaction must be signed by either the leaf owner or leaf delegate",
	}
	ErrCollectionMismatch = &ledger.CustomError{
		Code: 6030,
		Name: "CollectionMismatch",
		Msg:  "Collection in metadata does not match the provided collection",
	}
	ErrInvalidCollectionAuthority = &ledger.CustomError{
		Code: 6034,
		Name: "InvalidCollectionAuthority",
		Msg:  "Invalid collection authority",
	}
	ErrInvalidCoreCollection = &ledger.CustomError{
		Code: 6040,
		Name: "InvalidCoreCollection",
		Msg:  "Collection must be a core collection with the BubblegumV2 plugin",
	}
	ErrInvalidTreeConfig = &ledger.CustomError{
		Code: 6041,
		Name: "InvalidTreeConfig",
		Msg:  "Tree config does not belong to the provided merkle tree",
	}
	ErrInvalidCPISigner = &ledger.CustomError{
		Code: 6042,
		Name: "InvalidMplCoreCpiSigner",
		Msg:  "Invalid core CPI signer",
	}
)
