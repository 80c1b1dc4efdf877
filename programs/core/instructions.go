// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package core

import (
	"github.com/gagliardetto/solana-go"

	"github.com/amxrac/ovwigho/codec"
	"github.com/amxrac/ovwigho/consts"
)

// Instructions are tagged with a single leading byte.
const (
	InstructionCreateV2               uint8 = 20
	InstructionCreateCollectionV2     uint8 = 21
	InstructionUpdateCollectionInfoV1 uint8 = 32
)

// Update types accepted by UpdateCollectionInfoV1.
const (
	UpdateMint uint8 = iota
	UpdateAdd
	UpdateRemove
)

type CreateCollectionArgs struct {
	Name        string
	URI         string
	BubblegumV2 bool
}

type CreateArgs struct {
	Name       string
	URI        string
	Attributes []Attribute
}

type UpdateCollectionInfoArgs struct {
	UpdateType uint8
	Amount     uint32
}

const (
	createCollectionAccount = iota
	createCollectionUpdateAuthorityAccount
	createCollectionPayerAccount
	createCollectionSystemAccount
)

const (
	createAssetAccount = iota
	createCollectionRefAccount
	createAuthorityAccount
	createPayerAccount
	createOwnerAccount
	createSystemAccount
)

const (
	updateInfoCollectionAccount = iota
	updateInfoSignerAccount
)

func encode(tag uint8, args any) []byte {
	b, err := codec.Marshal(args)
	if err != nil {
		panic(err)
	}
	return append([]byte{tag}, b...)
}

// NewCreateCollectionInstruction creates [collection], which must sign.
func NewCreateCollectionInstruction(
	collection solana.PublicKey,
	updateAuthority solana.PublicKey,
	payer solana.PublicKey,
	args CreateCollectionArgs,
) solana.Instruction {
	return solana.NewInstruction(
		consts.CoreProgramID,
		solana.AccountMetaSlice{
			solana.NewAccountMeta(collection, true, true),
			solana.NewAccountMeta(updateAuthority, false, false),
			solana.NewAccountMeta(payer, true, true),
			solana.NewAccountMeta(consts.SystemProgramID, false, false),
		},
		encode(InstructionCreateCollectionV2, args),
	)
}

// NewCreateInstruction creates [asset] inside [collection]. [authority] is
// the collection update authority.
func NewCreateInstruction(
	asset solana.PublicKey,
	collection solana.PublicKey,
	authority solana.PublicKey,
	payer solana.PublicKey,
	owner solana.PublicKey,
	args CreateArgs,
) solana.Instruction {
	return solana.NewInstruction(
		consts.CoreProgramID,
		solana.AccountMetaSlice{
			solana.NewAccountMeta(asset, true, true),
			solana.NewAccountMeta(collection, true, false),
			solana.NewAccountMeta(authority, false, true),
			solana.NewAccountMeta(payer, true, true),
			solana.NewAccountMeta(owner, false, false),
			solana.NewAccountMeta(consts.SystemProgramID, false, false),
		},
		encode(InstructionCreateV2, args),
	)
}

func NewUpdateCollectionInfoInstruction(
	collection solana.PublicKey,
	signer solana.PublicKey,
	updateType uint8,
	amount uint32,
) solana.Instruction {
	return solana.NewInstruction(
		consts.CoreProgramID,
		solana.AccountMetaSlice{
			solana.NewAccountMeta(collection, true, false),
			solana.NewAccountMeta(signer, false, true),
		},
		encode(InstructionUpdateCollectionInfoV1, UpdateCollectionInfoArgs{
			UpdateType: updateType,
			Amount:     amount,
		}),
	)
}
