// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package bubblegum

import (
	"github.com/gagliardetto/solana-go"

	"github.com/amxrac/ovwigho/codec"
	"github.com/amxrac/ovwigho/consts"
	"github.com/amxrac/ovwigho/ledger"
	"github.com/amxrac/ovwigho/merkle"
	"github.com/amxrac/ovwigho/programs/compression"
)

var (
	createTreeConfigDiscriminator = codec.InstructionDiscriminator("create_tree_config_v2")
	mintDiscriminator             = codec.InstructionDiscriminator("mint_v2")
	burnDiscriminator             = codec.InstructionDiscriminator("burn_v2")
)

type CreateTreeConfigArgs struct {
	MaxDepth      uint32
	MaxBufferSize uint32
	Public        bool
}

type MintArgs struct {
	Metadata MetadataArgs
}

type mintArgsWire struct {
	Metadata metadataWire
}

type BurnArgs struct {
	Root          [consts.NodeLen]byte
	DataHash      [consts.NodeLen]byte
	CreatorHash   [consts.NodeLen]byte
	AssetDataHash [consts.NodeLen]byte
	Flags         uint8
	Nonce         uint64
	Index         uint32
}

type CreateTreeConfigAccounts struct {
	TreeConfig  solana.PublicKey
	MerkleTree  solana.PublicKey
	Payer       solana.PublicKey
	TreeCreator solana.PublicKey
}

// Account positions of create_tree_config_v2.
const (
	createTreeConfigAccount = iota
	createMerkleTreeAccount
	createPayerAccount
	createTreeCreatorAccount
	createLogWrapperAccount
	createCompressionAccount
	createSystemAccount
)

func NewCreateTreeConfigInstruction(accs CreateTreeConfigAccounts, args CreateTreeConfigArgs) solana.Instruction {
	return solana.NewInstruction(
		consts.BubblegumProgramID,
		solana.AccountMetaSlice{
			solana.NewAccountMeta(accs.TreeConfig, true, false),
			solana.NewAccountMeta(accs.MerkleTree, true, false),
			solana.NewAccountMeta(accs.Payer, true, true),
			solana.NewAccountMeta(accs.TreeCreator, false, true),
			solana.NewAccountMeta(consts.NoopProgramID, false, false),
			solana.NewAccountMeta(consts.CompressionProgramID, false, false),
			solana.NewAccountMeta(consts.SystemProgramID, false, false),
		},
		ledger.EncodeArgs(createTreeConfigDiscriminator, args),
	)
}

type MintAccounts struct {
	TreeConfig            solana.PublicKey
	Payer                 solana.PublicKey
	TreeCreatorOrDelegate solana.PublicKey
	CollectionAuthority   solana.PublicKey
	LeafOwner             solana.PublicKey
	LeafDelegate          solana.PublicKey
	MerkleTree            solana.PublicKey
	CoreCollection        solana.PublicKey
	CoreCPISigner         solana.PublicKey
}

// Account positions of mint_v2.
const (
	mintTreeConfigAccount = iota
	mintPayerAccount
	mintTreeCreatorOrDelegateAccount
	mintCollectionAuthorityAccount
	mintLeafOwnerAccount
	mintLeafDelegateAccount
	mintMerkleTreeAccount
	mintCoreCollectionAccount
	mintCoreCPISignerAccount
	mintLogWrapperAccount
	mintCompressionAccount
	mintCoreAccount
	mintSystemAccount
)

func NewMintInstruction(accs MintAccounts, metadata MetadataArgs) solana.Instruction {
	return solana.NewInstruction(
		consts.BubblegumProgramID,
		solana.AccountMetaSlice{
			solana.NewAccountMeta(accs.TreeConfig, true, false),
			solana.NewAccountMeta(accs.Payer, true, true),
			solana.NewAccountMeta(accs.TreeCreatorOrDelegate, false, true),
			solana.NewAccountMeta(accs.CollectionAuthority, false, true),
			solana.NewAccountMeta(accs.LeafOwner, false, false),
			solana.NewAccountMeta(accs.LeafDelegate, false, false),
			solana.NewAccountMeta(accs.MerkleTree, true, false),
			solana.NewAccountMeta(accs.CoreCollection, true, false),
			solana.NewAccountMeta(accs.CoreCPISigner, false, false),
			solana.NewAccountMeta(consts.NoopProgramID, false, false),
			solana.NewAccountMeta(consts.CompressionProgramID, false, false),
			solana.NewAccountMeta(consts.CoreProgramID, false, false),
			solana.NewAccountMeta(consts.SystemProgramID, false, false),
		},
		ledger.EncodeArgs(mintDiscriminator, mintArgsWire{Metadata: metadata.wire()}),
	)
}

type BurnAccounts struct {
	TreeConfig     solana.PublicKey
	Payer          solana.PublicKey
	Authority      solana.PublicKey
	LeafOwner      solana.PublicKey
	LeafDelegate   solana.PublicKey
	MerkleTree     solana.PublicKey
	CoreCollection solana.PublicKey
	CoreCPISigner  solana.PublicKey
}

// Account positions of burn_v2. Proof nodes follow the last one.
const (
	burnTreeConfigAccount = iota
	burnPayerAccount
	burnAuthorityAccount
	burnLeafOwnerAccount
	burnLeafDelegateAccount
	burnMerkleTreeAccount
	burnCoreCollectionAccount
	burnCoreCPISignerAccount
	burnLogWrapperAccount
	burnCompressionAccount
	burnCoreAccount
	burnSystemAccount
	burnProofStart
)

func NewBurnInstruction(accs BurnAccounts, args BurnArgs, proof []merkle.Node) solana.Instruction {
	metas := solana.AccountMetaSlice{
		solana.NewAccountMeta(accs.TreeConfig, true, false),
		solana.NewAccountMeta(accs.Payer, true, true),
		solana.NewAccountMeta(accs.Authority, false, true),
		solana.NewAccountMeta(accs.LeafOwner, false, false),
		solana.NewAccountMeta(accs.LeafDelegate, false, false),
		solana.NewAccountMeta(accs.MerkleTree, true, false),
		solana.NewAccountMeta(accs.CoreCollection, true, false),
		solana.NewAccountMeta(accs.CoreCPISigner, false, false),
		solana.NewAccountMeta(consts.NoopProgramID, false, false),
		solana.NewAccountMeta(consts.CompressionProgramID, false, false),
		solana.NewAccountMeta(consts.CoreProgramID, false, false),
		solana.NewAccountMeta(consts.SystemProgramID, false, false),
	}
	return solana.NewInstruction(
		consts.BubblegumProgramID,
		append(metas, compression.ProofMetas(proof)...),
		ledger.EncodeArgs(burnDiscriminator, args),
	)
}
