// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package ovwigho

import (
	"github.com/gagliardetto/solana-go"

	"github.com/amxrac/ovwigho/codec"
	"github.com/amxrac/ovwigho/consts"
	"github.com/amxrac/ovwigho/ledger"
	"github.com/amxrac/ovwigho/merkle"
	"github.com/amxrac/ovwigho/pda"
	"github.com/amxrac/ovwigho/programs/compression"
)

var (
	initializeDiscriminator = codec.InstructionDiscriminator("initialize")
	mintCNFTDiscriminator   = codec.InstructionDiscriminator("mint_cnft")
	burnCNFTDiscriminator   = codec.InstructionDiscriminator("burn_cnft")
	mintNFTDiscriminator    = codec.InstructionDiscriminator("mint_nft")
)

type InitializeArgs struct {
	MaxDepth      uint32
	MaxBufferSize uint32
	CNFTArgs      CollectionArgs
	NFTArgs       CollectionArgs
}

type MintCNFTArgs struct {
	Name   string
	URI    string
	Symbol string
}

type BurnCNFTArgs struct {
	Root          [consts.NodeLen]byte
	DataHash      [consts.NodeLen]byte
	CreatorHash   [consts.NodeLen]byte
	Nonce         uint64
	Index         uint32
	AssetDataHash [consts.NodeLen]byte
	Flags         uint8
}

type MintNFTArgs struct {
	Name string
	URI  string
}

// Account positions of initialize.
const (
	initAuthorityAccount = iota
	initConfigAccount
	initCNFTCollectionAccount
	initNFTCollectionAccount
	initTreeConfigAccount
	initMerkleTreeAccount
	initLogWrapperAccount
	initBubblegumAccount
	initCompressionAccount
	initCoreAccount
	initSystemAccount
)

type InitializeAccounts struct {
	Authority      solana.PublicKey
	Config         solana.PublicKey
	CNFTCollection solana.PublicKey
	NFTCollection  solana.PublicKey
	TreeConfig     solana.PublicKey
	MerkleTree     solana.PublicKey
}

// NewInitializeAccounts derives the config and tree config addresses of
// [authority] and [tree].
func NewInitializeAccounts(authority, cnftCollection, nftCollection, tree solana.PublicKey) (InitializeAccounts, error) {
	config, _, err := pda.ConfigAddress(authority)
	if err != nil {
		return InitializeAccounts{}, err
	}
	treeConfig, _, err := pda.TreeConfigAddress(tree)
	if err != nil {
		return InitializeAccounts{}, err
	}
	return InitializeAccounts{
		Authority:      authority,
		Config:         config,
		CNFTCollection: cnftCollection,
		NFTCollection:  nftCollection,
		TreeConfig:     treeConfig,
		MerkleTree:     tree,
	}, nil
}

func NewInitializeInstruction(accs InitializeAccounts, args InitializeArgs) solana.Instruction {
	return solana.NewInstruction(
		consts.OvwighoProgramID,
		solana.AccountMetaSlice{
			solana.NewAccountMeta(accs.Authority, true, true),
			solana.NewAccountMeta(accs.Config, true, false),
			solana.NewAccountMeta(accs.CNFTCollection, true, true),
			solana.NewAccountMeta(accs.NFTCollection, true, true),
			solana.NewAccountMeta(accs.TreeConfig, true, false),
			solana.NewAccountMeta(accs.MerkleTree, true, false),
			solana.NewAccountMeta(consts.NoopProgramID, false, false),
			solana.NewAccountMeta(consts.BubblegumProgramID, false, false),
			solana.NewAccountMeta(consts.CompressionProgramID, false, false),
			solana.NewAccountMeta(consts.CoreProgramID, false, false),
			solana.NewAccountMeta(consts.SystemProgramID, false, false),
		},
		ledger.EncodeArgs(initializeDiscriminator, args),
	)
}

// Account positions of mint_cnft.
const (
	mintCNFTPlayerAccount = iota
	mintCNFTAuthorityAccount
	mintCNFTConfigAccount
	mintCNFTCollectionAccount
	mintCNFTTreeConfigAccount
	mintCNFTMerkleTreeAccount
	mintCNFTCoreCPISignerAccount
	mintCNFTLogWrapperAccount
	mintCNFTBubblegumAccount
	mintCNFTCompressionAccount
	mintCNFTSystemAccount
	mintCNFTCoreAccount
)

// CompressedAccounts are the accounts shared by mint_cnft and burn_cnft.
type CompressedAccounts struct {
	Player         solana.PublicKey
	Authority      solana.PublicKey
	Config         solana.PublicKey
	CNFTCollection solana.PublicKey
	TreeConfig     solana.PublicKey
	MerkleTree     solana.PublicKey
	CoreCPISigner  solana.PublicKey
}

// NewCompressedAccounts derives every program address [player] needs to
// touch the compressed collection of [authority].
func NewCompressedAccounts(player, authority, cnftCollection, tree solana.PublicKey) (CompressedAccounts, error) {
	config, _, err := pda.ConfigAddress(authority)
	if err != nil {
		return CompressedAccounts{}, err
	}
	treeConfig, _, err := pda.TreeConfigAddress(tree)
	if err != nil {
		return CompressedAccounts{}, err
	}
	signer, _, err := pda.CoreCPISignerAddress()
	if err != nil {
		return CompressedAccounts{}, err
	}
	return CompressedAccounts{
		Player:         player,
		Authority:      authority,
		Config:         config,
		CNFTCollection: cnftCollection,
		TreeConfig:     treeConfig,
		MerkleTree:     tree,
		CoreCPISigner:  signer,
	}, nil
}

func NewMintCNFTInstruction(accs CompressedAccounts, args MintCNFTArgs) solana.Instruction {
	return solana.NewInstruction(
		consts.OvwighoProgramID,
		solana.AccountMetaSlice{
			solana.NewAccountMeta(accs.Player, true, true),
			solana.NewAccountMeta(accs.Authority, false, false),
			solana.NewAccountMeta(accs.Config, true, false),
			solana.NewAccountMeta(accs.CNFTCollection, true, false),
			solana.NewAccountMeta(accs.TreeConfig, true, false),
			solana.NewAccountMeta(accs.MerkleTree, true, false),
			solana.NewAccountMeta(accs.CoreCPISigner, false, false),
			solana.NewAccountMeta(consts.NoopProgramID, false, false),
			solana.NewAccountMeta(consts.BubblegumProgramID, false, false),
			solana.NewAccountMeta(consts.CompressionProgramID, false, false),
			solana.NewAccountMeta(consts.SystemProgramID, false, false),
			solana.NewAccountMeta(consts.CoreProgramID, false, false),
		},
		ledger.EncodeArgs(mintCNFTDiscriminator, args),
	)
}

// Account positions of burn_cnft. Proof nodes follow the last one.
const (
	burnCNFTPlayerAccount = iota
	burnCNFTAuthorityAccount
	burnCNFTConfigAccount
	burnCNFTPlayerProgressAccount
	burnCNFTCollectionAccount
	burnCNFTTreeConfigAccount
	burnCNFTMerkleTreeAccount
	burnCNFTCoreCPISignerAccount
	burnCNFTLogWrapperAccount
	burnCNFTBubblegumAccount
	burnCNFTCompressionAccount
	burnCNFTSystemAccount
	burnCNFTCoreAccount
	burnCNFTProofStart
)

func NewBurnCNFTInstruction(accs CompressedAccounts, args BurnCNFTArgs, proof []merkle.Node) (solana.Instruction, error) {
	progress, _, err := pda.PlayerProgressAddress(accs.Player)
	if err != nil {
		return nil, err
	}
	metas := solana.AccountMetaSlice{
		solana.NewAccountMeta(accs.Player, true, true),
		solana.NewAccountMeta(accs.Authority, false, false),
		solana.NewAccountMeta(accs.Config, true, false),
		solana.NewAccountMeta(progress, true, false),
		solana.NewAccountMeta(accs.CNFTCollection, true, false),
		solana.NewAccountMeta(accs.TreeConfig, true, false),
		solana.NewAccountMeta(accs.MerkleTree, true, false),
		solana.NewAccountMeta(accs.CoreCPISigner, false, false),
		solana.NewAccountMeta(consts.NoopProgramID, false, false),
		solana.NewAccountMeta(consts.BubblegumProgramID, false, false),
		solana.NewAccountMeta(consts.CompressionProgramID, false, false),
		solana.NewAccountMeta(consts.SystemProgramID, false, false),
		solana.NewAccountMeta(consts.CoreProgramID, false, false),
	}
	return solana.NewInstruction(
		consts.OvwighoProgramID,
		append(metas, compression.ProofMetas(proof)...),
		ledger.EncodeArgs(burnCNFTDiscriminator, args),
	), nil
}

// Account positions of mint_nft.
const (
	mintNFTPlayerAccount = iota
	mintNFTAuthorityAccount
	mintNFTConfigAccount
	mintNFTPlayerProgressAccount
	mintNFTCollectionAccount
	mintNFTAssetAccount
	mintNFTCoreAccount
	mintNFTSystemAccount
)

// NewMintNFTInstruction mints [asset], which must sign, into the
// uncompressed collection of [authority].
func NewMintNFTInstruction(player, authority, nftCollection, asset solana.PublicKey, args MintNFTArgs) (solana.Instruction, error) {
	config, _, err := pda.ConfigAddress(authority)
	if err != nil {
		return nil, err
	}
	progress, _, err := pda.PlayerProgressAddress(player)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(
		consts.OvwighoProgramID,
		solana.AccountMetaSlice{
			solana.NewAccountMeta(player, true, true),
			solana.NewAccountMeta(authority, false, false),
			solana.NewAccountMeta(config, true, false),
			solana.NewAccountMeta(progress, true, false),
			solana.NewAccountMeta(nftCollection, true, false),
			solana.NewAccountMeta(asset, true, true),
			solana.NewAccountMeta(consts.CoreProgramID, false, false),
			solana.NewAccountMeta(consts.SystemProgramID, false, false),
		},
		ledger.EncodeArgs(mintNFTDiscriminator, args),
	), nil
}
