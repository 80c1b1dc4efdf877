// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package compression

import (
	"github.com/gagliardetto/solana-go"

	"github.com/amxrac/ovwigho/codec"
	"github.com/amxrac/ovwigho/consts"
	"github.com/amxrac/ovwigho/ledger"
	"github.com/amxrac/ovwigho/merkle"
)

var (
	initEmptyMerkleTreeDiscriminator = codec.InstructionDiscriminator("init_empty_merkle_tree")
	appendDiscriminator              = codec.InstructionDiscriminator("append")
	replaceLeafDiscriminator         = codec.InstructionDiscriminator("replace_leaf")
	verifyLeafDiscriminator          = codec.InstructionDiscriminator("verify_leaf")
)

type InitEmptyMerkleTreeArgs struct {
	MaxDepth      uint32
	MaxBufferSize uint32
}

type AppendArgs struct {
	Leaf [consts.NodeLen]byte
}

type ReplaceLeafArgs struct {
	Root     [consts.NodeLen]byte
	Previous [consts.NodeLen]byte
	New      [consts.NodeLen]byte
	Index    uint32
}

type VerifyLeafArgs struct {
	Root  [consts.NodeLen]byte
	Leaf  [consts.NodeLen]byte
	Index uint32
}

// NewInitEmptyMerkleTreeInstruction initializes a preallocated [tree]
// owned by this program.
func NewInitEmptyMerkleTreeInstruction(
	tree solana.PublicKey,
	authority solana.PublicKey,
	maxDepth uint32,
	maxBufferSize uint32,
) solana.Instruction {
	return solana.NewInstruction(
		consts.CompressionProgramID,
		solana.AccountMetaSlice{
			solana.NewAccountMeta(tree, true, false),
			solana.NewAccountMeta(authority, false, true),
			solana.NewAccountMeta(consts.NoopProgramID, false, false),
		},
		ledger.EncodeArgs(initEmptyMerkleTreeDiscriminator, InitEmptyMerkleTreeArgs{
			MaxDepth:      maxDepth,
			MaxBufferSize: maxBufferSize,
		}),
	)
}

func NewAppendInstruction(tree solana.PublicKey, authority solana.PublicKey, leaf merkle.Node) solana.Instruction {
	return solana.NewInstruction(
		consts.CompressionProgramID,
		solana.AccountMetaSlice{
			solana.NewAccountMeta(tree, true, false),
			solana.NewAccountMeta(authority, false, true),
			solana.NewAccountMeta(consts.NoopProgramID, false, false),
		},
		ledger.EncodeArgs(appendDiscriminator, AppendArgs{Leaf: leaf}),
	)
}

// NewReplaceLeafInstruction passes [proof] as trailing read-only accounts.
func NewReplaceLeafInstruction(
	tree solana.PublicKey,
	authority solana.PublicKey,
	root merkle.Node,
	previous merkle.Node,
	next merkle.Node,
	index uint32,
	proof []merkle.Node,
) solana.Instruction {
	metas := solana.AccountMetaSlice{
		solana.NewAccountMeta(tree, true, false),
		solana.NewAccountMeta(authority, false, true),
		solana.NewAccountMeta(consts.NoopProgramID, false, false),
	}
	return solana.NewInstruction(
		consts.CompressionProgramID,
		append(metas, ProofMetas(proof)...),
		ledger.EncodeArgs(replaceLeafDiscriminator, ReplaceLeafArgs{
			Root:     root,
			Previous: previous,
			New:      next,
			Index:    index,
		}),
	)
}

func NewVerifyLeafInstruction(
	tree solana.PublicKey,
	root merkle.Node,
	leaf merkle.Node,
	index uint32,
	proof []merkle.Node,
) solana.Instruction {
	metas := solana.AccountMetaSlice{solana.NewAccountMeta(tree, false, false)}
	return solana.NewInstruction(
		consts.CompressionProgramID,
		append(metas, ProofMetas(proof)...),
		ledger.EncodeArgs(verifyLeafDiscriminator, VerifyLeafArgs{
			Root:  root,
			Leaf:  leaf,
			Index: index,
		}),
	)
}

// ProofMetas encodes proof nodes as read-only account metas.
func ProofMetas(proof []merkle.Node) solana.AccountMetaSlice {
	metas := make(solana.AccountMetaSlice, len(proof))
	for i, n := range proof {
		metas[i] = solana.NewAccountMeta(solana.PublicKey(n), false, false)
	}
	return metas
}

// ProofFromAccounts is the inverse of [ProofMetas].
func ProofFromAccounts(metas []ledger.AccountMeta) []merkle.Node {
	proof := make([]merkle.Node, len(metas))
	for i, m := range metas {
		proof[i] = merkle.Node(m.PublicKey)
	}
	return proof
}
