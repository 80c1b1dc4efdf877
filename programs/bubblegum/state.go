// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package bubblegum

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/amxrac/ovwigho/codec"
	"github.com/amxrac/ovwigho/consts"
	"github.com/amxrac/ovwigho/ledger"
	"github.com/amxrac/ovwigho/storage"
)

const (
	TreeConfigVersion uint8 = 2

	// TreeConfigLen is the discriminator plus the borsh encoding of
	// [TreeConfig].
	TreeConfigLen = consts.DiscriminatorLen + 3*consts.PublicKeyLen + 3*consts.Uint64Len +
		2*consts.Uint32Len + consts.BoolLen + 3*consts.ByteLen
)

var TreeConfigDiscriminator = codec.AccountDiscriminator("TreeConfig")

// TreeConfig binds a merkle tree to the creator allowed to mint into it.
type TreeConfig struct {
	TreeCreator       solana.PublicKey
	TreeDelegate      solana.PublicKey
	MerkleTree        solana.PublicKey
	TotalMintCapacity uint64
	NumMinted         uint64
	SequenceNumber    uint64
	MaxDepth          uint32
	MaxBufferSize     uint32
	IsPublic          bool
	IsDecompressible  uint8
	Version           uint8
	Bump              uint8
}

func (c *TreeConfig) Marshal() ([]byte, error) {
	return codec.MarshalWithDiscriminator(TreeConfigDiscriminator, *c)
}

// ContainsMintCapacity reports whether [n] more leaves fit.
func (c *TreeConfig) ContainsMintCapacity(n uint64) bool {
	return c.NumMinted+n <= c.TotalMintCapacity
}

// UnmarshalTreeConfig decodes the record held by [a].
func UnmarshalTreeConfig(a *storage.Account) (*TreeConfig, error) {
	if a.Owner != consts.BubblegumProgramID {
		return nil, fmt.Errorf("%w: owner %s", ledger.ErrAccountOwnedByWrongProgram, a.Owner)
	}
	if len(a.Data) == 0 {
		return nil, ledger.ErrAccountNotInitialized
	}
	var c TreeConfig
	if err := codec.UnmarshalWithDiscriminator(TreeConfigDiscriminator, a.Data, &c); err != nil {
		return nil, fmt.Errorf("%w: %w", ledger.ErrAccountDiscriminatorMismatch, err)
	}
	return &c, nil
}
