// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package ovwigho

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/amxrac/ovwigho/codec"
	"github.com/amxrac/ovwigho/consts"
	"github.com/amxrac/ovwigho/ledger"
	"github.com/amxrac/ovwigho/storage"
)

var (
	ConfigDiscriminator         = codec.AccountDiscriminator("Config")
	PlayerProgressDiscriminator = codec.AccountDiscriminator("PlayerProgress")
)

// PlayerProgressLen is the discriminator plus the encoding of
// [PlayerProgress].
const PlayerProgressLen = consts.DiscriminatorLen + 2*consts.PublicKeyLen + 2*consts.Uint32Len + consts.ByteLen

// CollectionArgs names one of the two collections and points at its
// off-chain metadata.
type CollectionArgs struct {
	Name string
	URI  string
}

func (c CollectionArgs) len() int {
	return 2*consts.Uint32Len + len(c.Name) + len(c.URI)
}

// Config is the collection config of one authority. Fixed size fields
// come first so their offsets never move.
type Config struct {
	Authority        solana.PublicKey
	CNFTCollection   solana.PublicKey
	NFTCollection    solana.PublicKey
	MerkleTree       solana.PublicKey
	TreeConfig       solana.PublicKey
	MaxDepth         uint32
	MaxBufferSize    uint32
	TotalCNFTsMinted uint32
	TotalNFTsMinted  uint32
	Bump             uint8
	CNFTMetadata     CollectionArgs
	NFTMetadata      CollectionArgs
}

// Len is the exact size of the account holding [c].
func (c *Config) Len() uint64 {
	return uint64(consts.DiscriminatorLen + 5*consts.PublicKeyLen + 4*consts.Uint32Len + consts.ByteLen +
		c.CNFTMetadata.len() + c.NFTMetadata.len())
}

func (c *Config) Marshal() ([]byte, error) {
	return codec.MarshalWithDiscriminator(ConfigDiscriminator, *c)
}

func UnmarshalConfig(a *storage.Account) (*Config, error) {
	if err := checkOwner(a); err != nil {
		return nil, err
	}
	var c Config
	if err := codec.UnmarshalWithDiscriminator(ConfigDiscriminator, a.Data, &c); err != nil {
		return nil, fmt.Errorf("%w: %w", ledger.ErrAccountDiscriminatorMismatch, err)
	}
	return &c, nil
}

// PlayerProgress counts the burns a player has banked towards the next
// uncompressed mint.
type PlayerProgress struct {
	Player           solana.PublicKey
	Authority        solana.PublicKey
	TotalCNFTsBurned uint32
	TotalNFTsMinted  uint32
	Bump             uint8
}

func (p *PlayerProgress) Marshal() ([]byte, error) {
	return codec.MarshalWithDiscriminator(PlayerProgressDiscriminator, *p)
}

func UnmarshalPlayerProgress(a *storage.Account) (*PlayerProgress, error) {
	if err := checkOwner(a); err != nil {
		return nil, err
	}
	var p PlayerProgress
	if err := codec.UnmarshalWithDiscriminator(PlayerProgressDiscriminator, a.Data, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", ledger.ErrAccountDiscriminatorMismatch, err)
	}
	return &p, nil
}

func checkOwner(a *storage.Account) error {
	if len(a.Data) == 0 {
		return ledger.ErrAccountNotInitialized
	}
	if a.Owner != consts.OvwighoProgramID {
		return fmt.Errorf("%w: owner %s", ledger.ErrAccountOwnedByWrongProgram, a.Owner)
	}
	return nil
}
