// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package client

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	solsystem "github.com/gagliardetto/solana-go/programs/system"

	"github.com/amxrac/ovwigho/consts"
	"github.com/amxrac/ovwigho/merkle"
	"github.com/amxrac/ovwigho/programs/ovwigho"
)

// InitializeParams describes a new collection. Zero keypairs are
// generated.
type InitializeParams struct {
	MaxDepth      uint32
	MaxBufferSize uint32
	CanopyDepth   uint32

	CNFT ovwigho.CollectionArgs
	NFT  ovwigho.CollectionArgs

	Tree           solana.PrivateKey
	CNFTCollection solana.PrivateKey
	NFTCollection  solana.PrivateKey

	// TreeSpace overrides the allocated tree size when non-zero.
	TreeSpace uint64
}

// Collection holds every address bound to one authority's config.
type Collection struct {
	Authority      solana.PublicKey
	Config         solana.PublicKey
	CNFTCollection solana.PublicKey
	NFTCollection  solana.PublicKey
	MerkleTree     solana.PublicKey
	TreeConfig     solana.PublicKey

	MaxDepth      uint32
	MaxBufferSize uint32
	CanopyDepth   uint32

	Signature solana.Signature
}

// InitializeCollection allocates the tree and initializes the collection
// of [authority] in one transaction, so a rejected initialize never leaves
// an allocated tree behind. Rejections are returned as is and never
// retried.
func (c *Client) InitializeCollection(ctx context.Context, authority solana.PrivateKey, p InitializeParams) (*Collection, error) {
	if p.CanopyDepth > p.MaxDepth {
		return nil, fmt.Errorf("%w: %d > %d", ErrInvalidCanopy, p.CanopyDepth, p.MaxDepth)
	}
	space := p.TreeSpace
	if space == 0 {
		var err error
		space, err = merkle.Size(p.MaxDepth, p.MaxBufferSize, p.CanopyDepth)
		if err != nil {
			return nil, err
		}
	}
	keys := []*solana.PrivateKey{&p.Tree, &p.CNFTCollection, &p.NFTCollection}
	for _, k := range keys {
		if len(*k) != 0 {
			continue
		}
		generated, err := solana.NewRandomPrivateKey()
		if err != nil {
			return nil, err
		}
		*k = generated
	}

	lamports, err := c.cli.GetMinimumBalanceForRentExemption(ctx, space)
	if err != nil {
		return nil, err
	}
	accs, err := ovwigho.NewInitializeAccounts(
		authority.PublicKey(),
		p.CNFTCollection.PublicKey(),
		p.NFTCollection.PublicKey(),
		p.Tree.PublicKey(),
	)
	if err != nil {
		return nil, err
	}
	sig, err := c.send(ctx, authority, []solana.Instruction{
		solsystem.NewCreateAccountInstruction(
			lamports,
			space,
			consts.CompressionProgramID,
			authority.PublicKey(),
			p.Tree.PublicKey(),
		).Build(),
		ovwigho.NewInitializeInstruction(accs, ovwigho.InitializeArgs{
			MaxDepth:      p.MaxDepth,
			MaxBufferSize: p.MaxBufferSize,
			CNFTArgs:      p.CNFT,
			NFTArgs:       p.NFT,
		}),
	}, p.Tree, p.CNFTCollection, p.NFTCollection)
	if err != nil {
		return nil, err
	}

	c.l.Lock()
	c.trees[accs.MerkleTree] = merkle.NewBuilder(p.MaxDepth)
	c.l.Unlock()

	c.log.Info("initialized collection",
		zap.Stringer("authority", accs.Authority),
		zap.Stringer("config", accs.Config),
		zap.Stringer("tree", accs.MerkleTree),
		zap.Uint64("treeSpace", space),
	)
	return &Collection{
		Authority:      accs.Authority,
		Config:         accs.Config,
		CNFTCollection: accs.CNFTCollection,
		NFTCollection:  accs.NFTCollection,
		MerkleTree:     accs.MerkleTree,
		TreeConfig:     accs.TreeConfig,
		MaxDepth:       p.MaxDepth,
		MaxBufferSize:  p.MaxBufferSize,
		CanopyDepth:    p.CanopyDepth,
		Signature:      sig,
	}, nil
}

// LoadCollection rebuilds the addresses of an initialized collection from
// its config.
func (c *Client) LoadCollection(ctx context.Context, authority solana.PublicKey) (*Collection, error) {
	cfg, err := c.GetConfig(ctx, authority)
	if err != nil {
		return nil, err
	}
	a, err := c.cli.GetAccount(ctx, cfg.MerkleTree)
	if err != nil {
		return nil, err
	}
	canopyDepth, err := merkle.CanopyDepthForSize(cfg.MaxDepth, cfg.MaxBufferSize, uint64(len(a.Data)))
	if err != nil {
		return nil, err
	}
	accs, err := ovwigho.NewInitializeAccounts(authority, cfg.CNFTCollection, cfg.NFTCollection, cfg.MerkleTree)
	if err != nil {
		return nil, err
	}
	return &Collection{
		Authority:      authority,
		Config:         accs.Config,
		CNFTCollection: cfg.CNFTCollection,
		NFTCollection:  cfg.NFTCollection,
		MerkleTree:     cfg.MerkleTree,
		TreeConfig:     cfg.TreeConfig,
		MaxDepth:       cfg.MaxDepth,
		MaxBufferSize:  cfg.MaxBufferSize,
		CanopyDepth:    canopyDepth,
	}, nil
}
