// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package client

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/amxrac/ovwigho/merkle"
	"github.com/amxrac/ovwigho/pda"
	"github.com/amxrac/ovwigho/programs/bubblegum"
	"github.com/amxrac/ovwigho/programs/ovwigho"
)

// CompressedAsset is everything needed to burn a compressed asset later.
type CompressedAsset struct {
	ID            solana.PublicKey
	Tree          solana.PublicKey
	Owner         solana.PublicKey
	Nonce         uint64
	Index         uint32
	DataHash      merkle.Node
	CreatorHash   merkle.Node
	AssetDataHash merkle.Node
	Flags         uint8

	Signature solana.Signature
}

// MintCNFT mints a compressed asset owned by [player] into [col] and
// records its leaf in the tree mirror.
func (c *Client) MintCNFT(
	ctx context.Context,
	player solana.PrivateKey,
	col *Collection,
	args ovwigho.MintCNFTArgs,
) (*CompressedAsset, error) {
	c.l.Lock()
	defer c.l.Unlock()

	b, err := c.builder(col.MerkleTree)
	if err != nil {
		return nil, err
	}
	tc, err := c.GetTreeConfig(ctx, col.MerkleTree)
	if err != nil {
		return nil, err
	}
	if uint64(b.Len()) != tc.NumMinted {
		return nil, fmt.Errorf("%w: mirror holds %d leaves, ledger minted %d", ErrTreeMismatch, b.Len(), tc.NumMinted)
	}
	accs, err := ovwigho.NewCompressedAccounts(player.PublicKey(), col.Authority, col.CNFTCollection, col.MerkleTree)
	if err != nil {
		return nil, err
	}
	sig, err := c.send(ctx, player, []solana.Instruction{
		ovwigho.NewMintCNFTInstruction(accs, args),
	})
	if err != nil {
		return nil, err
	}

	metadata := ovwigho.CNFTMetadata(args, col.CNFTCollection)
	dataHash, err := bubblegum.DataHash(&metadata)
	if err != nil {
		return nil, err
	}
	id, _, err := pda.AssetAddress(col.MerkleTree, tc.NumMinted)
	if err != nil {
		return nil, err
	}
	asset := &CompressedAsset{
		ID:            id,
		Tree:          col.MerkleTree,
		Owner:         player.PublicKey(),
		Nonce:         tc.NumMinted,
		DataHash:      dataHash,
		CreatorHash:   bubblegum.CreatorHash(nil),
		AssetDataHash: merkle.EmptyNode,
		Signature:     sig,
	}
	index, err := b.Append(asset.leaf(col.CNFTCollection).Hash())
	if err != nil {
		return nil, err
	}
	asset.Index = index

	c.log.Debug("minted compressed asset",
		zap.Stringer("id", id),
		zap.Stringer("owner", asset.Owner),
		zap.Uint64("nonce", asset.Nonce),
	)
	return asset, nil
}

// BurnCNFT burns [asset] with a proof from the tree mirror and banks the
// burn on the owner's progress.
func (c *Client) BurnCNFT(
	ctx context.Context,
	player solana.PrivateKey,
	col *Collection,
	asset *CompressedAsset,
) (solana.Signature, error) {
	c.l.Lock()
	defer c.l.Unlock()

	b, err := c.builder(asset.Tree)
	if err != nil {
		return solana.Signature{}, err
	}
	leaf, err := b.Leaf(asset.Index)
	if err != nil {
		return solana.Signature{}, err
	}
	if leaf == merkle.EmptyNode {
		return solana.Signature{}, fmt.Errorf("%w: %s", ErrAssetBurned, asset.ID)
	}
	proof, err := b.Proof(asset.Index)
	if err != nil {
		return solana.Signature{}, err
	}
	accs, err := ovwigho.NewCompressedAccounts(player.PublicKey(), col.Authority, col.CNFTCollection, col.MerkleTree)
	if err != nil {
		return solana.Signature{}, err
	}
	ix, err := ovwigho.NewBurnCNFTInstruction(accs, ovwigho.BurnCNFTArgs{
		Root:          b.Root(),
		DataHash:      asset.DataHash,
		CreatorHash:   asset.CreatorHash,
		Nonce:         asset.Nonce,
		Index:         asset.Index,
		AssetDataHash: asset.AssetDataHash,
		Flags:         asset.Flags,
	}, proof[:col.MaxDepth-col.CanopyDepth])
	if err != nil {
		return solana.Signature{}, err
	}
	sig, err := c.send(ctx, player, []solana.Instruction{ix})
	if err != nil {
		return solana.Signature{}, err
	}
	if err := b.Set(asset.Index, merkle.EmptyNode); err != nil {
		return solana.Signature{}, err
	}

	c.log.Debug("burned compressed asset",
		zap.Stringer("id", asset.ID),
		zap.Uint32("index", asset.Index),
	)
	return sig, nil
}

// MintNFT mints an uncompressed asset into [col] for a player holding
// enough burns. A zero [asset] key is generated.
func (c *Client) MintNFT(
	ctx context.Context,
	player solana.PrivateKey,
	col *Collection,
	asset solana.PrivateKey,
	args ovwigho.MintNFTArgs,
) (solana.PublicKey, error) {
	if len(asset) == 0 {
		var err error
		asset, err = solana.NewRandomPrivateKey()
		if err != nil {
			return solana.PublicKey{}, err
		}
	}
	ix, err := ovwigho.NewMintNFTInstruction(player.PublicKey(), col.Authority, col.NFTCollection, asset.PublicKey(), args)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if _, err := c.send(ctx, player, []solana.Instruction{ix}, asset); err != nil {
		return solana.PublicKey{}, err
	}
	c.log.Debug("minted asset",
		zap.Stringer("asset", asset.PublicKey()),
		zap.Stringer("owner", player.PublicKey()),
	)
	return asset.PublicKey(), nil
}

func (a *CompressedAsset) leaf(collection solana.PublicKey) *bubblegum.LeafSchema {
	return &bubblegum.LeafSchema{
		ID:             a.ID,
		Owner:          a.Owner,
		Delegate:       a.Owner,
		Nonce:          a.Nonce,
		DataHash:       a.DataHash,
		CreatorHash:    a.CreatorHash,
		CollectionHash: bubblegum.CollectionHash(&collection),
		AssetDataHash:  a.AssetDataHash,
		Flags:          a.Flags,
	}
}
