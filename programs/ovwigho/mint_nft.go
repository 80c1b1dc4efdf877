// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package ovwigho

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/amxrac/ovwigho/consts"
	"github.com/amxrac/ovwigho/ledger"
	"github.com/amxrac/ovwigho/metadata"
	"github.com/amxrac/ovwigho/pda"
	"github.com/amxrac/ovwigho/programs/core"
)

// BurnsPerNFT is the number of banked burns exchanged for one
// uncompressed asset.
const BurnsPerNFT = 5

// Attribute keys recorded on every uncompressed asset.
const (
	AttributePlayer     = "Player"
	AttributeCollection = "Collection"
)

func (p *Program) mintNFT(ctx context.Context, ic *ledger.InvokeContext, args MintNFTArgs) error {
	if err := ic.RequireSignerAnchor(mintNFTPlayerAccount); err != nil {
		return err
	}
	if err := ic.RequireWritable(mintNFTPlayerAccount); err != nil {
		return err
	}
	if err := requirePrograms(ic,
		programAt{mintNFTCoreAccount, consts.CoreProgramID},
		programAt{mintNFTSystemAccount, consts.SystemProgramID},
	); err != nil {
		return err
	}
	if err := metadata.Validate(args.Name, args.URI); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMetadata, err)
	}
	c, signer, err := loadConfig(ctx, ic, mintNFTConfigAccount, mintNFTAuthorityAccount)
	if err != nil {
		return err
	}

	player := ic.Key(mintNFTPlayerAccount)
	progress, err := loadProgress(ctx, ic, mintNFTPlayerProgressAccount)
	if err != nil {
		return err
	}
	if addr, err := pda.CreateWithBump(consts.OvwighoProgramID, progress.Bump, pda.PlayerSeeds(player)...); err != nil || addr != ic.Key(mintNFTPlayerProgressAccount) {
		return fmt.Errorf("%w: player progress %s", ledger.ErrConstraintSeeds, ic.Key(mintNFTPlayerProgressAccount))
	}
	if progress.TotalCNFTsBurned != BurnsPerNFT {
		return fmt.Errorf("%w: %d of %d", ErrNotEnoughBurns, progress.TotalCNFTsBurned, BurnsPerNFT)
	}

	if err := ic.RequireWritable(mintNFTCollectionAccount); err != nil {
		return err
	}
	if err := ic.RequireAddress(mintNFTCollectionAccount, c.NFTCollection); err != nil {
		return err
	}
	if empty, err := isEmpty(ctx, ic, mintNFTCollectionAccount); err != nil {
		return err
	} else if empty {
		return fmt.Errorf("%w: %s", ErrCollectionNotInitialized, c.NFTCollection)
	}
	if err := ic.RequireSignerAnchor(mintNFTAssetAccount); err != nil {
		return err
	}
	if err := ic.RequireWritable(mintNFTAssetAccount); err != nil {
		return err
	}
	if empty, err := isEmpty(ctx, ic, mintNFTAssetAccount); err != nil {
		return err
	} else if !empty {
		return fmt.Errorf("%w: %s", ErrAssetAlreadyInitialized, ic.Key(mintNFTAssetAccount))
	}

	asset := ic.Key(mintNFTAssetAccount)
	if err := ic.Invoke(ctx, core.NewCreateInstruction(
		asset,
		c.NFTCollection,
		ic.Key(mintNFTConfigAccount),
		player,
		player,
		core.CreateArgs{
			Name: args.Name,
			URI:  args.URI,
			Attributes: []core.Attribute{
				{Key: AttributePlayer, Value: player.String()},
				{Key: AttributeCollection, Value: c.NFTCollection.String()},
			},
		},
	), signer); err != nil {
		return err
	}

	if c.TotalNFTsMinted, err = smath.Add(c.TotalNFTsMinted, 1); err != nil {
		return fmt.Errorf("%w: %w", ErrNumericalOverflow, err)
	}
	progress.TotalCNFTsBurned = 0
	if progress.TotalNFTsMinted, err = smath.Add(progress.TotalNFTsMinted, 1); err != nil {
		return fmt.Errorf("%w: %w", ErrNumericalOverflow, err)
	}
	if err := storeConfig(ctx, ic, mintNFTConfigAccount, c); err != nil {
		return err
	}
	if err := storePlayerProgress(ctx, ic, mintNFTPlayerProgressAccount, progress); err != nil {
		return err
	}
	p.log.Info("minted NFT",
		zap.Stringer("player", player),
		zap.Stringer("asset", asset),
		zap.Uint32("playerMinted", progress.TotalNFTsMinted),
	)
	return nil
}

func loadProgress(ctx context.Context, ic *ledger.InvokeContext, i int) (*PlayerProgress, error) {
	if err := ic.RequireWritable(i); err != nil {
		return nil, err
	}
	a, err := ic.GetAccount(ctx, i)
	if err != nil {
		return nil, err
	}
	return UnmarshalPlayerProgress(a)
}
