// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package ovwigho

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/amxrac/ovwigho/consts"
	"github.com/amxrac/ovwigho/ledger"
	"github.com/amxrac/ovwigho/pda"
	"github.com/amxrac/ovwigho/programs/bubblegum"
	"github.com/amxrac/ovwigho/programs/compression"
)

// burnCNFT burns one of the player's compressed assets and banks the burn
// on their progress, creating it on the first burn.
func (p *Program) burnCNFT(ctx context.Context, ic *ledger.InvokeContext, args BurnCNFTArgs) error {
	if err := ic.RequireSignerAnchor(burnCNFTPlayerAccount); err != nil {
		return err
	}
	if err := ic.RequireWritable(burnCNFTPlayerAccount); err != nil {
		return err
	}
	if err := requireCompressedPrograms(ic, burnCNFTLogWrapperAccount, burnCNFTBubblegumAccount,
		burnCNFTCompressionAccount, burnCNFTSystemAccount, burnCNFTCoreAccount); err != nil {
		return err
	}
	c, signer, err := loadConfig(ctx, ic, burnCNFTConfigAccount, burnCNFTAuthorityAccount)
	if err != nil {
		return err
	}
	player := ic.Key(burnCNFTPlayerAccount)
	progress, err := p.loadOrInitProgress(ctx, ic, player, c.Authority)
	if err != nil {
		return err
	}
	if err := checkCompressed(ctx, ic, c, burnCNFTCollectionAccount, burnCNFTMerkleTreeAccount); err != nil {
		return err
	}

	proof := compression.ProofFromAccounts(ic.Accounts(burnCNFTProofStart))
	if err := ic.Invoke(ctx, bubblegum.NewBurnInstruction(
		bubblegum.BurnAccounts{
			TreeConfig:     ic.Key(burnCNFTTreeConfigAccount),
			Payer:          player,
			Authority:      ic.Key(burnCNFTConfigAccount),
			LeafOwner:      player,
			LeafDelegate:   player,
			MerkleTree:     c.MerkleTree,
			CoreCollection: c.CNFTCollection,
			CoreCPISigner:  ic.Key(burnCNFTCoreCPISignerAccount),
		},
		bubblegum.BurnArgs{
			Root:          args.Root,
			DataHash:      args.DataHash,
			CreatorHash:   args.CreatorHash,
			AssetDataHash: args.AssetDataHash,
			Flags:         args.Flags,
			Nonce:         args.Nonce,
			Index:         args.Index,
		},
		proof,
	), signer); err != nil {
		return err
	}

	if progress.TotalCNFTsBurned, err = smath.Add(progress.TotalCNFTsBurned, 1); err != nil {
		return fmt.Errorf("%w: %w", ErrNumericalOverflow, err)
	}
	if err := storePlayerProgress(ctx, ic, burnCNFTPlayerProgressAccount, progress); err != nil {
		return err
	}
	p.log.Info("burned cNFT",
		zap.Stringer("player", player),
		zap.Uint64("nonce", args.Nonce),
		zap.Uint32("totalBurned", progress.TotalCNFTsBurned),
	)
	return nil
}

// loadOrInitProgress returns the progress of [player], creating the
// account paid by the player when it does not exist yet.
func (p *Program) loadOrInitProgress(
	ctx context.Context,
	ic *ledger.InvokeContext,
	player solana.PublicKey,
	authority solana.PublicKey,
) (*PlayerProgress, error) {
	if err := ic.RequireWritable(burnCNFTPlayerProgressAccount); err != nil {
		return nil, err
	}
	seeds := pda.PlayerSeeds(player)
	bump, err := pda.Verify(ic.Key(burnCNFTPlayerProgressAccount), consts.OvwighoProgramID, seeds...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ledger.ErrConstraintSeeds, err)
	}
	empty, err := isEmpty(ctx, ic, burnCNFTPlayerProgressAccount)
	if err != nil {
		return nil, err
	}
	if !empty {
		a, err := ic.GetAccount(ctx, burnCNFTPlayerProgressAccount)
		if err != nil {
			return nil, err
		}
		return UnmarshalPlayerProgress(a)
	}

	if err := initPDA(ctx, ic, burnCNFTPlayerAccount, burnCNFTPlayerProgressAccount, PlayerProgressLen, pda.WithBump(seeds, bump)); err != nil {
		return nil, err
	}
	progress := &PlayerProgress{
		Player:    player,
		Authority: authority,
		Bump:      bump,
	}
	p.log.Debug("created player progress",
		zap.Stringer("player", player),
		zap.Stringer("authority", authority),
	)
	return progress, storePlayerProgress(ctx, ic, burnCNFTPlayerProgressAccount, progress)
}
