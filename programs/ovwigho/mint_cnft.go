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
	"github.com/amxrac/ovwigho/metadata"
	"github.com/amxrac/ovwigho/programs/bubblegum"
)

func (p *Program) mintCNFT(ctx context.Context, ic *ledger.InvokeContext, args MintCNFTArgs) error {
	if err := ic.RequireSignerAnchor(mintCNFTPlayerAccount); err != nil {
		return err
	}
	if err := requireCompressedPrograms(ic, mintCNFTLogWrapperAccount, mintCNFTBubblegumAccount,
		mintCNFTCompressionAccount, mintCNFTSystemAccount, mintCNFTCoreAccount); err != nil {
		return err
	}
	if err := metadata.Validate(args.Name, args.URI); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMetadata, err)
	}
	if err := metadata.ValidateSymbol(args.Symbol); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMetadata, err)
	}
	c, signer, err := loadConfig(ctx, ic, mintCNFTConfigAccount, mintCNFTAuthorityAccount)
	if err != nil {
		return err
	}
	if err := checkCompressed(ctx, ic, c, mintCNFTCollectionAccount, mintCNFTMerkleTreeAccount); err != nil {
		return err
	}

	player := ic.Key(mintCNFTPlayerAccount)
	if err := ic.Invoke(ctx, bubblegum.NewMintInstruction(
		bubblegum.MintAccounts{
			TreeConfig:            ic.Key(mintCNFTTreeConfigAccount),
			Payer:                 player,
			TreeCreatorOrDelegate: ic.Key(mintCNFTConfigAccount),
			CollectionAuthority:   ic.Key(mintCNFTConfigAccount),
			LeafOwner:             player,
			LeafDelegate:          player,
			MerkleTree:            c.MerkleTree,
			CoreCollection:        c.CNFTCollection,
			CoreCPISigner:         ic.Key(mintCNFTCoreCPISignerAccount),
		},
		CNFTMetadata(args, c.CNFTCollection),
	), signer); err != nil {
		return err
	}

	if c.TotalCNFTsMinted, err = smath.Add(c.TotalCNFTsMinted, 1); err != nil {
		return fmt.Errorf("%w: %w", ErrNumericalOverflow, err)
	}
	if err := storeConfig(ctx, ic, mintCNFTConfigAccount, c); err != nil {
		return err
	}
	p.log.Info("minted cNFT",
		zap.Stringer("player", player),
		zap.Stringer("authority", c.Authority),
		zap.Uint32("totalMinted", c.TotalCNFTsMinted),
	)
	return nil
}

// CNFTMetadata is the metadata every compressed asset of [collection] is
// minted with.
func CNFTMetadata(args MintCNFTArgs, collection solana.PublicKey) bubblegum.MetadataArgs {
	standard := bubblegum.TokenStandardNonFungible
	return bubblegum.MetadataArgs{
		Name:          args.Name,
		Symbol:        args.Symbol,
		URI:           args.URI,
		TokenStandard: &standard,
		Collection:    &collection,
	}
}

// checkCompressed requires the collection and tree accounts to be the ones
// recorded in [c] and the collection to exist.
func checkCompressed(ctx context.Context, ic *ledger.InvokeContext, c *Config, collectionIdx, treeIdx int) error {
	for _, i := range []int{collectionIdx, treeIdx} {
		if err := ic.RequireWritable(i); err != nil {
			return err
		}
	}
	if err := ic.RequireAddress(collectionIdx, c.CNFTCollection); err != nil {
		return err
	}
	if err := ic.RequireAddress(treeIdx, c.MerkleTree); err != nil {
		return err
	}
	if empty, err := isEmpty(ctx, ic, collectionIdx); err != nil {
		return err
	} else if empty {
		return fmt.Errorf("%w: %s", ErrCollectionNotInitialized, c.CNFTCollection)
	}
	return nil
}

func requireCompressedPrograms(ic *ledger.InvokeContext, logWrapper, bubblegumIdx, compression, system, core int) error {
	return requirePrograms(ic,
		programAt{logWrapper, consts.NoopProgramID},
		programAt{bubblegumIdx, consts.BubblegumProgramID},
		programAt{compression, consts.CompressionProgramID},
		programAt{system, consts.SystemProgramID},
		programAt{core, consts.CoreProgramID},
	)
}
