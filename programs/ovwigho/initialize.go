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
	"github.com/amxrac/ovwigho/merkle"
	"github.com/amxrac/ovwigho/metadata"
	"github.com/amxrac/ovwigho/pda"
	"github.com/amxrac/ovwigho/programs/bubblegum"
	"github.com/amxrac/ovwigho/programs/core"
)

// initialize binds a preallocated tree and two fresh collections to the
// config of the signing authority. Every check runs before the first
// invocation, so a rejected call never leaves a partial collection.
func (p *Program) initialize(ctx context.Context, ic *ledger.InvokeContext, args InitializeArgs) error {
	if err := ic.RequireSignerAnchor(initAuthorityAccount); err != nil {
		return err
	}
	for _, i := range []int{initAuthorityAccount, initConfigAccount, initTreeConfigAccount, initMerkleTreeAccount} {
		if err := ic.RequireWritable(i); err != nil {
			return err
		}
	}
	for _, i := range []int{initCNFTCollectionAccount, initNFTCollectionAccount} {
		if err := ic.RequireSignerAnchor(i); err != nil {
			return err
		}
		if err := ic.RequireWritable(i); err != nil {
			return err
		}
	}
	if err := requirePrograms(ic,
		programAt{initLogWrapperAccount, consts.NoopProgramID},
		programAt{initBubblegumAccount, consts.BubblegumProgramID},
		programAt{initCompressionAccount, consts.CompressionProgramID},
		programAt{initCoreAccount, consts.CoreProgramID},
		programAt{initSystemAccount, consts.SystemProgramID},
	); err != nil {
		return err
	}

	for _, m := range []CollectionArgs{args.CNFTArgs, args.NFTArgs} {
		if err := metadata.Validate(m.Name, m.URI); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidMetadata, err)
		}
	}
	if err := merkle.CheckSupported(args.MaxDepth, args.MaxBufferSize); err != nil {
		return fmt.Errorf("%w: %w", ErrUnsupportedTreeParameters, err)
	}

	authority := ic.Key(initAuthorityAccount)
	configSeeds := pda.ConfigSeeds(authority)
	bump, err := pda.Verify(ic.Key(initConfigAccount), consts.OvwighoProgramID, configSeeds...)
	if err != nil {
		return fmt.Errorf("%w: %w", ledger.ErrConstraintSeeds, err)
	}
	if empty, err := isEmpty(ctx, ic, initConfigAccount); err != nil {
		return err
	} else if !empty {
		return fmt.Errorf("%w: %s", ErrAlreadyInitialized, authority)
	}

	tree := ic.Key(initMerkleTreeAccount)
	if _, err := pda.Verify(ic.Key(initTreeConfigAccount), consts.BubblegumProgramID, pda.TreeConfigSeeds(tree)...); err != nil {
		return fmt.Errorf("%w: %w", ledger.ErrConstraintSeeds, err)
	}
	if empty, err := isEmpty(ctx, ic, initTreeConfigAccount); err != nil {
		return err
	} else if !empty {
		return fmt.Errorf("%w: tree config %s exists", ErrTreeAlreadyBound, ic.Key(initTreeConfigAccount))
	}
	canopyDepth, err := p.checkTree(ctx, ic, args)
	if err != nil {
		return err
	}

	for _, i := range []int{initCNFTCollectionAccount, initNFTCollectionAccount} {
		if empty, err := isEmpty(ctx, ic, i); err != nil {
			return err
		} else if !empty {
			return fmt.Errorf("%w: %s", ErrCollectionAlreadyInitialized, ic.Key(i))
		}
	}

	c := &Config{
		Authority:      authority,
		CNFTCollection: ic.Key(initCNFTCollectionAccount),
		NFTCollection:  ic.Key(initNFTCollectionAccount),
		MerkleTree:     tree,
		TreeConfig:     ic.Key(initTreeConfigAccount),
		MaxDepth:       args.MaxDepth,
		MaxBufferSize:  args.MaxBufferSize,
		Bump:           bump,
		CNFTMetadata:   args.CNFTArgs,
		NFTMetadata:    args.NFTArgs,
	}
	if err := checkFunds(ctx, ic, c); err != nil {
		return err
	}

	signer := pda.WithBump(configSeeds, bump)
	if err := ic.Invoke(ctx, bubblegum.NewCreateTreeConfigInstruction(
		bubblegum.CreateTreeConfigAccounts{
			TreeConfig:  c.TreeConfig,
			MerkleTree:  tree,
			Payer:       authority,
			TreeCreator: ic.Key(initConfigAccount),
		},
		bubblegum.CreateTreeConfigArgs{
			MaxDepth:      args.MaxDepth,
			MaxBufferSize: args.MaxBufferSize,
		},
	), signer); err != nil {
		return err
	}
	if err := ic.Invoke(ctx, core.NewCreateCollectionInstruction(
		c.CNFTCollection,
		ic.Key(initConfigAccount),
		authority,
		core.CreateCollectionArgs{
			Name:        args.CNFTArgs.Name,
			URI:         args.CNFTArgs.URI,
			BubblegumV2: true,
		},
	), signer); err != nil {
		return err
	}
	if err := ic.Invoke(ctx, core.NewCreateCollectionInstruction(
		c.NFTCollection,
		ic.Key(initConfigAccount),
		authority,
		core.CreateCollectionArgs{
			Name: args.NFTArgs.Name,
			URI:  args.NFTArgs.URI,
		},
	), signer); err != nil {
		return err
	}
	if err := initPDA(ctx, ic, initAuthorityAccount, initConfigAccount, c.Len(), signer); err != nil {
		return err
	}
	if err := storeConfig(ctx, ic, initConfigAccount, c); err != nil {
		return err
	}
	p.log.Info("initialized collection",
		zap.Stringer("authority", authority),
		zap.Stringer("config", ic.Key(initConfigAccount)),
		zap.Stringer("tree", tree),
		zap.Uint32("maxDepth", args.MaxDepth),
		zap.Uint32("maxBufferSize", args.MaxBufferSize),
		zap.Uint32("canopyDepth", canopyDepth),
	)
	return nil
}

// checkTree requires an allocated, uninitialized compression account sized
// for the requested parameters and returns its canopy depth.
func (*Program) checkTree(ctx context.Context, ic *ledger.InvokeContext, args InitializeArgs) (uint32, error) {
	a, err := ic.GetAccount(ctx, initMerkleTreeAccount)
	if err != nil {
		return 0, err
	}
	if a.Lamports == 0 || a.Owner != consts.CompressionProgramID {
		return 0, fmt.Errorf("%w: owner %s", ErrTreeNotPreallocated, a.Owner)
	}
	h, err := merkle.ParseHeader(a.Data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrTreeSizeMismatch, err)
	}
	if h.IsInitialized() {
		return 0, fmt.Errorf("%w: tree %s is initialized", ErrTreeAlreadyBound, ic.Key(initMerkleTreeAccount))
	}
	canopyDepth, err := merkle.CanopyDepthForSize(args.MaxDepth, args.MaxBufferSize, uint64(len(a.Data)))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrTreeSizeMismatch, err)
	}
	return canopyDepth, nil
}

// checkFunds requires the authority to cover the rent of every account the
// invocations create.
func checkFunds(ctx context.Context, ic *ledger.InvokeContext, c *Config) error {
	rent := ic.Rent()
	var (
		need uint64
		err  error
	)
	for _, space := range []uint64{
		bubblegum.TreeConfigLen,
		core.CollectionLen(c.CNFTMetadata.Name, c.CNFTMetadata.URI),
		core.CollectionLen(c.NFTMetadata.Name, c.NFTMetadata.URI),
		c.Len(),
	} {
		if need, err = smath.Add(need, rent.MinimumBalance(space)); err != nil {
			return fmt.Errorf("%w: %w", ErrInsufficientFunds, err)
		}
	}
	a, err := ic.GetAccount(ctx, initAuthorityAccount)
	if err != nil {
		return err
	}
	if a.Lamports < need {
		return fmt.Errorf("%w: have %d need %d", ErrInsufficientFunds, a.Lamports, need)
	}
	// The authority must be drained or stay rent exempt.
	if rest := a.Lamports - need; rest != 0 && rest < rent.MinimumBalance(0) {
		return fmt.Errorf("%w: %d left below rent exemption", ErrInsufficientFunds, rest)
	}
	return nil
}
