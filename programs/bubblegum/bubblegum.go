// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

// Package bubblegum mints compressed assets into concurrent merkle trees.
// Every tree is bound to a [TreeConfig] derived from its address, and the
// tree config is the only authority the compression program accepts for
// that tree.
package bubblegum

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	solsystem "github.com/gagliardetto/solana-go/programs/system"

	"github.com/amxrac/ovwigho/codec"
	"github.com/amxrac/ovwigho/consts"
	"github.com/amxrac/ovwigho/ledger"
	"github.com/amxrac/ovwigho/merkle"
	"github.com/amxrac/ovwigho/pda"
	"github.com/amxrac/ovwigho/programs/compression"
	"github.com/amxrac/ovwigho/programs/core"
	"github.com/amxrac/ovwigho/programs/noop"
)

var _ ledger.Program = (*Program)(nil)

type Program struct {
	log logging.Logger
}

func New(log logging.Logger) *Program {
	return &Program{log: log}
}

func (*Program) ID() solana.PublicKey {
	return consts.BubblegumProgramID
}

func (*Program) Name() string {
	return "bubblegum"
}

func (p *Program) Execute(ctx context.Context, ic *ledger.InvokeContext, data []byte) error {
	d, err := ledger.Discriminator(data)
	if err != nil {
		return err
	}
	switch d {
	case createTreeConfigDiscriminator:
		ic.Log("Instruction: CreateTreeConfigV2")
		var args CreateTreeConfigArgs
		if err := ledger.DecodeArgs(data, &args); err != nil {
			return err
		}
		return p.createTreeConfig(ctx, ic, args)
	case mintDiscriminator:
		ic.Log("Instruction: MintV2")
		var args mintArgsWire
		if err := ledger.DecodeArgs(data, &args); err != nil {
			return err
		}
		return p.mint(ctx, ic, args.Metadata.args())
	case burnDiscriminator:
		ic.Log("Instruction: BurnV2")
		var args BurnArgs
		if err := ledger.DecodeArgs(data, &args); err != nil {
			return err
		}
		return p.burn(ctx, ic, args)
	default:
		return ledger.ErrInstructionFallbackNotFound
	}
}

func (p *Program) createTreeConfig(ctx context.Context, ic *ledger.InvokeContext, args CreateTreeConfigArgs) error {
	if err := ic.RequireWritable(createTreeConfigAccount); err != nil {
		return err
	}
	if err := ic.RequireWritable(createMerkleTreeAccount); err != nil {
		return err
	}
	if err := ic.RequireSignerAnchor(createPayerAccount); err != nil {
		return err
	}
	if err := ic.RequireSignerAnchor(createTreeCreatorAccount); err != nil {
		return err
	}
	if _, err := ic.Meta(createSystemAccount); err != nil {
		return err
	}
	tree := ic.Key(createMerkleTreeAccount)
	seeds := pda.TreeConfigSeeds(tree)
	bump, err := pda.Verify(ic.Key(createTreeConfigAccount), consts.BubblegumProgramID, seeds...)
	if err != nil {
		return fmt.Errorf("%w: %w", ledger.ErrConstraintSeeds, err)
	}
	if err := merkle.CheckSupported(args.MaxDepth, args.MaxBufferSize); err != nil {
		return fmt.Errorf("%w: %w", compression.ErrConcurrentMerkleTreeConstants, err)
	}

	// Allocation fails with AccountAlreadyInUse when the tree is bound.
	signer := pda.WithBump(seeds, bump)
	if err := ic.Invoke(ctx, solsystem.NewCreateAccountInstruction(
		ic.Rent().MinimumBalance(TreeConfigLen),
		TreeConfigLen,
		consts.BubblegumProgramID,
		ic.Key(createPayerAccount),
		ic.Key(createTreeConfigAccount),
	).Build(), signer); err != nil {
		return err
	}

	creator := ic.Key(createTreeCreatorAccount)
	tc := &TreeConfig{
		TreeCreator:       creator,
		TreeDelegate:      creator,
		MerkleTree:        tree,
		TotalMintCapacity: uint64(1) << args.MaxDepth,
		MaxDepth:          args.MaxDepth,
		MaxBufferSize:     args.MaxBufferSize,
		IsPublic:          args.Public,
		Version:           TreeConfigVersion,
		Bump:              bump,
	}
	if err := storeTreeConfig(ctx, ic, createTreeConfigAccount, tc); err != nil {
		return err
	}
	if err := ic.Invoke(ctx, compression.NewInitEmptyMerkleTreeInstruction(
		tree,
		ic.Key(createTreeConfigAccount),
		args.MaxDepth,
		args.MaxBufferSize,
	), signer); err != nil {
		return err
	}
	p.log.Debug("created tree config",
		zap.Stringer("tree", tree),
		zap.Stringer("creator", creator),
		zap.Uint64("capacity", tc.TotalMintCapacity),
	)
	return nil
}

func (p *Program) mint(ctx context.Context, ic *ledger.InvokeContext, metadata MetadataArgs) error {
	if err := ic.RequireSignerAnchor(mintPayerAccount); err != nil {
		return err
	}
	if err := ic.RequireWritable(mintMerkleTreeAccount); err != nil {
		return err
	}
	if _, err := ic.Meta(mintSystemAccount); err != nil {
		return err
	}
	if err := metadata.Validate(); err != nil {
		return err
	}
	tree := ic.Key(mintMerkleTreeAccount)
	tc, signer, err := loadTreeConfig(ctx, ic, mintTreeConfigAccount, tree)
	if err != nil {
		return err
	}
	if !tc.IsPublic {
		authority, err := ic.Meta(mintTreeCreatorOrDelegateAccount)
		if err != nil {
			return err
		}
		if !authority.IsSigner || (authority.PublicKey != tc.TreeCreator && authority.PublicKey != tc.TreeDelegate) {
			return fmt.Errorf("%w: %s", ErrTreeAuthorityIncorrect, authority.PublicKey)
		}
	}
	if !tc.ContainsMintCapacity(1) {
		return fmt.Errorf("%w: %d of %d", ErrInsufficientMintCapacity, tc.NumMinted, tc.TotalMintCapacity)
	}

	collection := ic.Key(mintCoreCollectionAccount)
	if err := p.checkCollection(ctx, ic, mintCoreCollectionAccount, mintCollectionAuthorityAccount); err != nil {
		return err
	}
	if metadata.Collection != nil && *metadata.Collection != collection {
		return fmt.Errorf("%w: %s", ErrCollectionMismatch, *metadata.Collection)
	}

	nonce := tc.NumMinted
	id, _, err := pda.AssetAddress(tree, nonce)
	if err != nil {
		return err
	}
	dataHash, err := DataHash(&metadata)
	if err != nil {
		return err
	}
	leaf := &LeafSchema{
		ID:             id,
		Owner:          ic.Key(mintLeafOwnerAccount),
		Delegate:       ic.Key(mintLeafDelegateAccount),
		Nonce:          nonce,
		DataHash:       dataHash,
		CreatorHash:    CreatorHash(metadata.Creators),
		CollectionHash: CollectionHash(&collection),
		AssetDataHash:  merkle.EmptyNode,
	}
	if err := ic.Invoke(ctx, compression.NewAppendInstruction(
		tree,
		ic.Key(mintTreeConfigAccount),
		leaf.Hash(),
	), signer); err != nil {
		return err
	}
	if err := p.updateCollection(ctx, ic, mintCoreCollectionAccount, mintCoreCPISignerAccount, core.UpdateMint); err != nil {
		return err
	}

	tc.NumMinted++
	if err := p.syncSequence(ctx, ic, mintMerkleTreeAccount, tc); err != nil {
		return err
	}
	if err := storeTreeConfig(ctx, ic, mintTreeConfigAccount, tc); err != nil {
		return err
	}
	if err := emitLeaf(ctx, ic, leaf); err != nil {
		return err
	}
	ic.Log("Leaf asset ID: %s", id)
	p.log.Debug("minted compressed asset",
		zap.Stringer("asset", id),
		zap.Stringer("owner", leaf.Owner),
		zap.Uint64("nonce", nonce),
	)
	return nil
}

func (p *Program) burn(ctx context.Context, ic *ledger.InvokeContext, args BurnArgs) error {
	if err := ic.RequireSignerAnchor(burnPayerAccount); err != nil {
		return err
	}
	if err := ic.RequireWritable(burnMerkleTreeAccount); err != nil {
		return err
	}
	if _, err := ic.Meta(burnSystemAccount); err != nil {
		return err
	}
	tree := ic.Key(burnMerkleTreeAccount)
	tc, signer, err := loadTreeConfig(ctx, ic, burnTreeConfigAccount, tree)
	if err != nil {
		return err
	}

	ca, err := ic.GetAccount(ctx, burnCoreCollectionAccount)
	if err != nil {
		return err
	}
	collection, err := core.UnmarshalCollection(ca)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCoreCollection, err)
	}
	authority, err := ic.Meta(burnAuthorityAccount)
	if err != nil {
		return err
	}
	owner, delegate := ic.Key(burnLeafOwnerAccount), ic.Key(burnLeafDelegateAccount)
	switch {
	case !authority.IsSigner:
		return fmt.Errorf("%w: %s", ErrLeafAuthorityMustSign, authority.PublicKey)
	case authority.PublicKey == owner, authority.PublicKey == delegate:
	case authority.PublicKey == collection.UpdateAuthority:
		// The collection update authority acts as permanent burn delegate.
	default:
		return fmt.Errorf("%w: %s", ErrLeafAuthorityMustSign, authority.PublicKey)
	}

	id, _, err := pda.AssetAddress(tree, args.Nonce)
	if err != nil {
		return err
	}
	collectionKey := ic.Key(burnCoreCollectionAccount)
	leaf := &LeafSchema{
		ID:             id,
		Owner:          owner,
		Delegate:       delegate,
		Nonce:          args.Nonce,
		DataHash:       args.DataHash,
		CreatorHash:    args.CreatorHash,
		CollectionHash: CollectionHash(&collectionKey),
		AssetDataHash:  args.AssetDataHash,
		Flags:          args.Flags,
	}
	proof := compression.ProofFromAccounts(ic.Accounts(burnProofStart))
	if err := ic.Invoke(ctx, compression.NewReplaceLeafInstruction(
		tree,
		ic.Key(burnTreeConfigAccount),
		args.Root,
		leaf.Hash(),
		merkle.EmptyNode,
		args.Index,
		proof,
	), signer); err != nil {
		return err
	}
	if err := p.updateCollection(ctx, ic, burnCoreCollectionAccount, burnCoreCPISignerAccount, core.UpdateRemove); err != nil {
		return err
	}
	if err := p.syncSequence(ctx, ic, burnMerkleTreeAccount, tc); err != nil {
		return err
	}
	if err := storeTreeConfig(ctx, ic, burnTreeConfigAccount, tc); err != nil {
		return err
	}
	p.log.Debug("burned compressed asset",
		zap.Stringer("asset", id),
		zap.Stringer("owner", owner),
		zap.Uint32("index", args.Index),
	)
	return nil
}

// checkCollection requires a BubblegumV2 collection whose update authority
// signed at [authorityIdx].
func (*Program) checkCollection(ctx context.Context, ic *ledger.InvokeContext, collectionIdx, authorityIdx int) error {
	ca, err := ic.GetAccount(ctx, collectionIdx)
	if err != nil {
		return err
	}
	c, err := core.UnmarshalCollection(ca)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCoreCollection, err)
	}
	if !c.HasBubblegumV2() {
		return fmt.Errorf("%w: missing BubblegumV2 plugin", ErrInvalidCoreCollection)
	}
	authority, err := ic.Meta(authorityIdx)
	if err != nil {
		return err
	}
	if !authority.IsSigner || authority.PublicKey != c.UpdateAuthority {
		return fmt.Errorf("%w: %s", ErrInvalidCollectionAuthority, authority.PublicKey)
	}
	return nil
}

func (*Program) updateCollection(ctx context.Context, ic *ledger.InvokeContext, collectionIdx, signerIdx int, updateType uint8) error {
	signer, bump, err := pda.CoreCPISignerAddress()
	if err != nil {
		return err
	}
	if ic.Key(signerIdx) != signer {
		return fmt.Errorf("%w: %s", ErrInvalidCPISigner, ic.Key(signerIdx))
	}
	return ic.Invoke(
		ctx,
		core.NewUpdateCollectionInfoInstruction(ic.Key(collectionIdx), signer, updateType, 1),
		pda.WithBump(pda.CoreCPISignerSeeds(), bump),
	)
}

// syncSequence copies the tree's sequence number into [tc].
func (*Program) syncSequence(ctx context.Context, ic *ledger.InvokeContext, treeIdx int, tc *TreeConfig) error {
	a, err := ic.GetAccount(ctx, treeIdx)
	if err != nil {
		return err
	}
	_, t, err := compression.LoadTree(a)
	if err != nil {
		return err
	}
	tc.SequenceNumber = t.SequenceNumber
	return nil
}

// loadTreeConfig decodes the tree config at [i] and checks that it is the
// one derived from [tree]. It returns the seeds the config signs with.
func loadTreeConfig(ctx context.Context, ic *ledger.InvokeContext, i int, tree solana.PublicKey) (*TreeConfig, [][]byte, error) {
	if err := ic.RequireWritable(i); err != nil {
		return nil, nil, err
	}
	a, err := ic.GetAccount(ctx, i)
	if err != nil {
		return nil, nil, err
	}
	tc, err := UnmarshalTreeConfig(a)
	if err != nil {
		return nil, nil, err
	}
	if tc.MerkleTree != tree {
		return nil, nil, fmt.Errorf("%w: bound to %s", ErrInvalidTreeConfig, tc.MerkleTree)
	}
	seeds := pda.WithBump(pda.TreeConfigSeeds(tree), tc.Bump)
	addr, err := solana.CreateProgramAddress(seeds, consts.BubblegumProgramID)
	if err != nil || addr != ic.Key(i) {
		return nil, nil, fmt.Errorf("%w: tree config %s", ledger.ErrConstraintSeeds, ic.Key(i))
	}
	return tc, seeds, nil
}

// emitLeaf records the minted leaf through the log wrapper so indexers can
// rebuild the asset without reading the tree.
func emitLeaf(ctx context.Context, ic *ledger.InvokeContext, leaf *LeafSchema) error {
	event, err := codec.Marshal(*leaf)
	if err != nil {
		return err
	}
	return ic.Invoke(ctx, noop.Instruction(append([]byte{LeafSchemaV2}, event...)))
}

func storeTreeConfig(ctx context.Context, ic *ledger.InvokeContext, i int, tc *TreeConfig) error {
	b, err := tc.Marshal()
	if err != nil {
		return err
	}
	a, err := ic.GetAccount(ctx, i)
	if err != nil {
		return err
	}
	a.Data = b
	return ic.SetAccount(ctx, i, a)
}
