// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

// Package core issues collections and the uncompressed assets that belong
// to them. Collections flagged with the BubblegumV2 plugin also track the
// compressed assets minted against them.
package core

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	smath "github.com/ava-labs/avalanchego/utils/math"
	solsystem "github.com/gagliardetto/solana-go/programs/system"

	"github.com/amxrac/ovwigho/codec"
	"github.com/amxrac/ovwigho/consts"
	"github.com/amxrac/ovwigho/ledger"
	"github.com/amxrac/ovwigho/pda"
)

var _ ledger.Program = (*Program)(nil)

type Program struct {
	log logging.Logger
}

func New(log logging.Logger) *Program {
	return &Program{log: log}
}

func (*Program) ID() solana.PublicKey {
	return consts.CoreProgramID
}

func (*Program) Name() string {
	return "mpl_core"
}

func (p *Program) Execute(ctx context.Context, ic *ledger.InvokeContext, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty", ledger.ErrInvalidInstructionData)
	}
	switch tag, args := data[0], data[1:]; tag {
	case InstructionCreateV2:
		ic.Log("Instruction: Create")
		var a CreateArgs
		if err := codec.Unmarshal(args, &a); err != nil {
			return fmt.Errorf("%w: %w", ErrDeserialization, err)
		}
		return p.create(ctx, ic, a)
	case InstructionCreateCollectionV2:
		ic.Log("Instruction: CreateCollection")
		var a CreateCollectionArgs
		if err := codec.Unmarshal(args, &a); err != nil {
			return fmt.Errorf("%w: %w", ErrDeserialization, err)
		}
		return p.createCollection(ctx, ic, a)
	case InstructionUpdateCollectionInfoV1:
		ic.Log("Instruction: UpdateCollectionInfo")
		var a UpdateCollectionInfoArgs
		if err := codec.Unmarshal(args, &a); err != nil {
			return fmt.Errorf("%w: %w", ErrDeserialization, err)
		}
		return p.updateCollectionInfo(ctx, ic, a)
	default:
		return fmt.Errorf("%w: instruction %d", ErrUnknownInstruction, tag)
	}
}

func (p *Program) createCollection(ctx context.Context, ic *ledger.InvokeContext, args CreateCollectionArgs) error {
	if err := ic.RequireSigner(createCollectionAccount); err != nil {
		return err
	}
	if err := ic.RequireSigner(createCollectionPayerAccount); err != nil {
		return err
	}
	if _, err := ic.Meta(createCollectionSystemAccount); err != nil {
		return err
	}
	c := &CollectionV1{
		Key:             KeyCollectionV1,
		UpdateAuthority: ic.Key(createCollectionUpdateAuthorityAccount),
		Name:            args.Name,
		URI:             args.URI,
	}
	if args.BubblegumV2 {
		c.PluginFlags |= PluginBubblegumV2
	}
	addr := ic.Key(createCollectionAccount)
	if err := p.allocate(ctx, ic, ic.Key(createCollectionPayerAccount), addr, c); err != nil {
		return err
	}
	if err := p.store(ctx, ic, createCollectionAccount, c); err != nil {
		return err
	}
	p.log.Debug("created collection",
		zap.Stringer("collection", addr),
		zap.Stringer("updateAuthority", c.UpdateAuthority),
		zap.Bool("bubblegumV2", args.BubblegumV2),
	)
	return nil
}

func (p *Program) create(ctx context.Context, ic *ledger.InvokeContext, args CreateArgs) error {
	if err := ic.RequireSigner(createAssetAccount); err != nil {
		return err
	}
	if err := ic.RequireSigner(createAuthorityAccount); err != nil {
		return err
	}
	if err := ic.RequireSigner(createPayerAccount); err != nil {
		return err
	}
	if _, err := ic.Meta(createSystemAccount); err != nil {
		return err
	}
	ca, err := ic.GetAccount(ctx, createCollectionRefAccount)
	if err != nil {
		return err
	}
	collection, err := UnmarshalCollection(ca)
	if err != nil {
		return err
	}
	if collection.UpdateAuthority != ic.Key(createAuthorityAccount) {
		return fmt.Errorf("%w: %s is not the update authority", ErrInvalidAuthority, ic.Key(createAuthorityAccount))
	}
	if collection.HasBubblegumV2() {
		return fmt.Errorf("%w: collection only accepts compressed assets", ErrInvalidPlugin)
	}

	asset := &AssetV1{
		Key:        KeyAssetV1,
		Owner:      ic.Key(createOwnerAccount),
		Collection: ic.Key(createCollectionRefAccount),
		Name:       args.Name,
		URI:        args.URI,
		Attributes: args.Attributes,
	}
	if err := p.allocate(ctx, ic, ic.Key(createPayerAccount), ic.Key(createAssetAccount), asset); err != nil {
		return err
	}
	if err := p.store(ctx, ic, createAssetAccount, asset); err != nil {
		return err
	}
	if err := bump(collection, UpdateMint, 1); err != nil {
		return err
	}
	if err := p.store(ctx, ic, createCollectionRefAccount, collection); err != nil {
		return err
	}
	p.log.Debug("created asset",
		zap.Stringer("asset", ic.Key(createAssetAccount)),
		zap.Stringer("owner", asset.Owner),
		zap.Stringer("collection", asset.Collection),
	)
	return nil
}

// updateCollectionInfo tracks compressed mints and burns. Only the
// bubblegum signer may call it.
func (p *Program) updateCollectionInfo(ctx context.Context, ic *ledger.InvokeContext, args UpdateCollectionInfoArgs) error {
	signer, _, err := pda.CoreCPISignerAddress()
	if err != nil {
		return err
	}
	m, err := ic.Meta(updateInfoSignerAccount)
	if err != nil {
		return err
	}
	if m.PublicKey != signer || !m.IsSigner {
		return fmt.Errorf("%w: %s", ErrInvalidAuthority, m.PublicKey)
	}
	ca, err := ic.GetAccount(ctx, updateInfoCollectionAccount)
	if err != nil {
		return err
	}
	collection, err := UnmarshalCollection(ca)
	if err != nil {
		return err
	}
	if !collection.HasBubblegumV2() {
		return fmt.Errorf("%w: missing BubblegumV2", ErrInvalidPlugin)
	}
	if err := bump(collection, args.UpdateType, args.Amount); err != nil {
		return err
	}
	return p.store(ctx, ic, updateInfoCollectionAccount, collection)
}

func bump(c *CollectionV1, updateType uint8, amount uint32) error {
	var err error
	switch updateType {
	case UpdateMint:
		if c.NumMinted, err = smath.Add(c.NumMinted, amount); err != nil {
			return fmt.Errorf("%w: %w", ErrNumericalOverflow, err)
		}
		fallthrough
	case UpdateAdd:
		if c.CurrentSize, err = smath.Add(c.CurrentSize, amount); err != nil {
			return fmt.Errorf("%w: %w", ErrNumericalOverflow, err)
		}
	case UpdateRemove:
		if c.CurrentSize, err = smath.Sub(c.CurrentSize, amount); err != nil {
			return fmt.Errorf("%w: %w", ErrNumericalOverflow, err)
		}
	default:
		return fmt.Errorf("%w: update type %d", ledger.ErrInvalidInstructionData, updateType)
	}
	return nil
}

// allocate creates [addr] through the system program sized for [record].
func (*Program) allocate(ctx context.Context, ic *ledger.InvokeContext, payer, addr solana.PublicKey, record any) error {
	b, err := codec.Marshal(record)
	if err != nil {
		return err
	}
	space := uint64(len(b))
	return ic.Invoke(ctx, solsystem.NewCreateAccountInstruction(
		ic.Rent().MinimumBalance(space),
		space,
		consts.CoreProgramID,
		payer,
		addr,
	).Build())
}

func (*Program) store(ctx context.Context, ic *ledger.InvokeContext, i int, record any) error {
	b, err := codec.Marshal(record)
	if err != nil {
		return err
	}
	a, err := ic.GetAccount(ctx, i)
	if err != nil {
		return err
	}
	if len(a.Data) != len(b) {
		return fmt.Errorf("%w: have %d bytes want %d", ErrIncorrectAccount, len(a.Data), len(b))
	}
	a.Data = b
	return ic.SetAccount(ctx, i, a)
}
