// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ovwigho manages an authority's pair of collections: a compressed
// collection backed by a concurrent merkle tree and an uncompressed one.
// The [Config] of an authority holds every reference that binds the two
// together, and the config address signs every change made to them.
package ovwigho

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gagliardetto/solana-go"

	solsystem "github.com/gagliardetto/solana-go/programs/system"

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
	return consts.OvwighoProgramID
}

func (*Program) Name() string {
	return "ovwigho"
}

func (p *Program) Execute(ctx context.Context, ic *ledger.InvokeContext, data []byte) error {
	d, err := ledger.Discriminator(data)
	if err != nil {
		return err
	}
	switch d {
	case initializeDiscriminator:
		ic.Log("Instruction: Initialize")
		var args InitializeArgs
		if err := ledger.DecodeArgs(data, &args); err != nil {
			return err
		}
		return p.initialize(ctx, ic, args)
	case mintCNFTDiscriminator:
		ic.Log("Instruction: MintCnft")
		var args MintCNFTArgs
		if err := ledger.DecodeArgs(data, &args); err != nil {
			return err
		}
		return p.mintCNFT(ctx, ic, args)
	case burnCNFTDiscriminator:
		ic.Log("Instruction: BurnCnft")
		var args BurnCNFTArgs
		if err := ledger.DecodeArgs(data, &args); err != nil {
			return err
		}
		return p.burnCNFT(ctx, ic, args)
	case mintNFTDiscriminator:
		ic.Log("Instruction: MintNft")
		var args MintNFTArgs
		if err := ledger.DecodeArgs(data, &args); err != nil {
			return err
		}
		return p.mintNFT(ctx, ic, args)
	default:
		return ledger.ErrInstructionFallbackNotFound
	}
}

// loadConfig decodes the config at [configIdx] and checks it is the one
// derived from the authority at [authorityIdx]. It returns the seeds the
// config signs with.
func loadConfig(ctx context.Context, ic *ledger.InvokeContext, configIdx, authorityIdx int) (*Config, [][]byte, error) {
	if err := ic.RequireWritable(configIdx); err != nil {
		return nil, nil, err
	}
	a, err := ic.GetAccount(ctx, configIdx)
	if err != nil {
		return nil, nil, err
	}
	c, err := UnmarshalConfig(a)
	if err != nil {
		return nil, nil, err
	}
	authority := ic.Key(authorityIdx)
	seeds := pda.WithBump(pda.ConfigSeeds(authority), c.Bump)
	addr, err := solana.CreateProgramAddress(seeds, consts.OvwighoProgramID)
	if err != nil || addr != ic.Key(configIdx) {
		return nil, nil, fmt.Errorf("%w: config %s", ledger.ErrConstraintSeeds, ic.Key(configIdx))
	}
	return c, seeds, nil
}

func storeConfig(ctx context.Context, ic *ledger.InvokeContext, i int, c *Config) error {
	return store(ctx, ic, i, c.Marshal)
}

func storePlayerProgress(ctx context.Context, ic *ledger.InvokeContext, i int, p *PlayerProgress) error {
	return store(ctx, ic, i, p.Marshal)
}

func store(ctx context.Context, ic *ledger.InvokeContext, i int, marshal func() ([]byte, error)) error {
	b, err := marshal()
	if err != nil {
		return err
	}
	a, err := ic.GetAccount(ctx, i)
	if err != nil {
		return err
	}
	if len(a.Data) != len(b) {
		return fmt.Errorf("%w: have %d bytes want %d", ledger.ErrInvalidAccountData, len(a.Data), len(b))
	}
	a.Data = b
	return ic.SetAccount(ctx, i, a)
}

// initPDA creates the program account at [target] with [space] bytes,
// signing with [seeds]. A target that already holds lamports is topped up
// to the rent exempt minimum, then allocated and assigned.
func initPDA(ctx context.Context, ic *ledger.InvokeContext, payer, target int, space uint64, seeds [][]byte) error {
	a, err := ic.GetAccount(ctx, target)
	if err != nil {
		return err
	}
	required := ic.Rent().MinimumBalance(space)
	if a.Lamports == 0 {
		return ic.Invoke(ctx, solsystem.NewCreateAccountInstruction(
			required,
			space,
			consts.OvwighoProgramID,
			ic.Key(payer),
			ic.Key(target),
		).Build(), seeds)
	}
	if a.Lamports < required {
		if err := ic.Invoke(ctx, solsystem.NewTransferInstruction(
			required-a.Lamports,
			ic.Key(payer),
			ic.Key(target),
		).Build()); err != nil {
			return err
		}
	}
	if err := ic.Invoke(ctx, solsystem.NewAllocateInstruction(space, ic.Key(target)).Build(), seeds); err != nil {
		return err
	}
	return ic.Invoke(ctx, solsystem.NewAssignInstruction(consts.OvwighoProgramID, ic.Key(target)).Build(), seeds)
}

// isEmpty reports whether account [i] has never been allocated.
func isEmpty(ctx context.Context, ic *ledger.InvokeContext, i int) (bool, error) {
	a, err := ic.GetAccount(ctx, i)
	if err != nil {
		return false, err
	}
	return len(a.Data) == 0 && a.Owner == consts.SystemProgramID, nil
}

type programAt struct {
	index int
	id    solana.PublicKey
}

// requirePrograms checks the program accounts a handler invokes.
func requirePrograms(ic *ledger.InvokeContext, programs ...programAt) error {
	for _, p := range programs {
		if err := ic.RequireAddress(p.index, p.id); err != nil {
			return err
		}
	}
	return nil
}
