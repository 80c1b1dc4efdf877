// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

// Package system is the native program that creates accounts, assigns
// their owner and moves lamports between system owned accounts.
//
// Instruction data is a little endian u32 tag followed by fixed size
// arguments, the same layout produced by the solana-go system builders.
package system

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/amxrac/ovwigho/consts"
	"github.com/amxrac/ovwigho/ledger"
	"github.com/amxrac/ovwigho/storage"
)

const (
	InstructionCreateAccount uint32 = 0
	InstructionAssign        uint32 = 1
	InstructionTransfer      uint32 = 2
	InstructionAllocate      uint32 = 8
)

const (
	tagLen           = consts.Uint32Len
	createAccountLen = consts.Uint64Len + consts.Uint64Len + consts.PublicKeyLen
	assignLen        = consts.PublicKeyLen
	transferLen      = consts.Uint64Len
	allocateLen      = consts.Uint64Len
)

var _ ledger.Program = (*Program)(nil)

type Program struct {
	log logging.Logger
}

func New(log logging.Logger) *Program {
	return &Program{log: log}
}

func (*Program) ID() solana.PublicKey {
	return consts.SystemProgramID
}

func (*Program) Name() string {
	return "system_program"
}

func (p *Program) Execute(ctx context.Context, ic *ledger.InvokeContext, data []byte) error {
	if len(data) < tagLen {
		return fmt.Errorf("%w: %d bytes", ledger.ErrInvalidInstructionData, len(data))
	}
	tag, args := binary.LittleEndian.Uint32(data), data[tagLen:]
	switch tag {
	case InstructionCreateAccount:
		if len(args) != createAccountLen {
			return fmt.Errorf("%w: create account", ledger.ErrInvalidInstructionData)
		}
		return p.createAccount(
			ctx,
			ic,
			binary.LittleEndian.Uint64(args),
			binary.LittleEndian.Uint64(args[consts.Uint64Len:]),
			solana.PublicKeyFromBytes(args[2*consts.Uint64Len:]),
		)
	case InstructionAssign:
		if len(args) != assignLen {
			return fmt.Errorf("%w: assign", ledger.ErrInvalidInstructionData)
		}
		return p.assign(ctx, ic, solana.PublicKeyFromBytes(args))
	case InstructionTransfer:
		if len(args) != transferLen {
			return fmt.Errorf("%w: transfer", ledger.ErrInvalidInstructionData)
		}
		return p.transfer(ctx, ic, binary.LittleEndian.Uint64(args))
	case InstructionAllocate:
		if len(args) != allocateLen {
			return fmt.Errorf("%w: allocate", ledger.ErrInvalidInstructionData)
		}
		return p.allocate(ctx, ic, binary.LittleEndian.Uint64(args))
	default:
		return fmt.Errorf("%w: %d", ErrUnknownInstruction, tag)
	}
}

// createAccount funds [1] from [0], sizes it to [space] zero bytes and
// assigns it to [owner].
func (p *Program) createAccount(
	ctx context.Context,
	ic *ledger.InvokeContext,
	lamports uint64,
	space uint64,
	owner solana.PublicKey,
) error {
	if err := ic.RequireSigner(0); err != nil {
		return err
	}
	if err := ic.RequireSigner(1); err != nil {
		return err
	}
	if space > ledger.MaxAccountDataSize {
		ic.Log("Allocate: requested %d, max allowed %d", space, ledger.MaxAccountDataSize)
		return ErrAccountDataTooLarge
	}
	target, err := ic.GetAccount(ctx, 1)
	if err != nil {
		return err
	}
	if target.Lamports > 0 || len(target.Data) > 0 || target.Owner != consts.SystemProgramID {
		ic.Log("Create Account: account %s already in use", ic.Key(1))
		return ErrAccountAlreadyInUse
	}
	if minimum := ic.Rent().MinimumBalance(space); lamports < minimum {
		ic.Log("Create Account: %d lamports below rent exempt minimum %d", lamports, minimum)
		return fmt.Errorf("%w: %d < %d", ErrAccountNotRentExempt, lamports, minimum)
	}
	if err := p.debit(ctx, ic, 0, lamports); err != nil {
		return err
	}
	if err := ic.SetAccount(ctx, 1, &storage.Account{
		Lamports: lamports,
		Owner:    owner,
		Data:     make([]byte, space),
	}); err != nil {
		return err
	}
	p.log.Debug("created account",
		zap.Stringer("address", ic.Key(1)),
		zap.Stringer("owner", owner),
		zap.Uint64("space", space),
		zap.Uint64("lamports", lamports),
	)
	return nil
}

func (*Program) assign(ctx context.Context, ic *ledger.InvokeContext, owner solana.PublicKey) error {
	if err := ic.RequireSigner(0); err != nil {
		return err
	}
	a, err := ic.GetAccount(ctx, 0)
	if err != nil {
		return err
	}
	if a.Owner == owner {
		return nil
	}
	if a.Owner != consts.SystemProgramID {
		ic.Log("Assign: account %s must not be owned by %s", ic.Key(0), a.Owner)
		return ledger.ErrModifiedProgramID
	}
	a.Owner = owner
	return ic.SetAccount(ctx, 0, a)
}

func (p *Program) transfer(ctx context.Context, ic *ledger.InvokeContext, lamports uint64) error {
	if err := ic.RequireSigner(0); err != nil {
		return err
	}
	if _, err := ic.Meta(1); err != nil {
		return err
	}
	if err := p.debit(ctx, ic, 0, lamports); err != nil {
		return err
	}
	to, err := ic.GetAccount(ctx, 1)
	if err != nil {
		return err
	}
	to.Lamports, err = smath.Add(to.Lamports, lamports)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return ic.SetAccount(ctx, 1, to)
}

func (*Program) allocate(ctx context.Context, ic *ledger.InvokeContext, space uint64) error {
	if err := ic.RequireSigner(0); err != nil {
		return err
	}
	a, err := ic.GetAccount(ctx, 0)
	if err != nil {
		return err
	}
	if len(a.Data) > 0 || a.Owner != consts.SystemProgramID {
		ic.Log("Allocate: account %s already in use", ic.Key(0))
		return ErrAccountAlreadyInUse
	}
	if space > ledger.MaxAccountDataSize {
		return ErrAccountDataTooLarge
	}
	a.Data = make([]byte, space)
	return ic.SetAccount(ctx, 0, a)
}

// debit removes [lamports] from the system owned, data free account at [i].
func (*Program) debit(ctx context.Context, ic *ledger.InvokeContext, i int, lamports uint64) error {
	from, err := ic.GetAccount(ctx, i)
	if err != nil {
		return err
	}
	if len(from.Data) > 0 || from.Owner != consts.SystemProgramID {
		ic.Log("Transfer: `from` must not carry data")
		return ErrInvalidArgument
	}
	if from.Lamports < lamports {
		ic.Log("Transfer: insufficient lamports %d, need %d", from.Lamports, lamports)
		return ErrInsufficientFunds
	}
	from.Lamports -= lamports
	return ic.SetAccount(ctx, i, from)
}
