// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

// Package noop is the log wrapper program. Callers invoke it with
// serialized events so indexers can read them back from the instruction
// trace.
package noop

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/amxrac/ovwigho/consts"
	"github.com/amxrac/ovwigho/ledger"
)

var _ ledger.Program = (*Program)(nil)

type Program struct{}

func New() *Program {
	return &Program{}
}

func (*Program) ID() solana.PublicKey {
	return consts.NoopProgramID
}

func (*Program) Name() string {
	return "mpl_noop"
}

func (*Program) Execute(context.Context, *ledger.InvokeContext, []byte) error {
	return nil
}

// Instruction wraps [event] for a log wrapper invocation.
func Instruction(event []byte) solana.Instruction {
	return solana.NewInstruction(consts.NoopProgramID, solana.AccountMetaSlice{}, event)
}
