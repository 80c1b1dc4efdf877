// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

// Package compression owns concurrent merkle tree accounts. A tree must be
// allocated at its exact size and assigned to this program before it can
// be initialized; afterwards only its authority may modify it.
package compression

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/amxrac/ovwigho/consts"
	"github.com/amxrac/ovwigho/ledger"
	"github.com/amxrac/ovwigho/merkle"
	"github.com/amxrac/ovwigho/programs/noop"
	"github.com/amxrac/ovwigho/storage"
)

// Account positions shared by every modifying instruction.
const (
	treeAccount      = 0
	authorityAccount = 1
	noopAccount      = 2
	proofStart       = 3
)

var _ ledger.Program = (*Program)(nil)

type Program struct {
	log logging.Logger
}

func New(log logging.Logger) *Program {
	return &Program{log: log}
}

func (*Program) ID() solana.PublicKey {
	return consts.CompressionProgramID
}

func (*Program) Name() string {
	return "mpl_account_compression"
}

func (p *Program) Execute(ctx context.Context, ic *ledger.InvokeContext, data []byte) error {
	d, err := ledger.Discriminator(data)
	if err != nil {
		return err
	}
	switch d {
	case initEmptyMerkleTreeDiscriminator:
		ic.Log("Instruction: InitEmptyMerkleTree")
		var args InitEmptyMerkleTreeArgs
		if err := ledger.DecodeArgs(data, &args); err != nil {
			return err
		}
		return p.initEmptyMerkleTree(ctx, ic, args)
	case appendDiscriminator:
		ic.Log("Instruction: Append")
		var args AppendArgs
		if err := ledger.DecodeArgs(data, &args); err != nil {
			return err
		}
		return p.modify(ctx, ic, func(t *merkle.Tree) (merkle.ChangeLog, error) {
			return t.Append(args.Leaf)
		})
	case replaceLeafDiscriminator:
		ic.Log("Instruction: ReplaceLeaf")
		var args ReplaceLeafArgs
		if err := ledger.DecodeArgs(data, &args); err != nil {
			return err
		}
		proof := ProofFromAccounts(ic.Accounts(proofStart))
		return p.modify(ctx, ic, func(t *merkle.Tree) (merkle.ChangeLog, error) {
			return t.Replace(args.Root, args.Previous, args.New, proof, args.Index)
		})
	case verifyLeafDiscriminator:
		ic.Log("Instruction: VerifyLeaf")
		var args VerifyLeafArgs
		if err := ledger.DecodeArgs(data, &args); err != nil {
			return err
		}
		return p.verifyLeaf(ctx, ic, args)
	default:
		return ledger.ErrInstructionFallbackNotFound
	}
}

func (p *Program) initEmptyMerkleTree(ctx context.Context, ic *ledger.InvokeContext, args InitEmptyMerkleTreeArgs) error {
	if err := ic.RequireWritable(treeAccount); err != nil {
		return err
	}
	if err := ic.RequireSignerAnchor(authorityAccount); err != nil {
		return err
	}
	if err := checkNoop(ic); err != nil {
		return err
	}
	a, err := ic.GetAccount(ctx, treeAccount)
	if err != nil {
		return err
	}
	if a.Owner != consts.CompressionProgramID {
		return fmt.Errorf("%w: owner %s", ErrIncorrectAccountOwner, a.Owner)
	}
	h, err := merkle.ParseHeader(a.Data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrZeroCopy, err)
	}
	if h.IsInitialized() {
		return fmt.Errorf("%w: %w", ErrIncorrectAccountType, merkle.ErrTreeAlreadyInitialized)
	}
	if err := merkle.CheckSupported(args.MaxDepth, args.MaxBufferSize); err != nil {
		return fmt.Errorf("%w: %w", ErrConcurrentMerkleTreeConstants, err)
	}
	canopyDepth, err := merkle.CanopyDepthForSize(args.MaxDepth, args.MaxBufferSize, uint64(len(a.Data)))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCanopyLengthMismatch, err)
	}

	h = &merkle.Header{
		AccountType:   merkle.ConcurrentMerkleTree,
		Version:       merkle.HeaderVersionV1,
		MaxBufferSize: args.MaxBufferSize,
		MaxDepth:      args.MaxDepth,
		Authority:     ic.Key(authorityAccount),
		CreationSlot:  ic.Slot(),
	}
	if err := h.Put(a.Data); err != nil {
		return fmt.Errorf("%w: %w", ErrZeroCopy, err)
	}
	t := merkle.New(args.MaxDepth, args.MaxBufferSize, canopyDepth)
	if err := t.Initialize(); err != nil {
		return fmt.Errorf("%w: %w", ErrConcurrentMerkleTree, err)
	}
	if err := t.Encode(a.Data); err != nil {
		return fmt.Errorf("%w: %w", ErrZeroCopy, err)
	}
	if err := ic.SetAccount(ctx, treeAccount, a); err != nil {
		return err
	}
	p.log.Debug("initialized merkle tree",
		zap.Stringer("tree", ic.Key(treeAccount)),
		zap.Stringer("authority", h.Authority),
		zap.Uint32("maxDepth", args.MaxDepth),
		zap.Uint32("maxBufferSize", args.MaxBufferSize),
		zap.Uint32("canopyDepth", canopyDepth),
	)
	return emitChangeLog(ctx, ic, t, t.ChangeLogs[t.ActiveIndex])
}

// modify loads the tree, checks its authority, applies [f] and wraps the
// resulting change log.
func (p *Program) modify(
	ctx context.Context,
	ic *ledger.InvokeContext,
	f func(*merkle.Tree) (merkle.ChangeLog, error),
) error {
	if err := ic.RequireWritable(treeAccount); err != nil {
		return err
	}
	if err := ic.RequireSignerAnchor(authorityAccount); err != nil {
		return err
	}
	if err := checkNoop(ic); err != nil {
		return err
	}
	a, h, t, err := loadTree(ctx, ic, treeAccount)
	if err != nil {
		return err
	}
	if h.Authority != ic.Key(authorityAccount) {
		return fmt.Errorf("%w: %s", ErrIncorrectAuthority, ic.Key(authorityAccount))
	}
	cl, err := f(t)
	if err != nil {
		return wrapTreeError(err)
	}
	if err := t.Encode(a.Data); err != nil {
		return fmt.Errorf("%w: %w", ErrZeroCopy, err)
	}
	if err := ic.SetAccount(ctx, treeAccount, a); err != nil {
		return err
	}
	p.log.Debug("modified merkle tree",
		zap.Stringer("tree", ic.Key(treeAccount)),
		zap.Uint32("index", cl.Index),
		zap.Uint64("seq", t.SequenceNumber),
	)
	return emitChangeLog(ctx, ic, t, cl)
}

func (*Program) verifyLeaf(ctx context.Context, ic *ledger.InvokeContext, args VerifyLeafArgs) error {
	_, _, t, err := loadTree(ctx, ic, treeAccount)
	if err != nil {
		return err
	}
	// The tree is decoded from a copy; prove and discard.
	proof := ProofFromAccounts(ic.Accounts(1))
	if _, err := t.Replace(args.Root, args.Leaf, args.Leaf, proof, args.Index); err != nil {
		return wrapTreeError(err)
	}
	return nil
}

// LoadTree decodes an initialized tree account owned by this program.
func LoadTree(a *storage.Account) (*merkle.Header, *merkle.Tree, error) {
	if a.Owner != consts.CompressionProgramID {
		return nil, nil, fmt.Errorf("%w: owner %s", ErrIncorrectAccountOwner, a.Owner)
	}
	h, err := merkle.ParseHeader(a.Data)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrZeroCopy, err)
	}
	if !h.IsInitialized() {
		return nil, nil, fmt.Errorf("%w: %w", ErrIncorrectAccountType, merkle.ErrTreeNotInitialized)
	}
	t, err := merkle.Decode(h, a.Data)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrCanopyLengthMismatch, err)
	}
	return h, t, nil
}

func loadTree(ctx context.Context, ic *ledger.InvokeContext, i int) (*storage.Account, *merkle.Header, *merkle.Tree, error) {
	a, err := ic.GetAccount(ctx, i)
	if err != nil {
		return nil, nil, nil, err
	}
	h, t, err := LoadTree(a)
	if err != nil {
		return nil, nil, nil, err
	}
	return a, h, t, nil
}

func checkNoop(ic *ledger.InvokeContext) error {
	m, err := ic.Meta(noopAccount)
	if err != nil {
		return err
	}
	if m.PublicKey != consts.NoopProgramID {
		return fmt.Errorf("%w: log wrapper %s", ledger.ErrIncorrectProgramID, m.PublicKey)
	}
	return nil
}

func emitChangeLog(ctx context.Context, ic *ledger.InvokeContext, t *merkle.Tree, cl merkle.ChangeLog) error {
	event, err := NewChangeLogEvent(ic.Key(treeAccount), cl, t.SequenceNumber, t.MaxDepth).Marshal()
	if err != nil {
		return err
	}
	return ic.Invoke(ctx, noop.Instruction(event))
}

func wrapTreeError(err error) error {
	if errors.Is(err, merkle.ErrLeafIndexOutOfBounds) {
		return fmt.Errorf("%w: %w", ErrLeafIndexOutOfBounds, err)
	}
	return fmt.Errorf("%w: %w", ErrConcurrentMerkleTree, err)
}
