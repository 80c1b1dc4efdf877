// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/utils/set"
	"github.com/gagliardetto/solana-go"

	"github.com/amxrac/ovwigho/storage"
	"github.com/amxrac/ovwigho/tstate"
)

// Program is a native program the ledger can execute.
type Program interface {
	ID() solana.PublicKey
	Name() string
	Execute(ctx context.Context, ic *InvokeContext, data []byte) error
}

// AccountMeta is an account as seen by one instruction frame.
type AccountMeta struct {
	PublicKey  solana.PublicKey
	IsSigner   bool
	IsWritable bool
}

// txContext is shared by every frame of one transaction.
type txContext struct {
	ledger *Ledger
	view   *tstate.TStateView
	slot   uint64

	logs    []string
	touched set.Set[solana.PublicKey]
	created set.Set[solana.PublicKey]

	instructions int
	// reported is set once a failing frame has logged its error
	reported bool
}

func (tc *txContext) log(format string, args ...any) {
	tc.logs = append(tc.logs, fmt.Sprintf(format, args...))
}

// InvokeContext is handed to a program for one instruction, either top
// level or invoked by another program.
type InvokeContext struct {
	tx        *txContext
	programID solana.PublicKey
	accounts  []AccountMeta
	depth     int
}

func (ic *InvokeContext) ProgramID() solana.PublicKey {
	return ic.programID
}

// Depth is 1 for top level instructions.
func (ic *InvokeContext) Depth() int {
	return ic.depth
}

func (ic *InvokeContext) Slot() uint64 {
	return ic.tx.slot
}

func (ic *InvokeContext) Rent() Rent {
	return ic.tx.ledger.cfg.Rent
}

func (ic *InvokeContext) NumAccounts() int {
	return len(ic.accounts)
}

// Accounts returns the metas of this frame starting at [start].
func (ic *InvokeContext) Accounts(start int) []AccountMeta {
	if start >= len(ic.accounts) {
		return nil
	}
	return ic.accounts[start:]
}

// Meta returns the account at [i] or [ErrNotEnoughAccountKeys].
func (ic *InvokeContext) Meta(i int) (AccountMeta, error) {
	if i < 0 || i >= len(ic.accounts) {
		return AccountMeta{}, fmt.Errorf("%w: index %d of %d", ErrNotEnoughAccountKeys, i, len(ic.accounts))
	}
	return ic.accounts[i], nil
}

// Key returns the address at [i]. Callers check [InvokeContext.NumAccounts]
// first.
func (ic *InvokeContext) Key(i int) solana.PublicKey {
	return ic.accounts[i].PublicKey
}

// RequireSigner fails with [ErrMissingRequiredSignature] unless account [i]
// signed for this frame.
func (ic *InvokeContext) RequireSigner(i int) error {
	m, err := ic.Meta(i)
	if err != nil {
		return err
	}
	if !m.IsSigner {
		return fmt.Errorf("%w: %s", ErrMissingRequiredSignature, m.PublicKey)
	}
	return nil
}

// Log appends a program log line.
func (ic *InvokeContext) Log(format string, args ...any) {
	ic.tx.log("Program log: "+format, args...)
}

// GetAccount loads a copy of account [i].
func (ic *InvokeContext) GetAccount(ctx context.Context, i int) (*storage.Account, error) {
	m, err := ic.Meta(i)
	if err != nil {
		return nil, err
	}
	a, _, err := storage.GetAccount(ctx, ic.tx.view, m.PublicKey)
	return a, err
}

// SetAccount stores [post] at account [i] after checking that this program
// may make the change.
func (ic *InvokeContext) SetAccount(ctx context.Context, i int, post *storage.Account) error {
	m, err := ic.Meta(i)
	if err != nil {
		return err
	}
	pre, exists, err := storage.GetAccount(ctx, ic.tx.view, m.PublicKey)
	if err != nil {
		return err
	}
	if err := ic.verifyChange(m, pre, post); err != nil {
		return err
	}
	if err := storage.SetAccount(ctx, ic.tx.view, m.PublicKey, post); err != nil {
		return fmt.Errorf("%w: %s", err, m.PublicKey)
	}
	ic.tx.touched.Add(m.PublicKey)
	if !exists && post.Lamports > 0 {
		ic.tx.created.Add(m.PublicKey)
	}
	return nil
}

func (ic *InvokeContext) verifyChange(m AccountMeta, pre, post *storage.Account) error {
	var (
		lamportsChanged = pre.Lamports != post.Lamports
		dataChanged     = !bytes.Equal(pre.Data, post.Data)
		ownerChanged    = pre.Owner != post.Owner
		ownedByProgram  = pre.Owner == ic.programID
	)
	if !m.IsWritable && (lamportsChanged || dataChanged || ownerChanged || pre.Executable != post.Executable) {
		return fmt.Errorf("%w: %s", ErrReadonlyAccountModified, m.PublicKey)
	}
	if pre.Executable != post.Executable {
		return fmt.Errorf("%w: %s", ErrExecutableModified, m.PublicKey)
	}
	if ownerChanged && (!ownedByProgram || !isZeroed(pre.Data) || !isZeroed(post.Data)) {
		return fmt.Errorf("%w: %s", ErrModifiedProgramID, m.PublicKey)
	}
	if post.Lamports < pre.Lamports && !ownedByProgram {
		return fmt.Errorf("%w: %s", ErrExternalAccountLamportSpend, m.PublicKey)
	}
	if dataChanged && !ownedByProgram {
		return fmt.Errorf("%w: %s", ErrExternalAccountDataModified, m.PublicKey)
	}
	if uint64(len(post.Data)) > MaxAccountDataSize {
		return fmt.Errorf("%w: %d bytes", ErrInvalidAccountData, len(post.Data))
	}
	return nil
}

func isZeroed(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// Invoke runs [ix] as a cross-program invocation. Every account of [ix]
// must be present in this frame with at least the requested privileges.
// [signerSeeds] lists the full seeds, bump included, of program derived
// addresses this program signs for.
func (ic *InvokeContext) Invoke(ctx context.Context, ix solana.Instruction, signerSeeds ...[][]byte) error {
	if ic.depth+1 > ic.tx.ledger.cfg.MaxInvokeDepth {
		return fmt.Errorf("%w: %d", ErrCallDepth, ic.depth+1)
	}

	pdaSigners := set.NewSet[solana.PublicKey](len(signerSeeds))
	for _, seeds := range signerSeeds {
		addr, err := solana.CreateProgramAddress(seeds, ic.programID)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrPrivilegeEscalation, err)
		}
		pdaSigners.Add(addr)
	}

	callee := ix.ProgramID()
	if !ic.hasAccount(callee) {
		return fmt.Errorf("%w: program %s", ErrMissingAccount, callee)
	}

	metas := ix.Accounts()
	accounts := make([]AccountMeta, 0, len(metas))
	for _, am := range metas {
		caller, ok := ic.lookup(am.PublicKey)
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingAccount, am.PublicKey)
		}
		if am.IsWritable && !caller.IsWritable {
			return fmt.Errorf("%w: %s writable", ErrPrivilegeEscalation, am.PublicKey)
		}
		if am.IsSigner && !caller.IsSigner && !pdaSigners.Contains(am.PublicKey) {
			return fmt.Errorf("%w: %s signer", ErrPrivilegeEscalation, am.PublicKey)
		}
		accounts = append(accounts, AccountMeta{
			PublicKey:  am.PublicKey,
			IsSigner:   am.IsSigner,
			IsWritable: am.IsWritable,
		})
	}
	data, err := ix.Data()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInstructionData, err)
	}
	return ic.tx.ledger.run(ctx, ic.tx, callee, accounts, data, ic.depth+1)
}

func (ic *InvokeContext) lookup(addr solana.PublicKey) (AccountMeta, bool) {
	for _, m := range ic.accounts {
		if m.PublicKey == addr {
			return m, true
		}
	}
	return AccountMeta{}, false
}

func (ic *InvokeContext) hasAccount(addr solana.PublicKey) bool {
	_, ok := ic.lookup(addr)
	return ok
}
