// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"fmt"

	"github.com/ava-labs/avalanchego/utils/set"
	"github.com/gagliardetto/solana-go"
)

const maxTransactionAccounts = 256

// sanitize checks the structure of [tx] without touching state.
func sanitize(tx *solana.Transaction) error {
	var (
		msg     = &tx.Message
		header  = msg.Header
		numKeys = len(msg.AccountKeys)
	)
	switch {
	case header.NumRequiredSignatures == 0:
		return fmt.Errorf("%w: no fee payer", ErrSanitizeFailure)
	case len(tx.Signatures) != int(header.NumRequiredSignatures):
		return fmt.Errorf("%w: %d signatures for %d signers", ErrSanitizeFailure, len(tx.Signatures), header.NumRequiredSignatures)
	case header.NumReadonlySignedAccounts >= header.NumRequiredSignatures:
		return fmt.Errorf("%w: fee payer must be writable", ErrSanitizeFailure)
	case numKeys < int(header.NumRequiredSignatures)+int(header.NumReadonlyUnsignedAccounts):
		return fmt.Errorf("%w: %d account keys", ErrSanitizeFailure, numKeys)
	case numKeys > maxTransactionAccounts:
		return fmt.Errorf("%w: %d account keys", ErrSanitizeFailure, numKeys)
	case len(msg.Instructions) == 0:
		return fmt.Errorf("%w: no instructions", ErrSanitizeFailure)
	}

	seen := set.NewSet[solana.PublicKey](numKeys)
	for _, k := range msg.AccountKeys {
		if seen.Contains(k) {
			return fmt.Errorf("%w: duplicate account %s", ErrSanitizeFailure, k)
		}
		seen.Add(k)
	}
	for i, ix := range msg.Instructions {
		if ix.ProgramIDIndex == 0 || int(ix.ProgramIDIndex) >= numKeys {
			return fmt.Errorf("%w: instruction %d program index %d", ErrSanitizeFailure, i, ix.ProgramIDIndex)
		}
		for _, idx := range ix.Accounts {
			if int(idx) >= numKeys {
				return fmt.Errorf("%w: instruction %d account index %d", ErrSanitizeFailure, i, idx)
			}
		}
	}
	return nil
}

// accountMetas resolves the signer and writable flags of every account in
// [msg]. Accounts invoked as programs are never writable.
func accountMetas(msg *solana.Message) []AccountMeta {
	var (
		h          = msg.Header
		numKeys    = len(msg.AccountKeys)
		signers    = int(h.NumRequiredSignatures)
		wSigners   = signers - int(h.NumReadonlySignedAccounts)
		wUnsigned  = numKeys - int(h.NumReadonlyUnsignedAccounts)
		programIDs = set.NewSet[uint16](len(msg.Instructions))
	)
	for _, ix := range msg.Instructions {
		programIDs.Add(ix.ProgramIDIndex)
	}
	metas := make([]AccountMeta, numKeys)
	for i, k := range msg.AccountKeys {
		writable := i < wSigners || (i >= signers && i < wUnsigned)
		metas[i] = AccountMeta{
			PublicKey:  k,
			IsSigner:   i < signers,
			IsWritable: writable && !programIDs.Contains(uint16(i)),
		}
	}
	return metas
}
