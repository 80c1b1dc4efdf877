// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

//go:generate go run go.uber.org/mock/mockgen -package=ledgermock -destination=ledgermock/client.go . Client

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/amxrac/ovwigho/storage"
)

var _ Client = (*Ledger)(nil)

// Client is everything the harness needs from a ledger.
type Client interface {
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*SimulationResult, error)
	GetAccount(ctx context.Context, addr solana.PublicKey) (*storage.Account, error)
	GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error)
	GetLatestBlockhash(ctx context.Context) (solana.Hash, uint64, error)
	GetFeeForMessage(ctx context.Context, msg *solana.Message) (uint64, error)
	RequestAirdrop(ctx context.Context, to solana.PublicKey, lamports uint64) (solana.Signature, error)
	GetTransaction(ctx context.Context, sig solana.Signature) (*storage.TransactionStatus, error)
}

// SimulationResult is the outcome of a transaction executed without commit.
// Err is nil when the transaction would have succeeded.
type SimulationResult struct {
	Fee  uint64
	Logs []string
	Err  error
}
