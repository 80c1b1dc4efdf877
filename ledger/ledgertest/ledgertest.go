// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledgertest builds in-memory ledgers for program tests.
package ledgertest

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/amxrac/ovwigho/ledger"
	"github.com/amxrac/ovwigho/programs/system"
	"github.com/amxrac/ovwigho/storage"

	otrace "github.com/amxrac/ovwigho/trace"
)

// New returns a ledger at genesis running the system program and
// [programs].
func New(t testing.TB, programs ...ledger.Program) *ledger.Ledger {
	t.Helper()
	require := require.New(t)

	db, _ := storage.NewMemory()
	tracer, err := otrace.New(&otrace.Config{})
	require.NoError(err)
	l, err := ledger.New(
		logging.NoLog{},
		tracer,
		prometheus.NewRegistry(),
		db,
		ledger.NewDefaultConfig(),
		append([]ledger.Program{system.New(logging.NoLog{})}, programs...)...,
	)
	require.NoError(err)
	return l
}

// Fund returns a new keypair holding one SOL.
func Fund(t testing.TB, l *ledger.Ledger) solana.PrivateKey {
	t.Helper()
	require := require.New(t)

	k, err := solana.NewRandomPrivateKey()
	require.NoError(err)
	_, err = l.RequestAirdrop(context.Background(), k.PublicKey(), solana.LAMPORTS_PER_SOL)
	require.NoError(err)
	return k
}

// Tx builds a transaction over [ixs] at [hash] paid by the first signer and
// signed by all of them.
func Tx(t testing.TB, hash solana.Hash, signers []solana.PrivateKey, ixs ...solana.Instruction) *solana.Transaction {
	t.Helper()
	require := require.New(t)

	tx, err := solana.NewTransaction(ixs, hash, solana.TransactionPayer(signers[0].PublicKey()))
	require.NoError(err)
	_, err = tx.Sign(func(pk solana.PublicKey) *solana.PrivateKey {
		for i := range signers {
			if signers[i].PublicKey() == pk {
				return &signers[i]
			}
		}
		return nil
	})
	require.NoError(err)
	return tx
}

// Send signs [ixs] at the latest blockhash and submits them.
func Send(t testing.TB, l *ledger.Ledger, signers []solana.PrivateKey, ixs ...solana.Instruction) (solana.Signature, error) {
	t.Helper()

	ctx := context.Background()
	hash, _, err := l.GetLatestBlockhash(ctx)
	require.NoError(t, err)
	return l.SendTransaction(ctx, Tx(t, hash, signers, ixs...))
}

// Account returns the account at [pk], or nil when it does not exist.
func Account(t testing.TB, l *ledger.Ledger, pk solana.PublicKey) *storage.Account {
	t.Helper()

	a, err := l.GetAccount(context.Background(), pk)
	if err != nil {
		require.ErrorIs(t, err, ledger.ErrAccountNotFound)
		return nil
	}
	return a
}

// Balance returns the lamports held at [pk].
func Balance(t testing.TB, l *ledger.Ledger, pk solana.PublicKey) uint64 {
	t.Helper()

	if a := Account(t, l, pk); a != nil {
		return a.Lamports
	}
	return 0
}
