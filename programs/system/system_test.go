// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package system_test

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	solsystem "github.com/gagliardetto/solana-go/programs/system"

	"github.com/amxrac/ovwigho/consts"
	"github.com/amxrac/ovwigho/ledger"
	"github.com/amxrac/ovwigho/ledger/ledgertest"
	"github.com/amxrac/ovwigho/programs/system"
)

func newKey(t *testing.T) solana.PrivateKey {
	k, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return k
}

func TestCreateAccount(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	rent := ledger.NewDefaultConfig().Rent

	tests := []struct {
		name     string
		lamports func(space uint64) uint64
		space    uint64
		existing bool
		unsigned bool
		wantErr  error
	}{
		{
			name:     "rent exempt",
			lamports: rent.MinimumBalance,
			space:    165,
		},
		{
			name:     "empty",
			lamports: rent.MinimumBalance,
		},
		{
			name:     "below rent minimum",
			lamports: func(space uint64) uint64 { return rent.MinimumBalance(space) - 1 },
			space:    165,
			wantErr:  system.ErrAccountNotRentExempt,
		},
		{
			name:     "too large",
			lamports: rent.MinimumBalance,
			space:    ledger.MaxAccountDataSize + 1,
			wantErr:  system.ErrAccountDataTooLarge,
		},
		{
			name:     "already funded",
			lamports: rent.MinimumBalance,
			existing: true,
			wantErr:  system.ErrAccountAlreadyInUse,
		},
		{
			name:     "more than payer holds",
			lamports: func(uint64) uint64 { return 2 * solana.LAMPORTS_PER_SOL },
			wantErr:  system.ErrInsufficientFunds,
		},
		{
			name:     "new account does not sign",
			lamports: rent.MinimumBalance,
			unsigned: true,
			wantErr:  ledger.ErrMissingRequiredSignature,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			l := ledgertest.New(t)
			payer := ledgertest.Fund(t, l)
			target := newKey(t)
			if tt.existing {
				target = ledgertest.Fund(t, l)
			}
			lamports := tt.lamports(tt.space)

			var ix solana.Instruction = solsystem.NewCreateAccountInstruction(lamports, tt.space, owner, payer.PublicKey(), target.PublicKey()).Build()
			signers := []solana.PrivateKey{payer, target}
			if tt.unsigned {
				data, err := ix.Data()
				require.NoError(err)
				ix = solana.NewInstruction(consts.SystemProgramID, solana.AccountMetaSlice{
					solana.NewAccountMeta(payer.PublicKey(), true, true),
					solana.NewAccountMeta(target.PublicKey(), true, false),
				}, data)
				signers = signers[:1]
			}

			before := ledgertest.Balance(t, l, payer.PublicKey())
			_, err := ledgertest.Send(t, l, signers, ix)
			require.ErrorIs(err, tt.wantErr)
			if tt.wantErr != nil {
				return
			}

			a := ledgertest.Account(t, l, target.PublicKey())
			require.NotNil(a)
			require.Equal(owner, a.Owner)
			require.Equal(lamports, a.Lamports)
			require.Len(a.Data, int(tt.space))
			fee := uint64(len(signers)) * ledger.DefaultLamportsPerSignature
			require.Equal(before-lamports-fee, ledgertest.Balance(t, l, payer.PublicKey()))
		})
	}
}

func TestAssignAndAllocate(t *testing.T) {
	require := require.New(t)

	l := ledgertest.New(t)
	payer := ledgertest.Fund(t, l)
	owner := solana.NewWallet().PublicKey()

	const space = 64
	acct := ledgertest.Fund(t, l)
	_, err := ledgertest.Send(t, l, []solana.PrivateKey{payer, acct},
		solsystem.NewAllocateInstruction(space, acct.PublicKey()).Build(),
	)
	require.NoError(err)
	a := ledgertest.Account(t, l, acct.PublicKey())
	require.Len(a.Data, space)
	require.Equal(consts.SystemProgramID, a.Owner)

	// Allocated accounts are in use.
	_, err = ledgertest.Send(t, l, []solana.PrivateKey{payer, acct},
		solsystem.NewAllocateInstruction(space, acct.PublicKey()).Build(),
	)
	require.ErrorIs(err, system.ErrAccountAlreadyInUse)

	// An account carrying data can no longer pay out.
	_, err = ledgertest.Send(t, l, []solana.PrivateKey{payer, acct},
		solsystem.NewTransferInstruction(1, acct.PublicKey(), payer.PublicKey()).Build(),
	)
	require.ErrorIs(err, system.ErrInvalidArgument)

	_, err = ledgertest.Send(t, l, []solana.PrivateKey{payer, acct},
		solsystem.NewAssignInstruction(owner, acct.PublicKey()).Build(),
	)
	require.NoError(err)
	require.Equal(owner, ledgertest.Account(t, l, acct.PublicKey()).Owner)

	// Only the system program can hand an account to a new owner.
	_, err = ledgertest.Send(t, l, []solana.PrivateKey{payer, acct},
		solsystem.NewAssignInstruction(solana.NewWallet().PublicKey(), acct.PublicKey()).Build(),
	)
	require.ErrorIs(err, ledger.ErrModifiedProgramID)
}

func TestUnknownInstruction(t *testing.T) {
	require := require.New(t)

	l := ledgertest.New(t)
	payer := ledgertest.Fund(t, l)

	data := binary.LittleEndian.AppendUint32(nil, 42)
	_, err := ledgertest.Send(t, l, []solana.PrivateKey{payer}, solana.NewInstruction(
		consts.SystemProgramID,
		solana.AccountMetaSlice{solana.NewAccountMeta(payer.PublicKey(), true, true)},
		data,
	))
	require.ErrorIs(err, system.ErrUnknownInstruction)

	_, err = ledgertest.Send(t, l, []solana.PrivateKey{payer}, solana.NewInstruction(
		consts.SystemProgramID,
		solana.AccountMetaSlice{solana.NewAccountMeta(payer.PublicKey(), true, true)},
		[]byte{2, 0, 0, 0, 1},
	))
	require.ErrorIs(err, ledger.ErrInvalidInstructionData)
}
