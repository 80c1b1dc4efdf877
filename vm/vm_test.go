// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/amxrac/ovwigho/config"
	"github.com/amxrac/ovwigho/consts"
	"github.com/amxrac/ovwigho/ledger"
)

func newConfig(t *testing.T, dir string) *config.Config {
	b, err := json.Marshal(map[string]any{"databaseDir": dir})
	require.NoError(t, err)
	cfg, err := config.New(b)
	require.NoError(t, err)
	return cfg
}

func TestNewInstallsPrograms(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	vm, err := New(logging.NoLog{}, newConfig(t, ""))
	require.NoError(err)
	defer func() {
		require.NoError(vm.Close())
	}()

	for _, id := range []solana.PublicKey{
		consts.SystemProgramID,
		consts.NoopProgramID,
		consts.CompressionProgramID,
		consts.CoreProgramID,
		consts.BubblegumProgramID,
		consts.OvwighoProgramID,
	} {
		a, err := vm.Ledger().GetAccount(ctx, id)
		require.NoError(err)
		require.True(a.Executable, id.String())
	}
	faucet, err := vm.Ledger().GetAccount(ctx, ledger.FaucetKey().PublicKey())
	require.NoError(err)
	require.Equal(uint64(ledger.DefaultFaucetLamports), faucet.Lamports)

	families, err := vm.Gatherer().Gather()
	require.NoError(err)
	require.NotEmpty(families)
}

func TestReopenPersistsLedger(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	cfg := newConfig(t, t.TempDir())

	vm, err := New(logging.NoLog{}, cfg)
	require.NoError(err)
	to := solana.NewWallet().PublicKey()
	_, err = vm.Ledger().RequestAirdrop(ctx, to, 1_000_000)
	require.NoError(err)
	slot := vm.Ledger().Slot()
	require.NoError(vm.Close())

	vm, err = New(logging.NoLog{}, cfg)
	require.NoError(err)
	defer func() {
		require.NoError(vm.Close())
	}()
	require.Equal(slot, vm.Ledger().Slot())
	a, err := vm.Ledger().GetAccount(ctx, to)
	require.NoError(err)
	require.Equal(uint64(1_000_000), a.Lamports)
}
