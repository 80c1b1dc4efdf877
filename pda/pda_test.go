// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package pda

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/amxrac/ovwigho/consts"
)

func TestConfigAddressDeterministic(t *testing.T) {
	require := require.New(t)

	authority := solana.NewWallet().PublicKey()
	a, bumpA, err := ConfigAddress(authority)
	require.NoError(err)
	b, bumpB, err := ConfigAddress(authority)
	require.NoError(err)
	require.Equal(a, b)
	require.Equal(bumpA, bumpB)

	other, _, err := ConfigAddress(solana.NewWallet().PublicKey())
	require.NoError(err)
	require.NotEqual(a, other)
}

func TestCreateWithBump(t *testing.T) {
	require := require.New(t)

	tree := solana.NewWallet().PublicKey()
	addr, bump, err := TreeConfigAddress(tree)
	require.NoError(err)

	again, err := CreateWithBump(consts.BubblegumProgramID, bump, TreeConfigSeeds(tree)...)
	require.NoError(err)
	require.Equal(addr, again)
}

func TestVerify(t *testing.T) {
	require := require.New(t)

	player := solana.NewWallet().PublicKey()
	addr, bump, err := PlayerProgressAddress(player)
	require.NoError(err)

	got, err := Verify(addr, consts.OvwighoProgramID, PlayerSeeds(player)...)
	require.NoError(err)
	require.Equal(bump, got)

	_, err = Verify(player, consts.OvwighoProgramID, PlayerSeeds(player)...)
	require.ErrorIs(err, ErrAddressMismatch)

	// Same seeds under another program give another address.
	_, err = Verify(addr, consts.BubblegumProgramID, PlayerSeeds(player)...)
	require.ErrorIs(err, ErrAddressMismatch)
}

func TestAssetAddressPerNonce(t *testing.T) {
	require := require.New(t)

	tree := solana.NewWallet().PublicKey()
	a0, _, err := AssetAddress(tree, 0)
	require.NoError(err)
	a1, _, err := AssetAddress(tree, 1)
	require.NoError(err)
	require.NotEqual(a0, a1)
}

func TestSeedTooLong(t *testing.T) {
	_, _, err := Derive(consts.OvwighoProgramID, make([]byte, 33))
	require.ErrorIs(t, err, ErrNoViableBump)
}
