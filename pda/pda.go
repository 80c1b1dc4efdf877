// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pda derives the program addresses every account of a collection
// lives at. Derivation is pure: the same seeds always produce the same
// address, so callers compute an address before submitting a transaction and
// programs recompute it to verify the accounts they were handed.
package pda

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/amxrac/ovwigho/consts"
)

var (
	ErrNoViableBump    = errors.New("no viable bump seed")
	ErrAddressMismatch = errors.New("address does not match derived address")
)

// Derive searches bump seeds from 255 downwards and returns the first
// address that is off the ed25519 curve.
func Derive(programID solana.PublicKey, seeds ...[]byte) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress(seeds, programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("%w: %w", ErrNoViableBump, err)
	}
	return addr, bump, nil
}

// CreateWithBump recomputes the address for a known bump.
func CreateWithBump(programID solana.PublicKey, bump uint8, seeds ...[]byte) (solana.PublicKey, error) {
	return solana.CreateProgramAddress(WithBump(seeds, bump), programID)
}

// Verify returns [ErrAddressMismatch] unless [addr] is the canonical address
// for [seeds].
func Verify(addr, programID solana.PublicKey, seeds ...[]byte) (uint8, error) {
	want, bump, err := Derive(programID, seeds...)
	if err != nil {
		return 0, err
	}
	if !want.Equals(addr) {
		return 0, fmt.Errorf("%w: have %s want %s", ErrAddressMismatch, addr, want)
	}
	return bump, nil
}

func ConfigSeeds(authority solana.PublicKey) [][]byte {
	return [][]byte{consts.ConfigSeed, authority.Bytes()}
}

// ConfigAddress is the collection config of [authority].
func ConfigAddress(authority solana.PublicKey) (solana.PublicKey, uint8, error) {
	return Derive(consts.OvwighoProgramID, ConfigSeeds(authority)...)
}

func PlayerSeeds(player solana.PublicKey) [][]byte {
	return [][]byte{consts.PlayerSeed, player.Bytes()}
}

func PlayerProgressAddress(player solana.PublicKey) (solana.PublicKey, uint8, error) {
	return Derive(consts.OvwighoProgramID, PlayerSeeds(player)...)
}

func TreeConfigSeeds(tree solana.PublicKey) [][]byte {
	return [][]byte{tree.Bytes()}
}

// TreeConfigAddress is the bubblegum tree config bound to [tree].
func TreeConfigAddress(tree solana.PublicKey) (solana.PublicKey, uint8, error) {
	return Derive(consts.BubblegumProgramID, TreeConfigSeeds(tree)...)
}

func AssetSeeds(tree solana.PublicKey, nonce uint64) [][]byte {
	n := make([]byte, consts.Uint64Len)
	binary.LittleEndian.PutUint64(n, nonce)
	return [][]byte{consts.AssetSeed, tree.Bytes(), n}
}

// AssetAddress is the id of the compressed asset minted at [nonce].
func AssetAddress(tree solana.PublicKey, nonce uint64) (solana.PublicKey, uint8, error) {
	return Derive(consts.BubblegumProgramID, AssetSeeds(tree, nonce)...)
}

func CoreCPISignerSeeds() [][]byte {
	return [][]byte{consts.CoreCPISignerSeed}
}

// CoreCPISignerAddress signs the collection updates bubblegum makes on
// mints and burns.
func CoreCPISignerAddress() (solana.PublicKey, uint8, error) {
	return Derive(consts.BubblegumProgramID, CoreCPISignerSeeds()...)
}

// WithBump appends [bump] to [seeds] for signing.
func WithBump(seeds [][]byte, bump uint8) [][]byte {
	out := make([][]byte, 0, len(seeds)+1)
	out = append(out, seeds...)
	return append(out, []byte{bump})
}
