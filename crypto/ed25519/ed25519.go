// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package ed25519

import (
	"crypto/ed25519"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/hdevalence/ed25519consensus"
)

// Transaction signatures are verified with ZIP-215 rules
// (https://zips.z.cash/zip-0215), which accept every signature produced by
// the common ed25519 signers and allow batch verification.
const (
	PrivateKeyLen = ed25519.PrivateKeySize
	SignatureLen  = ed25519.SignatureSize

	MinBatchSize = 4
)

var EmptySignature = solana.Signature{}

// GeneratePrivateKey returns a fresh keypair.
func GeneratePrivateKey() (solana.PrivateKey, error) {
	return solana.NewRandomPrivateKey()
}

// Sign returns a signature for msg using pk.
func Sign(msg []byte, pk solana.PrivateKey) (solana.Signature, error) {
	if len(pk) != PrivateKeyLen {
		return EmptySignature, fmt.Errorf("%w: length %d", ErrInvalidPrivateKey, len(pk))
	}
	return solana.Signature(ed25519.Sign(ed25519.PrivateKey(pk), msg)), nil
}

// Verify returns whether s is a valid signature of msg by p.
func Verify(msg []byte, p solana.PublicKey, s solana.Signature) bool {
	return ed25519consensus.Verify(p[:], msg, s[:])
}

type Batch struct {
	bv ed25519consensus.BatchVerifier
}

func NewBatch(size int) *Batch {
	return &Batch{bv: ed25519consensus.NewPreallocatedBatchVerifier(size)}
}

func (b *Batch) Add(msg []byte, p solana.PublicKey, s solana.Signature) {
	b.bv.Add(p[:], msg, s[:])
}

func (b *Batch) Verify() bool {
	return b.bv.Verify()
}

func (b *Batch) VerifyAsync() func() error {
	return func() error {
		if !b.Verify() {
			return ErrInvalidSignature
		}
		return nil
	}
}
