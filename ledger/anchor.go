// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/amxrac/ovwigho/codec"
)

// Framework errors shared by every program that dispatches on an 8 byte
// instruction discriminator.
const frameworkErrorOffset = 100

var (
	ErrInstructionFallbackNotFound = &CustomError{
		Code: 101,
		Name: "InstructionFallbackNotFound",
		Msg:  "Fallback functions are not supported",
	}
	ErrInstructionDidNotDeserialize = &CustomError{
		Code: 102,
		Name: "InstructionDidNotDeserialize",
		Msg:  "The program could not deserialize the given instruction",
	}
	ErrConstraintMut = &CustomError{
		Code: 2000,
		Name: "ConstraintMut",
		Msg:  "A mut constraint was violated",
	}
	ErrConstraintSeeds = &CustomError{
		Code: 2006,
		Name: "ConstraintSeeds",
		Msg:  "A seeds constraint was violated",
	}
	ErrConstraintAddress = &CustomError{
		Code: 2012,
		Name: "ConstraintAddress",
		Msg:  "An address constraint was violated",
	}
	ErrAccountDiscriminatorMismatch = &CustomError{
		Code: 3002,
		Name: "AccountDiscriminatorMismatch",
		Msg:  "8 byte discriminator did not match what was expected",
	}
	ErrAccountNotSigner = &CustomError{
		Code: 3010,
		Name: "AccountNotSigner",
		Msg:  "The given account did not sign",
	}
	ErrAccountOwnedByWrongProgram = &CustomError{
		Code: 3007,
		Name: "AccountOwnedByWrongProgram",
		Msg:  "The given account is owned by a different program than expected",
	}
	ErrAccountNotInitialized = &CustomError{
		Code: 3012,
		Name: "AccountNotInitialized",
		Msg:  "The program expected this account to be already initialized",
	}
)

// DecodeArgs borsh decodes the arguments that follow the discriminator of
// [data] into [v].
func DecodeArgs(data []byte, v any) error {
	_, args, err := codec.SplitDiscriminator(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInstructionDidNotDeserialize, err)
	}
	if v == nil {
		return nil
	}
	if err := codec.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %w", ErrInstructionDidNotDeserialize, err)
	}
	return nil
}

// Discriminator returns the 8 byte prefix of [data] or
// [ErrInstructionFallbackNotFound] when there is none.
func Discriminator(data []byte) (codec.Discriminator, error) {
	d, _, err := codec.SplitDiscriminator(data)
	if err != nil {
		return codec.Discriminator{}, ErrInstructionFallbackNotFound
	}
	return d, nil
}

// EncodeArgs prefixes the borsh encoding of [v] with [d].
func EncodeArgs(d codec.Discriminator, v any) []byte {
	b, err := codec.MarshalWithDiscriminator(d, v)
	if err != nil {
		panic(err)
	}
	return b
}

// RequireSignerAnchor returns [ErrAccountNotSigner] naming account [i].
func (ic *InvokeContext) RequireSignerAnchor(i int) error {
	m, err := ic.Meta(i)
	if err != nil {
		return err
	}
	if !m.IsSigner {
		return fmt.Errorf("%w: %s", ErrAccountNotSigner, m.PublicKey)
	}
	return nil
}

// RequireAddress returns [ErrConstraintAddress] unless account [i] is [want].
func (ic *InvokeContext) RequireAddress(i int, want solana.PublicKey) error {
	m, err := ic.Meta(i)
	if err != nil {
		return err
	}
	if m.PublicKey != want {
		return fmt.Errorf("%w: have %s want %s", ErrConstraintAddress, m.PublicKey, want)
	}
	return nil
}

// RequireWritable returns [ErrConstraintMut] unless account [i] is writable.
func (ic *InvokeContext) RequireWritable(i int) error {
	m, err := ic.Meta(i)
	if err != nil {
		return err
	}
	if !m.IsWritable {
		return fmt.Errorf("%w: %s", ErrConstraintMut, m.PublicKey)
	}
	return nil
}
