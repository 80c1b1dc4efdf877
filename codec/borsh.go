// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"crypto/sha256"
	"fmt"
	"reflect"

	"github.com/near/borsh-go"

	"github.com/amxrac/ovwigho/consts"
)

// Discriminator prefixes every account record and instruction payload so
// that a program can reject bytes written for another type.
type Discriminator [consts.DiscriminatorLen]byte

func discriminator(namespace, name string) Discriminator {
	h := sha256.Sum256([]byte(namespace + ":" + name))
	var d Discriminator
	copy(d[:], h[:consts.DiscriminatorLen])
	return d
}

// AccountDiscriminator returns sha256("account:<name>")[:8].
func AccountDiscriminator(name string) Discriminator {
	return discriminator("account", name)
}

// InstructionDiscriminator returns sha256("global:<name>")[:8].
func InstructionDiscriminator(name string) Discriminator {
	return discriminator("global", name)
}

// Marshal borsh-encodes [v]. A pointer is encoded as the value it points
// to, never as an Option.
func Marshal(v any) ([]byte, error) {
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && !rv.IsNil() {
		v = rv.Elem().Interface()
	}
	b, err := borsh.Serialize(v)
	if err != nil {
		return nil, fmt.Errorf("borsh encode %T: %w", v, err)
	}
	return b, nil
}

// Unmarshal borsh-decodes [b] into [v], which must be a pointer.
func Unmarshal(b []byte, v any) error {
	if err := borsh.Deserialize(v, b); err != nil {
		return fmt.Errorf("borsh decode %T: %w", v, err)
	}
	return nil
}

// MarshalWithDiscriminator returns [d] followed by the borsh encoding of [v].
func MarshalWithDiscriminator(d Discriminator, v any) ([]byte, error) {
	body, err := Marshal(v)
	if err != nil {
		return nil, err
	}
	b := make([]byte, consts.DiscriminatorLen+len(body))
	copy(b, d[:])
	copy(b[consts.DiscriminatorLen:], body)
	return b, nil
}

// UnmarshalWithDiscriminator verifies that [b] starts with [d] and decodes
// the remainder into [v].
func UnmarshalWithDiscriminator(d Discriminator, b []byte, v any) error {
	if len(b) < consts.DiscriminatorLen {
		return ErrInsufficientLength
	}
	if Discriminator(b[:consts.DiscriminatorLen]) != d {
		return ErrDiscriminatorMismatch
	}
	return Unmarshal(b[consts.DiscriminatorLen:], v)
}

// SplitDiscriminator returns the leading discriminator of [b] and the rest.
func SplitDiscriminator(b []byte) (Discriminator, []byte, error) {
	if len(b) < consts.DiscriminatorLen {
		return Discriminator{}, nil, ErrInsufficientLength
	}
	return Discriminator(b[:consts.DiscriminatorLen]), b[consts.DiscriminatorLen:], nil
}
