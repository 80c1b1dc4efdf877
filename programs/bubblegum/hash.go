// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package bubblegum

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"github.com/near/borsh-go"

	"github.com/amxrac/ovwigho/codec"
	"github.com/amxrac/ovwigho/consts"
	"github.com/amxrac/ovwigho/merkle"
)

const (
	MaxNameLen              = 32
	MaxSymbolLen            = 10
	MaxURILen               = 200
	MaxSellerFeeBasisPoints = 10_000

	LeafSchemaV2 uint8 = 2

	TokenStandardNonFungible uint8 = 0
)

type Creator struct {
	Address  solana.PublicKey
	Verified bool
	Share    uint8
}

// MetadataArgs describes a compressed asset. Only its hash is stored on
// chain.
type MetadataArgs struct {
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	PrimarySaleHappened  bool
	IsMutable            bool
	TokenStandard        *uint8
	Creators             []Creator
	Collection           *solana.PublicKey
}

// optionU8 and optionKey encode exactly like borsh Options. A plain pointer
// decodes None as a pointer to the zero value.
type optionU8 struct {
	Enum borsh.Enum `borsh_enum:"true"`
	None struct{}
	Some struct{ Value uint8 }
}

type optionKey struct {
	Enum borsh.Enum `borsh_enum:"true"`
	None struct{}
	Some struct{ Key solana.PublicKey }
}

type metadataWire struct {
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	PrimarySaleHappened  bool
	IsMutable            bool
	TokenStandard        optionU8
	Creators             []Creator
	Collection           optionKey
}

func (m *MetadataArgs) wire() metadataWire {
	w := metadataWire{
		Name:                 m.Name,
		Symbol:               m.Symbol,
		URI:                  m.URI,
		SellerFeeBasisPoints: m.SellerFeeBasisPoints,
		PrimarySaleHappened:  m.PrimarySaleHappened,
		IsMutable:            m.IsMutable,
		Creators:             m.Creators,
	}
	if m.TokenStandard != nil {
		w.TokenStandard.Enum = 1
		w.TokenStandard.Some.Value = *m.TokenStandard
	}
	if m.Collection != nil {
		w.Collection.Enum = 1
		w.Collection.Some.Key = *m.Collection
	}
	return w
}

func (w *metadataWire) args() MetadataArgs {
	m := MetadataArgs{
		Name:                 w.Name,
		Symbol:               w.Symbol,
		URI:                  w.URI,
		SellerFeeBasisPoints: w.SellerFeeBasisPoints,
		PrimarySaleHappened:  w.PrimarySaleHappened,
		IsMutable:            w.IsMutable,
		Creators:             w.Creators,
	}
	if w.TokenStandard.Enum == 1 {
		standard := w.TokenStandard.Some.Value
		m.TokenStandard = &standard
	}
	if w.Collection.Enum == 1 {
		collection := w.Collection.Some.Key
		m.Collection = &collection
	}
	return m
}

// MarshalMetadata is the borsh encoding of [m].
func MarshalMetadata(m *MetadataArgs) ([]byte, error) {
	return codec.Marshal(m.wire())
}

// UnmarshalMetadata decodes [b], keeping absent optional fields nil.
func UnmarshalMetadata(b []byte) (MetadataArgs, error) {
	var w metadataWire
	if err := codec.Unmarshal(b, &w); err != nil {
		return MetadataArgs{}, err
	}
	return w.args(), nil
}

// Validate checks field lengths.
func (m *MetadataArgs) Validate() error {
	switch {
	case len(m.Name) > MaxNameLen:
		return ErrMetadataNameTooLong
	case len(m.Symbol) > MaxSymbolLen:
		return ErrMetadataSymbolTooLong
	case len(m.URI) > MaxURILen:
		return ErrMetadataURITooLong
	case m.SellerFeeBasisPoints > MaxSellerFeeBasisPoints:
		return ErrMetadataBasisPointsTooHigh
	}
	return nil
}

// DataHash commits to the metadata and its royalty, which marketplaces
// read without the full record.
func DataHash(m *MetadataArgs) (merkle.Node, error) {
	b, err := MarshalMetadata(m)
	if err != nil {
		return merkle.Node{}, err
	}
	argsHash := merkle.Keccak(b)
	fee := binary.LittleEndian.AppendUint16(nil, m.SellerFeeBasisPoints)
	return merkle.Keccak(argsHash[:], fee), nil
}

func CreatorHash(creators []Creator) merkle.Node {
	parts := make([][]byte, 0, len(creators))
	for _, c := range creators {
		b := make([]byte, 0, consts.PublicKeyLen+2)
		b = append(b, c.Address[:]...)
		if c.Verified {
			b = append(b, 1)
		} else {
			b = append(b, 0)
		}
		parts = append(parts, append(b, c.Share))
	}
	return merkle.Keccak(parts...)
}

// CollectionHash is the empty node for assets outside a collection.
func CollectionHash(collection *solana.PublicKey) merkle.Node {
	if collection == nil {
		return merkle.EmptyNode
	}
	return merkle.Keccak(collection[:])
}

// LeafSchema is the content of one compressed asset leaf.
type LeafSchema struct {
	ID             solana.PublicKey
	Owner          solana.PublicKey
	Delegate       solana.PublicKey
	Nonce          uint64
	DataHash       [consts.NodeLen]byte
	CreatorHash    [consts.NodeLen]byte
	CollectionHash [consts.NodeLen]byte
	AssetDataHash  [consts.NodeLen]byte
	Flags          uint8
}

// Hash is the node stored in the tree for [l].
func (l *LeafSchema) Hash() merkle.Node {
	return merkle.Keccak(
		[]byte{LeafSchemaV2},
		l.ID[:],
		l.Owner[:],
		l.Delegate[:],
		binary.LittleEndian.AppendUint64(nil, l.Nonce),
		l.DataHash[:],
		l.CreatorHash[:],
		l.CollectionHash[:],
		l.AssetDataHash[:],
		[]byte{l.Flags},
	)
}
