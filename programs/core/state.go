// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package core

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/amxrac/ovwigho/codec"
	"github.com/amxrac/ovwigho/consts"
	"github.com/amxrac/ovwigho/storage"
)

// Key is the first byte of every record this program owns.
type Key uint8

const (
	KeyUninitialized Key = 0
	KeyAssetV1       Key = 1
	KeyCollectionV1  Key = 5
)

// PluginBubblegumV2 marks a collection that accepts compressed assets.
const PluginBubblegumV2 uint8 = 1 << 0

type CollectionV1 struct {
	Key             Key
	UpdateAuthority solana.PublicKey
	Name            string
	URI             string
	NumMinted       uint32
	CurrentSize     uint32
	PluginFlags     uint8
}

func (c *CollectionV1) HasBubblegumV2() bool {
	return c.PluginFlags&PluginBubblegumV2 != 0
}

type Attribute struct {
	Key   string
	Value string
}

type AssetV1 struct {
	Key        Key
	Owner      solana.PublicKey
	Collection solana.PublicKey
	Name       string
	URI        string
	Attributes []Attribute
}

// UnmarshalCollection decodes the collection held by [a].
func UnmarshalCollection(a *storage.Account) (*CollectionV1, error) {
	if a.Owner != consts.CoreProgramID || len(a.Data) == 0 {
		return nil, fmt.Errorf("%w: owner %s", ErrInvalidCollection, a.Owner)
	}
	if Key(a.Data[0]) != KeyCollectionV1 {
		return nil, fmt.Errorf("%w: key %d", ErrInvalidCollection, a.Data[0])
	}
	var c CollectionV1
	if err := codec.Unmarshal(a.Data, &c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeserialization, err)
	}
	return &c, nil
}

// UnmarshalAsset decodes the asset held by [a].
func UnmarshalAsset(a *storage.Account) (*AssetV1, error) {
	if a.Owner != consts.CoreProgramID || len(a.Data) == 0 || Key(a.Data[0]) != KeyAssetV1 {
		return nil, fmt.Errorf("%w: not an asset", ErrIncorrectAccount)
	}
	var asset AssetV1
	if err := codec.Unmarshal(a.Data, &asset); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeserialization, err)
	}
	return &asset, nil
}

// CollectionLen is the size of the collection record for [name] and [uri].
func CollectionLen(name, uri string) uint64 {
	return uint64(consts.ByteLen + consts.PublicKeyLen +
		consts.Uint32Len + len(name) + consts.Uint32Len + len(uri) +
		2*consts.Uint32Len + consts.ByteLen)
}
