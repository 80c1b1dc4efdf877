// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package compression

import (
	"github.com/gagliardetto/solana-go"

	"github.com/amxrac/ovwigho/codec"
	"github.com/amxrac/ovwigho/consts"
	"github.com/amxrac/ovwigho/merkle"
)

const (
	eventChangeLog   uint8 = 0
	changeLogEventV1 uint8 = 0
)

type PathNode struct {
	Node  [consts.NodeLen]byte
	Index uint32
}

// ChangeLogEvent is emitted through the log wrapper after every tree
// modification so indexers can rebuild leaves and proofs.
type ChangeLogEvent struct {
	Kind    uint8
	Version uint8
	ID      solana.PublicKey
	Path    []PathNode
	Seq     uint64
	Index   uint32
}

// NewChangeLogEvent lists the modified path from the leaf up to the root.
// Node indexes count from 1 at the root.
func NewChangeLogEvent(tree solana.PublicKey, cl merkle.ChangeLog, seq uint64, maxDepth uint32) ChangeLogEvent {
	path := make([]PathNode, 0, len(cl.Path)+1)
	for level, n := range cl.Path {
		path = append(path, PathNode{
			Node:  n,
			Index: (1 << (maxDepth - uint32(level))) + (cl.Index >> uint32(level)),
		})
	}
	path = append(path, PathNode{Node: cl.Root, Index: 1})
	return ChangeLogEvent{
		Kind:    eventChangeLog,
		Version: changeLogEventV1,
		ID:      tree,
		Path:    path,
		Seq:     seq,
		Index:   cl.Index,
	}
}

func (e ChangeLogEvent) Marshal() ([]byte, error) {
	return codec.Marshal(e)
}

func UnmarshalChangeLogEvent(b []byte) (*ChangeLogEvent, error) {
	var e ChangeLogEvent
	if err := codec.Unmarshal(b, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
