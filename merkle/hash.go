// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package merkle

import (
	"golang.org/x/crypto/sha3"

	"github.com/amxrac/ovwigho/consts"
)

// MaxSupportedDepth is the deepest tree in the supported pair table.
const MaxSupportedDepth = 30

type Node [consts.NodeLen]byte

var EmptyNode Node

var emptyNodes = func() [MaxSupportedDepth + 1]Node {
	var n [MaxSupportedDepth + 1]Node
	for i := 1; i <= MaxSupportedDepth; i++ {
		n[i] = HashPair(n[i-1], n[i-1])
	}
	return n
}()

// Keccak returns the legacy Keccak-256 digest of the concatenated parts.
func Keccak(parts ...[]byte) Node {
	h := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		_, _ = h.Write(p)
	}
	var out Node
	h.Sum(out[:0])
	return out
}

func HashPair(left, right Node) Node {
	return Keccak(left[:], right[:])
}

// EmptyNodeAt returns the root of an empty subtree of height [level].
func EmptyNodeAt(level uint32) Node {
	if level > MaxSupportedDepth {
		n := emptyNodes[MaxSupportedDepth]
		for i := uint32(MaxSupportedDepth); i < level; i++ {
			n = HashPair(n, n)
		}
		return n
	}
	return emptyNodes[level]
}

func hashToParent(node, sibling Node, isLeft bool) Node {
	if isLeft {
		return HashPair(node, sibling)
	}
	return HashPair(sibling, node)
}

// Recompute folds [proof] over [leaf] at [index] and returns the root.
func Recompute(leaf Node, proof []Node, index uint32) Node {
	node := leaf
	for depth, sibling := range proof {
		node = hashToParent(node, sibling, (index>>depth)&1 == 0)
	}
	return node
}
