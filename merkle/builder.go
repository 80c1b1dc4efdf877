// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package merkle

import (
	"fmt"
	"sync"
)

// Builder mirrors the leaves of a tree off chain so that callers can produce
// proofs for [Tree.Replace].
type Builder struct {
	depth uint32

	l      sync.RWMutex
	leaves []Node
}

func NewBuilder(maxDepth uint32) *Builder {
	return &Builder{depth: maxDepth}
}

func (b *Builder) Depth() uint32 {
	return b.depth
}

// Append adds [leaf] and returns its index.
func (b *Builder) Append(leaf Node) (uint32, error) {
	b.l.Lock()
	defer b.l.Unlock()

	if uint64(len(b.leaves)) >= uint64(1)<<b.depth {
		return 0, ErrTreeFull
	}
	b.leaves = append(b.leaves, leaf)
	return uint32(len(b.leaves) - 1), nil
}

func (b *Builder) Set(index uint32, leaf Node) error {
	b.l.Lock()
	defer b.l.Unlock()

	if int(index) >= len(b.leaves) {
		return fmt.Errorf("%w: %d", ErrLeafIndexOutOfBounds, index)
	}
	b.leaves[index] = leaf
	return nil
}

func (b *Builder) Leaf(index uint32) (Node, error) {
	b.l.RLock()
	defer b.l.RUnlock()

	if int(index) >= len(b.leaves) {
		return EmptyNode, fmt.Errorf("%w: %d", ErrLeafIndexOutOfBounds, index)
	}
	return b.leaves[index], nil
}

func (b *Builder) Len() uint32 {
	b.l.RLock()
	defer b.l.RUnlock()

	return uint32(len(b.leaves))
}

func (b *Builder) Root() Node {
	b.l.RLock()
	defer b.l.RUnlock()

	root, _ := b.walk(0)
	return root
}

// Proof returns the full proof for [index], leaf level first.
func (b *Builder) Proof(index uint32) ([]Node, error) {
	b.l.RLock()
	defer b.l.RUnlock()

	if int(index) >= len(b.leaves) {
		return nil, fmt.Errorf("%w: %d", ErrLeafIndexOutOfBounds, index)
	}
	_, proof := b.walk(index)
	return proof, nil
}

func (b *Builder) walk(index uint32) (Node, []Node) {
	var (
		level = append([]Node(nil), b.leaves...)
		proof = make([]Node, 0, b.depth)
		idx   = index
	)
	for l := uint32(0); l < b.depth; l++ {
		empty := EmptyNodeAt(l)
		if sib := idx ^ 1; int(sib) < len(level) {
			proof = append(proof, level[sib])
		} else {
			proof = append(proof, empty)
		}
		next := make([]Node, (len(level)+1)/2)
		for i := range next {
			right := empty
			if 2*i+1 < len(level) {
				right = level[2*i+1]
			}
			next[i] = HashPair(level[2*i], right)
		}
		level = next
		idx >>= 1
	}
	if len(level) == 0 {
		return EmptyNodeAt(b.depth), proof
	}
	return level[0], proof
}
