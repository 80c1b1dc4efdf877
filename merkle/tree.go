// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package merkle

import (
	"fmt"
	"math/bits"
	"slices"
)

// ChangeLog records one modification: the new root, the new path from the
// leaf (index 0) up to the child of the root, and the leaf index.
type ChangeLog struct {
	Root  Node
	Path  []Node
	Index uint32
}

func (c ChangeLog) Leaf() Node {
	return c.Path[0]
}

func (c ChangeLog) clone() ChangeLog {
	return ChangeLog{Root: c.Root, Path: slices.Clone(c.Path), Index: c.Index}
}

// Path is the proof of the most recently appended leaf.
type Path struct {
	Proof []Node
	Leaf  Node
	Index uint32
}

// Tree is the decoded body of a concurrent merkle tree account. Up to
// MaxBufferSize changes may be applied against a stale root; proofs are
// fast-forwarded through the change log buffer.
type Tree struct {
	MaxDepth      uint32
	MaxBufferSize uint32

	SequenceNumber uint64
	ActiveIndex    uint64
	BufferSize     uint64
	ChangeLogs     []ChangeLog
	RightmostProof Path
	Canopy         []Node
}

// New returns a zeroed tree. Call [Tree.Initialize] before use.
func New(maxDepth, maxBufferSize, canopyDepth uint32) *Tree {
	t := &Tree{
		MaxDepth:       maxDepth,
		MaxBufferSize:  maxBufferSize,
		ChangeLogs:     make([]ChangeLog, maxBufferSize),
		RightmostProof: Path{Proof: make([]Node, maxDepth)},
		Canopy:         make([]Node, CanopyNodes(canopyDepth)),
	}
	for i := range t.ChangeLogs {
		t.ChangeLogs[i].Path = make([]Node, maxDepth)
	}
	return t
}

func (t *Tree) CanopyDepth() uint32 {
	// len(Canopy) == 2^(c+1) - 2
	return uint32(bits.TrailingZeros64(uint64(len(t.Canopy))+2)) - 1
}

func (t *Tree) IsInitialized() bool {
	return t.BufferSize > 0
}

// Root returns the current root.
func (t *Tree) Root() Node {
	return t.ChangeLogs[t.ActiveIndex].Root
}

// NumLeaves returns the index the next appended leaf will occupy.
func (t *Tree) NumLeaves() uint32 {
	return t.RightmostProof.Index
}

func (t *Tree) capacity() uint64 {
	return uint64(1) << t.MaxDepth
}

func (t *Tree) mask() uint64 {
	return uint64(t.MaxBufferSize) - 1
}

// Initialize sets the tree to the empty root at sequence number 0.
func (t *Tree) Initialize() error {
	if t.IsInitialized() {
		return ErrTreeAlreadyInitialized
	}
	for i := range t.RightmostProof.Proof {
		t.RightmostProof.Proof[i] = EmptyNodeAt(uint32(i))
	}
	t.RightmostProof.Leaf = EmptyNode
	t.RightmostProof.Index = 0

	cl := &t.ChangeLogs[0]
	for i := range cl.Path {
		cl.Path[i] = EmptyNodeAt(uint32(i))
	}
	cl.Root = EmptyNodeAt(t.MaxDepth)
	cl.Index = 0

	t.SequenceNumber = 0
	t.ActiveIndex = 0
	t.BufferSize = 1
	return nil
}

func (t *Tree) updateCounters() {
	t.ActiveIndex = (t.ActiveIndex + 1) % uint64(t.MaxBufferSize)
	if t.BufferSize < uint64(t.MaxBufferSize) {
		t.BufferSize++
	}
	t.SequenceNumber++
}

// Append adds [leaf] at the rightmost position using only the stored
// rightmost proof.
func (t *Tree) Append(leaf Node) (ChangeLog, error) {
	if !t.IsInitialized() {
		return ChangeLog{}, ErrTreeNotInitialized
	}
	rp := &t.RightmostProof
	if uint64(rp.Index) >= t.capacity() {
		return ChangeLog{}, ErrTreeFull
	}

	var (
		depth = int(t.MaxDepth)
		index = rp.Index
		path  = make([]Node, depth)
		node  = leaf
	)
	if index == 0 {
		for i := 0; i < depth; i++ {
			path[i] = node
			empty := EmptyNodeAt(uint32(i))
			node = HashPair(node, empty)
			rp.Proof[i] = empty
		}
	} else {
		intersection := bits.TrailingZeros32(index)
		intersectionNode := rp.Leaf
		for i := 0; i < depth; i++ {
			path[i] = node
			switch {
			case i < intersection:
				empty := EmptyNodeAt(uint32(i))
				intersectionNode = hashToParent(intersectionNode, rp.Proof[i], ((index-1)>>i)&1 == 0)
				node = HashPair(node, empty)
				rp.Proof[i] = empty
			case i == intersection:
				node = HashPair(intersectionNode, node)
				rp.Proof[i] = intersectionNode
			default:
				node = hashToParent(node, rp.Proof[i], ((index-1)>>i)&1 == 0)
			}
		}
	}

	t.updateCounters()
	cl := ChangeLog{Root: node, Path: path, Index: index}
	t.ChangeLogs[t.ActiveIndex] = cl
	rp.Index = index + 1
	rp.Leaf = leaf
	t.updateCanopy(cl)
	return cl.clone(), nil
}

// Replace swaps [previous] for [next] at [index]. [root] may be any root
// still held in the change log buffer; [proof] may omit the levels cached
// in the canopy.
func (t *Tree) Replace(root, previous, next Node, proof []Node, index uint32) (ChangeLog, error) {
	if !t.IsInitialized() {
		return ChangeLog{}, ErrTreeNotInitialized
	}
	if index >= t.RightmostProof.Index {
		return ChangeLog{}, fmt.Errorf("%w: %d >= %d", ErrLeafIndexOutOfBounds, index, t.RightmostProof.Index)
	}
	full, err := t.FillProof(proof, index)
	if err != nil {
		return ChangeLog{}, err
	}

	i := t.ActiveIndex
	for j := uint64(0); j < t.BufferSize; j++ {
		if t.ChangeLogs[i].Root == root {
			leaf := previous
			if !t.fastForward(&leaf, full, index, i) {
				return ChangeLog{}, ErrLeafContentsModified
			}
			if Recompute(leaf, full, index) != t.Root() {
				return ChangeLog{}, ErrInvalidProof
			}
			t.updateCounters()
			return t.applyChanges(next, full, index), nil
		}
		i = (i - 1) & t.mask()
	}
	return ChangeLog{}, ErrRootNotFound
}

// fastForward replays every change newer than [from] onto [proof]. It
// reports false when one of them rewrote the leaf itself.
func (t *Tree) fastForward(leaf *Node, proof []Node, index uint32, from uint64) bool {
	updated := *leaf
	for i := from; i != t.ActiveIndex; {
		i = (i + 1) & t.mask()
		cl := &t.ChangeLogs[i]
		if cl.Index == index {
			updated = cl.Leaf()
			continue
		}
		crit := t.critbit(index, cl.Index)
		proof[crit] = cl.Path[crit]
	}
	unchanged := updated == *leaf
	*leaf = updated
	return unchanged
}

// critbit is the level at which the paths to leaves [a] and [b] merge.
func (t *Tree) critbit(a, b uint32) int {
	common := bits.LeadingZeros32((a ^ b) << (32 - t.MaxDepth))
	return int(t.MaxDepth) - 1 - common
}

func (t *Tree) applyChanges(start Node, proof []Node, index uint32) ChangeLog {
	path := make([]Node, t.MaxDepth)
	node := start
	for i, sibling := range proof {
		path[i] = node
		node = hashToParent(node, sibling, (index>>i)&1 == 0)
	}
	cl := ChangeLog{Root: node, Path: path, Index: index}
	t.ChangeLogs[t.ActiveIndex] = cl

	rp := &t.RightmostProof
	if index == rp.Index-1 {
		rp.Leaf = start
	} else {
		crit := t.critbit(index, rp.Index-1)
		rp.Proof[crit] = path[crit]
	}
	t.updateCanopy(cl)
	return cl.clone()
}

func (t *Tree) updateCanopy(cl ChangeLog) {
	c := t.CanopyDepth()
	for level := t.MaxDepth - c; level < t.MaxDepth; level++ {
		heap := (uint64(1) << (t.MaxDepth - level)) + uint64(cl.Index>>level)
		t.Canopy[heap-2] = cl.Path[level]
	}
}

// FillProof extends a partial proof for [index] with the sibling nodes held
// in the canopy. Canopy entries that were never written stand for empty
// subtrees.
func (t *Tree) FillProof(proof []Node, index uint32) ([]Node, error) {
	c := t.CanopyDepth()
	nodeIdx := ((uint64(1) << t.MaxDepth) + uint64(index)) >> (t.MaxDepth - c)
	inferred := make([]Node, 0, c)
	for nodeIdx > 1 {
		cached := t.Canopy[(nodeIdx-2)^1]
		if cached == EmptyNode {
			level := t.MaxDepth - uint32(63-bits.LeadingZeros64(nodeIdx))
			cached = EmptyNodeAt(level)
		}
		inferred = append(inferred, cached)
		nodeIdx >>= 1
	}

	overlap := len(proof) + len(inferred) - int(t.MaxDepth)
	if overlap < 0 {
		return nil, fmt.Errorf("%w: have %d nodes, canopy %d, depth %d", ErrProofTooShort, len(proof), c, t.MaxDepth)
	}
	if overlap > len(inferred) {
		return nil, fmt.Errorf("%w: %d nodes for depth %d", ErrInvalidProof, len(proof), t.MaxDepth)
	}
	full := make([]Node, 0, t.MaxDepth)
	full = append(full, proof...)
	return append(full, inferred[overlap:]...), nil
}
