// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package merkle

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func leaf(i uint64) Node {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], i)
	return Keccak([]byte("leaf"), b[:])
}

func newTree(t *testing.T, maxDepth, maxBufferSize, canopyDepth uint32) *Tree {
	tree := New(maxDepth, maxBufferSize, canopyDepth)
	require.NoError(t, tree.Initialize())
	return tree
}

func TestEmptyNodes(t *testing.T) {
	require := require.New(t)

	require.Equal(EmptyNode, EmptyNodeAt(0))
	require.Equal(HashPair(EmptyNode, EmptyNode), EmptyNodeAt(1))
	require.Equal(HashPair(EmptyNodeAt(29), EmptyNodeAt(29)), EmptyNodeAt(30))
	require.Equal(HashPair(EmptyNodeAt(30), EmptyNodeAt(30)), EmptyNodeAt(31))
}

func TestInitialize(t *testing.T) {
	require := require.New(t)

	tree := New(14, 64, 9)
	require.False(tree.IsInitialized())
	require.Equal(uint32(9), tree.CanopyDepth())
	_, err := tree.Append(leaf(0))
	require.ErrorIs(err, ErrTreeNotInitialized)

	require.NoError(tree.Initialize())
	require.Equal(uint64(0), tree.SequenceNumber)
	require.Equal(uint64(1), tree.BufferSize)
	require.Equal(EmptyNodeAt(14), tree.Root())
	require.Equal(uint32(0), tree.NumLeaves())
	require.ErrorIs(tree.Initialize(), ErrTreeAlreadyInitialized)
}

func TestAppendMatchesBuilder(t *testing.T) {
	require := require.New(t)

	tree := newTree(t, 5, 8, 0)
	b := NewBuilder(5)
	for i := uint64(0); i < 20; i++ {
		cl, err := tree.Append(leaf(i))
		require.NoError(err)
		idx, err := b.Append(leaf(i))
		require.NoError(err)
		require.Equal(uint32(i), cl.Index)
		require.Equal(idx, cl.Index)
		require.Equal(leaf(i), cl.Leaf())
		require.Equal(b.Root(), tree.Root())
		require.Equal(i+1, tree.SequenceNumber)

		proof, err := b.Proof(idx)
		require.NoError(err)
		require.Equal(proof, tree.RightmostProof.Proof)
	}
	require.Equal(uint64(8), tree.BufferSize)
}

func TestAppendFull(t *testing.T) {
	require := require.New(t)

	tree := newTree(t, 3, 8, 0)
	for i := uint64(0); i < 8; i++ {
		_, err := tree.Append(leaf(i))
		require.NoError(err)
	}
	_, err := tree.Append(leaf(8))
	require.ErrorIs(err, ErrTreeFull)
	require.Equal(uint64(8), tree.SequenceNumber)
}

func TestReplace(t *testing.T) {
	require := require.New(t)

	tree := newTree(t, 5, 8, 0)
	b := NewBuilder(5)
	for i := uint64(0); i < 6; i++ {
		_, err := tree.Append(leaf(i))
		require.NoError(err)
		_, err = b.Append(leaf(i))
		require.NoError(err)
	}

	for _, idx := range []uint32{0, 3, 5} {
		proof, err := b.Proof(idx)
		require.NoError(err)
		_, err = tree.Replace(tree.Root(), leaf(uint64(idx)), EmptyNode, proof, idx)
		require.NoError(err)
		require.NoError(b.Set(idx, EmptyNode))
		require.Equal(b.Root(), tree.Root())
	}

	// Appending after replacing the rightmost leaf still uses a valid proof.
	_, err := tree.Append(leaf(6))
	require.NoError(err)
	_, err = b.Append(leaf(6))
	require.NoError(err)
	require.Equal(b.Root(), tree.Root())
}

func TestReplaceErrors(t *testing.T) {
	require := require.New(t)

	tree := newTree(t, 5, 8, 0)
	b := NewBuilder(5)
	for i := uint64(0); i < 4; i++ {
		_, err := tree.Append(leaf(i))
		require.NoError(err)
		_, err = b.Append(leaf(i))
		require.NoError(err)
	}
	proof, err := b.Proof(1)
	require.NoError(err)

	_, err = tree.Replace(tree.Root(), leaf(1), EmptyNode, proof, 4)
	require.ErrorIs(err, ErrLeafIndexOutOfBounds)

	_, err = tree.Replace(tree.Root(), leaf(2), EmptyNode, proof, 1)
	require.ErrorIs(err, ErrInvalidProof)

	_, err = tree.Replace(leaf(99), leaf(1), EmptyNode, proof, 1)
	require.ErrorIs(err, ErrRootNotFound)

	_, err = tree.Replace(tree.Root(), leaf(1), EmptyNode, proof[:4], 1)
	require.ErrorIs(err, ErrProofTooShort)

	require.Equal(uint64(4), tree.SequenceNumber)
}

func TestReplaceFastForward(t *testing.T) {
	require := require.New(t)

	tree := newTree(t, 5, 8, 0)
	b := NewBuilder(5)
	for i := uint64(0); i < 4; i++ {
		_, err := tree.Append(leaf(i))
		require.NoError(err)
		_, err = b.Append(leaf(i))
		require.NoError(err)
	}
	staleRoot := tree.Root()
	staleProof, err := b.Proof(1)
	require.NoError(err)

	// Concurrent changes land before the replacement.
	for i := uint64(4); i < 7; i++ {
		_, err := tree.Append(leaf(i))
		require.NoError(err)
		_, err = b.Append(leaf(i))
		require.NoError(err)
	}
	proof2, err := b.Proof(2)
	require.NoError(err)
	_, err = tree.Replace(tree.Root(), leaf(2), EmptyNode, proof2, 2)
	require.NoError(err)
	require.NoError(b.Set(2, EmptyNode))

	_, err = tree.Replace(staleRoot, leaf(1), EmptyNode, staleProof, 1)
	require.NoError(err)
	require.NoError(b.Set(1, EmptyNode))
	require.Equal(b.Root(), tree.Root())
}

func TestReplaceLeafContentsModified(t *testing.T) {
	require := require.New(t)

	tree := newTree(t, 5, 8, 0)
	b := NewBuilder(5)
	for i := uint64(0); i < 2; i++ {
		_, err := tree.Append(leaf(i))
		require.NoError(err)
		_, err = b.Append(leaf(i))
		require.NoError(err)
	}
	root := tree.Root()
	proof, err := b.Proof(0)
	require.NoError(err)

	_, err = tree.Replace(root, leaf(0), EmptyNode, proof, 0)
	require.NoError(err)
	_, err = tree.Replace(root, leaf(0), leaf(7), proof, 0)
	require.ErrorIs(err, ErrLeafContentsModified)
}

func TestReplaceRootEvicted(t *testing.T) {
	require := require.New(t)

	tree := newTree(t, 5, 8, 0)
	b := NewBuilder(5)
	_, err := tree.Append(leaf(0))
	require.NoError(err)
	_, err = b.Append(leaf(0))
	require.NoError(err)
	root := tree.Root()
	proof, err := b.Proof(0)
	require.NoError(err)

	for i := uint64(1); i <= 8; i++ {
		_, err := tree.Append(leaf(i))
		require.NoError(err)
	}
	_, err = tree.Replace(root, leaf(0), EmptyNode, proof, 0)
	require.ErrorIs(err, ErrRootNotFound)
}

func TestReplaceWithCanopy(t *testing.T) {
	require := require.New(t)

	const (
		depth  = 5
		canopy = 2
	)
	tree := newTree(t, depth, 8, canopy)
	b := NewBuilder(depth)
	for i := uint64(0); i < 6; i++ {
		_, err := tree.Append(leaf(i))
		require.NoError(err)
		_, err = b.Append(leaf(i))
		require.NoError(err)
	}

	for _, idx := range []uint32{4, 0} {
		full, err := b.Proof(idx)
		require.NoError(err)
		filled, err := tree.FillProof(full[:depth-canopy], idx)
		require.NoError(err)
		require.Equal(full, filled)

		_, err = tree.Replace(tree.Root(), leaf(uint64(idx)), EmptyNode, full[:depth-canopy], idx)
		require.NoError(err)
		require.NoError(b.Set(idx, EmptyNode))
		require.Equal(b.Root(), tree.Root())
	}

	full, err := b.Proof(5)
	require.NoError(err)
	_, err = tree.FillProof(full[:depth-canopy-1], 5)
	require.ErrorIs(err, ErrProofTooShort)
}

func TestEncodeDecode(t *testing.T) {
	require := require.New(t)

	size, err := Size(14, 64, 9)
	require.NoError(err)
	data := make([]byte, size)

	h := &Header{
		AccountType:   ConcurrentMerkleTree,
		Version:       HeaderVersionV1,
		MaxBufferSize: 64,
		MaxDepth:      14,
		Authority:     solana.NewWallet().PublicKey(),
		CreationSlot:  42,
	}
	require.NoError(h.Put(data))

	tree := newTree(t, 14, 64, 9)
	for i := uint64(0); i < 3; i++ {
		_, err := tree.Append(leaf(i))
		require.NoError(err)
	}
	require.NoError(tree.Encode(data))
	require.ErrorIs(tree.Encode(data[:size-1]), ErrSizeMismatch)

	parsed, err := ParseHeader(data)
	require.NoError(err)
	require.Equal(h, parsed)
	require.True(parsed.IsInitialized())

	decoded, err := Decode(parsed, data)
	require.NoError(err)
	require.Equal(tree, decoded)
	require.Equal(tree.Root(), decoded.Root())
}

func TestParseHeaderUninitialized(t *testing.T) {
	require := require.New(t)

	h, err := ParseHeader(make([]byte, HeaderLen))
	require.NoError(err)
	require.False(h.IsInitialized())

	_, err = ParseHeader(make([]byte, HeaderLen-1))
	require.ErrorIs(err, ErrInvalidHeader)
}
