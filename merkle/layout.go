// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package merkle

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/amxrac/ovwigho/consts"
)

type AccountType uint8

const (
	Uninitialized        AccountType = 0
	ConcurrentMerkleTree AccountType = 1

	HeaderVersionV1 uint8 = 0
)

// Header is the fixed prefix of every tree account.
type Header struct {
	AccountType   AccountType
	Version       uint8
	MaxBufferSize uint32
	MaxDepth      uint32
	Authority     solana.PublicKey
	CreationSlot  uint64
}

func (h *Header) IsInitialized() bool {
	return h.AccountType != Uninitialized
}

func ParseHeader(data []byte) (*Header, error) {
	if len(data) < HeaderLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidHeader, len(data))
	}
	r := &reader{b: data}
	h := &Header{
		AccountType: AccountType(r.u8()),
		Version:     r.u8(),
	}
	h.MaxBufferSize = r.u32()
	h.MaxDepth = r.u32()
	copy(h.Authority[:], r.next(consts.PublicKeyLen))
	h.CreationSlot = r.u64()
	if h.AccountType > ConcurrentMerkleTree || h.Version != HeaderVersionV1 {
		return nil, fmt.Errorf("%w: type %d version %d", ErrInvalidHeader, h.AccountType, h.Version)
	}
	return h, nil
}

// Put writes [h] into the first [HeaderLen] bytes of [data].
func (h *Header) Put(data []byte) error {
	if len(data) < HeaderLen {
		return fmt.Errorf("%w: %d bytes", ErrInvalidHeader, len(data))
	}
	w := &writer{b: data}
	w.u8(uint8(h.AccountType))
	w.u8(h.Version)
	w.u32(h.MaxBufferSize)
	w.u32(h.MaxDepth)
	w.put(h.Authority[:])
	w.u64(h.CreationSlot)
	w.put(make([]byte, headerPaddingLen))
	return nil
}

// Decode reads the tree body of an account whose header is [h]. The canopy
// depth is recovered from the account length.
func Decode(h *Header, data []byte) (*Tree, error) {
	canopyDepth, err := CanopyDepthForSize(h.MaxDepth, h.MaxBufferSize, uint64(len(data)))
	if err != nil {
		return nil, err
	}
	t := New(h.MaxDepth, h.MaxBufferSize, canopyDepth)
	r := &reader{b: data[HeaderLen:]}
	t.SequenceNumber = r.u64()
	t.ActiveIndex = r.u64()
	t.BufferSize = r.u64()
	for i := range t.ChangeLogs {
		cl := &t.ChangeLogs[i]
		cl.Root = r.node()
		for j := range cl.Path {
			cl.Path[j] = r.node()
		}
		cl.Index = r.u32()
		_ = r.u32()
	}
	for j := range t.RightmostProof.Proof {
		t.RightmostProof.Proof[j] = r.node()
	}
	t.RightmostProof.Leaf = r.node()
	t.RightmostProof.Index = r.u32()
	_ = r.u32()
	for i := range t.Canopy {
		t.Canopy[i] = r.node()
	}
	if t.ActiveIndex >= uint64(t.MaxBufferSize) || t.BufferSize > uint64(t.MaxBufferSize) {
		return nil, fmt.Errorf("%w: active index %d buffer size %d", ErrInvalidHeader, t.ActiveIndex, t.BufferSize)
	}
	return t, nil
}

// Encode writes the tree body and canopy after the header of [data].
func (t *Tree) Encode(data []byte) error {
	size, err := Size(t.MaxDepth, t.MaxBufferSize, t.CanopyDepth())
	if err != nil {
		return err
	}
	if uint64(len(data)) != size {
		return fmt.Errorf("%w: have %d want %d", ErrSizeMismatch, len(data), size)
	}
	w := &writer{b: data[HeaderLen:]}
	w.u64(t.SequenceNumber)
	w.u64(t.ActiveIndex)
	w.u64(t.BufferSize)
	for _, cl := range t.ChangeLogs {
		w.node(cl.Root)
		for _, n := range cl.Path {
			w.node(n)
		}
		w.u32(cl.Index)
		w.u32(0)
	}
	for _, n := range t.RightmostProof.Proof {
		w.node(n)
	}
	w.node(t.RightmostProof.Leaf)
	w.u32(t.RightmostProof.Index)
	w.u32(0)
	for _, n := range t.Canopy {
		w.node(n)
	}
	return nil
}

// reader and writer assume lengths were checked by the caller.
type reader struct {
	b   []byte
	off int
}

func (r *reader) next(n int) []byte {
	v := r.b[r.off : r.off+n]
	r.off += n
	return v
}

func (r *reader) u8() uint8   { return r.next(consts.ByteLen)[0] }
func (r *reader) u32() uint32 { return binary.LittleEndian.Uint32(r.next(consts.Uint32Len)) }
func (r *reader) u64() uint64 { return binary.LittleEndian.Uint64(r.next(consts.Uint64Len)) }

func (r *reader) node() Node {
	var n Node
	copy(n[:], r.next(consts.NodeLen))
	return n
}

type writer struct {
	b   []byte
	off int
}

func (w *writer) put(v []byte) {
	copy(w.b[w.off:], v)
	w.off += len(v)
}

func (w *writer) u8(v uint8) { w.put([]byte{v}) }

func (w *writer) u32(v uint32) {
	binary.LittleEndian.PutUint32(w.b[w.off:], v)
	w.off += consts.Uint32Len
}

func (w *writer) u64(v uint64) {
	binary.LittleEndian.PutUint64(w.b[w.off:], v)
	w.off += consts.Uint64Len
}

func (w *writer) node(n Node) { w.put(n[:]) }
