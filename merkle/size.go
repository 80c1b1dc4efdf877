// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package merkle

import (
	"fmt"

	"github.com/amxrac/ovwigho/consts"
)

const (
	// HeaderLen covers account type, version, max buffer size, max depth,
	// authority, creation slot and padding.
	HeaderLen = consts.ByteLen + consts.ByteLen + consts.Uint32Len + consts.Uint32Len +
		consts.PublicKeyLen + consts.Uint64Len + headerPaddingLen

	headerPaddingLen = 6
	// sequence number, active index and buffer size
	countersLen = 3 * consts.Uint64Len
	indexLen    = consts.Uint32Len + consts.Uint32Len
)

func changeLogLen(maxDepth uint32) uint64 {
	return consts.NodeLen + uint64(maxDepth)*consts.NodeLen + indexLen
}

func pathLen(maxDepth uint32) uint64 {
	return uint64(maxDepth)*consts.NodeLen + consts.NodeLen + indexLen
}

// TreeLen is the size of the tree body that follows the header.
func TreeLen(maxDepth, maxBufferSize uint32) uint64 {
	return countersLen + uint64(maxBufferSize)*changeLogLen(maxDepth) + pathLen(maxDepth)
}

// CanopyNodes is the number of cached upper nodes for [canopyDepth].
func CanopyNodes(canopyDepth uint32) uint64 {
	if canopyDepth == 0 {
		return 0
	}
	return (uint64(1) << (canopyDepth + 1)) - 2
}

func CanopyLen(canopyDepth uint32) uint64 {
	return CanopyNodes(canopyDepth) * consts.NodeLen
}

// Size returns the exact byte length of a tree account.
func Size(maxDepth, maxBufferSize, canopyDepth uint32) (uint64, error) {
	if err := CheckSupported(maxDepth, maxBufferSize); err != nil {
		return 0, err
	}
	if canopyDepth > maxDepth {
		return 0, fmt.Errorf("%w: canopy %d, depth %d", ErrCanopyTooDeep, canopyDepth, maxDepth)
	}
	return HeaderLen + TreeLen(maxDepth, maxBufferSize) + CanopyLen(canopyDepth), nil
}

// CanopyDepthForSize recovers the canopy depth an account of [length] bytes
// was allocated with.
func CanopyDepthForSize(maxDepth, maxBufferSize uint32, length uint64) (uint32, error) {
	if err := CheckSupported(maxDepth, maxBufferSize); err != nil {
		return 0, err
	}
	base := HeaderLen + TreeLen(maxDepth, maxBufferSize)
	if length < base || (length-base)%consts.NodeLen != 0 {
		return 0, fmt.Errorf("%w: %d bytes for %s", ErrSizeMismatch, length, Pair{maxDepth, maxBufferSize})
	}
	nodes := (length - base) / consts.NodeLen
	for c := uint32(0); c <= maxDepth; c++ {
		switch n := CanopyNodes(c); {
		case n == nodes:
			return c, nil
		case n > nodes:
			return 0, fmt.Errorf("%w: %d bytes for %s", ErrSizeMismatch, length, Pair{maxDepth, maxBufferSize})
		}
	}
	return 0, fmt.Errorf("%w: %d bytes for %s", ErrCanopyTooDeep, length, Pair{maxDepth, maxBufferSize})
}
