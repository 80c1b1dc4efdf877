// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package merkle

import (
	"fmt"
	"slices"

	"golang.org/x/exp/maps"
)

// Pair is a (max depth, max buffer size) combination accepted by the
// compression program.
type Pair struct {
	MaxDepth      uint32
	MaxBufferSize uint32
}

func (p Pair) String() string {
	return fmt.Sprintf("(%d, %d)", p.MaxDepth, p.MaxBufferSize)
}

var supportedPairs = map[Pair]struct{}{
	{3, 8}:     {},
	{5, 8}:     {},
	{6, 16}:    {},
	{7, 16}:    {},
	{8, 16}:    {},
	{9, 16}:    {},
	{10, 32}:   {},
	{11, 32}:   {},
	{12, 32}:   {},
	{13, 32}:   {},
	{14, 64}:   {},
	{14, 256}:  {},
	{14, 1024}: {},
	{14, 2048}: {},
	{15, 64}:   {},
	{16, 64}:   {},
	{17, 64}:   {},
	{18, 64}:   {},
	{19, 64}:   {},
	{20, 64}:   {},
	{20, 256}:  {},
	{20, 1024}: {},
	{20, 2048}: {},
	{24, 64}:   {},
	{24, 256}:  {},
	{24, 512}:  {},
	{24, 1024}: {},
	{24, 2048}: {},
	{26, 512}:  {},
	{26, 1024}: {},
	{26, 2048}: {},
	{30, 512}:  {},
	{30, 1024}: {},
	{30, 2048}: {},
}

func IsSupported(maxDepth, maxBufferSize uint32) bool {
	_, ok := supportedPairs[Pair{maxDepth, maxBufferSize}]
	return ok
}

// CheckSupported returns [ErrUnsupportedParameters] for any pair outside the
// table. There is no nearest-match fallback.
func CheckSupported(maxDepth, maxBufferSize uint32) error {
	if !IsSupported(maxDepth, maxBufferSize) {
		return fmt.Errorf("%w: %s", ErrUnsupportedParameters, Pair{maxDepth, maxBufferSize})
	}
	return nil
}

// SupportedPairs returns the table ordered by depth, then buffer size.
func SupportedPairs() []Pair {
	pairs := maps.Keys(supportedPairs)
	slices.SortFunc(pairs, func(a, b Pair) int {
		if a.MaxDepth != b.MaxDepth {
			return int(a.MaxDepth) - int(b.MaxDepth)
		}
		return int(a.MaxBufferSize) - int(b.MaxBufferSize)
	})
	return pairs
}
