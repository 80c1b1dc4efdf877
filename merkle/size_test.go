// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package merkle

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSize(t *testing.T) {
	tests := []struct {
		name          string
		maxDepth      uint32
		maxBufferSize uint32
		canopyDepth   uint32
		want          uint64
		wantErr       error
	}{
		{
			name:          "smallest tree",
			maxDepth:      3,
			maxBufferSize: 8,
			want:          1304,
		},
		{
			name:          "depth 14 without canopy",
			maxDepth:      14,
			maxBufferSize: 64,
			want:          31800,
		},
		{
			name:          "depth 14 with canopy 9",
			maxDepth:      14,
			maxBufferSize: 64,
			canopyDepth:   9,
			want:          64504,
		},
		{
			name:          "unsupported pair",
			maxDepth:      14,
			maxBufferSize: 65,
			wantErr:       ErrUnsupportedParameters,
		},
		{
			name:          "depth outside table",
			maxDepth:      4,
			maxBufferSize: 8,
			wantErr:       ErrUnsupportedParameters,
		},
		{
			name:          "canopy deeper than tree",
			maxDepth:      3,
			maxBufferSize: 8,
			canopyDepth:   4,
			wantErr:       ErrCanopyTooDeep,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			size, err := Size(tt.maxDepth, tt.maxBufferSize, tt.canopyDepth)
			require.ErrorIs(err, tt.wantErr)
			require.Equal(tt.want, size)
		})
	}
}

func TestSizeMonotonicInDepth(t *testing.T) {
	require := require.New(t)

	last := map[uint32]uint64{}
	for _, p := range SupportedPairs() {
		for canopy := uint32(0); canopy <= 2; canopy++ {
			a, err := Size(p.MaxDepth, p.MaxBufferSize, canopy)
			require.NoError(err)
			b, err := Size(p.MaxDepth, p.MaxBufferSize, canopy)
			require.NoError(err)
			require.Equal(a, b)
		}
		size, err := Size(p.MaxDepth, p.MaxBufferSize, 0)
		require.NoError(err)
		require.GreaterOrEqual(size, last[p.MaxBufferSize], p.String())
		last[p.MaxBufferSize] = size
	}
}

func TestSupportedPairsSorted(t *testing.T) {
	require := require.New(t)

	pairs := SupportedPairs()
	require.Len(pairs, len(supportedPairs))
	require.Equal(Pair{3, 8}, pairs[0])
	require.Equal(Pair{30, 2048}, pairs[len(pairs)-1])
	for i := 1; i < len(pairs); i++ {
		prev, cur := pairs[i-1], pairs[i]
		require.True(prev.MaxDepth < cur.MaxDepth ||
			(prev.MaxDepth == cur.MaxDepth && prev.MaxBufferSize < cur.MaxBufferSize))
	}
}

func TestCanopyDepthForSize(t *testing.T) {
	require := require.New(t)

	for canopy := uint32(0); canopy <= 14; canopy++ {
		size, err := Size(14, 64, canopy)
		require.NoError(err)
		got, err := CanopyDepthForSize(14, 64, size)
		require.NoError(err)
		require.Equal(canopy, got)
	}

	size, err := Size(14, 64, 9)
	require.NoError(err)
	_, err = CanopyDepthForSize(14, 64, size-1)
	require.ErrorIs(err, ErrSizeMismatch)
	_, err = CanopyDepthForSize(14, 64, size-32)
	require.ErrorIs(err, ErrSizeMismatch)
	_, err = CanopyDepthForSize(14, 64, HeaderLen)
	require.ErrorIs(err, ErrSizeMismatch)

	tooDeep, err := Size(3, 8, 3)
	require.NoError(err)
	_, err = CanopyDepthForSize(3, 8, tooDeep+CanopyLen(4)-CanopyLen(3))
	require.ErrorIs(err, ErrCanopyTooDeep)
}
