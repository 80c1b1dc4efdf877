// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatBalance(t *testing.T) {
	tests := []struct {
		lamports uint64
		want     string
	}{
		{0, "0.000000000"},
		{1, "0.000000001"},
		{1_000_000_000, "1.000000000"},
		{2_039_280, "0.002039280"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, FormatBalance(tt.lamports))
	}
}

func TestParseBalance(t *testing.T) {
	tests := []struct {
		bal     string
		want    uint64
		wantErr error
	}{
		{bal: "2", want: 2_000_000_000},
		{bal: "1.5", want: 1_500_000_000},
		{bal: "0.000000001", want: 1},
		{bal: ".25", want: 250_000_000},
		{bal: "0.0000000001", wantErr: ErrInvalidBalance},
		{bal: "two", wantErr: ErrInvalidBalance},
		{bal: "", wantErr: ErrInvalidBalance},
		{bal: "-1", wantErr: ErrInvalidBalance},
		{bal: "18446744074", wantErr: ErrInvalidBalance},
	}
	for _, tt := range tests {
		t.Run(tt.bal, func(t *testing.T) {
			v, err := ParseBalance(tt.bal)
			require.ErrorIs(t, err, tt.wantErr)
			require.Equal(t, tt.want, v)
		})
	}
}

func TestToIDDeterministic(t *testing.T) {
	require := require.New(t)
	require.Equal(ToID([]byte("a")), ToID([]byte("a")))
	require.NotEqual(ToID([]byte("a")), ToID([]byte("b")))
}
