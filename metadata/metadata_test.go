// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package metadata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		meta    string
		uri     string
		wantErr error
	}{
		{
			name: "valid",
			meta: "test cNFT",
			uri:  "https://example.com/cnft.json",
		},
		{
			name:    "empty uri",
			meta:    "test NFT",
			wantErr: ErrEmptyURI,
		},
		{
			name: "ipfs",
			meta: "test NFT",
			uri:  "ipfs://bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi",
		},
		{
			name:    "empty name",
			uri:     "https://example.com/cnft.json",
			wantErr: ErrEmptyName,
		},
		{
			name:    "name too long",
			meta:    strings.Repeat("a", MaxNameLen+1),
			uri:     "https://example.com/cnft.json",
			wantErr: ErrNameTooLong,
		},
		{
			name: "name at limit",
			meta: strings.Repeat("a", MaxNameLen),
			uri:  "https://example.com/cnft.json",
		},
		{
			name:    "uri too long",
			meta:    "test",
			uri:     "https://example.com/" + strings.Repeat("a", MaxURILen),
			wantErr: ErrURITooLong,
		},
		{
			name:    "relative uri",
			meta:    "test",
			uri:     "cnft.json",
			wantErr: ErrMalformedURI,
		},
		{
			name:    "no host",
			meta:    "test",
			uri:     "https:///cnft.json",
			wantErr: ErrMalformedURI,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, Validate(tt.meta, tt.uri), tt.wantErr)
		})
	}
}

func TestValidateSymbol(t *testing.T) {
	require := require.New(t)

	require.NoError(ValidateSymbol(""))
	require.NoError(ValidateSymbol("OVW"))
	require.ErrorIs(ValidateSymbol(strings.Repeat("S", MaxSymbolLen+1)), ErrSymbolTooLong)
}

func TestNormalize(t *testing.T) {
	require := require.New(t)

	clean, err := Normalize("HTTPS://Example.com//a//b.json")
	require.NoError(err)
	require.Equal("https://example.com/a/b.json", clean)
}
