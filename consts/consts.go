// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

const (
	IDLen          = 32
	PublicKeyLen   = 32
	SignatureLen   = 64
	NodeLen        = 32
	MaxUint8       = ^uint8(0)
	MaxUint16      = ^uint16(0)
	MaxUint32      = ^uint32(0)
	MaxUint8Offset = 7
	MaxUint        = ^uint(0)
	MaxInt         = int(MaxUint >> 1)
	BoolLen        = 1
	ByteLen        = 1
	IntLen         = 4
	Uint16Len      = 2
	Uint32Len      = 4
	Uint64Len      = 8
	MaxUint64      = ^uint64(0)

	// DiscriminatorLen is the length of the account and instruction
	// discriminators prefixed to every program record.
	DiscriminatorLen = 8

	LamportsPerSOL = 1_000_000_000
)
