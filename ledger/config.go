// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

const (
	// AccountStorageOverhead is charged for every account on top of its
	// data length.
	AccountStorageOverhead = 128

	MaxAccountDataSize = 10 * 1024 * 1024

	DefaultLamportsPerSignature    = 5_000
	DefaultLamportsPerByteYear     = 3_480
	DefaultExemptionThreshold      = 2.0
	DefaultFaucetLamports          = 500_000_000 * 1_000_000_000
	DefaultRecentBlockhashes       = 150
	DefaultProcessedSignatureCache = 65_536
	DefaultMaxInvokeDepth          = 4
)

type Rent struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  float64
}

// MinimumBalance is the balance an account of [size] data bytes must hold
// to be exempt from rent.
func (r Rent) MinimumBalance(size uint64) uint64 {
	return uint64(float64((AccountStorageOverhead+size)*r.LamportsPerByteYear) * r.ExemptionThreshold)
}

func (r Rent) IsExempt(lamports, size uint64) bool {
	return lamports >= r.MinimumBalance(size)
}

type Config struct {
	LamportsPerSignature    uint64
	Rent                    Rent
	FaucetLamports          uint64
	RecentBlockhashes       int
	ProcessedSignatureCache int
	MaxInvokeDepth          int
}

func NewDefaultConfig() Config {
	return Config{
		LamportsPerSignature: DefaultLamportsPerSignature,
		Rent: Rent{
			LamportsPerByteYear: DefaultLamportsPerByteYear,
			ExemptionThreshold:  DefaultExemptionThreshold,
		},
		FaucetLamports:          DefaultFaucetLamports,
		RecentBlockhashes:       DefaultRecentBlockhashes,
		ProcessedSignatureCache: DefaultProcessedSignatureCache,
		MaxInvokeDepth:          DefaultMaxInvokeDepth,
	}
}
