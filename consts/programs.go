// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

import "github.com/gagliardetto/solana-go"

var (
	SystemProgramID      = solana.MustPublicKeyFromBase58("11111111111111111111111111111111")
	NativeLoaderID       = solana.MustPublicKeyFromBase58("NativeLoader1111111111111111111111111111111")
	CompressionProgramID = solana.MustPublicKeyFromBase58("mcmt6YrQEMKw8Mw43FmpRLmf7BqRnFMKmAcbxE3xkAW")
	NoopProgramID        = solana.MustPublicKeyFromBase58("mnoopTCrg4p8ry25e4bcWA9XZjbNjMTfgYVGGEdRsf3")
	BubblegumProgramID   = solana.MustPublicKeyFromBase58("BGUMAp9Gq7iTEuizy4pqaxsTyUCBK68MDfK752saRPUY")
	CoreProgramID        = solana.MustPublicKeyFromBase58("CoREENxT6tW1HoK8ypY1SxRMZTcVPm7R94rH4PZNhX7d")
	OvwighoProgramID     = solana.MustPublicKeyFromBase58("87SMpWyhZpRWKeRxaMNMwwjDwMBLhYLSAbPjkPJMRdii")
)

// Seeds used to derive program addresses.
var (
	ConfigSeed = []byte("config")
	PlayerSeed = []byte("player")
	AssetSeed  = []byte("asset")

	CoreCPISignerSeed = []byte("mpl_core_cpi_signer")
)
