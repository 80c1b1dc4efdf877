// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

//nolint:revive
package config

import (
	"encoding/json"
	"fmt"

	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/amxrac/ovwigho/ledger"
	"github.com/amxrac/ovwigho/pebble"
	"github.com/amxrac/ovwigho/trace"
)

const (
	Name    = "ovwigho"
	Version = "v0.1.0"

	defaultLogDir = ".ovwigho/logs"
)

type Config struct {
	// Logging
	LogLevel logging.Level `json:"logLevel"`
	LogDir   string        `json:"logDir"`

	// Storage. An empty directory keeps the ledger in memory.
	DatabaseDir string        `json:"databaseDir"`
	Pebble      pebble.Config `json:"pebble"`

	// Ledger
	LamportsPerSignature    uint64  `json:"lamportsPerSignature"`
	LamportsPerByteYear     uint64  `json:"lamportsPerByteYear"`
	ExemptionThreshold      float64 `json:"exemptionThreshold"`
	FaucetLamports          uint64  `json:"faucetLamports"`
	RecentBlockhashes       int     `json:"recentBlockhashes"`
	ProcessedSignatureCache int     `json:"processedSignatureCache"`
	MaxInvokeDepth          int     `json:"maxInvokeDepth"`

	// Tracing
	TraceEnabled    bool    `json:"traceEnabled"`
	TraceSampleRate float64 `json:"traceSampleRate"`
	TraceExporter   string  `json:"traceExporter"`
	TraceEndpoint   string  `json:"traceEndpoint"`
}

func New(b []byte) (*Config, error) {
	c := &Config{}
	c.setDefault()
	if len(b) > 0 {
		if err := json.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config %s: %w", string(b), err)
		}
	}
	if c.RecentBlockhashes <= 0 || c.ProcessedSignatureCache <= 0 || c.MaxInvokeDepth <= 0 {
		return nil, fmt.Errorf("%w: cache sizes and invoke depth must be positive", ErrInvalidConfig)
	}
	if c.ExemptionThreshold < 0 {
		return nil, fmt.Errorf("%w: negative exemption threshold", ErrInvalidConfig)
	}
	return c, nil
}

func (c *Config) setDefault() {
	l := ledger.NewDefaultConfig()
	c.LogLevel = logging.Info
	c.LogDir = defaultLogDir
	c.Pebble = pebble.NewDefaultConfig()
	c.LamportsPerSignature = l.LamportsPerSignature
	c.LamportsPerByteYear = l.Rent.LamportsPerByteYear
	c.ExemptionThreshold = l.Rent.ExemptionThreshold
	c.FaucetLamports = l.FaucetLamports
	c.RecentBlockhashes = l.RecentBlockhashes
	c.ProcessedSignatureCache = l.ProcessedSignatureCache
	c.MaxInvokeDepth = l.MaxInvokeDepth
}

func (c *Config) GetLogLevel() logging.Level     { return c.LogLevel }
func (c *Config) GetLogDir() string              { return c.LogDir }
func (c *Config) GetDatabaseDir() string         { return c.DatabaseDir }
func (c *Config) GetPebbleConfig() pebble.Config { return c.Pebble }
func (c *Config) GetLedgerConfig() ledger.Config {
	return ledger.Config{
		LamportsPerSignature: c.LamportsPerSignature,
		Rent: ledger.Rent{
			LamportsPerByteYear: c.LamportsPerByteYear,
			ExemptionThreshold:  c.ExemptionThreshold,
		},
		FaucetLamports:          c.FaucetLamports,
		RecentBlockhashes:       c.RecentBlockhashes,
		ProcessedSignatureCache: c.ProcessedSignatureCache,
		MaxInvokeDepth:          c.MaxInvokeDepth,
	}
}

func (c *Config) GetTraceConfig() *trace.Config {
	return &trace.Config{
		Enabled:    c.TraceEnabled,
		SampleRate: c.TraceSampleRate,
		Exporter:   c.TraceExporter,
		Endpoint:   c.TraceEndpoint,
		Service:    Name,
		Version:    Version,
	}
}
