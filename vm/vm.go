// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

// Package vm hosts a ledger with every program the collection depends on.
package vm

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/amxrac/ovwigho/config"
	"github.com/amxrac/ovwigho/ledger"
	"github.com/amxrac/ovwigho/programs/bubblegum"
	"github.com/amxrac/ovwigho/programs/compression"
	"github.com/amxrac/ovwigho/programs/core"
	"github.com/amxrac/ovwigho/programs/noop"
	"github.com/amxrac/ovwigho/programs/ovwigho"
	"github.com/amxrac/ovwigho/programs/system"
	"github.com/amxrac/ovwigho/storage"

	otrace "github.com/amxrac/ovwigho/trace"
)

const ledgerDB = "ledger"

type VM struct {
	log    logging.Logger
	tracer trace.Tracer
	db     storage.Database

	gatherer prometheus.Gatherers
	ledger   *ledger.Ledger
}

// Programs returns every program installed at genesis.
func Programs(log logging.Logger) []ledger.Program {
	return []ledger.Program{
		system.New(log),
		noop.New(),
		compression.New(log),
		core.New(log),
		bubblegum.New(log),
		ovwigho.New(log),
	}
}

// New opens the database named by [cfg], in memory when no directory is
// set, and starts a ledger on it.
func New(log logging.Logger, cfg *config.Config) (*VM, error) {
	var (
		db    storage.Database
		dbReg *prometheus.Registry
		err   error
	)
	if dir := cfg.GetDatabaseDir(); len(dir) > 0 {
		db, dbReg, err = storage.New(cfg.GetPebbleConfig(), dir, ledgerDB)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
	} else {
		db, dbReg = storage.NewMemory()
	}

	tracer, err := otrace.New(cfg.GetTraceConfig())
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	ledgerReg := prometheus.NewRegistry()
	l, err := ledger.New(
		log,
		tracer,
		ledgerReg,
		db,
		cfg.GetLedgerConfig(),
		Programs(log)...,
	)
	if err != nil {
		_ = tracer.Close()
		_ = db.Close()
		return nil, err
	}
	log.Info("vm started",
		zap.String("name", config.Name),
		zap.String("version", config.Version),
		zap.String("databaseDir", cfg.GetDatabaseDir()),
		zap.Bool("tracing", cfg.GetTraceConfig().Enabled),
	)
	return &VM{
		log:      log,
		tracer:   tracer,
		db:       db,
		gatherer: prometheus.Gatherers{dbReg, ledgerReg},
		ledger:   l,
	}, nil
}

func (vm *VM) Ledger() *ledger.Ledger {
	return vm.ledger
}

func (vm *VM) Logger() logging.Logger {
	return vm.log
}

// Gatherer exposes the database and ledger metrics.
func (vm *VM) Gatherer() prometheus.Gatherer {
	return vm.gatherer
}

// Close flushes the tracer and closes the database.
func (vm *VM) Close() error {
	errs := []error{vm.tracer.Close(), vm.db.Close()}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	vm.log.Info("vm stopped")
	return nil
}
