// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	txsSubmitted    prometheus.Counter
	txsAccepted     prometheus.Counter
	txsFailed       prometheus.Counter
	txsSimulated    prometheus.Counter
	txsDuplicate    prometheus.Counter
	stateChanges    prometheus.Counter
	stateOperations prometheus.Counter
	feesCollected   prometheus.Counter
	slot            prometheus.Gauge
	txProcess       metric.Averager
	txCommit        metric.Averager
}

func newMetrics(r prometheus.Registerer) (*metrics, error) {
	txProcess, err := metric.NewAverager(
		"ledger_tx_process",
		"time spent executing a transaction",
		r,
	)
	if err != nil {
		return nil, err
	}
	txCommit, err := metric.NewAverager(
		"ledger_tx_commit",
		"time spent writing a transaction to disk",
		r,
	)
	if err != nil {
		return nil, err
	}

	m := &metrics{
		txsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "txs_submitted",
			Help:      "number of txs submitted to the ledger",
		}),
		txsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "txs_accepted",
			Help:      "number of txs committed",
		}),
		txsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "txs_failed",
			Help:      "number of txs rejected by preflight or execution",
		}),
		txsSimulated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "txs_simulated",
			Help:      "number of txs simulated without commit",
		}),
		txsDuplicate: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "txs_duplicate",
			Help:      "number of txs rejected because they were already processed",
		}),
		stateChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "state_changes",
			Help:      "number of state changes",
		}),
		stateOperations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "state_operations",
			Help:      "number of state operations",
		}),
		feesCollected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "fees_collected",
			Help:      "lamports charged as transaction fees",
		}),
		slot: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ledger",
			Name:      "slot",
			Help:      "latest committed slot",
		}),
		txProcess: txProcess,
		txCommit:  txCommit,
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.txsSubmitted),
		r.Register(m.txsAccepted),
		r.Register(m.txsFailed),
		r.Register(m.txsSimulated),
		r.Register(m.txsDuplicate),
		r.Register(m.stateChanges),
		r.Register(m.stateOperations),
		r.Register(m.feesCollected),
		r.Register(m.slot),
	)
	return m, errs.Err
}
