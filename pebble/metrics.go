// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"time"

	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsInterval = 10 * time.Second
	namespace       = "ledger_pebble"
)

// sampled is a gauge refreshed from [pebble.Metrics] every [metricsInterval].
type sampled struct {
	gauge prometheus.Gauge
	read  func(*pebble.Metrics) float64
}

type metrics struct {
	stallStart time.Time
	writeStall metric.Averager
	getLatency metric.Averager

	batchWrites  prometheus.Counter
	batchedBytes prometheus.Counter
	compactions  *prometheus.CounterVec
	compacting   prometheus.Gauge

	sampled []sampled
}

func newSampled(name, help string, read func(*pebble.Metrics) float64) sampled {
	return sampled{
		gauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}),
		read: read,
	}
}

func newMetrics() (*prometheus.Registry, *metrics, error) {
	r := prometheus.NewRegistry()
	writeStall, err := metric.NewAverager(namespace+"_write_stall", "time spent waiting for disk write", r)
	if err != nil {
		return nil, nil, err
	}
	getLatency, err := metric.NewAverager(namespace+"_read_latency", "time spent waiting for account reads", r)
	if err != nil {
		return nil, nil, err
	}
	m := &metrics{
		writeStall: writeStall,
		getLatency: getLatency,
		batchWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_writes",
			Help:      "number of committed slot batches",
		}),
		batchedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batched_bytes",
			Help:      "bytes of keys and values committed in batches",
		}),
		compactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compactions",
			Help:      "number of compactions by input level",
		}, []string{"level"}),
		compacting: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_compactions",
			Help:      "number of running compactions",
		}),
		sampled: []sampled{
			newSampled("tombstone_count", "approximate count of deleted account keys not yet compacted",
				func(m *pebble.Metrics) float64 { return float64(m.Keys.TombstoneCount) }),
			newSampled("obsolete_table_size", "bytes in tables no longer referenced",
				func(m *pebble.Metrics) float64 { return float64(m.Table.ObsoleteSize) }),
			newSampled("zombie_table_size", "bytes in unreferenced tables still held by iterators",
				func(m *pebble.Metrics) float64 { return float64(m.Table.ZombieSize) }),
			newSampled("obsolete_wal_size", "bytes in WAL files no longer needed",
				func(m *pebble.Metrics) float64 { return float64(m.WAL.ObsoletePhysicalSize) }),
			newSampled("disk_space", "bytes used on disk",
				func(m *pebble.Metrics) float64 { return float64(m.DiskSpaceUsage()) }),
		},
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.batchWrites),
		r.Register(m.batchedBytes),
		r.Register(m.compactions),
		r.Register(m.compacting),
	)
	for _, s := range m.sampled {
		errs.Add(r.Register(s.gauge))
	}
	return r, m, errs.Err
}

func (db *Database) onCompactionBegin(info pebble.CompactionInfo) {
	db.metrics.compacting.Inc()
	level := "l1+"
	if len(info.Input) > 0 && info.Input[0].Level == 0 {
		level = "l0"
	}
	db.metrics.compactions.WithLabelValues(level).Inc()
}

func (db *Database) onCompactionEnd(pebble.CompactionInfo) {
	db.metrics.compacting.Dec()
}

func (db *Database) onWriteStallBegin(pebble.WriteStallBeginInfo) {
	db.metrics.stallStart = time.Now()
}

func (db *Database) onWriteStallEnd() {
	db.metrics.writeStall.Observe(float64(time.Since(db.metrics.stallStart)))
}

func (db *Database) collectMetrics() {
	t := time.NewTicker(metricsInterval)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			db.sampleMetrics()
		case <-db.closing:
			return
		}
	}
}

func (db *Database) sampleMetrics() {
	pm := db.db.Metrics()
	for _, s := range db.metrics.sampled {
		s.gauge.Set(s.read(pm))
	}
}
