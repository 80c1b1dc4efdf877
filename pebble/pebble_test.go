// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"crypto/rand"
	"fmt"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

const batchSize = 10_000

func randBytes() []byte {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		panic(err)
	}
	return b
}

func newTestDB(t *testing.T) *Database {
	cfg := NewDefaultConfig()
	cfg.Sync = false
	db, _, err := New(t.TempDir(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestGetPutDelete(t *testing.T) {
	require := require.New(t)
	db := newTestDB(t)

	_, err := db.Get([]byte("missing"))
	require.ErrorIs(err, database.ErrNotFound)

	require.NoError(db.Put([]byte("k"), []byte("v")))
	v, err := db.Get([]byte("k"))
	require.NoError(err)
	require.Equal([]byte("v"), v)
	has, err := db.Has([]byte("k"))
	require.NoError(err)
	require.True(has)

	require.NoError(db.Delete([]byte("k")))
	has, err = db.Has([]byte("k"))
	require.NoError(err)
	require.False(has)
}

func TestBatch(t *testing.T) {
	require := require.New(t)
	db := newTestDB(t)
	require.NoError(db.Put([]byte("old"), []byte{1}))

	b := db.NewBatch()
	require.NoError(b.Put([]byte("a"), []byte("1")))
	require.NoError(b.Put([]byte("b"), []byte("2")))
	require.NoError(b.Delete([]byte("old")))
	require.Equal(len("a1b2old"), b.Size())

	// Nothing is visible until the batch is written.
	has, err := db.Has([]byte("a"))
	require.NoError(err)
	require.False(has)

	mem := memdb.New()
	require.NoError(b.Replay(mem))
	v, err := mem.Get([]byte("b"))
	require.NoError(err)
	require.Equal([]byte("2"), v)

	require.NoError(b.Write())
	v, err = db.Get([]byte("a"))
	require.NoError(err)
	require.Equal([]byte("1"), v)
	has, err = db.Has([]byte("old"))
	require.NoError(err)
	require.False(has)

	b.Reset()
	require.Zero(b.Size())
}

func TestCloseTwice(t *testing.T) {
	require := require.New(t)

	cfg := NewDefaultConfig()
	db, registry, err := New(t.TempDir(), cfg)
	require.NoError(err)
	require.NotNil(registry)
	require.NoError(db.Close())
	require.ErrorIs(db.Close(), database.ErrClosed)
}

func TestMetrics(t *testing.T) {
	require := require.New(t)

	cfg := NewDefaultConfig()
	cfg.Sync = false
	db, registry, err := New(t.TempDir(), cfg)
	require.NoError(err)
	defer db.Close()

	b := db.NewBatch()
	require.NoError(b.Put([]byte("account"), randBytes()))
	require.NoError(b.Write())
	require.InDelta(1, testutil.ToFloat64(db.metrics.batchWrites), 0)
	require.InDelta(float64(len("account")+32), testutil.ToFloat64(db.metrics.batchedBytes), 0)

	db.sampleMetrics()
	require.Positive(testutil.ToFloat64(db.metrics.sampled[len(db.metrics.sampled)-1].gauge))

	n, err := testutil.GatherAndCount(registry, namespace+"_batch_writes", namespace+"_disk_space")
	require.NoError(err)
	require.Equal(2, n)
}

func BenchmarkBatchInsertion(b *testing.B) {
	for _, sync := range []bool{false, true} {
		b.Run(fmt.Sprintf("sync=%t", sync), func(b *testing.B) {
			// Setup DB
			b.StopTimer()
			cfg := NewDefaultConfig()
			cfg.Sync = sync
			db, _, err := New(b.TempDir(), cfg)
			if err != nil {
				b.Fatal(err)
			}

			// Setup keys
			keys := make([][]byte, batchSize)
			for i := 0; i < batchSize; i++ {
				keys[i] = randBytes()
			}

			b.StartTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				batch := db.NewBatch()
				for j := 0; j < batchSize; j++ {
					if err := batch.Put(keys[j], randBytes()); err != nil {
						b.Fatal(err)
					}
				}
				if err := batch.Write(); err != nil {
					b.Fatal(err)
				}
			}
			b.StopTimer()
			if err := db.Close(); err != nil {
				b.Fatal(err)
			}
		})
	}
}
