// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package tstate

import (
	"context"
	"slices"
	"sync"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/maybe"
	"golang.org/x/exp/maps"
)

// TState defines a struct for storing temporary state.
//
// Every transaction executes in its own [TStateView]. Only views that
// finish without error are committed into the [TState], which is flushed
// to disk with [TState.WriteChanges].
type TState struct {
	l           sync.RWMutex
	ops         int
	changedKeys map[string]maybe.Maybe[[]byte]
}

// New returns a new instance of TState.
//
// [changedSize] is an estimate of the number of keys that will be changed.
func New(changedSize int) *TState {
	return &TState{
		changedKeys: make(map[string]maybe.Maybe[[]byte], changedSize),
	}
}

func (ts *TState) getChangedValue(_ context.Context, key string) ([]byte, bool, bool) {
	ts.l.RLock()
	defer ts.l.RUnlock()

	if v, ok := ts.changedKeys[key]; ok {
		if v.IsNothing() {
			return nil, true, false
		}
		return v.Value(), true, true
	}
	return nil, false, false
}

// PendingChanges returns the number of keys committed but not yet written.
func (ts *TState) PendingChanges() int {
	ts.l.RLock()
	defer ts.l.RUnlock()

	return len(ts.changedKeys)
}

// OpIndex returns the number of committed operations.
func (ts *TState) OpIndex() int {
	ts.l.RLock()
	defer ts.l.RUnlock()

	return ts.ops
}

// WriteChanges writes all committed changes to [db] in key order and resets
// the [TState].
func (ts *TState) WriteChanges(
	ctx context.Context,
	db database.KeyValueWriterDeleter,
	t trace.Tracer, //nolint:interfacer
) error {
	_, span := t.Start(ctx, "TState.WriteChanges")
	defer span.End()

	ts.l.Lock()
	defer ts.l.Unlock()

	keys := maps.Keys(ts.changedKeys)
	slices.Sort(keys)
	for _, key := range keys {
		v := ts.changedKeys[key]
		if v.IsNothing() {
			if err := db.Delete([]byte(key)); err != nil {
				return err
			}
			continue
		}
		if err := db.Put([]byte(key), v.Value()); err != nil {
			return err
		}
	}
	clear(ts.changedKeys)
	ts.ops = 0
	return nil
}
