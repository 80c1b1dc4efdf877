// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/maybe"
)

var _ Mutable = (*SimpleMutable)(nil)

// SimpleMutable buffers writes over [Immutable] without any scope checks. It
// is used to seed a ledger before any transaction runs.
type SimpleMutable struct {
	v Immutable

	changes map[string]maybe.Maybe[[]byte]
}

func NewSimpleMutable(v Immutable) *SimpleMutable {
	return &SimpleMutable{v, make(map[string]maybe.Maybe[[]byte])}
}

func (s *SimpleMutable) GetValue(ctx context.Context, k []byte) ([]byte, error) {
	if v, ok := s.changes[string(k)]; ok {
		if v.IsNothing() {
			return nil, database.ErrNotFound
		}
		return v.Value(), nil
	}
	return s.v.GetValue(ctx, k)
}

func (s *SimpleMutable) Insert(_ context.Context, k []byte, v []byte) error {
	s.changes[string(k)] = maybe.Some(v)
	return nil
}

func (s *SimpleMutable) Remove(_ context.Context, k []byte) error {
	s.changes[string(k)] = maybe.Nothing[[]byte]()
	return nil
}

// Commit writes all buffered changes to [db].
func (s *SimpleMutable) Commit(_ context.Context, db database.KeyValueWriterDeleter) error {
	for k, v := range s.changes {
		var err error
		if v.IsNothing() {
			err = db.Delete([]byte(k))
		} else {
			err = db.Put([]byte(k), v.Value())
		}
		if err != nil {
			return err
		}
	}
	clear(s.changes)
	return nil
}
