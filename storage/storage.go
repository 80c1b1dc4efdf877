// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/amxrac/ovwigho/codec"
	"github.com/amxrac/ovwigho/consts"
	"github.com/amxrac/ovwigho/pebble"
	"github.com/amxrac/ovwigho/state"
	"github.com/amxrac/ovwigho/utils"
)

// Ledger
// 0x0/ (accounts)
//   -> [address] => lamports|owner|executable|data
// 0x1/ (slot)
// 0x2/ (latest blockhash)
//   -> blockhash|slot
// 0x3/ (transactions)
//   -> [signature] => slot|fee|err|logs

const (
	accountPrefix   = 0x0
	slotPrefix      = 0x1
	blockhashPrefix = 0x2
	txPrefix        = 0x3

	accountHeaderLen = consts.Uint64Len + consts.PublicKeyLen + consts.BoolLen
)

var (
	ErrCorruptAccount = errors.New("corrupt account record")

	slotKey      = []byte{slotPrefix}
	blockhashKey = []byte{blockhashPrefix}
)

// Database is the subset of the avalanchego database interface the ledger
// writes through. Both [memdb] and [pebble] satisfy it.
type Database interface {
	database.KeyValueReaderWriterDeleter
	database.Batcher
	io.Closer
}

var (
	_ Database = (*memdb.Database)(nil)
	_ Database = (*pebble.Database)(nil)
)

// New opens a pebble database under [dataDir]/[namespace].
func New(cfg pebble.Config, dataDir string, namespace string) (Database, *prometheus.Registry, error) {
	path, err := utils.InitSubDirectory(dataDir, namespace)
	if err != nil {
		return nil, nil, err
	}
	return pebble.New(path, cfg)
}

// NewMemory returns an in-memory database with an empty registry.
func NewMemory() (Database, *prometheus.Registry) {
	return memdb.New(), prometheus.NewRegistry()
}

// Account is the ledger record held at every address.
type Account struct {
	Lamports   uint64
	Owner      solana.PublicKey
	Executable bool
	Data       []byte
}

func (a *Account) Clone() *Account {
	c := *a
	c.Data = append([]byte(nil), a.Data...)
	if len(c.Data) == 0 {
		c.Data = nil
	}
	return &c
}

// IsEmpty reports whether the account holds neither lamports nor data.
func (a *Account) IsEmpty() bool {
	return a.Lamports == 0 && len(a.Data) == 0
}

// [accountPrefix] + [address]
func AccountKey(addr solana.PublicKey) (k []byte) {
	k = make([]byte, 1+consts.PublicKeyLen)
	k[0] = accountPrefix
	copy(k[1:], addr[:])
	return
}

func EncodeAccount(a *Account) []byte {
	v := make([]byte, accountHeaderLen+len(a.Data))
	binary.BigEndian.PutUint64(v, a.Lamports)
	copy(v[consts.Uint64Len:], a.Owner[:])
	if a.Executable {
		v[consts.Uint64Len+consts.PublicKeyLen] = 1
	}
	copy(v[accountHeaderLen:], a.Data)
	return v
}

func DecodeAccount(v []byte) (*Account, error) {
	if len(v) < accountHeaderLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorruptAccount, len(v))
	}
	a := &Account{
		Lamports:   binary.BigEndian.Uint64(v),
		Executable: v[consts.Uint64Len+consts.PublicKeyLen] == 1,
	}
	copy(a.Owner[:], v[consts.Uint64Len:])
	if len(v) > accountHeaderLen {
		a.Data = append([]byte(nil), v[accountHeaderLen:]...)
	}
	return a, nil
}

// GetAccount returns the account at [addr]. Missing accounts are returned as
// an empty system-owned account with exists set to false.
func GetAccount(
	ctx context.Context,
	im state.Immutable,
	addr solana.PublicKey,
) (*Account, bool, error) {
	return innerGetAccount(im.GetValue(ctx, AccountKey(addr)))
}

// Used to serve client queries
func GetAccountFromDB(
	db database.KeyValueReader,
	addr solana.PublicKey,
) (*Account, bool, error) {
	return innerGetAccount(db.Get(AccountKey(addr)))
}

func innerGetAccount(v []byte, err error) (*Account, bool, error) {
	if errors.Is(err, database.ErrNotFound) {
		return &Account{Owner: consts.SystemProgramID}, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	a, err := DecodeAccount(v)
	if err != nil {
		return nil, false, err
	}
	return a, true, nil
}

// SetAccount writes [a] at [addr]. An account drained of lamports is
// removed.
func SetAccount(
	ctx context.Context,
	mu state.Mutable,
	addr solana.PublicKey,
	a *Account,
) error {
	k := AccountKey(addr)
	if a.Lamports == 0 {
		return mu.Remove(ctx, k)
	}
	return mu.Insert(ctx, k, EncodeAccount(a))
}

func StoreSlot(db database.KeyValueWriter, slot uint64) error {
	return db.Put(slotKey, binary.BigEndian.AppendUint64(nil, slot))
}

func GetSlot(db database.KeyValueReader) (uint64, error) {
	v, err := db.Get(slotKey)
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(v), nil
}

func StoreLatestBlockhash(db database.KeyValueWriter, hash ids.ID, slot uint64) error {
	v := make([]byte, consts.IDLen+consts.Uint64Len)
	copy(v, hash[:])
	binary.BigEndian.PutUint64(v[consts.IDLen:], slot)
	return db.Put(blockhashKey, v)
}

func GetLatestBlockhash(db database.KeyValueReader) (ids.ID, uint64, bool, error) {
	v, err := db.Get(blockhashKey)
	if errors.Is(err, database.ErrNotFound) {
		return ids.Empty, 0, false, nil
	}
	if err != nil {
		return ids.Empty, 0, false, err
	}
	return ids.ID(v[:consts.IDLen]), binary.BigEndian.Uint64(v[consts.IDLen:]), true, nil
}

// TransactionStatus is kept for every committed transaction.
type TransactionStatus struct {
	Slot uint64
	Fee  uint64
	Logs []string
}

// [txPrefix] + [signature]
func TxKey(sig solana.Signature) (k []byte) {
	k = make([]byte, 1+consts.SignatureLen)
	k[0] = txPrefix
	copy(k[1:], sig[:])
	return
}

func StoreTransaction(
	db database.KeyValueWriter,
	sig solana.Signature,
	status *TransactionStatus,
) error {
	v, err := codec.Marshal(*status)
	if err != nil {
		return err
	}
	return db.Put(TxKey(sig), v)
}

func GetTransaction(
	db database.KeyValueReader,
	sig solana.Signature,
) (*TransactionStatus, bool, error) {
	v, err := db.Get(TxKey(sig))
	if errors.Is(err, database.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var status TransactionStatus
	if err := codec.Unmarshal(v, &status); err != nil {
		return nil, false, err
	}
	return &status, true, nil
}
