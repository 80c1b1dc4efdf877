// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"context"
	"crypto/ed25519"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/set"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	smath "github.com/ava-labs/avalanchego/utils/math"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/amxrac/ovwigho/consts"
	crypto "github.com/amxrac/ovwigho/crypto/ed25519"
	"github.com/amxrac/ovwigho/state"
	"github.com/amxrac/ovwigho/storage"
	"github.com/amxrac/ovwigho/tstate"
	"github.com/amxrac/ovwigho/utils"
)

var (
	faucetSeed  = []byte("ovwigho-faucet")
	genesisSeed = []byte("ovwigho-genesis")
)

// Ledger executes transactions against accounts held in a [storage.Database].
// Transactions are applied one at a time and each one commits in a single
// batch or not at all.
type Ledger struct {
	log     logging.Logger
	tracer  trace.Tracer
	cfg     Config
	db      storage.Database
	metrics *metrics

	programs map[solana.PublicKey]Program
	faucet   solana.PrivateKey

	// l serializes transaction execution
	l           sync.Mutex
	slot        uint64
	blockhash   solana.Hash
	blockhashes *lru.Cache[solana.Hash, uint64]
	processed   *lru.Cache[solana.Signature, struct{}]
}

// FaucetKey is the deterministic keypair funded at genesis.
func FaucetKey() solana.PrivateKey {
	return solana.PrivateKey(ed25519.NewKeyFromSeed(hashing.ComputeHash256(faucetSeed)))
}

func New(
	log logging.Logger,
	tracer trace.Tracer,
	registerer prometheus.Registerer,
	db storage.Database,
	cfg Config,
	programs ...Program,
) (*Ledger, error) {
	m, err := newMetrics(registerer)
	if err != nil {
		return nil, err
	}
	blockhashes, err := lru.New[solana.Hash, uint64](cfg.RecentBlockhashes)
	if err != nil {
		return nil, err
	}
	processed, err := lru.New[solana.Signature, struct{}](cfg.ProcessedSignatureCache)
	if err != nil {
		return nil, err
	}
	l := &Ledger{
		log:         log,
		tracer:      tracer,
		cfg:         cfg,
		db:          db,
		metrics:     m,
		programs:    make(map[solana.PublicKey]Program, len(programs)),
		faucet:      FaucetKey(),
		blockhashes: blockhashes,
		processed:   processed,
	}
	for _, p := range programs {
		if _, ok := l.programs[p.ID()]; ok {
			return nil, fmt.Errorf("%w: duplicate program %s", ErrInvalidProgram, p.ID())
		}
		l.programs[p.ID()] = p
	}

	hash, slot, ok, err := storage.GetLatestBlockhash(db)
	if err != nil {
		return nil, err
	}
	if !ok {
		if err := l.genesis(context.TODO()); err != nil {
			return nil, err
		}
	} else {
		l.slot = slot
		l.blockhash = solana.Hash(hash)
		l.blockhashes.Add(l.blockhash, slot)
	}
	l.metrics.slot.Set(float64(l.slot))
	l.log.Info("ledger ready",
		zap.Uint64("slot", l.slot),
		zap.Stringer("blockhash", l.blockhash),
		zap.Int("programs", len(l.programs)),
	)
	return l, nil
}

// genesis installs every program account and funds the faucet.
func (l *Ledger) genesis(ctx context.Context) error {
	mu := state.NewSimpleMutable(state.NewReader(l.db))
	for id, p := range l.programs {
		if err := storage.SetAccount(ctx, mu, id, &storage.Account{
			Lamports:   1,
			Owner:      consts.NativeLoaderID,
			Executable: true,
			Data:       []byte(p.Name()),
		}); err != nil {
			return err
		}
	}
	if err := storage.SetAccount(ctx, mu, l.faucet.PublicKey(), &storage.Account{
		Lamports: l.cfg.FaucetLamports,
		Owner:    consts.SystemProgramID,
	}); err != nil {
		return err
	}

	batch := l.db.NewBatch()
	if err := mu.Commit(ctx, batch); err != nil {
		return err
	}
	l.blockhash = solana.Hash(utils.ToID(genesisSeed))
	if err := storage.StoreSlot(batch, 0); err != nil {
		return err
	}
	if err := storage.StoreLatestBlockhash(batch, utils.ToID(genesisSeed), 0); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return err
	}
	l.blockhashes.Add(l.blockhash, 0)
	l.log.Info("created genesis",
		zap.Stringer("faucet", l.faucet.PublicKey()),
		zap.Uint64("lamports", l.cfg.FaucetLamports),
	)
	return nil
}

// execution is the result of running a transaction in its own view.
type execution struct {
	sig  solana.Signature
	fee  uint64
	ts   *tstate.TState
	view *tstate.TStateView
	tc   *txContext
}

func (l *Ledger) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	ctx, span := l.tracer.Start(ctx, "Ledger.SendTransaction")
	defer span.End()

	l.l.Lock()
	defer l.l.Unlock()

	l.metrics.txsSubmitted.Inc()
	start := time.Now()
	ex, err := l.execute(ctx, tx, true)
	l.metrics.txProcess.Observe(float64(time.Since(start)))
	if err != nil {
		l.metrics.txsFailed.Inc()
		if errors.Is(err, ErrAlreadyProcessed) {
			l.metrics.txsDuplicate.Inc()
		}
		l.log.Debug("transaction rejected", zap.Error(err))
		return solana.Signature{}, err
	}
	if err := l.commit(ctx, ex); err != nil {
		return solana.Signature{}, err
	}
	return ex.sig, nil
}

func (l *Ledger) SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*SimulationResult, error) {
	ctx, span := l.tracer.Start(ctx, "Ledger.SimulateTransaction")
	defer span.End()

	l.l.Lock()
	defer l.l.Unlock()

	l.metrics.txsSimulated.Inc()
	ex, err := l.execute(ctx, tx, false)
	var txErr *TransactionError
	switch {
	case errors.As(err, &txErr):
		return &SimulationResult{Logs: txErr.Logs, Err: txErr}, nil
	case err != nil:
		return nil, err
	}
	return &SimulationResult{Fee: ex.fee, Logs: ex.tc.logs}, nil
}

func (l *Ledger) commit(ctx context.Context, ex *execution) error {
	start := time.Now()
	defer func() {
		l.metrics.txCommit.Observe(float64(time.Since(start)))
	}()

	ops := ex.view.OpIndex()
	ex.view.Commit()
	changes := ex.ts.PendingChanges()

	slot := l.slot + 1
	next := solana.Hash(utils.ToID(binary.BigEndian.AppendUint64(l.blockhash[:], slot)))

	batch := l.db.NewBatch()
	if err := ex.ts.WriteChanges(ctx, batch, l.tracer); err != nil {
		return err
	}
	if err := storage.StoreTransaction(batch, ex.sig, &storage.TransactionStatus{
		Slot: slot,
		Fee:  ex.fee,
		Logs: ex.tc.logs,
	}); err != nil {
		return err
	}
	if err := storage.StoreSlot(batch, slot); err != nil {
		return err
	}
	if err := storage.StoreLatestBlockhash(batch, ids.ID(next), slot); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return err
	}

	l.slot = slot
	l.blockhash = next
	l.blockhashes.Add(next, slot)
	l.processed.Add(ex.sig, struct{}{})

	l.metrics.txsAccepted.Inc()
	l.metrics.slot.Set(float64(slot))
	l.metrics.feesCollected.Add(float64(ex.fee))
	l.metrics.stateOperations.Add(float64(ops))
	l.metrics.stateChanges.Add(float64(changes))
	l.log.Debug("committed transaction",
		zap.Stringer("signature", ex.sig),
		zap.Uint64("slot", slot),
		zap.Uint64("fee", ex.fee),
		zap.Int("instructions", ex.tc.instructions),
		zap.Int("changes", changes),
	)
	return nil
}

// execute runs every preflight check and instruction of [tx] in a fresh
// view. Nothing is written to disk.
func (l *Ledger) execute(ctx context.Context, tx *solana.Transaction, checkDuplicate bool) (*execution, error) {
	ctx, span := l.tracer.Start(ctx, "Ledger.execute")
	defer span.End()

	msg := &tx.Message
	if err := sanitize(tx); err != nil {
		return nil, err
	}
	sig := tx.Signatures[0]
	span.SetAttributes(
		attribute.String("signature", sig.String()),
		attribute.Int("instructions", len(msg.Instructions)),
	)
	if err := verifySignatures(ctx, l.tracer, tx); err != nil {
		return nil, err
	}
	if checkDuplicate {
		if l.processed.Contains(sig) {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyProcessed, sig)
		}
		_, exists, err := storage.GetTransaction(l.db, sig)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyProcessed, sig)
		}
	}
	if !l.blockhashes.Contains(msg.RecentBlockhash) {
		return nil, fmt.Errorf("%w: %s", ErrBlockhashNotFound, msg.RecentBlockhash)
	}

	metas := accountMetas(msg)
	scope, storageMap, err := l.loadScope(metas)
	if err != nil {
		return nil, err
	}
	ts := tstate.New(len(scope))
	view := ts.NewView(scope, storageMap)

	preBalance, err := l.sumLamports(ctx, view, metas)
	if err != nil {
		return nil, err
	}

	fee := l.fee(msg)
	payer := metas[0].PublicKey
	acct, exists, err := storage.GetAccount(ctx, view, payer)
	if err != nil {
		return nil, err
	}
	switch {
	case !exists:
		return nil, fmt.Errorf("%w: fee payer %s", ErrAccountNotFound, payer)
	case acct.Owner != consts.SystemProgramID:
		return nil, fmt.Errorf("%w: %s owned by %s", ErrInvalidAccountForFee, payer, acct.Owner)
	case acct.Lamports < fee:
		return nil, fmt.Errorf("%w: %d < %d", ErrInsufficientFundsForFee, acct.Lamports, fee)
	}
	acct.Lamports -= fee
	if err := storage.SetAccount(ctx, view, payer, acct); err != nil {
		return nil, err
	}

	tc := &txContext{
		ledger:  l,
		view:    view,
		slot:    l.slot + 1,
		touched: set.NewSet[solana.PublicKey](len(metas)),
		created: set.NewSet[solana.PublicKey](len(metas)),
	}
	tc.touched.Add(payer)
	for i, ix := range msg.Instructions {
		programID := msg.AccountKeys[ix.ProgramIDIndex]
		if err := l.checkProgram(ctx, view, programID); err != nil {
			return nil, &TransactionError{Index: i, Err: err, Logs: tc.logs}
		}
		accounts := make([]AccountMeta, len(ix.Accounts))
		for j, idx := range ix.Accounts {
			accounts[j] = metas[idx]
		}
		if err := l.run(ctx, tc, programID, accounts, ix.Data, 1); err != nil {
			return nil, &TransactionError{Index: i, Err: err, Logs: tc.logs}
		}
	}

	postBalance, err := l.sumLamports(ctx, view, metas)
	if err != nil {
		return nil, err
	}
	if postBalance+fee != preBalance {
		return nil, &TransactionError{
			Index: -1,
			Err:   fmt.Errorf("%w: %d != %d", ErrUnbalancedTransaction, postBalance+fee, preBalance),
			Logs:  tc.logs,
		}
	}
	for i, m := range metas {
		if !m.IsWritable || !tc.touched.Contains(m.PublicKey) {
			continue
		}
		a, exists, err := storage.GetAccount(ctx, view, m.PublicKey)
		if err != nil {
			return nil, err
		}
		if exists && !l.cfg.Rent.IsExempt(a.Lamports, uint64(len(a.Data))) {
			return nil, &TransactionError{
				Index: -1,
				Err:   &AccountIndexError{Index: i, Err: ErrInsufficientFundsForRent},
				Logs:  tc.logs,
			}
		}
	}
	return &execution{sig: sig, fee: fee, ts: ts, view: view, tc: tc}, nil
}

// run executes one instruction frame.
func (l *Ledger) run(
	ctx context.Context,
	tc *txContext,
	programID solana.PublicKey,
	accounts []AccountMeta,
	data []byte,
	depth int,
) error {
	p, ok := l.programs[programID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrProgramAccountNotFound, programID)
	}
	tc.instructions++
	tc.log("Program %s invoke [%d]", programID, depth)
	ic := &InvokeContext{
		tx:        tc,
		programID: programID,
		accounts:  accounts,
		depth:     depth,
	}
	if err := p.Execute(ctx, ic, data); err != nil {
		var ce *CustomError
		if errors.As(err, &ce) && ce.Code >= frameworkErrorOffset && !tc.reported {
			tc.log("Program log: AnchorError occurred. Error Code: %s. Error Number: %d. Error Message: %s.", ce.Name, ce.Code, ce.Msg)
		}
		tc.reported = true
		tc.log("Program %s failed: %v", programID, err)
		return err
	}
	tc.log("Program %s success", programID)
	return nil
}

func (l *Ledger) checkProgram(ctx context.Context, im state.Immutable, programID solana.PublicKey) error {
	a, exists, err := storage.GetAccount(ctx, im, programID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrProgramAccountNotFound, programID)
	}
	if !a.Executable {
		return fmt.Errorf("%w: %s", ErrInvalidProgram, programID)
	}
	return nil
}

func (l *Ledger) loadScope(metas []AccountMeta) (state.Keys, map[string][]byte, error) {
	var (
		scope = make(state.Keys, len(metas))
		store = make(map[string][]byte, len(metas))
	)
	for _, m := range metas {
		k := storage.AccountKey(m.PublicKey)
		if m.IsWritable {
			scope.Add(string(k), state.All)
		} else {
			scope.Add(string(k), state.Read)
		}
		v, err := l.db.Get(k)
		switch {
		case err == nil:
			store[string(k)] = v
		case !errors.Is(err, database.ErrNotFound):
			return nil, nil, err
		}
	}
	return scope, store, nil
}

func (l *Ledger) sumLamports(ctx context.Context, im state.Immutable, metas []AccountMeta) (uint64, error) {
	var sum uint64
	for _, m := range metas {
		a, _, err := storage.GetAccount(ctx, im, m.PublicKey)
		if err != nil {
			return 0, err
		}
		sum, err = smath.Add(sum, a.Lamports)
		if err != nil {
			return 0, err
		}
	}
	return sum, nil
}

func (l *Ledger) fee(msg *solana.Message) uint64 {
	return uint64(msg.Header.NumRequiredSignatures) * l.cfg.LamportsPerSignature
}

func (l *Ledger) GetAccount(_ context.Context, addr solana.PublicKey) (*storage.Account, error) {
	a, exists, err := storage.GetAccountFromDB(l.db, addr)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	return a, nil
}

func (l *Ledger) GetMinimumBalanceForRentExemption(_ context.Context, size uint64) (uint64, error) {
	if size > MaxAccountDataSize {
		return 0, fmt.Errorf("%w: %d bytes", ErrInvalidAccountData, size)
	}
	return l.cfg.Rent.MinimumBalance(size), nil
}

func (l *Ledger) GetLatestBlockhash(context.Context) (solana.Hash, uint64, error) {
	l.l.Lock()
	defer l.l.Unlock()

	return l.blockhash, l.slot, nil
}

func (l *Ledger) GetFeeForMessage(_ context.Context, msg *solana.Message) (uint64, error) {
	return l.fee(msg), nil
}

// RequestAirdrop transfers [lamports] from the faucet to [to].
func (l *Ledger) RequestAirdrop(ctx context.Context, to solana.PublicKey, lamports uint64) (solana.Signature, error) {
	hash, _, err := l.GetLatestBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, err
	}
	faucet := l.faucet.PublicKey()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{system.NewTransferInstruction(lamports, faucet, to).Build()},
		hash,
		solana.TransactionPayer(faucet),
	)
	if err != nil {
		return solana.Signature{}, err
	}
	if _, err := tx.Sign(func(k solana.PublicKey) *solana.PrivateKey {
		if k == faucet {
			return &l.faucet
		}
		return nil
	}); err != nil {
		return solana.Signature{}, err
	}
	sig, err := l.SendTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, err
	}
	l.log.Info("airdrop",
		zap.Stringer("to", to),
		zap.Uint64("lamports", lamports),
	)
	return sig, nil
}

func (l *Ledger) GetTransaction(_ context.Context, sig solana.Signature) (*storage.TransactionStatus, error) {
	status, exists, err := storage.GetTransaction(l.db, sig)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, sig)
	}
	return status, nil
}

// Slot returns the latest committed slot.
func (l *Ledger) Slot() uint64 {
	l.l.Lock()
	defer l.l.Unlock()

	return l.slot
}

func verifySignatures(ctx context.Context, tracer trace.Tracer, tx *solana.Transaction) error {
	_, span := tracer.Start(ctx, "Ledger.verifySignatures", oteltrace.WithAttributes(
		attribute.Int("signatures", len(tx.Signatures)),
	))
	defer span.End()

	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSanitizeFailure, err)
	}
	if len(tx.Signatures) < crypto.MinBatchSize {
		for i, sig := range tx.Signatures {
			if !crypto.Verify(msg, tx.Message.AccountKeys[i], sig) {
				return fmt.Errorf("%w: signer %s", ErrSignatureFailure, tx.Message.AccountKeys[i])
			}
		}
		return nil
	}
	batch := crypto.NewBatch(len(tx.Signatures))
	for i, sig := range tx.Signatures {
		batch.Add(msg, tx.Message.AccountKeys[i], sig)
	}
	if !batch.Verify() {
		return ErrSignatureFailure
	}
	return nil
}
