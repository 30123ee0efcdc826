// Package datastore layers single-pending-transaction semantics over a
// backend.
//
// Without an open transaction every operation goes straight to the backend.
// After Begin, insert/update/select/delete are queued and answered with
// IN_TRANSACTION_LIST. Commit replays the queue in order, recording each
// applied change; the first failing operation rolls the applied changes back
// and its own result is returned to the caller.
//
// A Datastore is not safe for concurrent use.
package datastore

import (
	"errors"
	"log/slog"
	"time"

	"txkv/internal/backend"
	"txkv/internal/common"
	"txkv/internal/matcher"
	"txkv/internal/metrics"
	"txkv/internal/transaction"
)

var ErrNoBackend = errors.New("backend cannot be nil unless the in-memory backend is requested")

type Datastore struct {
	backend     backend.Backend
	transaction *transaction.Transaction
	logger      *slog.Logger
	metrics     *metrics.Registry
	matcher     matcher.Matcher
}

func New(opts ...Option) (*Datastore, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	b := o.backend
	if o.inMemory {
		b = backend.NewMemoryBackend()
	}
	if b == nil {
		return nil, ErrNoBackend
	}

	d := &Datastore{
		backend: b,
		logger:  o.logger,
		metrics: o.metrics,
		matcher: o.matcher,
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.matcher == nil {
		d.matcher = matcher.Regexp
	}
	return d, nil
}

func (d *Datastore) Backend() backend.Backend {
	return d.backend
}

func (d *Datastore) InTransaction() bool {
	return d.transaction != nil
}

// TransactionID is empty when no transaction is open.
func (d *Datastore) TransactionID() string {
	if d.transaction == nil {
		return ""
	}
	return d.transaction.ID.String()
}

// Pending is the number of operations queued in the open transaction.
func (d *Datastore) Pending() int {
	if d.transaction == nil {
		return 0
	}
	return d.transaction.Len()
}

func (d *Datastore) Insert(key, value string) common.Result {
	return d.dispatch(transaction.Operation{Kind: common.OpInsert, Key: key, Value: value})
}

func (d *Datastore) Update(key, value string) common.Result {
	return d.dispatch(transaction.Operation{Kind: common.OpUpdate, Key: key, Value: value})
}

func (d *Datastore) Select(key string) common.Result {
	return d.dispatch(transaction.Operation{Kind: common.OpSelect, Key: key})
}

func (d *Datastore) Delete(key string) common.Result {
	return d.dispatch(transaction.Operation{Kind: common.OpDelete, Key: key})
}

// dispatch queues op when a transaction is open and applies it otherwise.
func (d *Datastore) dispatch(op transaction.Operation) common.Result {
	start := time.Now()

	var res common.Result
	if d.transaction != nil {
		d.transaction.Enqueue(op.Kind, op.Key, op.Value)
		d.metrics.SetPending(d.transaction.Len())
		res = common.Queued()
	} else {
		res, _ = d.apply(op)
		d.logger.Debug("Applied operation", "operation", op.Kind, "key", op.Key, "status", res.Status)
	}

	d.metrics.RecordOperation(op.Kind.String(), res.Status, time.Since(start))
	return res
}

// apply runs op against the backend. The returned change is nil when op did
// not modify the backend.
func (d *Datastore) apply(op transaction.Operation) (common.Result, *transaction.Change) {
	switch op.Kind {
	case common.OpInsert:
		return d.insert(op.Key, op.Value)
	case common.OpUpdate:
		return d.update(op.Key, op.Value)
	case common.OpSelect:
		return d.selectKey(op.Key), nil
	case common.OpDelete:
		return d.delete(op.Key)
	default:
		return common.Errorf("unknown operation %d", op.Kind), nil
	}
}

func (d *Datastore) insert(key, value string) (common.Result, *transaction.Change) {
	_, found, res := d.backend.Get(key)
	if !res.IsSuccessful() {
		return res, nil
	}
	if found {
		return common.KeyAlreadyExists(), nil
	}

	if res := d.backend.Set(key, value); !res.IsSuccessful() {
		return res, nil
	}
	return common.OK(), &transaction.Change{Kind: common.OpInsert, Key: key}
}

func (d *Datastore) update(key, value string) (common.Result, *transaction.Change) {
	prior, found, res := d.backend.Get(key)
	if !res.IsSuccessful() {
		return res, nil
	}
	if !found {
		return common.KeyNotFound(), nil
	}

	if res := d.backend.Set(key, value); !res.IsSuccessful() {
		return res, nil
	}
	return common.OK(), &transaction.Change{Kind: common.OpUpdate, Key: key, Prior: prior}
}

func (d *Datastore) selectKey(key string) common.Result {
	value, found, res := d.backend.Get(key)
	if !res.IsSuccessful() {
		return res
	}
	if !found {
		return common.KeyNotFound()
	}
	return common.WithValue(value)
}

func (d *Datastore) delete(key string) (common.Result, *transaction.Change) {
	prior, _, res := d.backend.Get(key)
	if !res.IsSuccessful() {
		return res, nil
	}

	if res := d.backend.Delete(key); !res.IsSuccessful() {
		return res, nil
	}
	return common.OK(), &transaction.Change{Kind: common.OpDelete, Key: key, Prior: prior}
}

func (d *Datastore) Begin() common.Result {
	start := time.Now()
	defer func() { d.metrics.SetPending(d.Pending()) }()

	if d.transaction != nil {
		res := common.Fail(common.StatusTransactionAlreadyInProgress, common.MsgTransactionAlreadyInProgress)
		d.metrics.RecordOperation("begin", res.Status, time.Since(start))
		return res
	}

	d.transaction = transaction.New()
	d.logger.Info("Transaction started", "transactionId", d.transaction.ID)
	d.metrics.RecordOperation("begin", common.StatusOK, time.Since(start))
	return common.OK()
}

func (d *Datastore) Commit() common.Result {
	start := time.Now()
	res := d.commit()
	d.metrics.RecordOperation("commit", res.Status, time.Since(start))
	d.metrics.SetPending(d.Pending())
	return res
}

func (d *Datastore) commit() common.Result {
	tx := d.transaction
	if tx == nil {
		return common.Fail(common.StatusNoTransactionInProgress, common.MsgNoTransactionInProgress)
	}

	applied := 0
	for op, ok := tx.Next(); ok; op, ok = tx.Next() {
		res, change := d.apply(op)
		if !res.IsSuccessful() {
			d.logger.Warn("Commit aborted", "transactionId", tx.ID, "operation", op.Kind, "key", op.Key,
				"status", res.Status, "applied", applied, "skipped", tx.Len())
			d.metrics.RecordTransaction(metrics.OutcomeAborted)

			if err := d.rollback(); err != nil {
				d.logger.Error("Rollback after failed commit is incomplete", "transactionId", tx.ID, "error", err)
				return common.Errorf("commit failed: %s; rollback failed: %v", res, err)
			}
			return res
		}
		if change != nil {
			tx.Record(*change)
		}
		applied++
	}

	d.transaction = nil
	d.logger.Info("Transaction committed", "transactionId", tx.ID, "operations", applied,
		"duration", time.Since(tx.StartedAt))
	d.metrics.RecordTransaction(metrics.OutcomeCommitted)
	return common.OK()
}

func (d *Datastore) Rollback() common.Result {
	start := time.Now()
	res := common.OK()

	if d.transaction == nil {
		res = common.Fail(common.StatusNoTransactionInProgress, common.MsgNoTransactionInProgress)
	} else {
		id := d.transaction.ID
		if err := d.rollback(); err != nil {
			d.logger.Error("Rollback incomplete", "transactionId", id, "error", err)
			res = common.FromError(err)
		} else {
			d.logger.Info("Transaction rolled back", "transactionId", id)
		}
		d.metrics.RecordTransaction(metrics.OutcomeRolledBack)
	}

	d.metrics.RecordOperation("rollback", res.Status, time.Since(start))
	d.metrics.SetPending(d.Pending())
	return res
}

// rollback reverts the applied changes directly on the backend and always
// clears the transaction slot.
func (d *Datastore) rollback() error {
	tx := d.transaction
	d.transaction = nil
	return tx.RollbackChanges(d.backend)
}

// Keys lists stored keys the pattern selects. It is never queued.
func (d *Datastore) Keys(pattern string) ([]string, common.Result) {
	start := time.Now()
	keys, res := d.keys(pattern)
	d.metrics.RecordOperation("keys", res.Status, time.Since(start))
	return keys, res
}

func (d *Datastore) keys(pattern string) ([]string, common.Result) {
	keys, res := d.backend.Keys()
	if !res.IsSuccessful() {
		return nil, res
	}

	matched, err := matcher.Filter(d.matcher, pattern, keys)
	if err != nil {
		return nil, common.FromError(err)
	}
	return matched, common.OK()
}
