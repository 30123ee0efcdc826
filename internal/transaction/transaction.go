// Package transaction holds the state of one open datastore transaction: the
// operations queued until commit and the changes applied while committing.
package transaction

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"txkv/internal/common"
)

// Operation is a call deferred until commit.
type Operation struct {
	Kind  common.OperationKind
	Key   string
	Value string
}

// Change records an operation that reached the backend during commit,
// together with the value the key held before it.
type Change struct {
	Kind  common.OperationKind
	Key   string
	Prior string
}

// Reverter receives the inverse of applied changes.
type Reverter interface {
	Set(key, value string) common.Result
	Delete(key string) common.Result
}

type Transaction struct {
	ID        uuid.UUID
	StartedAt time.Time

	pending []Operation
	changes []Change
}

func New() *Transaction {
	return &Transaction{
		ID:        uuid.New(),
		StartedAt: time.Now(),
		pending:   make([]Operation, 0),
		changes:   make([]Change, 0),
	}
}

func (t *Transaction) Enqueue(kind common.OperationKind, key, value string) {
	t.pending = append(t.pending, Operation{Kind: kind, Key: key, Value: value})
}

// Len is the number of operations still queued.
func (t *Transaction) Len() int {
	return len(t.pending)
}

// Next pops the oldest queued operation.
func (t *Transaction) Next() (Operation, bool) {
	if len(t.pending) == 0 {
		return Operation{}, false
	}
	op := t.pending[0]
	t.pending = t.pending[1:]
	return op, true
}

// Record appends change to the log. Changes of non-mutating kinds have
// nothing to revert and are dropped.
func (t *Transaction) Record(change Change) {
	if !change.Kind.Mutates() {
		return
	}
	t.changes = append(t.changes, change)
}

func (t *Transaction) Changes() []Change {
	return append([]Change(nil), t.changes...)
}

// RollbackChanges reverts the recorded changes newest first. A failed
// inverse does not stop the walk; all failures are returned together. The
// change log is empty afterwards either way.
func (t *Transaction) RollbackChanges(r Reverter) error {
	var errs []error
	for len(t.changes) > 0 {
		last := len(t.changes) - 1
		change := t.changes[last]
		t.changes = t.changes[:last]

		if res := change.Revert(r); !res.IsSuccessful() {
			errs = append(errs, fmt.Errorf("revert %s of %q: %s", change.Kind, change.Key, res))
		}
	}
	return errors.Join(errs...)
}

// Revert applies the inverse of the change.
//
//	insert -> delete(key)
//	update -> set(key, prior)
//	delete -> set(key, prior)
func (c Change) Revert(r Reverter) common.Result {
	switch c.Kind {
	case common.OpInsert:
		return r.Delete(c.Key)
	case common.OpUpdate, common.OpDelete:
		return r.Set(c.Key, c.Prior)
	default:
		return common.OK()
	}
}
