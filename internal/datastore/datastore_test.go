package datastore

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txkv/internal/backend"
	"txkv/internal/common"
	"txkv/internal/metrics"
)

func newDatastore(t *testing.T) *Datastore {
	t.Helper()
	d, err := New(WithInMemoryBackend())
	require.NoError(t, err)
	return d
}

func selectValue(t *testing.T, d *Datastore, key string) string {
	t.Helper()
	res := d.Select(key)
	require.Equal(t, common.StatusOK, res.Status, "select %s: %s", key, res)
	value, ok := res.StringValue()
	require.True(t, ok)
	return value
}

// flakyBackend wraps the memory engine and fails writes to chosen keys.
type flakyBackend struct {
	*backend.MemoryBackend
	failSet   map[string]bool
	failValue map[string]bool
	failGet   bool
	failKeys  bool
	setCalls  int
}

func newFlakyBackend() *flakyBackend {
	return &flakyBackend{
		MemoryBackend: backend.NewMemoryBackend(),
		failSet:       map[string]bool{},
		failValue:     map[string]bool{},
	}
}

func (f *flakyBackend) Set(key, value string) common.Result {
	f.setCalls++
	if f.failSet[key] || f.failValue[value] {
		return common.FromError(errors.New("write failed: " + key))
	}
	return f.MemoryBackend.Set(key, value)
}

func (f *flakyBackend) Get(key string) (string, bool, common.Result) {
	if f.failGet {
		return "", false, common.Errorf("read failed")
	}
	return f.MemoryBackend.Get(key)
}

func (f *flakyBackend) Keys() ([]string, common.Result) {
	if f.failKeys {
		return nil, common.Errorf("listing failed")
	}
	return f.MemoryBackend.Keys()
}

func TestNewRequiresBackend(t *testing.T) {
	_, err := New()
	assert.ErrorIs(t, err, ErrNoBackend)

	b := backend.NewMemoryBackend()
	d, err := New(WithBackend(b))
	require.NoError(t, err)
	assert.Same(t, b, d.Backend())

	d, err = New(WithBackend(b), WithInMemoryBackend())
	require.NoError(t, err)
	assert.NotSame(t, b, d.Backend())
}

func TestInsert(t *testing.T) {
	d := newDatastore(t)

	assert.Equal(t, common.StatusOK, d.Insert("key1", "value1").Status)

	res := d.Insert("key1", "value2")
	assert.Equal(t, common.StatusKeyAlreadyExists, res.Status)
	assert.Equal(t, common.MsgKeyAlreadyExists, res.Message)

	assert.Equal(t, "value1", selectValue(t, d, "key1"))
}

func TestUpdate(t *testing.T) {
	d := newDatastore(t)

	assert.Equal(t, common.StatusKeyNotFound, d.Update("key1", "value1").Status)

	d.Insert("key1", "value1")
	assert.Equal(t, common.StatusOK, d.Update("key1", "value2").Status)
	assert.Equal(t, "value2", selectValue(t, d, "key1"))
}

func TestSelect(t *testing.T) {
	d := newDatastore(t)
	d.Insert("key1", "value1")

	res := d.Select("key1")
	assert.Equal(t, "value1", res.Value)
	assert.Empty(t, res.Message)

	res = d.Select("nonexistent_key")
	assert.Equal(t, common.StatusKeyNotFound, res.Status)
	assert.Nil(t, res.Value)
}

func TestDelete(t *testing.T) {
	d := newDatastore(t)
	d.Insert("key1", "value1")

	assert.Equal(t, common.StatusOK, d.Delete("key1").Status)
	for i := 0; i < 3; i++ {
		assert.Equal(t, common.StatusKeyNotFound, d.Delete("key1").Status)
	}
}

func TestTransactionCommit(t *testing.T) {
	d := newDatastore(t)

	assert.Equal(t, common.StatusOK, d.Begin().Status)
	assert.True(t, d.InTransaction())
	assert.NotEmpty(t, d.TransactionID())

	assert.Equal(t, common.StatusInTransactionList, d.Insert("k4", "a").Status)
	assert.Equal(t, common.StatusInTransactionList, d.Update("k4", "b").Status)
	assert.Equal(t, common.StatusInTransactionList, d.Select("k4").Status)
	assert.Equal(t, 3, d.Pending())

	// nothing reaches the backend before commit
	_, found, _ := d.Backend().Get("k4")
	assert.False(t, found)

	assert.Equal(t, common.StatusOK, d.Commit().Status)
	assert.False(t, d.InTransaction())
	assert.Equal(t, 0, d.Pending())
	assert.Equal(t, "b", selectValue(t, d, "k4"))
}

func TestTransactionRollbackInsert(t *testing.T) {
	d := newDatastore(t)

	d.Begin()
	d.Insert("key3", "value1")
	d.Update("nonexistent_key", "value")

	assert.Equal(t, common.StatusKeyNotFound, d.Commit().Status)
	assert.False(t, d.InTransaction())
	assert.Equal(t, common.StatusKeyNotFound, d.Select("key3").Status)
}

func TestTransactionRollbackDelete(t *testing.T) {
	d := newDatastore(t)

	require.Equal(t, common.StatusOK, d.Insert("key4", "value1").Status)
	d.Begin()
	d.Delete("key4")
	d.Delete("key234")

	assert.Equal(t, common.StatusKeyNotFound, d.Commit().Status)
	assert.Equal(t, "value1", selectValue(t, d, "key4"))
}

func TestTransactionRollbackUpdate(t *testing.T) {
	d := newDatastore(t)

	require.Equal(t, common.StatusOK, d.Insert("k5", "a").Status)
	d.Begin()
	assert.Equal(t, common.StatusInTransactionList, d.Update("k5", "b").Status)
	assert.Equal(t, common.StatusInTransactionList, d.Delete("nonexistent").Status)

	assert.Equal(t, common.StatusKeyNotFound, d.Commit().Status)
	assert.Equal(t, "a", selectValue(t, d, "k5"))
}

func TestTransactionRollbackRestoresChainOfChanges(t *testing.T) {
	d := newDatastore(t)
	d.Insert("a", "1")
	d.Insert("b", "2")

	d.Begin()
	d.Update("a", "10")
	d.Delete("b")
	d.Insert("b", "20")
	d.Update("a", "100")
	d.Insert("c", "3")
	d.Insert("a", "dup")
	d.Insert("never", "applied")

	assert.Equal(t, common.StatusKeyAlreadyExists, d.Commit().Status)

	assert.Equal(t, "1", selectValue(t, d, "a"))
	assert.Equal(t, "2", selectValue(t, d, "b"))
	assert.Equal(t, common.StatusKeyNotFound, d.Select("c").Status)
	assert.Equal(t, common.StatusKeyNotFound, d.Select("never").Status)
}

func TestOperationsAfterFailingOneAreNotAttempted(t *testing.T) {
	b := newFlakyBackend()
	d, err := New(WithBackend(b))
	require.NoError(t, err)

	d.Begin()
	d.Update("missing", "x")
	d.Insert("later", "y")

	assert.Equal(t, common.StatusKeyNotFound, d.Commit().Status)
	assert.Equal(t, 0, b.setCalls)
}

func TestBeginTwice(t *testing.T) {
	d := newDatastore(t)

	require.Equal(t, common.StatusOK, d.Begin().Status)
	d.Insert("queued", "1")
	id := d.TransactionID()

	res := d.Begin()
	assert.Equal(t, common.StatusTransactionAlreadyInProgress, res.Status)
	assert.Equal(t, id, d.TransactionID())
	assert.Equal(t, 1, d.Pending())

	assert.Equal(t, common.StatusOK, d.Commit().Status)
	assert.Equal(t, "1", selectValue(t, d, "queued"))
}

func TestNoTransactionInProgress(t *testing.T) {
	d := newDatastore(t)

	assert.Equal(t, common.StatusNoTransactionInProgress, d.Commit().Status)
	assert.Equal(t, common.StatusNoTransactionInProgress, d.Rollback().Status)
}

func TestExplicitRollbackDiscardsQueue(t *testing.T) {
	d := newDatastore(t)
	d.Insert("k", "before")

	d.Begin()
	d.Update("k", "after")
	d.Insert("new", "v")
	assert.Equal(t, common.StatusOK, d.Rollback().Status)
	assert.False(t, d.InTransaction())

	assert.Equal(t, "before", selectValue(t, d, "k"))
	assert.Equal(t, common.StatusKeyNotFound, d.Select("new").Status)
	assert.Equal(t, common.StatusNoTransactionInProgress, d.Commit().Status)
}

func TestBackendFailurePropagates(t *testing.T) {
	b := newFlakyBackend()
	b.failSet["bad"] = true
	d, err := New(WithBackend(b))
	require.NoError(t, err)

	res := d.Insert("bad", "v")
	assert.Equal(t, common.StatusError, res.Status)
	assert.Equal(t, "write failed: bad", res.Message)

	b.failGet = true
	assert.Equal(t, common.StatusError, d.Insert("good", "v").Status)
	assert.Equal(t, common.StatusError, d.Select("good").Status)
	assert.Equal(t, common.StatusError, d.Delete("good").Status)
}

func TestCommitFailureSurfacesBackendError(t *testing.T) {
	b := newFlakyBackend()
	b.failSet["bad"] = true
	d, err := New(WithBackend(b))
	require.NoError(t, err)

	d.Begin()
	d.Insert("good", "v")
	d.Insert("bad", "v")

	res := d.Commit()
	assert.Equal(t, common.StatusError, res.Status)
	assert.Equal(t, "write failed: bad", res.Message)
	assert.Equal(t, common.StatusKeyNotFound, d.Select("good").Status)
}

func TestCommitReportsIncompleteRollback(t *testing.T) {
	b := newFlakyBackend()
	d, err := New(WithBackend(b))
	require.NoError(t, err)
	require.True(t, d.Insert("k", "v1").IsSuccessful())

	// restoring the prior value of k is the write that fails
	b.failValue["v1"] = true

	d.Begin()
	d.Update("k", "v2")
	d.Delete("missing")

	res := d.Commit()
	assert.Equal(t, common.StatusError, res.Status)
	assert.Contains(t, res.Message, "Status: KEY_NOT_FOUND")
	assert.Contains(t, res.Message, "rollback failed")
	assert.False(t, d.InTransaction())
}

func TestExplicitRollbackReportsFailedInverse(t *testing.T) {
	b := newFlakyBackend()
	d, err := New(WithBackend(b))
	require.NoError(t, err)
	d.Insert("k", "v1")

	d.Begin()
	d.Update("k", "v2")
	tx := d.transaction
	op, _ := tx.Next()
	res, change := d.apply(op)
	require.True(t, res.IsSuccessful())
	tx.Record(*change)

	b.failValue["v1"] = true
	res = d.Rollback()
	assert.Equal(t, common.StatusError, res.Status)
	assert.False(t, d.InTransaction())
}

func TestKeys(t *testing.T) {
	d := newDatastore(t)
	d.Insert("key1", "value1")
	d.Insert("key2", "value2")
	d.Insert("key3", "value3")
	d.Insert("another_key", "value4")

	keys, res := d.Keys(`^key\d+$`)
	require.True(t, res.IsSuccessful())
	assert.ElementsMatch(t, []string{"key1", "key2", "key3"}, keys)

	keys, res = d.Keys(`.*_key$`)
	require.True(t, res.IsSuccessful())
	assert.ElementsMatch(t, []string{"another_key"}, keys)

	_, res = d.Keys(`key(`)
	assert.Equal(t, common.StatusError, res.Status)
}

func TestKeysIsNeverQueued(t *testing.T) {
	d := newDatastore(t)
	d.Insert("key1", "v")

	d.Begin()
	d.Insert("key2", "v")

	keys, res := d.Keys("key")
	require.Equal(t, common.StatusOK, res.Status)
	assert.Equal(t, []string{"key1"}, keys)
	assert.Equal(t, 1, d.Pending())
}

func TestKeysBackendFailure(t *testing.T) {
	b := newFlakyBackend()
	b.failKeys = true
	d, err := New(WithBackend(b))
	require.NoError(t, err)

	keys, res := d.Keys(".*")
	assert.Nil(t, keys)
	assert.Equal(t, common.StatusError, res.Status)
}

func TestMetricsAreRecorded(t *testing.T) {
	registry := metrics.NewRegistry()
	d, err := New(WithInMemoryBackend(), WithMetrics(registry))
	require.NoError(t, err)

	d.Insert("a", "1")
	d.Insert("a", "1")
	d.Begin()
	d.Update("a", "2")
	assert.Equal(t, 1.0, testutil.ToFloat64(registry.PendingOperations))
	d.Commit()

	d.Begin()
	d.Rollback()

	assert.Equal(t, 1.0, testutil.ToFloat64(registry.OperationsTotal.WithLabelValues("insert", "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(registry.OperationsTotal.WithLabelValues("insert", "KEY_ALREADY_EXISTS")))
	assert.Equal(t, 1.0, testutil.ToFloat64(registry.OperationsTotal.WithLabelValues("update", "IN_TRANSACTION_LIST")))
	assert.Equal(t, 1.0, testutil.ToFloat64(registry.TransactionsTotal.WithLabelValues(metrics.OutcomeCommitted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(registry.TransactionsTotal.WithLabelValues(metrics.OutcomeRolledBack)))
	assert.Equal(t, 0.0, testutil.ToFloat64(registry.PendingOperations))
}

func TestQueuedSelectOfMissingKeyAbortsCommit(t *testing.T) {
	d := newDatastore(t)

	require.True(t, d.Begin().IsSuccessful())
	assert.Equal(t, common.StatusInTransactionList, d.Insert("a", "1").Status)
	assert.Equal(t, common.StatusInTransactionList, d.Select("missing").Status)
	assert.Equal(t, 2, d.Pending())

	assert.Equal(t, common.StatusKeyNotFound, d.Commit().Status)
	assert.False(t, d.InTransaction())
	assert.Equal(t, common.StatusKeyNotFound, d.Select("a").Status)
}
