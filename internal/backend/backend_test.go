package backend

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"

	"txkv/internal/common"
)

// testBackendContract checks the behaviour every engine must share.
func testBackendContract(t *testing.T, b Backend) {
	t.Helper()

	_, found, res := b.Get("missing")
	require.Equal(t, common.StatusOK, res.Status)
	assert.False(t, found)

	require.Equal(t, common.StatusOK, b.Set("key1", "value1").Status)
	require.Equal(t, common.StatusOK, b.Set("key2", "value2").Status)
	require.Equal(t, common.StatusOK, b.Set("key1", "value3").Status)

	value, found, res := b.Get("key1")
	require.Equal(t, common.StatusOK, res.Status)
	assert.True(t, found)
	assert.Equal(t, "value3", value)

	keys, res := b.Keys()
	require.Equal(t, common.StatusOK, res.Status)
	assert.ElementsMatch(t, []string{"key1", "key2"}, keys)

	assert.Equal(t, common.StatusOK, b.Delete("key1").Status)
	assert.Equal(t, common.StatusKeyNotFound, b.Delete("key1").Status)
	assert.Equal(t, common.StatusKeyNotFound, b.Delete("never-there").Status)

	_, found, _ = b.Get("key1")
	assert.False(t, found)

	keys, _ = b.Keys()
	assert.ElementsMatch(t, []string{"key2"}, keys)
}

func TestMemoryBackend(t *testing.T) {
	b := NewMemoryBackend()
	testBackendContract(t, b)

	assert.Equal(t, 1, b.Size())
}

func TestBoltBackend(t *testing.T) {
	b, err := OpenBolt(filepath.Join(t.TempDir(), "test.bolt"))
	require.NoError(t, err)
	defer b.Close()

	testBackendContract(t, b)
}

func TestLevelDBBackend(t *testing.T) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	require.NoError(t, err)
	b := NewLevelDBBackend(db)
	defer b.Close()

	testBackendContract(t, b)
}

func TestBadgerBackend(t *testing.T) {
	b, err := OpenBadger("")
	require.NoError(t, err)
	defer b.Close()

	testBackendContract(t, b)
}

func TestClosedBoltReportsError(t *testing.T) {
	b, err := OpenBolt(filepath.Join(t.TempDir(), "closed.bolt"))
	require.NoError(t, err)
	require.NoError(t, b.Close())

	res := b.Set("k", "v")
	assert.Equal(t, common.StatusError, res.Status)
	assert.NotEmpty(t, res.Message)

	_, found, res := b.Get("k")
	assert.False(t, found)
	assert.Equal(t, common.StatusError, res.Status)
}

func TestGuard(t *testing.T) {
	assert.Equal(t, common.OK(), Guard(func() error { return nil }))
	assert.Equal(t, common.StatusKeyNotFound, Guard(func() error { return ErrNotFound }).Status)

	res := Guard(func() error { return errors.New("medium failure") })
	assert.Equal(t, common.StatusError, res.Status)
	assert.Equal(t, "medium failure", res.Message)

	res = Guard(func() error { panic("boom") })
	assert.Equal(t, common.StatusError, res.Status)
	assert.Equal(t, "boom", res.Message)
}

func TestGuardGet(t *testing.T) {
	value, found, res := GuardGet(func() (string, error) { return "v", nil })
	assert.Equal(t, "v", value)
	assert.True(t, found)
	assert.True(t, res.IsSuccessful())

	_, found, res = GuardGet(func() (string, error) { return "", ErrNotFound })
	assert.False(t, found)
	assert.Equal(t, common.StatusOK, res.Status)

	_, found, res = GuardGet(func() (string, error) { panic(errors.New("read fault")) })
	assert.False(t, found)
	assert.Equal(t, common.StatusError, res.Status)
	assert.Equal(t, "read fault", res.Message)
}

func TestGuardKeys(t *testing.T) {
	keys, res := GuardKeys(func() ([]string, error) { return []string{"a"}, nil })
	assert.Equal(t, []string{"a"}, keys)
	assert.True(t, res.IsSuccessful())

	keys, res = GuardKeys(func() ([]string, error) { return []string{"a"}, errors.New("scan failed") })
	assert.Nil(t, keys)
	assert.Equal(t, common.StatusError, res.Status)
}

func TestOpen(t *testing.T) {
	b, err := Open(Options{Kind: KindMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryBackend{}, b)
	assert.NoError(t, Close(b))

	dir := t.TempDir()
	for _, kind := range []Kind{KindBolt, KindLevelDB, KindBadger} {
		t.Run(string(kind), func(t *testing.T) {
			b, err := Open(Options{Kind: kind, DataDir: dir})
			require.NoError(t, err)
			defer Close(b)
			testBackendContract(t, b)
		})
	}

	_, err = Open(Options{Kind: "tape"})
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = Open(Options{Kind: KindBolt})
	assert.Error(t, err)
}
