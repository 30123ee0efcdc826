package backend

import (
	"txkv/internal/common"
	"txkv/internal/datatable"
)

const (
	NUMBER_OF_SHARDS = 4
)

// MemoryBackend keeps keys in process memory, spread over a fixed number of
// map tables.
type MemoryBackend struct {
	tableShards []datatable.DataTable
}

func NewMemoryBackend() *MemoryBackend {
	tableShards := make([]datatable.DataTable, NUMBER_OF_SHARDS)

	for i := range NUMBER_OF_SHARDS {
		tableShards[i] = datatable.NewMapDataTable()
	}

	return &MemoryBackend{
		tableShards: tableShards,
	}
}

func (m *MemoryBackend) shard(key string) datatable.DataTable {
	return m.tableShards[common.HashKey(key)%NUMBER_OF_SHARDS]
}

func (m *MemoryBackend) Set(key, value string) common.Result {
	return Guard(func() error {
		m.shard(key).Put(key, value)
		return nil
	})
}

func (m *MemoryBackend) Get(key string) (string, bool, common.Result) {
	return GuardGet(func() (string, error) {
		value, ok := m.shard(key).Get(key)
		if !ok {
			return "", ErrNotFound
		}
		return value, nil
	})
}

func (m *MemoryBackend) Delete(key string) common.Result {
	return Guard(func() error {
		if !m.shard(key).Delete(key) {
			return ErrNotFound
		}
		return nil
	})
}

func (m *MemoryBackend) Keys() ([]string, common.Result) {
	return GuardKeys(func() ([]string, error) {
		keys := make([]string, 0, m.Size())
		for _, shard := range m.tableShards {
			keys = append(keys, shard.Keys()...)
		}
		return keys, nil
	})
}

func (m *MemoryBackend) Size() int {
	totalSize := 0
	for _, shard := range m.tableShards {
		totalSize += shard.Size()
	}
	return totalSize
}

