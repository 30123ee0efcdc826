package datatable

type MapDataTable struct {
	table map[string]string
}

func NewMapDataTable() *MapDataTable {
	return &MapDataTable{
		table: make(map[string]string),
	}
}

func (m *MapDataTable) Get(key string) (string, bool) {
	value, ok := m.table[key]
	return value, ok
}

func (m *MapDataTable) Put(key string, value string) {
	m.table[key] = value
}

func (m *MapDataTable) Delete(key string) bool {
	if _, ok := m.table[key]; !ok {
		return false
	}
	delete(m.table, key)
	return true
}

func (m *MapDataTable) Size() int {
	return len(m.table)
}

func (m *MapDataTable) Keys() []string {
	keys := make([]string, 0, len(m.table))
	for key := range m.table {
		keys = append(keys, key)
	}
	return keys
}
