package openhash

// Entry is the record stored by Map.
type Entry[V any] struct {
	Key   string
	Value V
}

func entryKey[V any](e Entry[V]) string {
	return e.Key
}

// Map is a string-keyed map backed by a Table of entries.
// Like the Table, it's not safe for concurrent use.
type Map[V any] struct {
	table *Table[Entry[V]]
}

// Returns a new map sized to hold `records` entries before it grows.
func NewMap[V any](records int, policy Policy, opts ...Option[Entry[V]]) (*Map[V], error) {
	t, err := New(CapacityFor(records, DefaultLoadFactor), DefaultLoadFactor, policy, entryKey[V], opts...)
	if err != nil {
		return nil, err
	}

	return &Map[V]{table: t}, nil
}

// Returns the value stored under key.
func (m *Map[V]) Get(key string) (V, bool) {
	e, ok := m.table.Search(key)
	return e.Value, ok
}

// Sets the value of a key, replacing the value in place if the key exists.
func (m *Map[V]) Set(key string, value V) error {
	if m.table.max > 0 {
		if pos, _ := m.table.find(key); pos >= 0 {
			old := m.table.slots[pos].record
			m.table.slots[pos].record.Value = value
			m.table.release(old)

			return nil
		}
	}

	return m.table.Insert(Entry[V]{Key: key, Value: value})
}

// Deletes a key from the map. Returns whether the key was present.
func (m *Map[V]) Delete(key string) bool {
	return m.table.Delete(key) == nil
}

func (m *Map[V]) Len() int {
	return m.table.Len()
}

func (m *Map[V]) Stats() Stats {
	return m.table.Stats()
}
