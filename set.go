package openhash

import "errors"

func identity(s string) string {
	return s
}

// Set is a set of strings backed by a Table. It stores keys only.
type Set struct {
	table *Table[string]
}

// Returns a new set sized to hold `records` keys before it grows.
func NewSet(records int, policy Policy, opts ...Option[string]) (*Set, error) {
	t, err := New(CapacityFor(records, DefaultLoadFactor), DefaultLoadFactor, policy, identity, opts...)
	if err != nil {
		return nil, err
	}

	return &Set{table: t}, nil
}

// Puts a key in the set. Returns whether the key is new.
func (s *Set) Add(key string) (bool, error) {
	err := s.table.Insert(key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrDuplicateKey):
		return false, nil
	default:
		return false, err
	}
}

// Checks whether a key is in the set.
func (s *Set) Has(key string) bool {
	return s.table.Contains(key)
}

// Removes a key from the set. Returns whether the key was present.
func (s *Set) Remove(key string) bool {
	return s.table.Delete(key) == nil
}

func (s *Set) Len() int {
	return s.table.Len()
}

func (s *Set) Stats() Stats {
	return s.table.Stats()
}
