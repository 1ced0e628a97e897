package openhash

import (
	"errors"
	"fmt"
	"math"
)

// DefaultMaxCapacity is the largest slot array a table allocates unless
// overridden with WithMaxCapacity. Growing past it fails with ErrAllocation.
const DefaultMaxCapacity = 1 << 28

// Policy selects how a table resolves collisions.
type Policy uint8

const (
	// Linear probes consecutive slots.
	Linear Policy = iota
	// Double probes with a per-key step derived from a second hash.
	Double
)

func (p Policy) String() string {
	switch p {
	case Linear:
		return "linear"
	case Double:
		return "double"
	default:
		return fmt.Sprintf("Policy(%d)", uint8(p))
	}
}

// ParsePolicy maps "linear" and "double" to their Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "linear":
		return Linear, nil
	case "double":
		return Double, nil
	}

	return 0, fmt.Errorf("%w: unknown policy %q", ErrInvalidConfig, s)
}

// KeyFunc extracts the key of a record. It must return the same key for the
// whole time the record is stored in a table.
type KeyFunc[R any] func(record R) string

// ReleaseFunc is called once for every record the table discards: deleted
// records, records left at Destroy and records whose Insert failed.
type ReleaseFunc[R any] func(record R)

// Table is an open-addressing hash table of records keyed by strings.
// Records are stored by value in the slot array and owned by the table from
// a successful Insert until Delete or Destroy hands them to the ReleaseFunc.
//
// A Table is not safe for concurrent use.
type Table[R any] struct {
	slots []slot[R]

	max        int
	size       int
	tombstones int
	resizes    int

	maxLoadFactor float64
	maxCapacity   int
	policy        Policy

	keyFunc     KeyFunc[R]
	releaseFunc ReleaseFunc[R]
	hashFunc    HashFunc

	seed        uint32
	stepSeed    uint32
	stepModulus uint32

	metrics   *tableMetrics
	destroyed bool
}

type Option[R any] func(t *Table[R])

// Override default hash function.
func WithHashFunc[R any](f HashFunc) Option[R] {
	return func(t *Table[R]) {
		t.hashFunc = f
	}
}

// Override the seeds of the home slot hash and the step hash.
func WithSeeds[R any](seed, stepSeed uint32) Option[R] {
	return func(t *Table[R]) {
		t.seed = seed
		t.stepSeed = stepSeed
	}
}

// Override the double hashing step modulus. Steps lie in [1, modulus].
func WithStepModulus[R any](modulus uint32) Option[R] {
	return func(t *Table[R]) {
		t.stepModulus = modulus
	}
}

// Limit the number of slots the table may allocate.
func WithMaxCapacity[R any](capacity int) Option[R] {
	return func(t *Table[R]) {
		t.maxCapacity = capacity
	}
}

func WithRelease[R any](f ReleaseFunc[R]) Option[R] {
	return func(t *Table[R]) {
		t.releaseFunc = f
	}
}

// Export probe lengths and resizes to prometheus, labelled with name.
func WithMetrics[R any](name string) Option[R] {
	return func(t *Table[R]) {
		t.metrics = newTableMetrics(name)
	}
}

// New allocates a table of capacity empty slots. Insert grows the table by
// doubling once the occupancy before an insert reaches maxLoadFactor.
func New[R any](
	capacity int,
	maxLoadFactor float64,
	policy Policy,
	keyFunc KeyFunc[R],
	opts ...Option[R],
) (*Table[R], error) {
	t := &Table[R]{
		maxLoadFactor: maxLoadFactor,
		maxCapacity:   DefaultMaxCapacity,
		policy:        policy,
		keyFunc:       keyFunc,
		hashFunc:      Hash32,
		seed:          DefaultSeed,
		stepSeed:      DefaultStepSeed,
		stepModulus:   DefaultStepModulus,
	}

	for _, opt := range opts {
		opt(t)
	}

	switch {
	case capacity <= 0:
		return nil, fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, capacity)
	case math.IsNaN(maxLoadFactor) || maxLoadFactor <= 0 || maxLoadFactor > 1:
		return nil, fmt.Errorf("%w: load factor must be in (0, 1], got %v", ErrInvalidConfig, maxLoadFactor)
	case policy != Linear && policy != Double:
		return nil, fmt.Errorf("%w: unknown policy %v", ErrInvalidConfig, policy)
	case keyFunc == nil:
		return nil, fmt.Errorf("%w: key function is required", ErrInvalidConfig)
	case t.hashFunc == nil:
		return nil, fmt.Errorf("%w: hash function is required", ErrInvalidConfig)
	case t.stepModulus == 0:
		return nil, fmt.Errorf("%w: step modulus must be positive", ErrInvalidConfig)
	case capacity > t.maxCapacity:
		return nil, fmt.Errorf("%w: capacity %d exceeds limit of %d slots", ErrAllocation, capacity, t.maxCapacity)
	}

	t.slots = make([]slot[R], capacity)
	t.max = capacity

	return t, nil
}

// Returns the number of records stored in the table.
func (t *Table[R]) Len() int {
	return t.size
}

// Returns the number of slots.
func (t *Table[R]) Cap() int {
	return t.max
}

func (t *Table[R]) Policy() Policy {
	return t.policy
}

// Returns size/capacity. Tombstones do not count towards the load factor.
func (t *Table[R]) LoadFactor() float64 {
	if t.max == 0 {
		return 0
	}

	return float64(t.size) / float64(t.max)
}

// Insert stores record and takes ownership of it. On failure the record is
// handed to the ReleaseFunc before the error is returned.
func (t *Table[R]) Insert(record R) error {
	if t.destroyed {
		t.release(record)
		return ErrDestroyed
	}

	// The ceiling is checked against the occupancy before this insert.
	if float64(t.size)/float64(t.max) >= t.maxLoadFactor {
		if err := t.resize(); err != nil {
			t.release(record)
			return err
		}
	}

	key := t.keyFunc(record)
	for {
		pos, probes, err := t.findEmpty(t.slots, key)
		if err == nil {
			t.slots[pos] = slot[R]{state: slotOccupied, record: record}
			t.size++
			t.metrics.observeInsert(probes, true)

			return nil
		}

		if errors.Is(err, ErrDuplicateKey) {
			t.metrics.observeInsert(probes, false)
			t.release(record)

			return fmt.Errorf("%w: %q", ErrDuplicateKey, key)
		}

		// Every reachable slot is occupied or a tombstone. Growing drops
		// the tombstones and changes the probe sequence.
		if err := t.resize(); err != nil {
			t.release(record)
			return err
		}
	}
}

// Search returns the record stored under key.
func (t *Table[R]) Search(key string) (R, bool) {
	var zero R
	if t.max == 0 {
		return zero, false
	}

	pos, probes := t.find(key)
	t.metrics.observeSearch(probes, pos >= 0)
	if pos < 0 {
		return zero, false
	}

	return t.slots[pos].record, true
}

// Checks whether a key is in the table.
func (t *Table[R]) Contains(key string) bool {
	_, ok := t.Search(key)
	return ok
}

// Delete releases the record stored under key and leaves a tombstone in its
// slot. Returns ErrNotFound if the key is absent.
func (t *Table[R]) Delete(key string) error {
	if t.destroyed {
		return ErrDestroyed
	}

	pos, probes := t.find(key)
	t.metrics.observeDelete(probes, pos >= 0)
	if pos < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, key)
	}

	record := t.slots[pos].record
	t.slots[pos] = slot[R]{state: slotTombstone}
	t.size--
	t.tombstones++
	t.release(record)

	return nil
}

// Range calls f for every stored record in slot order until f returns false.
func (t *Table[R]) Range(f func(record R) bool) {
	for i := range t.slots {
		if t.slots[i].state != slotOccupied {
			continue
		}
		if !f(t.slots[i].record) {
			return
		}
	}
}

// Destroy releases every stored record and the slot array. The table is not
// usable afterwards. Calling Destroy again is a no-op.
func (t *Table[R]) Destroy() {
	if t.destroyed {
		return
	}

	for i := range t.slots {
		if t.slots[i].state == slotOccupied {
			t.release(t.slots[i].record)
		}
	}

	t.slots = nil
	t.size = 0
	t.max = 0
	t.tombstones = 0
	t.destroyed = true
}

func (t *Table[R]) release(record R) {
	if t.releaseFunc != nil {
		t.releaseFunc(record)
	}
}

// probeStart returns the home slot and the step of key in an array of n
// slots.
func (t *Table[R]) probeStart(key string, n int) (int, int) {
	home := int(uint64(t.hashFunc(key, t.seed)) % uint64(n))
	if t.policy == Linear {
		return home, 1
	}

	return home, int(stepFromHash(t.hashFunc(key, t.stepSeed), t.stepModulus))
}

// find walks the probe sequence of key and returns the index of the
// occupied slot holding it, or -1, along with the number of slots visited.
func (t *Table[R]) find(key string) (int, int) {
	pos, step := t.probeStart(key, t.max)

	for probes := 1; probes <= t.max; probes++ {
		s := &t.slots[pos]
		switch s.state {
		case slotEmpty:
			return -1, probes
		case slotOccupied:
			if t.keyFunc(s.record) == key {
				return pos, probes
			}
		}

		pos = (pos + step) % t.max
	}

	return -1, t.max
}

// findEmpty walks the probe sequence of key in slots and returns the first
// empty slot. Tombstones are walked past, not reused. Meeting key on the way
// yields ErrDuplicateKey.
func (t *Table[R]) findEmpty(slots []slot[R], key string) (int, int, error) {
	n := len(slots)
	pos, step := t.probeStart(key, n)

	for probes := 1; probes <= n; probes++ {
		s := &slots[pos]
		switch s.state {
		case slotEmpty:
			return pos, probes, nil
		case slotOccupied:
			if t.keyFunc(s.record) == key {
				return pos, probes, ErrDuplicateKey
			}
		}

		pos = (pos + step) % n
	}

	return -1, n, errNoEmptySlot
}

// resize doubles the slot array and re-places every stored record. When a
// record has no reachable empty slot in the doubled array, it doubles again.
// On failure the table is left untouched.
func (t *Table[R]) resize() error {
	for newMax := t.max * 2; ; newMax *= 2 {
		if newMax <= 0 || newMax > t.maxCapacity {
			return fmt.Errorf("%w: cannot grow beyond %d slots", ErrAllocation, t.maxCapacity)
		}

		slots, moved, ok := t.rehash(newMax)
		if !ok {
			continue
		}

		t.slots = slots
		t.max = newMax
		t.size = moved
		t.tombstones = 0
		t.resizes++
		t.metrics.observeResize()

		return nil
	}
}

func (t *Table[R]) rehash(n int) ([]slot[R], int, bool) {
	slots := make([]slot[R], n)
	moved := 0

	for i := range t.slots {
		if t.slots[i].state != slotOccupied {
			continue
		}

		record := t.slots[i].record
		pos, _, err := t.findEmpty(slots, t.keyFunc(record))
		if err != nil {
			return nil, 0, false
		}

		slots[pos] = slot[R]{state: slotOccupied, record: record}
		moved++
	}

	return slots, moved, true
}
