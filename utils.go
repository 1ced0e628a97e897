package openhash

import "math"

// DefaultLoadFactor is the load factor ceiling used by NewMap and NewSet.
const DefaultLoadFactor = 0.75

// Returns the smallest initial capacity that stores `records` records without
// growing under the given load factor ceiling.
func CapacityFor(records int, loadFactor float64) int {
	if records <= 1 || loadFactor <= 0 {
		return 1
	}

	// The last insert sees records-1 stored records and must stay below
	// the ceiling. Adjust with the same comparison Insert makes.
	stored := float64(records - 1)
	capacity := max(int(math.Floor(stored/loadFactor)), 1)
	for stored/float64(capacity) >= loadFactor {
		capacity++
	}
	for capacity > 1 && stored/float64(capacity-1) < loadFactor {
		capacity--
	}

	return capacity
}
