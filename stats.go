package openhash

type Stats struct {
	Size                    int
	Capacity                int
	Tombstones              int
	Resizes                 int
	LoadFactor              float64
	TombstonesCapacityRatio float32
	TombstonesSizeRatio     float32
}

// Returns a snapshot of the table occupancy.
func (t *Table[R]) Stats() Stats {
	s := Stats{
		Size:       t.size,
		Capacity:   t.max,
		Tombstones: t.tombstones,
		Resizes:    t.resizes,
		LoadFactor: t.LoadFactor(),
	}

	if t.max > 0 {
		s.TombstonesCapacityRatio = float32(t.tombstones) / float32(t.max)
	}
	if t.size > 0 {
		s.TombstonesSizeRatio = float32(t.tombstones) / float32(t.size)
	}

	return s
}
