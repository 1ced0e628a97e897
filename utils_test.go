package openhash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCapacityFor(t *testing.T) {
	tests := []struct {
		name       string
		records    int
		loadFactor float64
		want       int
	}{
		{"zero records", 0, 0.75, 1},
		{"one record", 1, 0.75, 1},
		{"three records", 3, 0.75, 3},
		{"four records", 4, 0.75, 5},
		{"full table", 10, 1, 10},
		{"rounding", 4, 0.1, 31},
		{"large table", 6100, 0.75, 8133},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, CapacityFor(tt.records, tt.loadFactor))
		})
	}
}

func TestCapacityFor_NoResize(t *testing.T) {
	for _, lf := range []float64{0.1, 0.3, 0.5, 0.75, 0.9, 1} {
		for _, n := range []int{2, 7, 100, 1000} {
			tt := newTestTable(t, CapacityFor(n, lf), lf, Linear)
			for _, r := range genRecords(0, n) {
				require.NoError(t, tt.Insert(r))
			}
			require.Zerof(t, tt.Stats().Resizes, "records=%d load factor=%v", n, lf)

			// One record less capacity would have grown.
			if c := CapacityFor(n, lf); c > 1 {
				tt := newTestTable(t, c-1, lf, Linear)
				for _, r := range genRecords(0, n) {
					require.NoError(t, tt.Insert(r))
				}
				require.NotZerof(t, tt.Stats().Resizes, "records=%d load factor=%v", n, lf)
			}
		}
	}
}
