package openhash

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

type testRecord struct {
	Code  string
	City  string
	State string
}

func testRecordKey(r testRecord) string {
	return r.Code
}

// Sends every key to slot 0 and gives every key a step of 1.
func collisionHash(string, uint32) uint32 {
	return 0
}

type releaseCounter map[string]int

func (c releaseCounter) release(r testRecord) {
	c[r.Code]++
}

func newTestTable(
	t testing.TB,
	capacity int,
	loadFactor float64,
	policy Policy,
	opts ...Option[testRecord],
) *Table[testRecord] {
	t.Helper()

	tt, err := New(capacity, loadFactor, policy, testRecordKey, opts...)
	require.NoError(t, err)

	return tt
}

func genRecords(start, end int) []testRecord {
	records := make([]testRecord, 0, end-start)
	for i := start; i < end; i++ {
		code := strconv.Itoa(i)
		records = append(records, testRecord{Code: code, City: "city-" + code, State: "SP"})
	}

	return records
}

var policies = []Policy{Linear, Double}
