// Package cep holds the postal code (CEP) record stored in the tables and
// the CSV loader that produces records.
package cep

const (
	CodeLen    = 5
	MaxCityLen = 99
	StateLen   = 2
)

// Record is a postal code with the city and state it belongs to.
type Record struct {
	Code  string
	City  string
	State string
}

// New builds a record, truncating every field to its maximum length.
func New(code, city, state string) Record {
	return Record{
		Code:  truncate(code, CodeLen),
		City:  truncate(city, MaxCityLen),
		State: truncate(state, StateLen),
	}
}

// Key is the openhash.KeyFunc of records.
func Key(r Record) string {
	return r.Code
}

// truncate keeps the first n runes of s.
func truncate(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}

	return s
}
