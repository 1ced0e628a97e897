package cep

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/homier/openhash"
)

// Inserter receives loaded records. *openhash.Table[Record] satisfies it.
type Inserter interface {
	Insert(record Record) error
}

type Result struct {
	// Records inserted.
	Loaded int
	// Rows that were malformed or carried a postal code already loaded.
	Skipped int
}

// Load reads `code,city,state` rows after a header line and inserts up to
// maxRecords records into dst. maxRecords <= 0 loads every row. Only the
// first five characters of the code are kept.
func Load(r io.Reader, dst Inserter, maxRecords int) (Result, error) {
	var res Result

	err := scan(r, func(rec Record) (bool, error) {
		if maxRecords > 0 && res.Loaded >= maxRecords {
			return false, nil
		}

		if err := dst.Insert(rec); err != nil {
			if errors.Is(err, openhash.ErrDuplicateKey) {
				res.Skipped++
				return true, nil
			}
			return false, fmt.Errorf("insert %s: %w", rec.Code, err)
		}

		res.Loaded++
		return true, nil
	}, &res.Skipped)

	return res, err
}

// LoadFile is Load on the file at path.
func LoadFile(path string, dst Inserter, maxRecords int) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return Load(f, dst, maxRecords)
}

// Read returns every well-formed row as a record, in file order, along with
// the number of malformed rows.
func Read(r io.Reader) ([]Record, int, error) {
	var (
		records []Record
		skipped int
	)

	err := scan(r, func(rec Record) (bool, error) {
		records = append(records, rec)
		return true, nil
	}, &skipped)

	return records, skipped, err
}

// ReadFile is Read on the file at path.
func ReadFile(path string) ([]Record, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return Read(f)
}

// scan calls f for every well-formed row until f returns false or an error.
// Malformed rows are counted in skipped.
func scan(r io.Reader, f func(Record) (bool, error), skipped *int) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header := true
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return nil
		}

		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			header = false
			*skipped++
			continue
		} else if err != nil {
			return fmt.Errorf("failed to read rows: %w", err)
		}

		if header {
			header = false
			continue
		}

		rec, ok := parseRow(row)
		if !ok {
			*skipped++
			continue
		}

		more, err := f(rec)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

func parseRow(row []string) (Record, bool) {
	if len(row) < 3 {
		return Record{}, false
	}

	code := strings.TrimSpace(row[0])
	city := strings.TrimSpace(row[1])
	// The state is the first word of the third column.
	state, _, _ := strings.Cut(strings.TrimSpace(row[2]), " ")
	if code == "" || city == "" || state == "" {
		return Record{}, false
	}

	return New(code, city, state), true
}
