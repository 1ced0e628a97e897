// Package bench times the postal code tables: search time by occupancy rate
// for linear probing against double hashing, and the cost of growing from a
// small initial capacity.
package bench

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/homier/openhash"
	"github.com/homier/openhash/internal/cep"
)

type Config struct {
	Records []cep.Record

	// Slots of every occupancy table and of the large overhead table.
	Capacity int
	// Initial slots of the small overhead table.
	SmallCapacity int
	// Occupancy rates in (0, 1].
	Rates []float64
	// Keys searched per occupancy table.
	SampleSize int
	// Rounds over the sampled keys.
	Repetitions int
	// Load factor ceiling of the overhead tables.
	LoadFactor float64
	// Records loaded into the overhead tables, 0 for all of them.
	MaxRecords int

	// Key of HashFuncs.
	Hash string
	// Export table metrics to prometheus.
	Metrics bool
}

func DefaultConfig() Config {
	return Config{
		Capacity:      6100,
		SmallCapacity: 1000,
		Rates:         []float64{0.10, 0.20, 0.30, 0.40, 0.50, 0.60, 0.70, 0.80, 0.90, 0.99},
		SampleSize:    1000,
		Repetitions:   1000,
		LoadFactor:    0.75,
		MaxRecords:    50000,
		Hash:          "default",
	}
}

// HashFuncs are the key hashes a benchmark can run with.
var HashFuncs = map[string]openhash.HashFunc{
	"default": openhash.Hash32,
	"xxhash":  openhash.XXHash32,
}

func (c *Config) validate() error {
	switch {
	case c.Capacity <= 0 || c.SmallCapacity <= 0:
		return errors.New("capacities must be positive")
	case c.SampleSize <= 0 || c.Repetitions <= 0:
		return errors.New("sample size and repetitions must be positive")
	case c.LoadFactor <= 0 || c.LoadFactor > 1:
		return fmt.Errorf("load factor must be in (0, 1], got %v", c.LoadFactor)
	case HashFuncs[c.Hash] == nil:
		return fmt.Errorf("unknown hash function %q", c.Hash)
	}

	for _, rate := range c.Rates {
		if rate <= 0 || rate > 1 {
			return fmt.Errorf("occupancy rate must be in (0, 1], got %v", rate)
		}
	}

	return nil
}

type OccupancyRow struct {
	Rate float64 `json:"rate"`
	// Records stored in each table.
	Records int `json:"records"`
	// Keys searched per repetition.
	Sampled int           `json:"sampled"`
	Linear  time.Duration `json:"linear_ns"`
	Double  time.Duration `json:"double_ns"`
}

type OverheadRow struct {
	InitialCapacity int           `json:"initial_capacity"`
	FinalCapacity   int           `json:"final_capacity"`
	Resizes         int           `json:"resizes"`
	Records         int           `json:"records"`
	Elapsed         time.Duration `json:"elapsed_ns"`
}

type Overhead struct {
	Large OverheadRow `json:"large"`
	Small OverheadRow `json:"small"`
	// Extra time of the small table relative to the large one.
	Percent float64 `json:"percent"`
}

type Report struct {
	RunID     string         `json:"run_id"`
	Timestamp time.Time      `json:"timestamp"`
	Hash      string         `json:"hash"`
	Records   int            `json:"records"`
	Smoke     cep.Record     `json:"smoke"`
	Occupancy []OccupancyRow `json:"occupancy"`
	Overhead  Overhead       `json:"overhead"`
}

// Run executes the smoke test, the occupancy comparison and the insertion
// overhead measurement.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid benchmark configuration: %w", err)
	}

	smoke, err := Smoke()
	if err != nil {
		return nil, fmt.Errorf("smoke test failed: %w", err)
	}

	occupancy, err := Occupancy(ctx, cfg)
	if err != nil {
		return nil, err
	}

	overhead, err := InsertionOverhead(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &Report{
		RunID:     uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Hash:      cfg.Hash,
		Records:   len(cfg.Records),
		Smoke:     smoke,
		Occupancy: occupancy,
		Overhead:  overhead,
	}, nil
}

// Smoke inserts three well known postal codes into a small linear table and
// returns the record found for 01310.
func Smoke() (cep.Record, error) {
	t, err := openhash.New(100, 0.75, openhash.Linear, cep.Key)
	if err != nil {
		return cep.Record{}, err
	}
	defer t.Destroy()

	for _, r := range []cep.Record{
		cep.New("01310", "São Paulo", "SP"),
		cep.New("20040", "Rio de Janeiro", "RJ"),
		cep.New("30112", "Belo Horizonte", "MG"),
	} {
		if err := t.Insert(r); err != nil {
			return cep.Record{}, err
		}
	}

	r, ok := t.Search("01310")
	if !ok {
		return cep.Record{}, fmt.Errorf("01310: %w", openhash.ErrNotFound)
	}

	return r, nil
}

// Occupancy fills a linear and a double hashing table of cfg.Capacity slots
// to every rate in cfg.Rates and times cfg.Repetitions rounds of searches
// for up to cfg.SampleSize stored keys. The load factor ceiling is 1, so a
// table only grows when a double hashing probe cycle has no empty slot.
func Occupancy(ctx context.Context, cfg Config) ([]OccupancyRow, error) {
	rows := make([]OccupancyRow, 0, len(cfg.Rates))

	for _, rate := range cfg.Rates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		target := int(float64(cfg.Capacity) * rate)

		var linear, double *openhash.Table[cep.Record]
		g, groupCtx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			linear, err = buildTable(groupCtx, cfg, openhash.Linear, cfg.Capacity, 1, target, "occupancy")
			return err
		})
		g.Go(func() (err error) {
			double, err = buildTable(groupCtx, cfg, openhash.Double, cfg.Capacity, 1, target, "occupancy")
			return err
		})
		if err := g.Wait(); err != nil {
			destroyAll(linear, double)
			return nil, fmt.Errorf("failed to fill tables to %.0f%%: %w", rate*100, err)
		}

		keys := sampleKeys(linear, cfg.SampleSize)
		rows = append(rows, OccupancyRow{
			Rate:    rate,
			Records: linear.Len(),
			Sampled: len(keys),
			Linear:  timeSearches(linear, keys, cfg.Repetitions),
			Double:  timeSearches(double, keys, cfg.Repetitions),
		})

		destroyAll(linear, double)
	}

	return rows, nil
}

// InsertionOverhead times loading cfg.MaxRecords records into linear tables
// starting at cfg.Capacity and cfg.SmallCapacity slots.
func InsertionOverhead(ctx context.Context, cfg Config) (Overhead, error) {
	large, err := timeInsertion(ctx, cfg, cfg.Capacity)
	if err != nil {
		return Overhead{}, err
	}

	small, err := timeInsertion(ctx, cfg, cfg.SmallCapacity)
	if err != nil {
		return Overhead{}, err
	}

	o := Overhead{Large: large, Small: small}
	if large.Elapsed > 0 {
		o.Percent = float64(small.Elapsed-large.Elapsed) / float64(large.Elapsed) * 100
	}

	return o, nil
}

func timeInsertion(ctx context.Context, cfg Config, capacity int) (OverheadRow, error) {
	start := time.Now()
	t, err := buildTable(ctx, cfg, openhash.Linear, capacity, cfg.LoadFactor, cfg.MaxRecords, "overhead")
	if err != nil {
		return OverheadRow{}, fmt.Errorf("failed to load table of %d slots: %w", capacity, err)
	}

	row := OverheadRow{
		InitialCapacity: capacity,
		FinalCapacity:   t.Cap(),
		Resizes:         t.Stats().Resizes,
		Records:         t.Len(),
	}
	t.Destroy()
	row.Elapsed = time.Since(start)

	return row, nil
}

// buildTable inserts records until `target` of them are stored, skipping
// duplicate postal codes. target <= 0 inserts every record.
func buildTable(
	ctx context.Context,
	cfg Config,
	policy openhash.Policy,
	capacity int,
	loadFactor float64,
	target int,
	phase string,
) (*openhash.Table[cep.Record], error) {
	opts := []openhash.Option[cep.Record]{openhash.WithHashFunc[cep.Record](HashFuncs[cfg.Hash])}
	if cfg.Metrics {
		opts = append(opts, openhash.WithMetrics[cep.Record](phase+"_"+policy.String()))
	}

	t, err := openhash.New(capacity, loadFactor, policy, cep.Key, opts...)
	if err != nil {
		return nil, err
	}

	for i, r := range cfg.Records {
		if target > 0 && t.Len() >= target {
			break
		}
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				t.Destroy()
				return nil, err
			}
		}

		if err := t.Insert(r); err != nil && !errors.Is(err, openhash.ErrDuplicateKey) {
			t.Destroy()
			return nil, err
		}
	}

	return t, nil
}

func sampleKeys(t *openhash.Table[cep.Record], n int) []string {
	keys := make([]string, 0, n)
	t.Range(func(r cep.Record) bool {
		keys = append(keys, r.Code)
		return len(keys) < n
	})

	return keys
}

func timeSearches(t *openhash.Table[cep.Record], keys []string, repetitions int) time.Duration {
	start := time.Now()
	for range repetitions {
		for _, k := range keys {
			t.Search(k)
		}
	}

	return time.Since(start)
}

func destroyAll(tables ...*openhash.Table[cep.Record]) {
	for _, t := range tables {
		if t != nil {
			t.Destroy()
		}
	}
}
