package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/homier/openhash/internal/bench"
	"github.com/homier/openhash/internal/cep"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("cepbench: ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cfg := bench.DefaultConfig()

	fs := flag.NewFlagSet("cepbench", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: cepbench [flags] ceps.csv\n\nFlags:\n")
		fs.PrintDefaults()
	}

	var (
		rates       = fs.String("rates", formatRates(cfg.Rates), "comma separated occupancy rates in (0, 1]")
		jsonOutput  = fs.Bool("json", false, "write the report as JSON")
		metricsAddr = fs.String("metrics-addr", "", "serve prometheus metrics on this address until interrupted")
	)
	fs.IntVar(&cfg.Capacity, "capacity", cfg.Capacity, "slots of the occupancy tables and of the large overhead table")
	fs.IntVar(&cfg.SmallCapacity, "small-capacity", cfg.SmallCapacity, "initial slots of the small overhead table")
	fs.IntVar(&cfg.SampleSize, "sample", cfg.SampleSize, "keys searched per occupancy table")
	fs.IntVar(&cfg.Repetitions, "repetitions", cfg.Repetitions, "search rounds over the sampled keys")
	fs.Float64Var(&cfg.LoadFactor, "load-factor", cfg.LoadFactor, "load factor ceiling of the overhead tables")
	fs.IntVar(&cfg.MaxRecords, "max-records", cfg.MaxRecords, "records loaded into the overhead tables, 0 for all")
	fs.StringVar(&cfg.Hash, "hash", cfg.Hash, "key hash: default or xxhash")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return flag.ErrHelp
	}

	var err error
	if cfg.Rates, err = parseRates(*rates); err != nil {
		return err
	}

	path := fs.Arg(0)
	records, skipped, err := cep.ReadFile(path)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no records in %s", path)
	}
	log.Printf("Read %d records from %s, skipped %d malformed rows", len(records), path, skipped)
	cfg.Records = records

	var server *http.Server
	if *metricsAddr != "" {
		cfg.Metrics = true

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		server = &http.Server{Addr: *metricsAddr, Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Metrics server failed: %v", err)
			}
		}()
		defer server.Close()
	}

	report, err := bench.Run(ctx, cfg)
	if err != nil {
		return err
	}

	if *jsonOutput {
		err = report.WriteJSON(stdout)
	} else {
		err = report.WriteText(stdout)
	}
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if server != nil {
		log.Printf("Serving metrics on %s/metrics, interrupt to exit", *metricsAddr)
		<-ctx.Done()
	}

	return nil
}

func parseRates(s string) ([]float64, error) {
	var rates []float64
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		rate, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid rate %q: %w", field, err)
		}
		rates = append(rates, rate)
	}

	if len(rates) == 0 {
		return nil, errors.New("at least one occupancy rate is required")
	}

	return rates, nil
}

func formatRates(rates []float64) string {
	fields := make([]string, len(rates))
	for i, rate := range rates {
		fields[i] = strconv.FormatFloat(rate, 'f', -1, 64)
	}

	return strings.Join(fields, ",")
}
