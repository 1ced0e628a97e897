package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
)

// WriteText renders the report as aligned text tables with times in seconds.
func (r *Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	fmt.Fprintf(tw, "Run %s (%s hash, %d records)\n", r.RunID, r.Hash, r.Records)
	fmt.Fprintf(tw, "CEP %s found: %s, %s\n\n", r.Smoke.Code, r.Smoke.City, r.Smoke.State)

	fmt.Fprintln(tw, "Load\tRecords\tLinear (s)\tDouble (s)\t")
	for _, row := range r.Occupancy {
		fmt.Fprintf(tw, "%.0f%%\t%d\t%.6f\t%.6f\t\n",
			row.Rate*100, row.Records, row.Linear.Seconds(), row.Double.Seconds())
	}

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "Initial slots\tFinal slots\tResizes\tRecords\tElapsed (s)\t")
	for _, row := range []OverheadRow{r.Overhead.Large, r.Overhead.Small} {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%.6f\t\n",
			row.InitialCapacity, row.FinalCapacity, row.Resizes, row.Records, row.Elapsed.Seconds())
	}
	fmt.Fprintf(tw, "\nDynamic growth overhead: %.2f%%\n", r.Overhead.Percent)

	return tw.Flush()
}

func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(r)
}
