package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/carbon-map/internal/dataset"
	"github.com/sells-group/carbon-map/internal/view"
)

var summaryJSON bool

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Load the dataset and print per-bucket and per-category counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("data"); err != nil {
			return err
		}
		snap, err := newLoader(cfg, dataset.NewStore()).Load(cmd.Context())
		if err != nil {
			return err
		}
		sum := dataset.Summarize(snap.Records)
		if summaryJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Summary  dataset.Summary `json:"summary"`
				Report   dataset.Report  `json:"report"`
				Counties int             `json:"counties"`
			}{sum, snap.Report, snap.Overlay.Len()})
		}
		return writeSummary(os.Stdout, snap, sum)
	},
}

func init() {
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "print JSON instead of tables")
	rootCmd.AddCommand(summaryCmd)
}

func writeSummary(out io.Writer, snap *dataset.Snapshot, sum dataset.Summary) error {
	_, _ = fmt.Fprintf(out, "Source:   %s\n", snap.Source)
	_, _ = fmt.Fprintf(out, "Rows:     %d (loaded %d, excluded %d)\n",
		snap.Report.Rows, snap.Report.Loaded, snap.Report.ExcludedTotal())
	reasons := make([]dataset.Reason, 0, len(snap.Report.Excluded))
	for r := range snap.Report.Excluded {
		reasons = append(reasons, r)
	}
	slices.Sort(reasons)
	for _, r := range reasons {
		_, _ = fmt.Fprintf(out, "  %-18s %d\n", r, snap.Report.Excluded[r])
	}
	if n := snap.Overlay.Len(); n > 0 {
		_, _ = fmt.Fprintf(out, "Counties: %d boundary outlines\n", n)
	}
	_, _ = fmt.Fprintln(out, view.ValueHeading(snap.Records))
	_, _ = fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "BUCKET\tRANGE\tCOUNT")
	for _, b := range sum.Buckets {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\n", b.Bucket.Label(), b.Label, b.Count)
	}
	_, _ = fmt.Fprintln(w, "\t\t")
	_, _ = fmt.Fprintln(w, "DCI GROUP\t\tCOUNT")
	for _, c := range sum.Categories {
		_, _ = fmt.Fprintf(w, "%s\t\t%d\n", c.Category, c.Count)
	}
	_, _ = fmt.Fprintf(w, "TOTAL\t\t%d\n", sum.Records)
	return w.Flush()
}
