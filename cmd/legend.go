package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/carbon-map/internal/bucket"
)

var (
	legendScale string
	legendJSON  bool
)

var legendCmd = &cobra.Command{
	Use:   "legend",
	Short: "Print the value legend for a colour scale",
	RunE: func(cmd *cobra.Command, args []string) error {
		scale, err := bucket.ParseScale(legendScale)
		if err != nil {
			return err
		}
		palette, err := loadPalette(cfg.Palette)
		if err != nil {
			return err
		}
		items := palette.Legend(scale)
		if legendJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(items)
		}
		return writeLegend(os.Stdout, items)
	},
}

func init() {
	legendCmd.Flags().StringVar(&legendScale, "scale", "default", "colour scale (default or alternate)")
	legendCmd.Flags().BoolVar(&legendJSON, "json", false, "print JSON instead of a table")
	rootCmd.AddCommand(legendCmd)
}

func writeLegend(out io.Writer, items []bucket.LegendItem) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "VALUE\tLABEL\tCOLOR")
	for _, it := range items {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", it.Bucket.Label(), it.Label, it.CSS)
	}
	return w.Flush()
}
