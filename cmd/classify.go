package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/carbon-map/internal/bucket"
	"github.com/sells-group/carbon-map/internal/model"
)

var classifyCmd = &cobra.Command{
	Use:   "classify VALUE...",
	Short: "Show the bucket and colours for W/tCO2 values",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := parseValues(args)
		if err != nil {
			return err
		}
		palette, err := loadPalette(cfg.Palette)
		if err != nil {
			return err
		}
		return writeClassification(os.Stdout, palette, values)
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

func parseValues(args []string) ([]float64, error) {
	out := make([]float64, 0, len(args))
	for _, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, eris.Wrapf(err, "classify: parse %q", a)
		}
		if !model.ValidValue(v) {
			return nil, eris.Errorf("classify: %q is not a finite non-negative value", a)
		}
		out = append(out, v)
	}
	return out, nil
}

// writeClassification prints one row per value with its bucket and its colour
// under each scale.
func writeClassification(out io.Writer, palette *bucket.Palette, values []float64) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "VALUE\tBUCKET\tRANGE\tDEFAULT\tALTERNATE")
	for _, v := range values {
		b := bucket.Classify(v)
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			strconv.FormatFloat(v, 'f', -1, 64),
			b.Label(),
			b.DisplayLabel(),
			palette.ColorOf(b, bucket.ScaleDefault).CSS(),
			palette.ColorOf(b, bucket.ScaleAlternate).CSS(),
		)
	}
	return w.Flush()
}
