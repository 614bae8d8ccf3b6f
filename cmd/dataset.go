package main

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/carbon-map/internal/bucket"
	"github.com/sells-group/carbon-map/internal/config"
	"github.com/sells-group/carbon-map/internal/dataset"
	"github.com/sells-group/carbon-map/internal/fetcher"
)

// newLoader wires a dataset loader from the data section of the config.
func newLoader(c *config.Config, store *dataset.Store, opts ...dataset.LoaderOption) *dataset.Loader {
	resolver := fetcher.NewResolver(c.Data.TempDir,
		fetcher.HTTPOptions{
			UserAgent: c.Data.UserAgent,
			Timeout:   c.Data.FetchTimeout(),
		},
		fetcher.FTPOptions{Timeout: c.Data.FetchTimeout()},
	)
	return dataset.NewLoader(resolver, store, dataset.Options{
		Source:         c.Data.Source,
		Sheet:          c.Data.Sheet,
		Columns:        c.Data.Columns,
		BoundarySource: c.Data.BoundarySource,
		WorkDir:        c.Data.TempDir,
	}, opts...)
}

// loadPalette returns the built-in palette unless a palette file is configured.
func loadPalette(c config.PaletteConfig) (*bucket.Palette, error) {
	if c.File == "" {
		return bucket.DefaultPalette(), nil
	}
	p, err := bucket.LoadPalette(c.File)
	if err != nil {
		return nil, eris.Wrap(err, "load palette")
	}
	return p, nil
}
