package dataset

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/carbon-map/internal/boundary"
	"github.com/sells-group/carbon-map/internal/config"
	"github.com/sells-group/carbon-map/internal/fetcher"
	"github.com/sells-group/carbon-map/internal/model"
	"github.com/sells-group/carbon-map/internal/monitoring"
)

// Options locates the record source and the optional boundary overlay.
type Options struct {
	Source         string
	Sheet          string
	Columns        config.ColumnsConfig
	BoundarySource string
	WorkDir        string
}

// Loader reads records and the boundary overlay and publishes them to a Store.
type Loader struct {
	resolver *fetcher.Resolver
	store    *Store
	opts     Options
	metrics  *monitoring.Metrics
	clock    clockwork.Clock
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithMetrics records load metrics.
func WithMetrics(m *monitoring.Metrics) LoaderOption {
	return func(l *Loader) { l.metrics = m }
}

// WithClock overrides the clock used for timestamps.
func WithClock(c clockwork.Clock) LoaderOption {
	return func(l *Loader) { l.clock = c }
}

// NewLoader creates a Loader publishing to store.
func NewLoader(resolver *fetcher.Resolver, store *Store, opts Options, options ...LoaderOption) *Loader {
	if opts.Columns == (config.ColumnsConfig{}) {
		opts.Columns = config.DefaultColumns()
	}
	l := &Loader{
		resolver: resolver,
		store:    store,
		opts:     opts,
		clock:    clockwork.NewRealClock(),
	}
	for _, o := range options {
		o(l)
	}
	return l
}

// Load reads the records and the overlay concurrently and publishes the result.
// On error the store keeps its previous snapshot.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	start := l.clock.Now()
	log := zap.L().With(zap.String("component", "dataset.loader"))

	var (
		records []model.Record
		report  Report
		overlay *boundary.Overlay
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, report, err = l.LoadRecords(gctx)
		return err
	})
	if l.opts.BoundarySource != "" {
		g.Go(func() error {
			var err error
			overlay, err = boundary.Load(gctx, l.resolver, l.opts.BoundarySource, l.opts.WorkDir)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		if l.metrics != nil {
			l.metrics.LoadErrors.Inc()
		}
		return nil, err
	}

	snap := &Snapshot{
		Records:  records,
		Report:   report,
		Overlay:  overlay,
		Source:   l.opts.Source,
		LoadedAt: l.clock.Now(),
	}
	l.store.Publish(snap)
	l.observe(snap, l.clock.Since(start))

	log.Info("dataset loaded",
		zap.String("source", l.opts.Source),
		zap.Int("records", report.Loaded),
		zap.Int("excluded", report.ExcludedTotal()),
		zap.Int("counties", overlay.Len()),
		zap.Duration("elapsed", l.clock.Since(start)),
	)
	return snap, nil
}

// LoadRecords resolves and parses the record source without publishing.
func (l *Loader) LoadRecords(ctx context.Context) ([]model.Record, Report, error) {
	path, err := l.resolver.Resolve(ctx, l.opts.Source)
	if err != nil {
		return nil, Report{}, eris.Wrap(err, "dataset: resolve source")
	}
	t, err := fetcher.ReadTable(ctx, path, fetcher.TableOptions{Sheet: l.opts.Sheet})
	if err != nil {
		return nil, Report{}, eris.Wrapf(err, "dataset: read %s", path)
	}
	return FromTable(t, l.opts.Columns)
}

func (l *Loader) observe(snap *Snapshot, elapsed time.Duration) {
	if l.metrics == nil {
		return
	}
	l.metrics.LoadDuration.Observe(elapsed.Seconds())
	l.metrics.RowsLoaded.Set(float64(len(snap.Records)))
	l.metrics.RowsExcluded.Reset()
	for reason, n := range snap.Report.Excluded {
		l.metrics.RowsExcluded.WithLabelValues(string(reason)).Set(float64(n))
	}
}
