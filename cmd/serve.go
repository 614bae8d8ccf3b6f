package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/carbon-map/internal/config"
	"github.com/sells-group/carbon-map/internal/dataset"
	"github.com/sells-group/carbon-map/internal/monitoring"
	"github.com/sells-group/carbon-map/internal/server"
	"github.com/sells-group/carbon-map/internal/session"
)

var servePort int

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve interactive map views over HTTP",
	Long:  "Loads the dataset and boundary overlay in the background and serves map sessions. Views mounted before the load completes show an empty map and refresh when it lands.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		palette, err := loadPalette(cfg.Palette)
		if err != nil {
			return err
		}

		metrics := monitoring.NewMetrics()
		store := dataset.NewStore()
		loader := newLoader(cfg, store, dataset.WithMetrics(metrics))
		sessions := session.NewRegistry(store, palette, sessionConfig(cfg.Server), session.WithMetrics(metrics))
		defer sessions.Close()

		store.OnPublish(func(snap *dataset.Snapshot) {
			sessions.Refresh()
		})

		collector := monitoring.NewCollector(store, sessions, sessions.Clock())
		checker := monitoring.NewChecker(collector, metrics, time.Duration(cfg.Server.StatusIntervalSecs)*time.Second)

		srv := server.New(fmt.Sprintf(":%d", port), cfg.Server.CORSOrigins, server.Deps{
			Sessions:  sessions,
			Dataset:   store,
			Collector: collector,
			Metrics:   metrics,
			Gatherer:  prometheus.DefaultGatherer,
			MapView:   cfg.Map,
		})

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			// The server stays up without data; the status endpoint reports it.
			if _, err := loader.Load(gctx); err != nil {
				zap.L().Error("dataset load failed", zap.Error(err))
			}
			return nil
		})
		g.Go(func() error {
			sessions.Run(gctx)
			return nil
		})
		g.Go(func() error {
			checker.Run(gctx)
			return nil
		})
		g.Go(func() error {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}

// sessionConfig converts the server section into registry limits.
func sessionConfig(s config.ServerConfig) session.Config {
	return session.Config{
		TTL:           time.Duration(s.SessionTTLMins) * time.Minute,
		SweepInterval: time.Duration(s.SweepIntervalSecs) * time.Second,
		PointerRate:   rate.Limit(s.PointerRate),
		PointerBurst:  s.PointerBurst,
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
