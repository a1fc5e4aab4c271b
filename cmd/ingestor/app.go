package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aleister1102/ingestor/internal/catalog"
	"github.com/aleister1102/ingestor/internal/checksum"
	"github.com/aleister1102/ingestor/internal/config"
	"github.com/aleister1102/ingestor/internal/metrics"
	"github.com/aleister1102/ingestor/internal/models"
	"github.com/aleister1102/ingestor/internal/notifier"
	"github.com/aleister1102/ingestor/internal/pipeline"
	"github.com/aleister1102/ingestor/internal/scheduler"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type application struct {
	cfg     *config.GlobalConfig
	catalog catalog.Catalog
	metrics *metrics.Recorder
	logger  zerolog.Logger
}

func newApplication(ctx context.Context, cfg *config.GlobalConfig, logger zerolog.Logger) (*application, error) {
	cat, err := catalog.New(ctx, cfg.CatalogConfig, logger)
	if err != nil {
		return nil, err
	}
	return &application{
		cfg:     cfg,
		catalog: cat,
		metrics: metrics.NewRecorder(),
		logger:  logger,
	}, nil
}

// Close releases the catalog. Safe to call more than once.
func (a *application) Close() {
	if a.catalog == nil {
		return
	}
	if err := a.catalog.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to close catalog")
	}
	a.catalog = nil
}

// Run dispatches on the configured mode.
func (a *application) Run(ctx context.Context, flags AppFlags, out io.Writer) error {
	switch a.cfg.Mode {
	case "automated":
		return a.runAutomated(ctx)
	case "onetime":
		return a.runOnetime(ctx)
	case "lookup":
		return a.runLookup(ctx, flags, out)
	case "export":
		return a.runExport(ctx, flags)
	default:
		return fmt.Errorf("unknown mode %q", a.cfg.Mode)
	}
}

func (a *application) newScheduler() (*scheduler.Scheduler, error) {
	httpNotifier, err := notifier.NewHTTPNotifier(a.cfg.NotificationConfig, a.logger)
	if err != nil {
		return nil, err
	}

	engine := checksum.NewEngine(a.logger, checksum.WithMaxAttempts(a.cfg.SchedulerConfig.MaxChecksumAttempts))
	p := pipeline.New(engine, a.catalog, httpNotifier, a.logger, pipeline.WithMetrics(a.metrics))

	return scheduler.NewScheduler(a.cfg.WatchFolders, a.cfg.SchedulerConfig, p, a.logger, scheduler.WithMetrics(a.metrics)), nil
}

func (a *application) runAutomated(ctx context.Context) error {
	s, err := a.newScheduler()
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Start(gctx)
	})
	if a.cfg.MetricsConfig.Enabled() {
		srv := metrics.NewServer(a.cfg.MetricsConfig, a.metrics, a.logger)
		g.Go(func() error {
			return srv.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		s.Stop()
		return nil
	})
	return g.Wait()
}

func (a *application) runOnetime(ctx context.Context) error {
	s, err := a.newScheduler()
	if err != nil {
		return err
	}

	s.Prepare()
	summary := s.RunCycle(ctx)
	if summary.Status == models.ScanStatusInterrupted {
		return ctx.Err()
	}
	return nil
}

func (a *application) runLookup(ctx context.Context, flags AppFlags, out io.Writer) error {
	var (
		records []models.ProcessedFileRecord
		err     error
	)
	if flags.MD5 != "" {
		records, err = a.catalog.FindByMD5(ctx, flags.MD5)
	} else {
		records, err = a.catalog.FindBySHA1(ctx, flags.SHA1)
	}
	if err != nil {
		return err
	}

	a.logger.Info().Int("matches", len(records)).Msg("Lookup finished")
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func (a *application) runExport(ctx context.Context, flags AppFlags) error {
	path := flags.ExportPath
	if path == "" {
		path = a.cfg.ExportConfig.OutputPath
	}
	_, err := catalog.NewParquetExporter(a.catalog, a.cfg.ExportConfig.CompressionCodec, a.logger).Export(ctx, path)
	return err
}
