package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ettle/strcase"

	"github.com/goliatone/go-widgetgrid/components/dashboard"
	"github.com/goliatone/go-widgetgrid/pkg/config"
	"github.com/goliatone/go-widgetgrid/pkg/metrics"
	"github.com/goliatone/go-widgetgrid/pkg/storage/boltstore"
	"github.com/goliatone/go-widgetgrid/pkg/storage/diskvstore"
)

// runtime bundles what every subcommand needs.
type runtime struct {
	cfg     config.Config
	viewer  dashboard.ViewerContext
	catalog *dashboard.Registry
	store   dashboard.LayoutStore
	closer  io.Closer
	logger  *slog.Logger
}

func (g *globals) runtime(logger *slog.Logger) (*runtime, error) {
	cfg, err := config.Load(config.LoadOptions{File: g.Config, DotEnv: g.DotEnv})
	if err != nil {
		return nil, err
	}
	catalog := dashboard.NewRegistry()
	if cfg.Catalog.Manifest != "" {
		if _, err := catalog.LoadManifestFile(cfg.Catalog.Manifest); err != nil {
			return nil, err
		}
	}
	store, closer, err := openStore(cfg.Storage)
	if err != nil {
		return nil, err
	}
	return &runtime{
		cfg:     cfg,
		viewer:  dashboard.ViewerContext{UserID: g.User, Locale: g.Locale},
		catalog: catalog,
		store:   store,
		closer:  closer,
		logger:  logger,
	}, nil
}

func (r *runtime) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// service builds a dashboard service. Offline commands never wait on metrics, so they
// get an empty static snapshot unless withMetrics is set.
func (r *runtime) service(withMetrics bool, hook dashboard.RefreshHook) (*dashboard.Service, error) {
	var source dashboard.MetricsSource = dashboard.StaticMetricsSource{}
	if withMetrics && r.cfg.Metrics.BaseURL != "" {
		client, err := metrics.NewHTTPClient(metrics.HTTPConfig{
			BaseURL:   r.cfg.Metrics.BaseURL,
			StatsPath: r.cfg.Metrics.StatsPath,
			APIKey:    r.cfg.Metrics.APIKey,
			Timeout:   r.cfg.Metrics.Timeout,
		})
		if err != nil {
			return nil, err
		}
		source = client
	}
	return dashboard.NewService(dashboard.Options{
		Store:       r.store,
		Catalog:     r.catalog,
		Metrics:     source,
		StorageKey:  r.cfg.Storage.Key,
		RefreshHook: hook,
		Telemetry:   slogTelemetry{logger: r.logger},
		Logger:      r.logger,
	}), nil
}

func openStore(cfg config.StorageConfig) (dashboard.LayoutStore, io.Closer, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return dashboard.NewInMemoryLayoutStore(), nil, nil
	case config.DriverDiskv:
		store, err := diskvstore.New(diskvstore.Options{BasePath: cfg.Path})
		return store, nil, err
	case config.DriverBolt:
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, nil, fmt.Errorf("gridctl: mkdir %s: %w", cfg.Path, err)
		}
		store, err := boltstore.Open(boltstore.Options{Path: filepath.Join(cfg.Path, "layouts.db"), Timeout: time.Second})
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("gridctl: unknown storage driver %q", cfg.Driver)
	}
}

// parseWidgetType accepts any casing of a widget type (TotalDreams, total-dreams, ...).
func parseWidgetType(raw string) (dashboard.WidgetType, error) {
	t := dashboard.WidgetType(strcase.ToSnake(raw))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", dashboard.ErrUnknownWidgetType, raw)
	}
	return t, nil
}

type slogTelemetry struct {
	logger *slog.Logger
}

func (t slogTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	args := make([]any, 0, len(payload)*2)
	for k, v := range payload {
		args = append(args, k, v)
	}
	t.logger.DebugContext(ctx, event, args...)
}
