package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/goliatone/go-synctemplate/internal/config"
	"github.com/goliatone/go-synctemplate/pkg/fieldcache"
	"github.com/goliatone/go-synctemplate/pkg/orchestrator"
	"github.com/goliatone/go-synctemplate/pkg/render"
	"github.com/goliatone/go-synctemplate/pkg/renderers/jsontree"
	"github.com/goliatone/go-synctemplate/pkg/renderers/tui"
	"github.com/goliatone/go-synctemplate/pkg/renderers/vanilla"
	"github.com/goliatone/go-synctemplate/pkg/store"
)

func openStore(cfg config.StoreConfig) (store.Store, func() error, error) {
	switch cfg.Driver {
	case config.StoreSQLite:
		s, err := store.OpenSQLite(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		s, err := store.LoadFS(os.DirFS(cfg.Dir))
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { return nil }, nil
	}
}

func newFieldCache(ctx context.Context, cfg config.CacheConfig, logger *zap.Logger) (*fieldcache.Cache, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Driver {
	case config.CacheNone:
		return nil, noop, nil
	case config.CacheRedis:
		backend, err := fieldcache.DialRedis(ctx, fieldcache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		cache := fieldcache.New(backend, fieldcache.WithTTL(cfg.TTL), fieldcache.WithLogger(logger))
		return cache, backend.Close, nil
	default:
		cache := fieldcache.New(fieldcache.NewMemory(), fieldcache.WithTTL(cfg.TTL), fieldcache.WithLogger(logger))
		return cache, noop, nil
	}
}

func newRegistry(logger *zap.Logger) (*render.Registry, error) {
	html, err := vanilla.New(vanilla.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: %w", err)
	}
	registry := render.NewRegistry()
	registry.MustRegister(html)
	registry.MustRegister(jsontree.New(jsontree.WithIndent("  ")))
	registry.MustRegister(tui.New())
	return registry, nil
}

func newOrchestrator(cfg *config.Config, reader orchestrator.Reader, logger *zap.Logger) (*orchestrator.Orchestrator, error) {
	registry, err := newRegistry(logger)
	if err != nil {
		return nil, err
	}
	options := []orchestrator.Option{
		orchestrator.WithStore(reader),
		orchestrator.WithRegistry(registry),
		orchestrator.WithDefaultRenderer(cfg.Render.Renderer),
		orchestrator.WithMaxEmbedDepth(cfg.Render.MaxEmbedDepth),
		orchestrator.WithLogger(logger),
		orchestrator.WithInjector(render.NewInjector(render.WithLogger(logger))),
	}
	if cfg.Render.Presets != "" {
		data, err := os.ReadFile(cfg.Render.Presets)
		if err != nil {
			return nil, fmt.Errorf("read presets: %w", err)
		}
		presets, err := orchestrator.NewPresetTransformer(data)
		if err != nil {
			return nil, err
		}
		options = append(options, orchestrator.WithTransformer(presets))
	}
	return orchestrator.New(options...), nil
}
