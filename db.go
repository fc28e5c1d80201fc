package main

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"sales-pacing-console/internal/config"
	"sales-pacing-console/internal/source"
)

// openLoader picks the snapshot source: a SQL database when a driver is
// configured, otherwise the workbook or JSON file at source.path.
func openLoader(cfg config.SourceConfig) (source.Loader, func() error, error) {
	if cfg.Driver == "" {
		return source.NewFileLoader(strings.TrimSpace(cfg.Path)), func() error { return nil }, nil
	}
	loader, err := source.OpenSQL(cfg.Driver, strings.TrimSpace(cfg.DSN), cfg.Schema, cfg.Timeout)
	if err != nil {
		return nil, nil, err
	}
	return loader, loader.Close, nil
}

func loadSnapshot(ctx context.Context, loader source.Loader, log *zap.Logger) (source.Snapshot, error) {
	snap, err := loader.Load(ctx)
	if err != nil {
		log.Error("snapshot load failed", zap.Error(err))
		return source.Snapshot{}, err
	}
	log.Info("snapshot loaded",
		zap.String("origin", snap.Origin),
		zap.Int("plans", len(snap.Plans)),
		zap.Int("achievements", len(snap.Achievements)),
		zap.Int("users", len(snap.Users)),
	)
	return snap, nil
}
