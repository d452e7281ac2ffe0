package main

import (
	"context"
	"github.com/dgraph-io/ristretto"
	"github.com/reweave/reweave/internal/config"
	"github.com/reweave/reweave/internal/recorder/model"
	"github.com/reweave/reweave/internal/viewer_server/router"
	"github.com/reweave/reweave/internal/viewer_server/service/runstore"
	"github.com/reweave/reweave/pkg/cache"
	"go.uber.org/zap"
	"net/http"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	rc, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     1 << 24,
		BufferItems: 64,
	})
	if err != nil {
		logger.Fatal("Failed to create event cache", zap.Error(err))
	}
	eventCache := cache.NewReadCacheImpl[model.Event](rc)

	rs := runstore.NewStoreImpl(cfg.RunsDir, eventCache, logger)
	r := router.CreateRouter(context.Background(), rs, logger)

	logger.Info("Starting viewer server",
		zap.String("addr", cfg.ListenAddr), zap.String("runs_dir", cfg.RunsDir))
	if err := http.ListenAndServe(cfg.ListenAddr, r); err != nil {
		logger.Fatal("Failed to serve", zap.Error(err))
	}
}
