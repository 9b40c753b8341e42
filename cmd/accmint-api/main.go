package main

import (
	"context"
	"flag"
	"net/http"
	"os"

	"github.com/accmint-dev/accmint/internal/config"
	"github.com/accmint-dev/accmint/internal/logger"
	"github.com/accmint-dev/accmint/internal/router"
	"github.com/accmint-dev/accmint/internal/setup"
)

func main() {
	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "config", "path to folder with configs")
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	deps, err := setup.SetupDependencies(cfg)
	if err != nil {
		logger.Log.Error("failed to initialize dependencies", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	deps.Sessions.StartBackgroundEviction(ctx, cfg.Public.EvictionInterval)
	deps.Batches.StartBackgroundEviction(ctx, cfg.Public.EvictionInterval)

	r := router.New(deps)

	addr := cfg.Public.ListenAddr
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	logger.Log.Info("server started", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
