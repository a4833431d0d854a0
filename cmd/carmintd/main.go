package main

import (
	"os"

	"carmint/internal/config"
	"carmint/internal/infra/db"
	httpinfra "carmint/internal/infra/http"
	"carmint/internal/log"
)

func main() {
	cfg := config.FromEnv()
	log.Init(cfg.LogLevel, cfg.LogJSON)
	logger := log.WithComponent("main")

	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		os.Exit(1)
	}

	store, err := db.NewStore(cfg)
	if err != nil {
		logger.Error().Err(err).Msg("failed to init store")
		os.Exit(1)
	}

	srv := httpinfra.NewServer(cfg, store)
	logger.Info().Str("addr", cfg.HTTPAddr).Msg("starting carmintd")
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
}
