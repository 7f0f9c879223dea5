package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"bgrelay/internal/app"
	"bgrelay/internal/config"
	"bgrelay/internal/logging"
	"bgrelay/internal/metrics"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	bootLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load(bootLogger)
	if err != nil {
		bootLogger.Fatal().Err(err).Msg("load config")
	}

	logger := logging.New(cfg.Log)
	metrics.SetBuildInfo(version, commit)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		stop()
		logger.Fatal().Err(err).Msg("build app")
	}

	if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("bot stopped with error")
		os.Exit(1)
	}

	logger.Info().Msg("shutting down")
}
