package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"bgrelay/internal/bot"
	"bgrelay/internal/config"
	"bgrelay/internal/files"
	"bgrelay/internal/handlers"
	"bgrelay/internal/image"
	"bgrelay/internal/logging"
	"bgrelay/internal/metrics"
	"bgrelay/internal/removebg"
	"bgrelay/internal/services"
)

// App wires the relay together: Telegram gateway, file staging, removal
// client and the optional metrics listener.
type App struct {
	bot     bot.Bot
	handler *handlers.Handler
	metrics *metrics.Server
	logger  zerolog.Logger
}

func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	botService, err := bot.NewTelegramBot(ctx, cfg.BotToken, logger)
	if err != nil {
		return nil, err
	}
	return newWithBot(cfg, botService, botService.Username(), logger)
}

func newWithBot(cfg *config.Config, botService bot.Bot, username string, logger zerolog.Logger) (*App, error) {
	fileManager, err := files.NewTelegramFileManager(
		botService,
		&http.Client{Timeout: cfg.RequestTimeout},
		cfg.TempDir,
	)
	if err != nil {
		return nil, err
	}

	remover, err := removebg.NewClient(cfg.RemoveBgKey,
		removebg.WithEndpoint(cfg.RemoveBgURL),
		removebg.WithSize(cfg.RemoveBgSize),
		removebg.WithTimeout(cfg.RequestTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("removebg client: %w", err)
	}

	relay := services.NewRelayService(remover, &image.Processor{}, fileManager, cfg.MaxFileSize)
	handler := handlers.NewHandler(*cfg, botService, username, fileManager, relay, logger)

	logger.Info().
		Str("bot", username).
		Str("endpoint", cfg.RemoveBgURL).
		Str("remove_bg_key", logging.Redact(cfg.RemoveBgKey)).
		Dur("timeout", cfg.RequestTimeout).
		Bool("key_command", cfg.KeyCommandEnabled).
		Msg("relay configured")

	a := &App{
		bot:     botService,
		handler: handler,
		logger:  logger,
	}
	if cfg.MetricsAddr != "" {
		metrics.MustRegister()
		a.metrics = metrics.NewServer(cfg.MetricsAddr, logger)
	}
	return a, nil
}

// Run blocks until ctx is cancelled or a component fails.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.bot.Start(ctx, a.handler.HandleUpdate)
	})
	if a.metrics != nil {
		g.Go(func() error {
			return a.metrics.Run(ctx)
		})
	}

	a.logger.Info().Msg("bot is running")
	return g.Wait()
}
