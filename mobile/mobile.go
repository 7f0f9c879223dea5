package mobile

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"bgrelay/internal/app"
	"bgrelay/internal/config"
	"bgrelay/internal/logging"
)

type runner interface {
	Run(ctx context.Context) error
}

var newApp = func(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (runner, error) {
	return app.New(ctx, cfg, logger)
}

// BotControl starts and stops the relay from an embedding host app.
type BotControl struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	runID  int
}

func NewBotControl() *BotControl {
	return &BotControl{}
}

func (bc *BotControl) StartBot(token string, apiKey string, tempDir string) string {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	if bc.cancel != nil {
		return "Bot already started"
	}

	cfg, err := embeddedConfig(token, apiKey, tempDir)
	if err != nil {
		return fmt.Sprintf("Invalid configuration: %v", err)
	}
	logger := logging.New(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		cancel()
		return fmt.Sprintf("Error creating bot: %v", err)
	}

	bc.cancel = cancel
	bc.runID++
	runID := bc.runID

	go func() {
		logger.Info().Msg("bot goroutine started")
		err := a.Run(ctx)
		if err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("bot stopped with error")
		}
		cancel()

		bc.mu.Lock()
		if bc.runID == runID {
			bc.cancel = nil
		}
		bc.mu.Unlock()
	}()

	return "Bot started successfully"
}

func (bc *BotControl) StopBot() {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	if bc.cancel != nil {
		bc.cancel()
		bc.cancel = nil
	}
}

// Embedded hosts have no metrics listener and log JSON for the host's collector.
func embeddedConfig(token, apiKey, tempDir string) (*config.Config, error) {
	cfg := config.Default()
	cfg.BotToken = token
	cfg.RemoveBgKey = apiKey
	if tempDir != "" {
		cfg.TempDir = tempDir
	}
	cfg.MetricsAddr = ""
	cfg.Log.Format = "json"

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
