package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Load builds the configuration from an optional YAML file (CONFIG_FILE)
// overlaid with environment variables. Environment values win.
func Load(logger zerolog.Logger) (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := readFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	cfg.BotToken = getEnv(logger, "BOT_TOKEN", cfg.BotToken, parseString)
	cfg.RemoveBgKey = getEnv(logger, "REMOVE_BG_KEY", cfg.RemoveBgKey, parseString)
	cfg.RemoveBgURL = getEnv(logger, "REMOVE_BG_URL", cfg.RemoveBgURL, parseString)
	cfg.RemoveBgSize = getEnv(logger, "REMOVE_BG_SIZE", cfg.RemoveBgSize, parseString)
	cfg.RequestTimeout = getEnv(logger, "REQUEST_TIMEOUT", cfg.RequestTimeout, parseDuration)
	cfg.TempDir = getEnv(logger, "TEMP_DIR", cfg.TempDir, parseString)
	cfg.MaxFileSize = getEnv(logger, "MAX_FILE_SIZE", cfg.MaxFileSize, parseInt)
	cfg.KeyCommandEnabled = getEnv(logger, "KEY_COMMAND_ENABLED", cfg.KeyCommandEnabled, strconv.ParseBool)
	cfg.Log.Level = getEnv(logger, "LOG_LEVEL", cfg.Log.Level, parseString)
	cfg.Log.Format = getEnv(logger, "LOG_FORMAT", cfg.Log.Format, parseString)

	// An explicitly empty METRICS_ADDR disables the listener.
	if v, ok := os.LookupEnv("METRICS_ADDR"); ok {
		cfg.MetricsAddr = strings.TrimSpace(v)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.BotToken == "" {
		return errors.New("BOT_TOKEN environment variable is required")
	}
	if c.RemoveBgKey == "" {
		return errors.New("REMOVE_BG_KEY environment variable is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max file size must be positive, got %d", c.MaxFileSize)
	}
	return nil
}

func readFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func getEnv[T any](logger zerolog.Logger, key string, defaultValue T, parser func(string) (T, error)) T {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultValue
	}

	parsed, err := parser(val)
	if err != nil {
		logger.Warn().Str("key", key).Str("value", val).Interface("default", defaultValue).
			Msg("invalid config value, using default")
		return defaultValue
	}

	return parsed
}

func parseString(val string) (string, error) {
	return val, nil
}

func parseInt(val string) (int64, error) {
	return strconv.ParseInt(val, 10, 64)
}

func parseDuration(val string) (time.Duration, error) {
	return time.ParseDuration(val)
}

func defaultTempDir() string {
	return filepath.Join(os.TempDir(), "bgrelay")
}
