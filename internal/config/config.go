package config

import "time"

const DefaultRemoveBgURL = "https://api.remove.bg/v1.0/removebg"

type Config struct {
	BotToken          string        `yaml:"bot_token"`
	RemoveBgKey       string        `yaml:"remove_bg_key"`
	RemoveBgURL       string        `yaml:"remove_bg_url"`
	RemoveBgSize      string        `yaml:"remove_bg_size"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	TempDir           string        `yaml:"temp_dir"`
	MaxFileSize       int64         `yaml:"max_file_size"`
	KeyCommandEnabled bool          `yaml:"key_command_enabled"`
	MetricsAddr       string        `yaml:"metrics_addr"`
	Log               LogConfig     `yaml:"log"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // trace|debug|info|warn|error
	Format string `yaml:"format"` // console|json
}

// Default returns the configuration used when nothing is overridden.
// Credentials are left empty.
func Default() Config {
	return Config{
		RemoveBgURL:       DefaultRemoveBgURL,
		RemoveBgSize:      "auto",
		RequestTimeout:    60 * time.Second,
		TempDir:           defaultTempDir(),
		MaxFileSize:       10 * 1024 * 1024,
		KeyCommandEnabled: true,
		MetricsAddr:       ":9090",
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
