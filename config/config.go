package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// EnvPath names the environment variable holding the config file path.
const EnvPath = "DESKGATE_CONFIG"

const defaultPath = "deskgate.toml"

type Config struct {
	DatabasePath      string
	EmptyCheckTable   string
	LogLevel          string
	WindowWidth       float32
	WindowHeight      float32
	MinPasswordLength int
}

// fileConfig mirrors the keys accepted in deskgate.toml.
type fileConfig struct {
	DatabasePath      string  `toml:"database_path"`
	EmptyCheckTable   string  `toml:"empty_check_table"`
	LogLevel          string  `toml:"log_level"`
	WindowWidth       float64 `toml:"window_width"`
	WindowHeight      float64 `toml:"window_height"`
	MinPasswordLength int     `toml:"min_password_length"`
}

func Default() Config {
	return Config{
		DatabasePath:      "deskgate.db",
		EmptyCheckTable:   "users",
		LogLevel:          "info",
		WindowWidth:       500,
		WindowHeight:      420,
		MinPasswordLength: 12,
	}
}

// Path returns the config file location, honouring DESKGATE_CONFIG.
func Path() string {
	if v := strings.TrimSpace(os.Getenv(EnvPath)); v != "" {
		return v
	}
	return defaultPath
}

// Load overlays the file at path onto Default. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}

	if meta.IsDefined("database_path") {
		cfg.DatabasePath = strings.TrimSpace(raw.DatabasePath)
	}
	if meta.IsDefined("empty_check_table") {
		cfg.EmptyCheckTable = strings.TrimSpace(raw.EmptyCheckTable)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(raw.LogLevel))
	}
	if meta.IsDefined("window_width") {
		cfg.WindowWidth = float32(raw.WindowWidth)
	}
	if meta.IsDefined("window_height") {
		cfg.WindowHeight = float32(raw.WindowHeight)
	}
	if meta.IsDefined("min_password_length") {
		cfg.MinPasswordLength = raw.MinPasswordLength
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.DatabasePath == "" {
		return errors.New("database_path is required")
	}
	if c.EmptyCheckTable == "" {
		return errors.New("empty_check_table is required")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log_level %q", c.LogLevel)
	}
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		return errors.New("window size must be positive")
	}
	if c.MinPasswordLength < 8 {
		return errors.New("min_password_length must be at least 8")
	}
	return nil
}
