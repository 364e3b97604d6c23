// Package config reads the relay's settings from config.env and the process
// environment once at startup.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"emam3/chat-relay/constants"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

// EnvFile is loaded before reading the environment. Variables already set in the
// process environment take precedence.
const EnvFile = "config.env"

type Config struct {
	Port      string
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int

	RequestTimeout time.Duration
	StaticDir      string

	// SystemPrompt is sent verbatim as the first turn of every conversation.
	SystemPrompt string
	// SystemPromptFile is where SystemPrompt was read from, if anywhere.
	SystemPromptFile string

	// ConnectRate limits WebSocket upgrades per client address. Zero, the
	// default, disables it.
	ConnectRate  rate.Limit
	ConnectBurst int

	LogLevel  string
	LogFormat string
}

func (c Config) Addr() string {
	return ":" + c.Port
}

// Load reads files into the environment and returns the parsed Config.
// Missing files are skipped.
func Load(files ...string) (Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		Port:         getenv("PORT", constants.DefaultPort),
		APIKey:       strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		BaseURL:      getenv("OPENAI_BASE_URL", constants.OpenAIEndpoint),
		Model:        getenv("OPENAI_MODEL", constants.DefaultModel),
		StaticDir:    getenv("STATIC_DIR", "."),
		SystemPrompt: constants.SystemPrompt,
		LogLevel:     strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogFormat:    strings.ToLower(getenv("LOG_FORMAT", "text")),
	}

	var err error
	if cfg.MaxTokens, err = intEnv("MAX_TOKENS", constants.MaxTokens); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = durationEnv("REQUEST_TIMEOUT", constants.RequestTimeout); err != nil {
		return Config{}, err
	}
	connectRate, err := floatEnv("CONNECT_RATE", 0)
	if err != nil {
		return Config{}, err
	}
	cfg.ConnectRate = rate.Limit(connectRate)
	if cfg.ConnectBurst, err = intEnv("CONNECT_BURST", 10); err != nil {
		return Config{}, err
	}

	if path := os.Getenv("SYSTEM_PROMPT_FILE"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read SYSTEM_PROMPT_FILE: %w", err)
		}
		cfg.SystemPrompt = string(b)
		cfg.SystemPromptFile = path
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("OPENAI_API_KEY is required")
	}
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid PORT %q", c.Port)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("MAX_TOKENS must be positive, got %d", c.MaxTokens)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.ConnectRate < 0 || c.ConnectBurst < 0 {
		return errors.New("CONNECT_RATE and CONNECT_BURST must not be negative")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q", c.LogFormat)
	}
	return nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func floatEnv(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
