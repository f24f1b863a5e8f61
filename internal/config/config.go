package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"
)

type Config struct {
	Port string

	// Source document
	DocumentPath    string
	MaxPagesPerUnit int

	// Anthropic
	AnthropicAPIKey string
	AnthropicModel  string
	MaxTokens       int
	Temperature     float64
	RequestTimeout  time.Duration

	// Service auth (optional; open when unset)
	APIKey string

	// Sessions
	SessionTTL time.Duration

	// Debug surfaces technical error detail to clients and enables
	// payload-shape logging. Off by default so internals do not leak.
	Debug bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		DocumentPath:    os.Getenv("DOCUMENT_PATH"),
		MaxPagesPerUnit: envInt("MAX_PAGES_PER_UNIT", 100),

		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  envOr("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
		MaxTokens:       envInt("MAX_TOKENS", 4000),
		Temperature:     envFloat("TEMPERATURE", 0.3),
		RequestTimeout:  envDuration("REQUEST_TIMEOUT", 120*time.Second),

		APIKey: os.Getenv("DOCCHAT_API_KEY"),

		SessionTTL: envDuration("SESSION_TTL", 1*time.Hour),

		Debug: envBool("DEBUG", false),
	}

	if cfg.MaxPagesPerUnit <= 0 {
		cfg.MaxPagesPerUnit = 100
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4000
	}
	if cfg.Temperature < 0 {
		cfg.Temperature = 0.3
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 120 * time.Second
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 1 * time.Hour
	}

	return cfg
}

// Validate checks the fatal configuration preconditions. The document must
// exist up front; there is no fallback document. The Anthropic key is not
// checked here because it may still arrive via the interactive prompt.
func (c Config) Validate() error {
	if c.DocumentPath == "" {
		return fmt.Errorf("DOCUMENT_PATH is required")
	}
	if _, err := os.Stat(c.DocumentPath); err != nil {
		return fmt.Errorf("document not found at %s: %w", c.DocumentPath, err)
	}
	return nil
}

// PromptAPIKey reads the Anthropic API key from the terminal without echo.
// Used when ANTHROPIC_API_KEY is unset; a non-interactive stdin is an error
// because no other source remains.
func PromptAPIKey() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("ANTHROPIC_API_KEY is not set and stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, "Anthropic API key: ")
	key, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read api key: %w", err)
	}
	k := strings.TrimSpace(string(key))
	if k == "" {
		return "", fmt.Errorf("empty api key")
	}
	return k, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
