// Package config loads the boardroom configuration from an optional YAML
// file, a .env file and the process environment, in that order.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EngineGemini = "gemini"
	EngineXAI    = "xai"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Relay    RelayConfig    `yaml:"relay"`
	Backend  BackendConfig  `yaml:"backend"`
	Playback PlaybackConfig `yaml:"playback"`
	Security SecurityConfig `yaml:"security"`
}

type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
	LogLevel  string `yaml:"log_level"`
	LogJSON   bool   `yaml:"log_json"`
}

// RelayConfig points the submission controller at its relay. An empty URL
// means the in-process relay is used.
type RelayConfig struct {
	URL     string        `yaml:"url"`
	Action  string        `yaml:"action"`
	Timeout time.Duration `yaml:"timeout"`
}

type BackendConfig struct {
	Engine     string         `yaml:"engine"`
	MaxRetries int            `yaml:"max_retries"`
	Gemini     ProviderConfig `yaml:"gemini"`
	XAI        ProviderConfig `yaml:"xai"`
}

type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type PlaybackConfig struct {
	TypingDelay time.Duration `yaml:"typing_delay"`
	PauseDelay  time.Duration `yaml:"pause_delay"`
}

type SecurityConfig struct {
	NonceSecret   string        `yaml:"nonce_secret"`
	NonceLifetime time.Duration `yaml:"nonce_lifetime"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:      ":3000",
			StaticDir: "./static",
			LogLevel:  "info",
		},
		Relay: RelayConfig{
			Action:  "dpa_process_pitch",
			Timeout: 120 * time.Second,
		},
		Backend: BackendConfig{
			Engine:     EngineGemini,
			MaxRetries: 3,
			Gemini:     ProviderConfig{Model: "gemini-2.0-flash"},
			XAI:        ProviderConfig{Model: "grok-3-mini", BaseURL: "https://api.x.ai/v1"},
		},
		Playback: PlaybackConfig{
			TypingDelay: 3 * time.Second,
			PauseDelay:  2 * time.Second,
		},
		Security: SecurityConfig{
			NonceLifetime: 24 * time.Hour,
		},
	}
}

// Load reads path (if non-empty), then .env, then the environment, and validates.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("config: open %q: %w", path, err)
		}
		defer f.Close()
		if err := decode(f, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %q: %w", path, err)
		}
	}

	// A missing .env is normal outside development.
	_ = godotenv.Load()
	applyEnv(cfg, os.Getenv)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromReader decodes YAML from r over the defaults and validates it.
// The environment is not consulted.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := decode(r, cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: decode yaml: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	if v := getenv("PORT"); v != "" {
		cfg.Server.Addr = ":" + v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.Server.LogLevel = v
	}
	if v := getenv("LOG_JSON"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Server.LogJSON = b
		}
	}
	if v := getenv("RELAY_URL"); v != "" {
		cfg.Relay.URL = v
	}
	if v := getenv("DPA_ACTIVE_ENGINE"); v != "" {
		cfg.Backend.Engine = v
	}
	if v := getenv("GEMINI_API_KEY"); v != "" {
		cfg.Backend.Gemini.APIKey = v
	}
	if v := getenv("XAI_API_KEY"); v != "" {
		cfg.Backend.XAI.APIKey = v
	}
	if v := getenv("DPA_APP_SECRET"); v != "" {
		cfg.Security.NonceSecret = v
	}
}

// Validate reports every problem in cfg at once.
func Validate(cfg *Config) error {
	var errs []error

	switch cfg.Backend.Engine {
	case EngineGemini, EngineXAI:
	default:
		errs = append(errs, fmt.Errorf("backend.engine %q is invalid; valid values: gemini, xai", cfg.Backend.Engine))
	}
	if cfg.Backend.MaxRetries < 1 || cfg.Backend.MaxRetries > 6 {
		errs = append(errs, fmt.Errorf("backend.max_retries %d is out of range [1, 6]", cfg.Backend.MaxRetries))
	}
	if cfg.Relay.Action == "" {
		errs = append(errs, errors.New("relay.action is required"))
	}
	if cfg.Relay.Timeout < 5*time.Second {
		errs = append(errs, fmt.Errorf("relay.timeout %s is below 5s", cfg.Relay.Timeout))
	}
	if cfg.Playback.TypingDelay < 0 || cfg.Playback.PauseDelay < 0 {
		errs = append(errs, errors.New("playback delays must not be negative"))
	}
	if cfg.Security.NonceLifetime <= 0 {
		errs = append(errs, errors.New("security.nonce_lifetime must be positive"))
	}

	return errors.Join(errs...)
}

// ActiveProvider returns the settings of the selected engine.
func (c *Config) ActiveProvider() ProviderConfig {
	if c.Backend.Engine == EngineXAI {
		return c.Backend.XAI
	}
	return c.Backend.Gemini
}
