package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "NEWSRELAY_CONFIG"
	logLevelEnv       = "LOG_LEVEL"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHANNEL_ID"
	translatorKeyEnv  = "GROQ_API_KEY"
	seenDSNEnv        = "DATABASE_DSN"
	seenFileEnv       = "SEEN_FILE"
)

// Duration parses YAML scalars like "3m" or "45s" into time.Duration.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std converts back to the standard library type.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds every recognized option. Loaded once at process start and
// read-only thereafter.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Sources    []SourceConfig   `yaml:"sources"`
	Seen       SeenConfig       `yaml:"seen"`
	Filter     FilterConfig     `yaml:"filter"`
	Translator TranslatorConfig `yaml:"translator"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Delivery   DeliveryConfig   `yaml:"delivery"`
	Control    ControlConfig    `yaml:"control"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SchedulerConfig defines the fixed cycle interval plus optional jitter.
type SchedulerConfig struct {
	Interval Duration `yaml:"interval"`
	Jitter   Duration `yaml:"jitter"`
}

// SourceConfig is the static per-source descriptor; read-only after load.
type SourceConfig struct {
	ID      string            `yaml:"id"`
	Kind    string            `yaml:"kind"`
	URL     string            `yaml:"url"`
	Weight  float64           `yaml:"weight"`
	Timeout Duration          `yaml:"timeout"`
	Options map[string]string `yaml:"options"`
}

// SeenConfig bounds and persists the dedup ledger. When DSN is set the
// snapshot lives in Postgres, otherwise in the JSON file.
type SeenConfig struct {
	Capacity int    `yaml:"capacity"`
	File     string `yaml:"file"`
	DSN      string `yaml:"dsn"`
}

// FilterConfig extends the built-in keyword sets per category.
type FilterConfig struct {
	ExtraKeywords map[string][]string `yaml:"extraKeywords"`
}

// TranslatorConfig wires the OpenAI-compatible translation endpoint.
type TranslatorConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Endpoint   string `yaml:"endpoint"`
	Model      string `yaml:"model"`
	APIKey     string `yaml:"apiKey"`
	SourceLang string `yaml:"sourceLang"`
	TargetLang string `yaml:"targetLang"`
}

// TelegramConfig wires the output channel.
type TelegramConfig struct {
	BotToken   string `yaml:"botToken"`
	ChatID     string `yaml:"chatId"`
	ChannelTag string `yaml:"channelTag"`
}

// DeliveryConfig governs the shared rate limiter and retry policy.
type DeliveryConfig struct {
	MinInterval    Duration `yaml:"minInterval"`
	MaxAttempts    int      `yaml:"maxAttempts"`
	BackoffBase    Duration `yaml:"backoffBase"`
	BackoffCeiling Duration `yaml:"backoffCeiling"`
	MaxPerCycle    int      `yaml:"maxPerCycle"`
}

// ControlConfig exposes the operational HTTP surface; empty addr disables it.
type ControlConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads the optional .env file, then YAML configuration (if present),
// and applies environment overrides on top of the defaults.
func Load() Config {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			cfg = defaultConfig()
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Sources) == 0 {
		cfg.Sources = defaultConfig().Sources
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv(translatorKeyEnv); v != "" {
		c.Translator.APIKey = v
	}
	if v := os.Getenv(seenDSNEnv); v != "" {
		c.Seen.DSN = v
	}
	if v := os.Getenv(seenFileEnv); v != "" {
		c.Seen.File = v
	}
}

// Validate reports configuration the relay cannot run with.
func (c Config) Validate() error {
	var errs []error

	if c.Telegram.BotToken == "" {
		errs = append(errs, errors.New("telegram bot token is not configured"))
	}
	if c.Telegram.ChatID == "" {
		errs = append(errs, errors.New("telegram chat id is not configured"))
	}
	if c.Scheduler.Interval.Std() <= 0 {
		errs = append(errs, errors.New("scheduler interval must be positive"))
	}
	if c.Delivery.MinInterval.Std() <= 0 {
		errs = append(errs, errors.New("delivery minInterval must be positive"))
	}
	if c.Delivery.MaxAttempts <= 0 {
		errs = append(errs, errors.New("delivery maxAttempts must be positive"))
	}
	if c.Seen.Capacity <= 0 {
		errs = append(errs, errors.New("seen capacity must be positive"))
	}
	for _, src := range c.Sources {
		if src.ID == "" || src.URL == "" {
			errs = append(errs, fmt.Errorf("source %q needs both id and url", src.ID))
		}
	}

	return errors.Join(errs...)
}

func defaultConfig() Config {
	return Config{
		Logging:   LoggingConfig{Level: "info"},
		Scheduler: SchedulerConfig{Interval: Duration(3 * time.Minute), Jitter: Duration(15 * time.Second)},
		Sources: []SourceConfig{
			{
				ID:      "cointelegraph",
				Kind:    "rss",
				URL:     "https://cointelegraph.com/rss",
				Weight:  1.0,
				Timeout: Duration(15 * time.Second),
			},
			{
				ID:      "coindesk",
				Kind:    "rss",
				URL:     "https://www.coindesk.com/arc/outboundfeeds/rss/",
				Weight:  1.0,
				Timeout: Duration(15 * time.Second),
			},
		},
		Seen: SeenConfig{Capacity: 3000, File: "seen_articles.json"},
		Translator: TranslatorConfig{
			Enabled:    true,
			Endpoint:   "https://api.groq.com/openai/v1/chat/completions",
			Model:      "llama-3.3-70b-versatile",
			SourceLang: "en",
			TargetLang: "ar",
		},
		Delivery: DeliveryConfig{
			MinInterval:    Duration(6 * time.Second),
			MaxAttempts:    3,
			BackoffBase:    Duration(2 * time.Second),
			BackoffCeiling: Duration(30 * time.Second),
			MaxPerCycle:    8,
		},
		Control: ControlConfig{Addr: ""},
	}
}
