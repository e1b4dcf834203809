package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

const (
	RelayLuffa    = "luffa"
	RelayTelegram = "telegram"

	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

type Config struct {
	// Relay
	RelayKind       string        `env:"RELAY_KIND" envDefault:"luffa"`
	LuffaSecret     string        `env:"LUFFA_SECRET"`
	LuffaReceiveURL string        `env:"LUFFA_RECEIVE_URL" envDefault:"https://apibot.luffa.im/robot/receive"`
	LuffaSendURL    string        `env:"LUFFA_SEND_URL" envDefault:"https://apibot.luffa.im/robot/sendGroup"`
	TelegramToken   string        `env:"TELEGRAM_BOT_TOKEN"`
	HTTPTimeout     time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`

	// Bot behaviour
	Mention      string        `env:"BOT_MENTION" envDefault:"@Tao_bot"`
	ReplyPrefix  string        `env:"REPLY_PREFIX" envDefault:"🤖 "`
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"1s"`

	// LLM settings
	LLMProvider      string        `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey     string        `env:"OPENAI_API_KEY" envDefault:"ollama"`
	OpenAIBaseURL    string        `env:"OPENAI_BASE_URL" envDefault:"http://localhost:11434/v1"`
	InterpretModel   string        `env:"INTERPRET_MODEL" envDefault:"qwen3:0.6b"`
	SummarizeModel   string        `env:"SUMMARIZE_MODEL" envDefault:"qwen3:1.7b"`
	YandexOAuthToken string        `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string        `env:"YANDEX_FOLDER_ID"`
	LLMTimeout       time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`

	// OpenRouter (optional)
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE"`

	// Storage
	HistoryBackend string `env:"HISTORY_BACKEND" envDefault:"file"`
	LogFilePath    string `env:"LOG_FILE_PATH" envDefault:"data/message_log.json"`
	SQLitePath     string `env:"SQLITE_PATH" envDefault:"data/messages.db"`

	// Ops
	MetricsAddr    string `env:"METRICS_ADDR"`
	ReportSchedule string `env:"REPORT_SCHEDULE"`
}

// Load parses the environment and checks relay/backend settings.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func New() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("%v", err)
	}
	return cfg
}

func (c *Config) Validate() error {
	switch c.RelayKind {
	case RelayLuffa:
		if c.LuffaSecret == "" {
			return fmt.Errorf("LUFFA_SECRET is required when RELAY_KIND=%s", RelayLuffa)
		}
	case RelayTelegram:
		if c.TelegramToken == "" {
			return fmt.Errorf("TELEGRAM_BOT_TOKEN is required when RELAY_KIND=%s", RelayTelegram)
		}
	default:
		return fmt.Errorf("unknown RELAY_KIND: %s", c.RelayKind)
	}
	switch c.HistoryBackend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("unknown HISTORY_BACKEND: %s", c.HistoryBackend)
	}
	switch strings.ToLower(c.LLMProvider) {
	case "openai", "yandex":
	default:
		return fmt.Errorf("unknown LLM_PROVIDER: %s", c.LLMProvider)
	}
	if c.Mention == "" {
		return fmt.Errorf("BOT_MENTION must not be empty")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive")
	}
	return nil
}
