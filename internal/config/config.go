package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"StockAdvisor/internal/model"
)

// Data and language-model provider names.
const (
	ProviderYFinance = "yfinance"
	ProviderYahoo    = "yahoo"
	ProviderMock     = "mock"

	LLMOpenAI = "openai"
	LLMGemini = "gemini"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Provider string        `yaml:"provider"`
		BaseURL  string        `yaml:"base_url"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"data_source"`
	LLM struct {
		Provider string        `yaml:"provider"`
		Model    string        `yaml:"model"`
		APIKey   string        `yaml:"api_key"`
		BaseURL  string        `yaml:"base_url"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"llm"`
	Defaults struct {
		Symbol1 string `yaml:"symbol1"`
		Symbol2 string `yaml:"symbol2"`
		Period  string `yaml:"period"`
	} `yaml:"defaults"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Output struct {
		ChartDir string `yaml:"chart_dir"`
	} `yaml:"output"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		ReportCron string `yaml:"report_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads .env, then the YAML file at path, then applies environment
// variable overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setFromEnv(&c.DataSource.Provider, "DATA_PROVIDER")
	setFromEnv(&c.LLM.Provider, "LLM_PROVIDER")
	setFromEnv(&c.LLM.Model, "LLM_MODEL")
	setFromEnv(&c.LLM.BaseURL, "LLM_BASE_URL")
	setFromEnv(&c.Proxy, "HTTPS_PROXY")
	setFromEnv(&c.Server.Addr, "LISTEN_ADDR")
	setFromEnv(&c.Log.Level, "LOG_LEVEL")
	setFromEnv(&c.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	setFromEnv(&c.Telegram.ChatID, "TELEGRAM_CHAT_ID")
	setFromEnv(&c.Schedule.ReportCron, "REPORT_CRON")
	setFromEnv(&c.Database.SQLitePath, "SQLITE_PATH")
	setFromEnv(&c.Output.ChartDir, "CHART_DIR")

	// The credential follows whichever provider is selected.
	if c.LLM.APIKey == "" {
		switch strings.ToLower(c.LLM.Provider) {
		case LLMGemini:
			c.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
		default:
			c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = ProviderYFinance
	}
	c.DataSource.Provider = strings.ToLower(c.DataSource.Provider)
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 30 * time.Second
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = LLMOpenAI
	}
	c.LLM.Provider = strings.ToLower(c.LLM.Provider)
	if c.LLM.Model == "" {
		switch c.LLM.Provider {
		case LLMGemini:
			c.LLM.Model = "gemini-2.0-flash"
		default:
			c.LLM.Model = "gpt-4"
		}
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 120 * time.Second
	}
	if c.Defaults.Symbol1 == "" {
		c.Defaults.Symbol1 = "AAPL"
	}
	if c.Defaults.Symbol2 == "" {
		c.Defaults.Symbol2 = "MSFT"
	}
	if c.Defaults.Period == "" {
		c.Defaults.Period = string(model.DefaultPeriod)
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8501"
	}
	if c.Output.ChartDir == "" {
		c.Output.ChartDir = "charts"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case ProviderYFinance, ProviderYahoo, ProviderMock:
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	switch c.LLM.Provider {
	case LLMOpenAI, LLMGemini:
	default:
		return fmt.Errorf("llm.provider %q is not supported", c.LLM.Provider)
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required (set %s)", c.APIKeyEnv())
	}
	if _, err := model.ParsePeriod(c.Defaults.Period); err != nil {
		return fmt.Errorf("defaults.period: %w", err)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// APIKeyEnv names the environment variable holding the selected LLM credential.
func (c *Config) APIKeyEnv() string {
	if c.LLM.Provider == LLMGemini {
		return "GEMINI_API_KEY"
	}
	return "OPENAI_API_KEY"
}

// TelegramEnabled reports whether report delivery to Telegram is configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
