package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	DefaultModel         = "gpt-4o-mini"
	DefaultMaxTokens     = 1024
	DefaultHost          = "0.0.0.0"
	DefaultPort          = 8090
	DefaultLookbackHours = 24
	DefaultPollSchedule  = "@every 15m"
)

type Config struct {
	Slack  SlackConfig  `json:"slack"`
	OpenAI OpenAIConfig `json:"openai"`
	Server ServerConfig `json:"server"`
	Poll   PollConfig   `json:"poll"`
	Alerts AlertsConfig `json:"alerts"`
}

type SlackConfig struct {
	Token         string   `json:"token"`
	Channels      []string `json:"channels"`
	APIURL        string   `json:"apiUrl,omitempty"`
	LookbackHours int      `json:"lookbackHours"`
}

type OpenAIConfig struct {
	APIKey    string `json:"apiKey"`
	BaseURL   string `json:"baseUrl,omitempty"`
	Model     string `json:"model"`
	MaxTokens int    `json:"maxTokens"`
}

type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type PollConfig struct {
	Enabled  bool   `json:"enabled"`
	Schedule string `json:"schedule,omitempty"`
}

type AlertsConfig struct {
	Telegram TelegramAlertConfig `json:"telegram"`
}

type TelegramAlertConfig struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token"`
	ChatID  int64  `json:"chatId"`
}

func DefaultConfig() *Config {
	return &Config{
		Slack: SlackConfig{
			LookbackHours: DefaultLookbackHours,
		},
		OpenAI: OpenAIConfig{
			Model:     DefaultModel,
			MaxTokens: DefaultMaxTokens,
		},
		Server: ServerConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Poll: PollConfig{
			Enabled:  false,
			Schedule: DefaultPollSchedule,
		},
	}
}

func ConfigDir() string {
	home := os.Getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return filepath.Join(home, ".vibecheck")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if token := os.Getenv("VIBECHECK_SLACK_TOKEN"); token != "" {
		cfg.Slack.Token = token
	}
	if token := os.Getenv("SLACK_BOT_TOKEN"); token != "" && cfg.Slack.Token == "" {
		cfg.Slack.Token = token
	}
	if channels := os.Getenv("SLACK_CHANNEL_IDS"); channels != "" {
		cfg.Slack.Channels = SplitChannels(channels)
	}
	if url := os.Getenv("VIBECHECK_SLACK_API_URL"); url != "" {
		cfg.Slack.APIURL = url
	}
	if key := os.Getenv("VIBECHECK_OPENAI_API_KEY"); key != "" {
		cfg.OpenAI.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = key
	}
	if url := os.Getenv("VIBECHECK_OPENAI_BASE_URL"); url != "" {
		cfg.OpenAI.BaseURL = url
	}
	if model := os.Getenv("VIBECHECK_MODEL"); model != "" {
		cfg.OpenAI.Model = model
	}
	if port := os.Getenv("VIBECHECK_PORT"); port != "" {
		if parsed, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = parsed
		}
	}
	if enabled := os.Getenv("VIBECHECK_POLL_ENABLED"); enabled != "" {
		if parsed, err := strconv.ParseBool(enabled); err == nil {
			cfg.Poll.Enabled = parsed
		}
	}
	if schedule := os.Getenv("VIBECHECK_POLL_SCHEDULE"); schedule != "" {
		cfg.Poll.Schedule = schedule
	}
	if token := os.Getenv("VIBECHECK_TELEGRAM_TOKEN"); token != "" {
		cfg.Alerts.Telegram.Token = token
	}
	if chatID := os.Getenv("VIBECHECK_TELEGRAM_CHAT_ID"); chatID != "" {
		if parsed, err := strconv.ParseInt(chatID, 10, 64); err == nil {
			cfg.Alerts.Telegram.ChatID = parsed
		}
	}

	if cfg.Slack.LookbackHours <= 0 {
		cfg.Slack.LookbackHours = DefaultLookbackHours
	}
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = DefaultModel
	}
	if cfg.OpenAI.MaxTokens <= 0 {
		cfg.OpenAI.MaxTokens = DefaultMaxTokens
	}
	if cfg.Poll.Schedule == "" {
		cfg.Poll.Schedule = DefaultPollSchedule
	}

	return cfg, nil
}

// SplitChannels parses the comma-separated channel list form used by
// SLACK_CHANNEL_IDS, dropping empty entries.
func SplitChannels(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports the first missing credential or an empty channel list.
// Called when the pipeline service is built, not at load time, so that
// commands like `vibecheck status` still work on a bare config.
func (c *Config) Validate() error {
	if c.Slack.Token == "" {
		return fmt.Errorf("slack token not set (set VIBECHECK_SLACK_TOKEN or SLACK_BOT_TOKEN)")
	}
	if len(c.Slack.Channels) == 0 {
		return fmt.Errorf("no slack channels configured (set SLACK_CHANNEL_IDS)")
	}
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai api key not set (set OPENAI_API_KEY)")
	}
	return nil
}

func SaveConfig(cfg *Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(ConfigPath(), data, 0644)
}
