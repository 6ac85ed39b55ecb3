package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port          string   `mapstructure:"PORT"`
	Env           string   `mapstructure:"ENV"`
	DataDir       string   `mapstructure:"DATA_DIR"`
	SeedTemplates bool     `mapstructure:"SEED_TEMPLATES"`
	CORSOrigins   []string `mapstructure:"CORS_ORIGINS"`

	OpenAIAPIKey  string  `mapstructure:"OPENAI_API_KEY"`
	OpenAIModel   string  `mapstructure:"OPENAI_MODEL"`
	OpenAIBaseURL string  `mapstructure:"OPENAI_BASE_URL"`
	AITemperature float64 `mapstructure:"AI_TEMPERATURE"`
	AIMaxTokens   int     `mapstructure:"AI_MAX_TOKENS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8700")
	v.SetDefault("ENV", "development")
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("SEED_TEMPLATES", true)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("OPENAI_MODEL", "gpt-3.5-turbo")
	v.SetDefault("AI_TEMPERATURE", 0.7)
	v.SetDefault("AI_MAX_TOKENS", 1000)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATA_DIR")
	v.BindEnv("SEED_TEMPLATES")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("OPENAI_MODEL")
	v.BindEnv("OPENAI_BASE_URL")
	v.BindEnv("AI_TEMPERATURE")
	v.BindEnv("AI_MAX_TOKENS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to run. The OpenAI key is
// deliberately not required here: the note generator reports its own
// configuration error, and everything else works without it.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("DATA_DIR must not be empty")
	}
	if c.AITemperature < 0 || c.AITemperature > 2 {
		return fmt.Errorf("AI_TEMPERATURE must be between 0 and 2, got %v", c.AITemperature)
	}
	if c.AIMaxTokens <= 0 {
		return fmt.Errorf("AI_MAX_TOKENS must be positive, got %d", c.AIMaxTokens)
	}
	return nil
}
