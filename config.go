package learnpath

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the runtime configuration shared by the binaries
type Config struct {
	Port              string        `mapstructure:"port"`
	DBPath            string        `mapstructure:"db_path"`
	SessionSecret     string        `mapstructure:"session_secret"`
	Provider          string        `mapstructure:"llm_provider"`
	Model             string        `mapstructure:"llm_model"`
	GoogleAPIKey      string        `mapstructure:"google_api_key"`
	GeminiBaseURL     string        `mapstructure:"gemini_base_url"`
	OpenAIAPIKey      string        `mapstructure:"openai_api_key"`
	OpenAIBaseURL     string        `mapstructure:"openai_base_url"`
	RedisAddr         string        `mapstructure:"redis_addr"`
	QuizTTL           time.Duration `mapstructure:"quiz_ttl"`
	CompletionTimeout time.Duration `mapstructure:"completion_timeout"`
	LogDir            string        `mapstructure:"log_dir"`
	Verbose           bool          `mapstructure:"verbose"`
}

// LoadConfig reads config.yaml from path if present, then applies environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}

	v.SetDefault("port", "8180")
	v.SetDefault("db_path", "./learnpath.db")
	v.SetDefault("session_secret", "change-me-session-secret")
	v.SetDefault("llm_provider", ProviderGemini)
	v.SetDefault("llm_model", "")
	v.SetDefault("google_api_key", "")
	v.SetDefault("gemini_base_url", "")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("openai_base_url", "")
	v.SetDefault("redis_addr", "")
	v.SetDefault("quiz_ttl", 2*time.Hour)
	v.SetDefault("completion_timeout", time.Duration(0))
	v.SetDefault("log_dir", "log")
	v.SetDefault("verbose", false)

	// Plain variable names, as used by the deployment scripts
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, env := range map[string]string{
		"port":               "PORT",
		"db_path":            "DB_PATH",
		"session_secret":     "SESSION_SECRET",
		"llm_provider":       "LLM_PROVIDER",
		"llm_model":          "LLM_MODEL",
		"google_api_key":     "GOOGLE_API_KEY",
		"gemini_base_url":    "GEMINI_BASE_URL",
		"openai_api_key":     "OPENAI_API_KEY",
		"openai_base_url":    "OPENAI_BASE_URL",
		"redis_addr":         "REDIS_ADDR",
		"quiz_ttl":           "QUIZ_TTL",
		"completion_timeout": "COMPLETION_TIMEOUT",
		"log_dir":            "LOG_DIR",
		"verbose":            "VERBOSE",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// APIKey returns the key for the configured provider
func (c *Config) APIKey() string {
	if strings.ToLower(c.Provider) == ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.GoogleAPIKey
}

// Validate checks the settings every binary needs to reach the model
func (c *Config) Validate() error {
	switch strings.ToLower(c.Provider) {
	case ProviderGemini:
		if c.GoogleAPIKey == "" {
			return errors.New("GOOGLE_API_KEY environment variable is required for the gemini provider")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return errors.New("OPENAI_API_KEY environment variable is required for the openai provider")
		}
	default:
		return fmt.Errorf("unknown llm provider: %s", c.Provider)
	}
	return nil
}
