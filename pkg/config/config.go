package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	// API settings
	APIHost string `mapstructure:"api_host"`
	APIPort int    `mapstructure:"api_port"`

	// Optional SSL settings
	SSLCert string `mapstructure:"ssl_cert"`
	SSLKey  string `mapstructure:"ssl_key"`

	// Optional CORS settings
	CORSOrigins []string `mapstructure:"cors_origins"`

	// SQLite database file, created on first start
	DBPath string `mapstructure:"db_path"`

	// Completion provider (any OpenAI-compatible endpoint)
	LLMAPIKey    string        `mapstructure:"llm_api_key"`
	LLMModel     string        `mapstructure:"llm_model"`
	LLMBaseURL   string        `mapstructure:"llm_base_url"`
	LLMTimeout   time.Duration `mapstructure:"llm_timeout"`
	SystemPrompt string        `mapstructure:"system_prompt"`

	// Session settings
	SessionSecret string        `mapstructure:"session_secret"`
	SessionCookie string        `mapstructure:"session_cookie"`
	SessionMaxAge time.Duration `mapstructure:"session_max_age"`
	SecureCookies bool          `mapstructure:"secure_cookies"`

	// Password digest settings
	PasswordHasher string `mapstructure:"password_hasher"` // "sha256" or "bcrypt"
	BcryptCost     int    `mapstructure:"bcrypt_cost"`

	// Optional logging settings
	LogFile   string `mapstructure:"log_file"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"` // "text" or "json"

	SwaggerEnabled bool `mapstructure:"swagger_enabled"`

	ConfigPath string
}

const (
	EnvPrefix             = "THERABOT"
	DefaultAPIHost        = "127.0.0.1"
	DefaultAPIPort        = 5000
	DefaultDBPath         = "therabot.db"
	DefaultLLMModel       = "llama-3.1-8b-instant"
	DefaultLLMBaseURL     = "https://api.groq.com/openai/v1"
	DefaultSessionCookie  = "therabot_session"
	DefaultPasswordHasher = "sha256"
	DefaultBcryptCost     = 10
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
)

// Load reads configuration from an optional YAML file, a .env file in the
// working directory and THERABOT_* environment variables, in increasing
// order of precedence.
func Load(configPath string) (*Config, error) {
	// .env is optional; existing environment variables win over it
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("api_host", DefaultAPIHost)
	v.SetDefault("api_port", DefaultAPIPort)
	v.SetDefault("ssl_cert", "")
	v.SetDefault("ssl_key", "")
	v.SetDefault("cors_origins", []string{})
	v.SetDefault("db_path", DefaultDBPath)
	v.SetDefault("llm_api_key", "")
	v.SetDefault("llm_model", DefaultLLMModel)
	v.SetDefault("llm_base_url", DefaultLLMBaseURL)
	v.SetDefault("llm_timeout", time.Duration(0))
	v.SetDefault("system_prompt", "")
	v.SetDefault("session_secret", "")
	v.SetDefault("session_cookie", DefaultSessionCookie)
	v.SetDefault("session_max_age", time.Duration(0))
	v.SetDefault("secure_cookies", false)
	v.SetDefault("password_hasher", DefaultPasswordHasher)
	v.SetDefault("bcrypt_cost", DefaultBcryptCost)
	v.SetDefault("log_file", "")
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_format", DefaultLogFormat)
	v.SetDefault("swagger_enabled", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Variable names understood by earlier deployments
	_ = v.BindEnv("llm_api_key", EnvPrefix+"_LLM_API_KEY", "GROQ_API_KEY")
	_ = v.BindEnv("llm_model", EnvPrefix+"_LLM_MODEL", "MODEL_NAME")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.ConfigPath = configPath

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.APIPort < 1 || c.APIPort > 65535 {
		return fmt.Errorf("api_port must be between 1 and 65535")
	}

	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}

	if c.LLMModel == "" {
		return fmt.Errorf("llm_model is required")
	}

	if c.LLMTimeout < 0 {
		return fmt.Errorf("llm_timeout must not be negative")
	}

	if c.SessionMaxAge < 0 {
		return fmt.Errorf("session_max_age must not be negative")
	}

	if c.SessionCookie == "" {
		return fmt.Errorf("session_cookie is required")
	}

	switch c.PasswordHasher {
	case "sha256":
	case "bcrypt":
		if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
			return fmt.Errorf("bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
		}
	default:
		return fmt.Errorf("password_hasher must be 'sha256' or 'bcrypt'")
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("log_format must be 'text' or 'json'")
	}

	// Validate SSL config if provided
	if c.SSLCert != "" || c.SSLKey != "" {
		if c.SSLCert == "" || c.SSLKey == "" {
			return fmt.Errorf("both ssl_cert and ssl_key must be provided")
		}
		if _, err := os.Stat(c.SSLCert); os.IsNotExist(err) {
			return fmt.Errorf("ssl_cert file does not exist: %s", c.SSLCert)
		}
		if _, err := os.Stat(c.SSLKey); os.IsNotExist(err) {
			return fmt.Errorf("ssl_key file does not exist: %s", c.SSLKey)
		}
	}

	return nil
}

func (c *Config) IsDevMode() bool {
	return os.Getenv(EnvPrefix+"_DEV_MODE") == "1"
}

// Addr returns the host:port the HTTP server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.APIHost, c.APIPort)
}
