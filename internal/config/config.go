package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/riskcsv-cli/internal/ai"
	"github.com/KaramelBytes/riskcsv-cli/internal/utils"
)

// Global configuration structure.
type Global struct {
	DefaultEngine string `mapstructure:"default_engine" yaml:"default_engine"`

	WatsonBaseURL string `mapstructure:"watson_base_url" yaml:"watson_base_url"`
	WatsonAPIKey  string `mapstructure:"watson_api_key" yaml:"watson_api_key"`
	GPTBaseURL    string `mapstructure:"gpt_base_url" yaml:"gpt_base_url"`
	GPTAPIKey     string `mapstructure:"gpt_api_key" yaml:"gpt_api_key"`

	// HTTP/Retry configuration
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`

	// Local simulation
	SimulationDelayMs int `mapstructure:"simulation_delay_ms" yaml:"simulation_delay_ms"`

	LogLevel    string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat   string `mapstructure:"log_format" yaml:"log_format"`
	MetricsFile string `mapstructure:"metrics_file" yaml:"metrics_file"`
}

// Endpoint returns the base URL and API key configured for an HTTP engine.
func (c *Global) Endpoint(engine string) (baseURL, apiKey string) {
	switch engine {
	case "watson":
		return c.WatsonBaseURL, c.WatsonAPIKey
	case "gpt":
		return c.GPTBaseURL, c.GPTAPIKey
	}
	return "", ""
}

func (c *Global) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

func (c *Global) RetryBaseDelay() time.Duration {
	return time.Duration(c.RetryBaseDelayMs) * time.Millisecond
}

func (c *Global) RetryMaxDelay() time.Duration {
	return time.Duration(c.RetryMaxDelayMs) * time.Millisecond
}

func (c *Global) SimulationDelay() time.Duration {
	return time.Duration(c.SimulationDelayMs) * time.Millisecond
}

// Dir returns ~/.riskcsv.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".riskcsv"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.riskcsv/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	// api keys live here
	if err := utils.SafeWriteFileMode(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env (including a .env in the working directory) > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return load(cfgFile, true)
}

// LoadFile loads the config file over defaults, ignoring the environment.
// Use it before Save so secrets from env or .env are not written to disk.
func LoadFile(cfgFile string) (*Global, error) {
	return load(cfgFile, false)
}

func load(cfgFile string, withEnv bool) (*Global, error) {
	v := viper.New()
	if withEnv {
		v.SetEnvPrefix("RISKCSV")
		v.AutomaticEnv()
	}

	v.SetDefault("default_engine", "local")
	v.SetDefault("watson_base_url", "")
	v.SetDefault("watson_api_key", "")
	v.SetDefault("gpt_base_url", "")
	v.SetDefault("gpt_api_key", "")
	// HTTP/retry defaults
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("retry_max_attempts", 3)
	v.SetDefault("retry_base_delay_ms", 500)
	v.SetDefault("retry_max_delay_ms", 4000)
	v.SetDefault("simulation_delay_ms", ai.DefaultSimulationDelay.Milliseconds())
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("metrics_file", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
