package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

const FileName = "flashseed.config.json"

type Config struct {
	Version  string   `json:"version" mapstructure:"version"`
	Database Database `json:"database" mapstructure:"database"`
	Seed     Seed     `json:"seed" mapstructure:"seed"`
}

type Database struct {
	Provider string   `json:"provider" mapstructure:"provider"`
	URLEnv   string   `json:"url_env" mapstructure:"url_env"`
	Schemas  []string `json:"schemas,omitempty" mapstructure:"schemas"` // PostgreSQL only, empty means public
}

type Seed struct {
	Rounds            int      `json:"rounds" mapstructure:"rounds"`
	AlwaysDescend     bool     `json:"always_descend" mapstructure:"always_descend"`
	MaxUniqueAttempts int      `json:"max_unique_attempts" mapstructure:"max_unique_attempts"`
	Exclude           []string `json:"exclude,omitempty" mapstructure:"exclude"`
	Truncate          bool     `json:"truncate,omitempty" mapstructure:"truncate"`
	DryRun            bool     `json:"dry_run,omitempty" mapstructure:"dry_run"`
}

var supportedProviders = []string{"postgresql", "postgres", "mysql", "sqlite", "sqlite3"}

func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		Database: Database{
			Provider: "postgresql",
			URLEnv:   "DATABASE_URL",
		},
		Seed: Seed{
			Rounds:            1,
			AlwaysDescend:     true,
			MaxUniqueAttempts: 1000,
		},
	}
}

// Load reads the configuration viper has collected from the config file,
// environment and bound flags.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Set defaults
	if cfg.Version == "" {
		cfg.Version = "1"
	}
	if cfg.Database.Provider == "" {
		cfg.Database.Provider = "postgresql"
	}
	if cfg.Database.URLEnv == "" {
		cfg.Database.URLEnv = "DATABASE_URL"
	}
	if cfg.Seed.Rounds == 0 {
		cfg.Seed.Rounds = 1
	}
	if cfg.Seed.MaxUniqueAttempts == 0 {
		cfg.Seed.MaxUniqueAttempts = 1000
	}
	if !v.IsSet("seed.always_descend") {
		cfg.Seed.AlwaysDescend = true
	}

	return &cfg, nil
}

func (c *Config) GetDatabaseURL() (string, error) {
	dbURL := os.Getenv(c.Database.URLEnv)
	if dbURL == "" {
		return "", fmt.Errorf("database URL not found in environment variable %s", c.Database.URLEnv)
	}
	return dbURL, nil
}

func (c *Config) Validate() error {
	supported := false
	for _, provider := range supportedProviders {
		if c.Database.Provider == provider {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("unsupported database provider: %s. Supported providers: %v", c.Database.Provider, supportedProviders)
	}

	if c.Database.URLEnv == "" {
		return fmt.Errorf("database.url_env cannot be empty")
	}
	if c.Seed.Rounds < 1 {
		return fmt.Errorf("seed.rounds must be at least 1, got %d", c.Seed.Rounds)
	}
	if c.Seed.MaxUniqueAttempts < 1 {
		return fmt.Errorf("seed.max_unique_attempts must be at least 1, got %d", c.Seed.MaxUniqueAttempts)
	}

	return nil
}

// IsInitialized reports whether a config file exists in the working directory.
func IsInitialized() bool {
	_, err := os.Stat(FileName)
	return err == nil
}
