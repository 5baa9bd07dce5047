// Package config provides configuration management for the generator.
package config

import (
	"bytes"
	"fmt"
	"runtime"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Engine   EngineConfig   `mapstructure:"engine"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
}

// EngineConfig holds generation-engine tuning knobs.
type EngineConfig struct {
	// MaxWorkers bounds the parallel fan-out of the deep scoring heuristic.
	MaxWorkers int `mapstructure:"max_workers"`
	// Seed seeds the engine RNG; 0 seeds from the wall clock.
	Seed int64 `mapstructure:"seed"`
	// StagnationLimit is how many consecutive rows may leave the score
	// unchanged before the run is declared infeasible.
	StagnationLimit int `mapstructure:"stagnation_limit"`
	// MemoryLimitMB is a soft heap ceiling for candidate scoring; 0 means
	// no limit.
	MemoryLimitMB int `mapstructure:"memory_limit_mb"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
}

// DatabaseConfig holds run-history database configuration.
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Type     string `mapstructure:"type"` // sqlite, postgres or mysql
	Path     string `mapstructure:"path"` // for sqlite
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	MaxConns int    `mapstructure:"max_conns"`
}

// StorageConfig holds output artifact storage configuration.
type StorageConfig struct {
	Type      string `mapstructure:"type"` // local or cos
	LocalPath string `mapstructure:"local_path"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	SecretID  string `mapstructure:"secret_id"`
	SecretKey string `mapstructure:"secret_key"`
	Domain    string `mapstructure:"domain"`
	Scheme    string `mapstructure:"scheme"`
}

// Load reads configuration from the specified file path. An empty path
// searches the standard locations and silently falls back to defaults when
// no file exists.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/covergen")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix("COVERGEN")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadFromReader loads configuration from raw content (useful for testing).
func LoadFromReader(configType string, content []byte) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("engine.max_workers", defaultWorkers())
	v.SetDefault("engine.seed", 0)
	v.SetDefault("engine.stagnation_limit", 10)
	v.SetDefault("engine.memory_limit_mb", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.output_path", "")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.path", "./covergen.db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.max_conns", 10)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "./output")
}

func defaultWorkers() int {
	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}
	if workers < 2 {
		workers = 2
	}
	return workers
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Engine.MaxWorkers < 1 {
		return fmt.Errorf("engine.max_workers must be at least 1")
	}
	if c.Engine.StagnationLimit < 1 {
		return fmt.Errorf("engine.stagnation_limit must be at least 1")
	}

	if c.Database.Enabled {
		switch c.Database.Type {
		case "sqlite":
			if c.Database.Path == "" {
				return fmt.Errorf("database.path is required for sqlite")
			}
		case "postgres", "mysql":
			if c.Database.Host == "" {
				return fmt.Errorf("database.host is required for %s", c.Database.Type)
			}
		default:
			return fmt.Errorf("unsupported database type: %s", c.Database.Type)
		}
	}

	switch c.Storage.Type {
	case "", "local":
		if c.Storage.LocalPath == "" {
			return fmt.Errorf("storage.local_path is required for local storage")
		}
	case "cos":
		if c.Storage.Bucket == "" || c.Storage.Region == "" {
			return fmt.Errorf("storage.bucket and storage.region are required for cos")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}

	return nil
}
