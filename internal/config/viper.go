// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	StoreDriverYAML  = "yaml"
	StoreDriverMongo = "mongo"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	CSV struct {
		// Delimiter of the CSV files this tool writes.
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"csv" yaml:"csv"`

	Templates struct {
		File string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"templates" yaml:"templates"`

	Import struct {
		FailOnErrors  bool    `mapstructure:"fail_on_errors" yaml:"fail_on_errors"`
		MaxErrorRatio float64 `mapstructure:"max_error_ratio" yaml:"max_error_ratio"`
		Workers       int     `mapstructure:"workers" yaml:"workers"`
	} `mapstructure:"import" yaml:"import"`

	Store struct {
		Driver         string `mapstructure:"driver" yaml:"driver"`
		File           string `mapstructure:"file" yaml:"file"`
		MongoURI       string `mapstructure:"mongo_uri" yaml:"-"` // may carry credentials
		MongoDatabase  string `mapstructure:"mongo_database" yaml:"mongo_database"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	} `mapstructure:"store" yaml:"store"`
}

// StoreTimeout returns the store timeout as a duration.
func (c *Config) StoreTimeout() time.Duration {
	return time.Duration(c.Store.TimeoutSeconds) * time.Second
}

// OutputDelimiter returns the CSV output delimiter as a rune.
func (c *Config) OutputDelimiter() rune {
	for _, r := range c.CSV.Delimiter {
		return r
	}
	return ','
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	return InitializeConfigFromFile("")
}

// InitializeConfigFromFile loads configuration from file when set, otherwise
// from the standard search paths.
func InitializeConfigFromFile(file string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.pricelist-import")
		v.AddConfigPath(".pricelist-import")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix("PRICELIST")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless given explicitly)
	if err := v.ReadInConfig(); err != nil {
		if file != "" {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	// 5. The Mongo URI is also accepted under its conventional name
	if err := v.BindEnv("store.mongo_uri", "PRICELIST_STORE_MONGO_URI", "MONGODB_URI"); err != nil {
		fmt.Printf("Warning: failed to bind MONGODB_URI environment variable: %v\n", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("csv.delimiter", ",")

	v.SetDefault("templates.file", "templates.yaml")

	v.SetDefault("import.fail_on_errors", false)
	v.SetDefault("import.max_error_ratio", 1.0)
	v.SetDefault("import.workers", 4)

	v.SetDefault("store.driver", StoreDriverYAML)
	v.SetDefault("store.file", "pricelists.yaml")
	v.SetDefault("store.mongo_uri", "")
	v.SetDefault("store.mongo_database", "pricelists")
	v.SetDefault("store.timeout_seconds", 10)
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if len([]rune(config.CSV.Delimiter)) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	if config.Import.MaxErrorRatio < 0.0 || config.Import.MaxErrorRatio > 1.0 {
		return fmt.Errorf("import.max_error_ratio must be between 0.0 and 1.0, got: %f", config.Import.MaxErrorRatio)
	}

	if config.Import.Workers < 1 || config.Import.Workers > 64 {
		return fmt.Errorf("import.workers must be between 1 and 64, got: %d", config.Import.Workers)
	}

	switch config.Store.Driver {
	case StoreDriverYAML:
		if config.Store.File == "" {
			return fmt.Errorf("store.file is required for the yaml driver")
		}
	case StoreDriverMongo:
		if config.Store.MongoURI == "" {
			return fmt.Errorf("store.mongo_uri (or MONGODB_URI) required for the mongo driver")
		}
		if config.Store.MongoDatabase == "" {
			return fmt.Errorf("store.mongo_database is required for the mongo driver")
		}
	default:
		return fmt.Errorf("invalid store driver: %s (must be '%s' or '%s')", config.Store.Driver, StoreDriverYAML, StoreDriverMongo)
	}

	if config.Store.TimeoutSeconds < 1 || config.Store.TimeoutSeconds > 300 {
		return fmt.Errorf("store.timeout_seconds must be between 1 and 300, got: %d", config.Store.TimeoutSeconds)
	}

	return nil
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
