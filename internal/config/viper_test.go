package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeConfig_Defaults(t *testing.T) {
	clearTestEnvVars(t)
	chdir(t, t.TempDir())

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, "text", config.Log.Format)
	assert.Equal(t, ",", config.CSV.Delimiter)
	assert.Equal(t, ',', config.OutputDelimiter())
	assert.Equal(t, "templates.yaml", config.Templates.File)
	assert.False(t, config.Import.FailOnErrors)
	assert.Equal(t, 1.0, config.Import.MaxErrorRatio)
	assert.Equal(t, 4, config.Import.Workers)
	assert.Equal(t, StoreDriverYAML, config.Store.Driver)
	assert.Equal(t, "pricelists.yaml", config.Store.File)
	assert.Equal(t, "pricelists", config.Store.MongoDatabase)
	assert.Equal(t, 10*time.Second, config.StoreTimeout())
}

func TestInitializeConfig_EnvironmentVariables(t *testing.T) {
	clearTestEnvVars(t)
	chdir(t, t.TempDir())

	testEnvVars := map[string]string{
		"PRICELIST_LOG_LEVEL":              "debug",
		"PRICELIST_LOG_FORMAT":             "json",
		"PRICELIST_CSV_DELIMITER":          ";",
		"PRICELIST_IMPORT_WORKERS":         "8",
		"PRICELIST_IMPORT_FAIL_ON_ERRORS":  "true",
		"PRICELIST_STORE_DRIVER":           "mongo",
		"PRICELIST_STORE_MONGO_DATABASE":   "suppliers",
		"MONGODB_URI":                      "mongodb://localhost:27017",
		"PRICELIST_STORE_TIMEOUT_SECONDS":  "3",
		"PRICELIST_TEMPLATES_FILE":         "/etc/pricelist/templates.yaml",
		"PRICELIST_IMPORT_MAX_ERROR_RATIO": "0.25",
	}
	for key, value := range testEnvVars {
		t.Setenv(key, value)
	}

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, ';', config.OutputDelimiter())
	assert.Equal(t, 8, config.Import.Workers)
	assert.True(t, config.Import.FailOnErrors)
	assert.Equal(t, 0.25, config.Import.MaxErrorRatio)
	assert.Equal(t, StoreDriverMongo, config.Store.Driver)
	assert.Equal(t, "suppliers", config.Store.MongoDatabase)
	assert.Equal(t, "mongodb://localhost:27017", config.Store.MongoURI)
	assert.Equal(t, 3*time.Second, config.StoreTimeout())
	assert.Equal(t, "/etc/pricelist/templates.yaml", config.Templates.File)
}

func TestInitializeConfig_ConfigFile(t *testing.T) {
	clearTestEnvVars(t)
	tempDir := t.TempDir()

	configContent := `
log:
  level: "warn"
  format: "json"
csv:
  delimiter: "|"
templates:
  file: "supplier-templates.yaml"
import:
  workers: 2
store:
  file: "data/pricelists.yaml"
`
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(configContent), 0600))
	chdir(t, tempDir)

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "warn", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, "|", config.CSV.Delimiter)
	assert.Equal(t, "supplier-templates.yaml", config.Templates.File)
	assert.Equal(t, 2, config.Import.Workers)
	assert.Equal(t, "data/pricelists.yaml", config.Store.File)
}

func TestInitializeConfigFromFile(t *testing.T) {
	clearTestEnvVars(t)
	file := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(file, []byte("log:\n  level: error\n"), 0600))

	config, err := InitializeConfigFromFile(file)
	require.NoError(t, err)
	assert.Equal(t, "error", config.Log.Level)

	_, err = InitializeConfigFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestInitializeConfig_HierarchicalPrecedence(t *testing.T) {
	clearTestEnvVars(t)
	tempDir := t.TempDir()

	configContent := `
log:
  level: "warn"
csv:
  delimiter: "|"
import:
  workers: 2
`
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(configContent), 0600))

	t.Setenv("PRICELIST_LOG_LEVEL", "error")
	t.Setenv("PRICELIST_IMPORT_WORKERS", "6")
	chdir(t, tempDir)

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "error", config.Log.Level)
	assert.Equal(t, "|", config.CSV.Delimiter)
	assert.Equal(t, 6, config.Import.Workers)
}

func defaultConfig(t *testing.T) *Config {
	t.Helper()
	v := viper.New()
	setDefaults(v)
	var c Config
	require.NoError(t, v.Unmarshal(&c))
	return &c
}

func TestValidateConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name         string
		modifyConfig func(*Config)
		expectError  string
	}{
		{
			name:         "invalid log level",
			modifyConfig: func(c *Config) { c.Log.Level = "invalid" },
			expectError:  "invalid log level",
		},
		{
			name:         "invalid log format",
			modifyConfig: func(c *Config) { c.Log.Format = "xml" },
			expectError:  "invalid log format",
		},
		{
			name:         "invalid CSV delimiter",
			modifyConfig: func(c *Config) { c.CSV.Delimiter = "abc" },
			expectError:  "CSV delimiter must be a single character",
		},
		{
			name:         "error ratio out of range",
			modifyConfig: func(c *Config) { c.Import.MaxErrorRatio = 1.5 },
			expectError:  "import.max_error_ratio must be between 0.0 and 1.0",
		},
		{
			name:         "no workers",
			modifyConfig: func(c *Config) { c.Import.Workers = 0 },
			expectError:  "import.workers must be between 1 and 64",
		},
		{
			name:         "unknown driver",
			modifyConfig: func(c *Config) { c.Store.Driver = "sqlite" },
			expectError:  "invalid store driver: sqlite",
		},
		{
			name:         "yaml driver without file",
			modifyConfig: func(c *Config) { c.Store.File = "" },
			expectError:  "store.file is required",
		},
		{
			name:         "mongo driver without uri",
			modifyConfig: func(c *Config) { c.Store.Driver = StoreDriverMongo },
			expectError:  "store.mongo_uri (or MONGODB_URI) required",
		},
		{
			name: "mongo driver without database",
			modifyConfig: func(c *Config) {
				c.Store.Driver = StoreDriverMongo
				c.Store.MongoURI = "mongodb://localhost"
				c.Store.MongoDatabase = ""
			},
			expectError: "store.mongo_database is required",
		},
		{
			name:         "invalid timeout",
			modifyConfig: func(c *Config) { c.Store.TimeoutSeconds = 0 },
			expectError:  "store.timeout_seconds must be between 1 and 300",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := defaultConfig(t)
			require.NoError(t, validateConfig(config))

			tt.modifyConfig(config)
			err := validateConfig(config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestConfigureLoggingFromConfig(t *testing.T) {
	config := defaultConfig(t)

	logger := ConfigureLoggingFromConfig(config)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)

	config.Log.Level = "debug"
	config.Log.Format = "json"
	logger = ConfigureLoggingFromConfig(config)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	config.Log.Level = "loud"
	logger = ConfigureLoggingFromConfig(config)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestGetEnv(t *testing.T) {
	t.Setenv("PRICELIST_TEST_VALUE", "set")
	assert.Equal(t, "set", GetEnv("PRICELIST_TEST_VALUE", "fallback"))
	assert.Equal(t, "fallback", GetEnv("PRICELIST_TEST_UNSET_VALUE", "fallback"))
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	originalDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(originalDir))
	})
}

// clearTestEnvVars unsets the variables these tests read; t.Setenv restores
// the previous values afterwards.
func clearTestEnvVars(t *testing.T) {
	envVars := []string{
		"PRICELIST_LOG_LEVEL",
		"PRICELIST_LOG_FORMAT",
		"PRICELIST_CSV_DELIMITER",
		"PRICELIST_TEMPLATES_FILE",
		"PRICELIST_IMPORT_FAIL_ON_ERRORS",
		"PRICELIST_IMPORT_MAX_ERROR_RATIO",
		"PRICELIST_IMPORT_WORKERS",
		"PRICELIST_STORE_DRIVER",
		"PRICELIST_STORE_FILE",
		"PRICELIST_STORE_MONGO_URI",
		"PRICELIST_STORE_MONGO_DATABASE",
		"PRICELIST_STORE_TIMEOUT_SECONDS",
		"MONGODB_URI",
	}
	for _, envVar := range envVars {
		t.Setenv(envVar, "")
		require.NoError(t, os.Unsetenv(envVar))
	}
}
