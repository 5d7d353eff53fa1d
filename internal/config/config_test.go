package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:                     "3001",
		Env:                      "development",
		DBDriver:                 DriverPostgres,
		DBPassword:               "password",
		DBSSLMode:                "disable",
		DBMaxOpenConns:           25,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 5,
		MongoURI:                 "mongodb://127.0.0.1:27017/socialmedia",
		TracingSampleRatio:       1,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, true},
		{"sqlite driver", func(c *Config) { c.DBDriver = DriverSQLite }, false},
		{"mongo driver", func(c *Config) { c.DBDriver = DriverMongo }, false},
		{"mongo without uri", func(c *Config) { c.DBDriver = DriverMongo; c.MongoURI = "" }, true},
		{"zero pool size", func(c *Config) { c.DBMaxOpenConns = 0 }, true},
		{"zero conn lifetime", func(c *Config) { c.DBConnMaxLifetimeMinutes = 0 }, true},
		{"sample ratio above one", func(c *Config) { c.TracingSampleRatio = 1.5 }, true},
		{"production with default password", func(c *Config) { c.Env = "production" }, true},
		{"production with strong password", func(c *Config) { c.Env = "production"; c.DBPassword = "s3cure-and-long" }, false},
		{"production mongo ignores db password", func(c *Config) { c.Env = "prod"; c.DBDriver = DriverMongo }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	defer viper.Reset()
	t.Setenv("APP_ENV", "development")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "mongodb://127.0.0.1:27017/socialmedia", cfg.MongoURI)
	assert.Equal(t, 25, cfg.DBMaxOpenConns)
	assert.Equal(t, 100, cfg.RateLimitMax)
	assert.InDelta(t, 1.0, cfg.TracingSampleRatio, 0.0001)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	defer viper.Reset()
	t.Setenv("APP_ENV", "development")
	t.Setenv("PORT", "8080")
	t.Setenv("DB_DRIVER", "  SQLite ")
	t.Setenv("TRACING_SAMPLE_RATIO", "0.25")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.DBDriver, "driver is normalized")
	assert.InDelta(t, 0.25, cfg.TracingSampleRatio, 0.0001)
}

func TestLoadConfig_MissingProfileFile(t *testing.T) {
	defer viper.Reset()
	t.Setenv("APP_ENV", "staging")

	_, err := LoadConfig()
	assert.Error(t, err)
}
