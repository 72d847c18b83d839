package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:          "8000",
		Env:           "development",
		StoreDriver:   DriverMongo,
		MongoURI:      "mongodb://localhost:27017",
		AuthProvider:  AuthJWT,
		JWTSecret:     "secure-secret-at-least-32-chars-long",
		BodyLimitMB:   5,
		MongoDatabase: "postboard",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"valid development config", func(c *Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"unknown store driver", func(c *Config) { c.StoreDriver = "cassandra" }, true},
		{"mongo without uri", func(c *Config) { c.MongoURI = "" }, true},
		{"sqlite with path", func(c *Config) { c.StoreDriver = DriverSQLite; c.SQLitePath = "x.db" }, false},
		{"sqlite without path", func(c *Config) { c.StoreDriver = DriverSQLite }, true},
		{"unknown auth provider", func(c *Config) { c.AuthProvider = "saml" }, true},
		{"jwt without secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"non-positive body limit", func(c *Config) { c.BodyLimitMB = 0 }, true},
		{"production rejects default secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = defaultJWTSecret
		}, true},
		{"production rejects sqlite", func(c *Config) {
			c.Env = "production"
			c.StoreDriver = DriverSQLite
			c.SQLitePath = "x.db"
		}, true},
		{"production postgres needs tls", func(c *Config) {
			c.Env = "prod"
			c.StoreDriver = DriverPostgres
			c.DBHost = "db"
			c.DBName = "postboard"
			c.DBPassword = "a-strong-password"
			c.DBSSLMode = "disable"
		}, true},
		{"production postgres with tls", func(c *Config) {
			c.Env = "production"
			c.StoreDriver = DriverPostgres
			c.DBHost = "db"
			c.DBName = "postboard"
			c.DBPassword = "a-strong-password"
			c.DBSSLMode = "verify-full"
		}, false},
		{"production firebase needs credentials", func(c *Config) {
			c.Env = "production"
			c.AuthProvider = AuthFirebase
		}, true},
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

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "test")
	t.Setenv("STORE_DRIVER", "  SQLite ")
	t.Setenv("SQLITE_PATH", "file::memory:")
	t.Setenv("AUTH_PROVIDER", "jwt")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, c.StoreDriver)
	assert.Equal(t, AuthJWT, c.AuthProvider)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, 5, c.BodyLimitMB)
	assert.False(t, c.MediaConfigured())
}
