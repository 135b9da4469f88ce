package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	c, err := FromEnv(env(nil))
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, ":50051", c.GRPCAddr)
	assert.Equal(t, StoreMemory, c.Store)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.NoError(t, c.Validate())
}

func TestFromEnv_Overrides(t *testing.T) {
	c, err := FromEnv(env(map[string]string{
		"PORT":                    "9000",
		"LIBRARY_STORE":           "postgres",
		"LIBRARY_DSN":             "postgres://localhost/library",
		"LIBRARY_REDIS_DB":        "3",
		"LIBRARY_REQUEST_TIMEOUT": "2s",
		"LIBRARY_LOG_FORMAT":      "json",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9000", c.HTTPAddr)
	assert.Equal(t, StorePostgres, c.Store)
	assert.Equal(t, 3, c.RedisDB)
	assert.Equal(t, 2*time.Second, c.RequestTimeout)
	assert.NoError(t, c.Validate())

	c, err = FromEnv(env(map[string]string{"PORT": "9000", "LIBRARY_HTTP_ADDR": "127.0.0.1:7000"}))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", c.HTTPAddr)
}

func TestFromEnv_BadValues(t *testing.T) {
	_, err := FromEnv(env(map[string]string{
		"LIBRARY_REDIS_DB":        "one",
		"LIBRARY_REQUEST_TIMEOUT": "soon",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LIBRARY_REDIS_DB")
	assert.Contains(t, err.Error(), "LIBRARY_REQUEST_TIMEOUT")
}

func TestBindFlags(t *testing.T) {
	c, err := FromEnv(env(map[string]string{"LIBRARY_STORE": "redis"}))
	require.NoError(t, err)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	c.BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--store", "sqlite", "--grpc-addr=", "--log-level", "debug"}))

	assert.Equal(t, StoreSQLite, c.Store)
	assert.Equal(t, "", c.GRPCAddr)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, defaultSQLiteDSN, c.SQLiteDSN())
	assert.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	base, err := FromEnv(env(nil))
	require.NoError(t, err)

	cases := map[string]func(c *Config){
		"unknown store":     func(c *Config) { c.Store = "firestore" },
		"mysql without dsn": func(c *Config) { c.Store = StoreMySQL },
		"empty http addr":   func(c *Config) { c.HTTPAddr = "" },
		"zero timeout":      func(c *Config) { c.RequestTimeout = 0 },
		"bad level":         func(c *Config) { c.LogLevel = "loud" },
		"bad format":        func(c *Config) { c.LogFormat = "xml" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLogger(t *testing.T) {
	c, err := FromEnv(env(map[string]string{"LIBRARY_LOG_FORMAT": "json", "LIBRARY_LOG_LEVEL": "warn"}))
	require.NoError(t, err)

	var buf bytes.Buffer
	logger, err := c.Logger(&buf)
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept", "k", "v")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), `"msg":"kept"`)
}
