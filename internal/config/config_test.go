package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Port:           "8081",
		LogLevel:       "info",
		DataBackend:    BackendCSV,
		LedgerFile:     "./data/ledger.csv",
		Timezone:       "UTC",
		EventsBackend:  EventsNone,
		MirrorSchedule: "@every 15m",
		SavingsGoal:    "1000",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		errorString string
	}{
		{name: "valid csv config", mutate: func(c *Config) {}},
		{name: "memory backend", mutate: func(c *Config) { c.DataBackend = BackendMemory }},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range high",
			mutate:      func(c *Config) { c.Port = "70000" },
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "invalid data backend",
			mutate:      func(c *Config) { c.DataBackend = "postgres" },
			errorString: "invalid data backend 'postgres': must be one of [csv sqlite sheets memory]",
		},
		{
			name:        "csv backend without file",
			mutate:      func(c *Config) { c.LedgerFile = " " },
			errorString: "ledger file path cannot be empty",
		},
		{
			name: "sheets backend missing id",
			mutate: func(c *Config) {
				c.DataBackend = BackendSheets
				c.GoogleSheetName = "Ledger"
				c.GoogleServiceAccountJSON = "{}"
			},
			errorString: "Google Spreadsheet ID is required",
		},
		{
			name:        "amqp events with bad scheme",
			mutate:      func(c *Config) { c.EventsBackend = EventsAMQP; c.AMQPURL = "http://x"; c.AMQPExchange = "e"; c.AMQPQueue = "q" },
			errorString: "invalid AMQP URL scheme 'http'",
		},
		{
			name:        "kafka events without brokers",
			mutate:      func(c *Config) { c.EventsBackend = EventsKafka; c.KafkaBrokers = " , "; c.KafkaTopic = "t" },
			errorString: "at least one Kafka broker is required",
		},
		{
			name:        "unknown events backend",
			mutate:      func(c *Config) { c.EventsBackend = "nats" },
			errorString: "invalid events backend 'nats'",
		},
		{
			name:        "bad cron schedule",
			mutate:      func(c *Config) { c.MirrorSchedule = "every now and then" },
			errorString: "invalid mirror schedule",
		},
		{name: "disabled mirror", mutate: func(c *Config) { c.MirrorSchedule = "" }},
		{
			name:        "negative goal",
			mutate:      func(c *Config) { c.SavingsGoal = "-5" },
			errorString: "must be greater than zero",
		},
		{
			name:        "zero goal",
			mutate:      func(c *Config) { c.SavingsGoal = "0" },
			errorString: "invalid savings goal 0: must be greater than zero",
		},
		{
			name:        "bad log level",
			mutate:      func(c *Config) { c.LogLevel = "loud" },
			errorString: "invalid log level 'loud'",
		},
		{
			name:        "bad timezone",
			mutate:      func(c *Config) { c.Timezone = "Mars/Olympus" },
			errorString: "invalid timezone 'Mars/Olympus'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errorString == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorString)
		})
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "0"
	cfg.SavingsGoal = "lots"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port 0")
	assert.Contains(t, err.Error(), "invalid savings goal 'lots'")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	for k := range defaults {
		t.Setenv(strings.ToUpper(k), "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, BackendCSV, cfg.DataBackend)
	assert.Equal(t, "./data/ledger.csv", cfg.LedgerFile)
	assert.Equal(t, EventsNone, cfg.EventsBackend)
	assert.Equal(t, "1000", cfg.Goal().String())
	assert.True(t, cfg.MirrorEnabled())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finledger.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"9000\"\ndata_backend: SQLite\nkafka_brokers: a:1, b:2\n"), 0o644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9100")
	t.Setenv("DATA_BACKEND", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, BackendSQLite, cfg.DataBackend)
	assert.Equal(t, []string{"a:1", "b:2"}, cfg.Brokers())
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)

	c := Config{LogLevel: "warning"}
	assert.Equal(t, slog.LevelWarn, c.Level())
	c.LogLevel = "bogus"
	assert.Equal(t, slog.LevelInfo, c.Level())
}
