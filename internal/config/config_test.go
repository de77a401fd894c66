package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:          "8642",
		DBDriver:      "sqlite",
		DBPath:        "kulan.db",
		SessionSecret: "a-session-secret-long-enough-for-production",
		MaxUploadMB:   50,
		Env:           "development",
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validConfig().Validate())

	t.Run("missing port", func(t *testing.T) {
		cfg := validConfig()
		cfg.Port = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing session secret", func(t *testing.T) {
		cfg := validConfig()
		cfg.SessionSecret = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := validConfig()
		cfg.DBDriver = "oracle"
		assert.Error(t, cfg.Validate())
	})

	t.Run("sqlite needs a path", func(t *testing.T) {
		cfg := validConfig()
		cfg.DBPath = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("upload limit must be positive", func(t *testing.T) {
		cfg := validConfig()
		cfg.MaxUploadMB = 0
		assert.Error(t, cfg.Validate())
	})
}

func TestValidateProductionSecret(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Env = "production"
	cfg.SessionSecret = "change-this-session-secret-in-production"
	assert.Error(t, cfg.Validate())

	cfg.SessionSecret = "short-secret"
	assert.Error(t, cfg.Validate())

	cfg.SessionSecret = "a-session-secret-long-enough-for-production"
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.Port)
	assert.Contains(t, []string{"sqlite", "postgres"}, cfg.DBDriver)
	assert.Positive(t, cfg.MaxUploadMB)
}
