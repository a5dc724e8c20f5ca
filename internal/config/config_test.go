package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfigFile(t *testing.T, dir string, values map[string]any) {
	t.Helper()
	data, err := yaml.Marshal(values)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), data, 0o644))
}

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Setenv("APP_ENV", "development")

	dir := t.TempDir()
	writeConfigFile(t, dir, map[string]any{})
	wd, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(wd) }()

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8375", cfg.Port)
	assert.Equal(t, 30, cfg.UsernameCooldownDays)
	assert.Equal(t, 10, cfg.ReauthWindowMinutes)
	assert.Equal(t, "stdout", cfg.TracingExporter)
}

func TestLoadConfig_FileOverrides(t *testing.T) {
	viper.Reset()
	t.Setenv("APP_ENV", "development")

	dir := t.TempDir()
	writeConfigFile(t, dir, map[string]any{
		"PORT":                   "9001",
		"ADMIN_EMAIL":            "admin@shelftalk.dev",
		"USERNAME_COOLDOWN_DAYS": 7,
	})
	wd, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(wd) }()

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9001", cfg.Port)
	assert.Equal(t, "admin@shelftalk.dev", cfg.AdminEmail)
	assert.Equal(t, 7, cfg.UsernameCooldownDays)
}

func TestValidate(t *testing.T) {
	base := Config{
		Port:                 "8375",
		JWTSecret:            "0123456789abcdef0123456789abcdef",
		DBPassword:           "s3cret-passphrase",
		DBSSLMode:            "require",
		UsernameCooldownDays: 30,
		ReauthWindowMinutes:  10,
		Env:                  "production",
	}

	t.Run("valid production config", func(t *testing.T) {
		cfg := base
		assert.NoError(t, cfg.Validate())
	})

	t.Run("default JWT secret rejected in production", func(t *testing.T) {
		cfg := base
		cfg.JWTSecret = "your-secret-key-change-in-production"
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing port", func(t *testing.T) {
		cfg := base
		cfg.Port = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("negative cooldown", func(t *testing.T) {
		cfg := base
		cfg.UsernameCooldownDays = -1
		assert.Error(t, cfg.Validate())
	})

	t.Run("zero reauth window", func(t *testing.T) {
		cfg := base
		cfg.ReauthWindowMinutes = 0
		assert.Error(t, cfg.Validate())
	})
}
