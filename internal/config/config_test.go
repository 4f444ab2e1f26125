package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-attackforge/internal/config"
)

func TestLoad(t *testing.T) {
	t.Run("from environment", func(t *testing.T) {
		t.Setenv("AF_BASE_URL", "https://af.example.com/api/ss")
		t.Setenv("AF_API_KEY", "env-key")
		t.Setenv("AF_TIMEOUT", "45s")

		cfg, err := config.Load("", nil)
		require.NoError(t, err)
		assert.Equal(t, "https://af.example.com/api/ss", cfg.BaseURL)
		assert.Equal(t, "env-key", cfg.APIKey)
		assert.Equal(t, 45*time.Second, cfg.Timeout)
	})

	t.Run("bare timeout is seconds", func(t *testing.T) {
		t.Setenv("AF_BASE_URL", "https://af.example.com/api/ss")
		t.Setenv("AF_API_KEY", "env-key")
		t.Setenv("AF_TIMEOUT", "45")

		cfg, err := config.Load("", nil)
		require.NoError(t, err)
		assert.Equal(t, 45*time.Second, cfg.Timeout)
	})

	t.Run("default timeout", func(t *testing.T) {
		t.Setenv("AF_BASE_URL", "https://af.example.com/api/ss")
		t.Setenv("AF_API_KEY", "env-key")

		cfg, err := config.Load("", nil)
		require.NoError(t, err)
		assert.Equal(t, 30*time.Second, cfg.Timeout)
	})

	t.Run("from file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "afctl.yaml")
		content := `
base_url: "https://file.example.com/api/ss"
api_key: "file-key"
log_level: debug
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := config.Load(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "https://file.example.com/api/ss", cfg.BaseURL)
		assert.Equal(t, "file-key", cfg.APIKey)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("flags override environment", func(t *testing.T) {
		t.Setenv("AF_BASE_URL", "https://env.example.com/api/ss")
		t.Setenv("AF_API_KEY", "env-key")

		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("base-url", "", "")
		flags.String("api-key", "", "")
		require.NoError(t, flags.Parse([]string{"--api-key", "flag-key"}))

		cfg, err := config.Load("", flags)
		require.NoError(t, err)
		assert.Equal(t, "https://env.example.com/api/ss", cfg.BaseURL, "unset flag keeps env value")
		assert.Equal(t, "flag-key", cfg.APIKey)
	})

	t.Run("timeout flag", func(t *testing.T) {
		t.Setenv("AF_BASE_URL", "https://env.example.com/api/ss")
		t.Setenv("AF_API_KEY", "env-key")

		for arg, want := range map[string]time.Duration{"20": 20 * time.Second, "1m": time.Minute} {
			flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
			flags.String("timeout", "", "")
			require.NoError(t, flags.Parse([]string{"--timeout", arg}))

			cfg, err := config.Load("", flags)
			require.NoError(t, err)
			assert.Equal(t, want, cfg.Timeout, arg)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
		require.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr bool
	}{
		{"valid", config.Config{BaseURL: "https://af.example.com", APIKey: "k"}, false},
		{"missing key", config.Config{BaseURL: "https://af.example.com"}, true},
		{"missing url", config.Config{APIKey: "k"}, true},
		{"bad url", config.Config{BaseURL: "not a url", APIKey: "k"}, true},
		{"bad level", config.Config{BaseURL: "https://af.example.com", APIKey: "k", LogLevel: "loud"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verrs validator.ValidationErrors
			assert.ErrorAs(t, err, &verrs)
		})
	}
}
