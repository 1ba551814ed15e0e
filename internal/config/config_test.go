package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadConfigDefaults verifies the defaults applied when no config file
// or environment overrides are present
func TestLoadConfigDefaults(t *testing.T) {
	// Clear legacy variables so fallbacks do not kick in
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("GROQ_API_ENDPOINT", "")
	t.Setenv("PORT", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "groq", cfg.AI.Provider)
	assert.Equal(t, "llama3-70b-8192", cfg.AI.Model)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.AI.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 0, cfg.AI.MaxRetries)
	assert.InDelta(t, 0.3, cfg.AI.Temperature, 0.001)

	assert.Equal(t, "llama-3.2-90b-vision-preview", cfg.AI.ATS.Model)
	assert.Equal(t, "llama-3.2-90b-vision-preview", cfg.AI.Match.Model)
	assert.Equal(t, "llama-3.2-90b-vision-preview", cfg.AI.Structure.Model)
	assert.Equal(t, "llama-3.2-90b-vision-preview", cfg.AI.Feedback.Model)
	assert.Equal(t, "llama3-70b-8192", cfg.AI.Prompt.Model)

	assert.False(t, cfg.AI.ATS.CircuitBreaker.Enabled)
	assert.False(t, cfg.AI.Feedback.CircuitBreaker.Enabled)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, "uploads", cfg.Server.UploadDir)
	assert.Equal(t, int64(10*1024*1024), cfg.Server.MaxRequestSize)
	assert.False(t, cfg.Server.RateLimit.Enabled)

	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "json", cfg.App.DefaultFormat)
	assert.Contains(t, cfg.App.SupportedFormats, "markdown")

	assert.False(t, cfg.Vault.Enabled)
}

// TestApplyFallbacksLegacyEnv verifies legacy environment variables are honored
func TestApplyFallbacksLegacyEnv(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_legacy_key")
	t.Setenv("GROQ_API_ENDPOINT", "https://legacy.example.com/v1")
	t.Setenv("PORT", "8123")

	cfg := &Config{}
	cfg.applyFallbacks()

	assert.Equal(t, "gsk_legacy_key", cfg.AI.APIKey)
	assert.Equal(t, "https://legacy.example.com/v1", cfg.AI.BaseURL)
	assert.Equal(t, "8123", cfg.Server.Port)
}

// TestApplyFallbacksConfigWins verifies explicit config values are not overwritten
func TestApplyFallbacksConfigWins(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_legacy_key")

	cfg := &Config{}
	cfg.AI.APIKey = "gsk_configured_key"
	cfg.applyFallbacks()

	assert.Equal(t, "gsk_configured_key", cfg.AI.APIKey)
}

// TestApplyFallbacksAPIKeysList verifies the comma-separated API key fallback
func TestApplyFallbacksAPIKeysList(t *testing.T) {
	t.Setenv("RESUMELENS_SERVER_APIKEYS", "key-one, key-two ,key-three")

	cfg := &Config{}
	cfg.applyFallbacks()

	assert.Equal(t, []string{"key-one", "key-two", "key-three"}, cfg.Server.APIKeys)
}

// TestGetOperationConfigsFallback verifies operation configs inherit unset
// fields from the global AI config
func TestGetOperationConfigsFallback(t *testing.T) {
	cfg := &Config{}
	cfg.AI.Provider = "groq"
	cfg.AI.Model = "llama3-70b-8192"
	cfg.AI.BaseURL = "https://api.groq.com/openai/v1"
	cfg.AI.Timeout = 45 * time.Second
	cfg.AI.APIKey = "gsk_global"
	cfg.AI.MaxRetries = 2
	cfg.AI.Temperature = 0.3

	cfg.AI.ATS.Model = "llama-3.2-90b-vision-preview"

	atsCfg := cfg.GetATSConfig()
	assert.Equal(t, "llama-3.2-90b-vision-preview", atsCfg.Model)
	assert.Equal(t, "groq", atsCfg.Provider)
	assert.Equal(t, "https://api.groq.com/openai/v1", atsCfg.BaseURL)
	assert.Equal(t, "gsk_global", atsCfg.APIKey)
	require.NotNil(t, atsCfg.Timeout)
	assert.Equal(t, 45*time.Second, *atsCfg.Timeout)
	require.NotNil(t, atsCfg.MaxRetries)
	assert.Equal(t, 2, *atsCfg.MaxRetries)
	require.NotNil(t, atsCfg.Temperature)
	assert.InDelta(t, 0.3, *atsCfg.Temperature, 0.001)

	// An operation with no overrides inherits everything
	promptCfg := cfg.GetPromptConfig()
	assert.Equal(t, "llama3-70b-8192", promptCfg.Model)
	assert.Equal(t, "gsk_global", promptCfg.APIKey)
}

// TestGetOperationConfigsOverride verifies explicit operation values win over globals
func TestGetOperationConfigsOverride(t *testing.T) {
	opTimeout := 10 * time.Second
	opTemp := float32(0.7)

	cfg := &Config{}
	cfg.AI.Provider = "groq"
	cfg.AI.Model = "llama3-70b-8192"
	cfg.AI.Timeout = 60 * time.Second
	cfg.AI.APIKey = "gsk_global"
	cfg.AI.Temperature = 0.3

	cfg.AI.Feedback = OperationAIConfig{
		Provider:    "gemini",
		Model:       "gemini-2.0-flash",
		APIKey:      "gm_feedback",
		Timeout:     &opTimeout,
		Temperature: &opTemp,
	}

	feedbackCfg := cfg.GetFeedbackConfig()
	assert.Equal(t, "gemini", feedbackCfg.Provider)
	assert.Equal(t, "gemini-2.0-flash", feedbackCfg.Model)
	assert.Equal(t, "gm_feedback", feedbackCfg.APIKey)
	assert.Equal(t, 10*time.Second, *feedbackCfg.Timeout)
	assert.InDelta(t, 0.7, float64(*feedbackCfg.Temperature), 0.001)
}

// TestValidate tests configuration validation rules
func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.AI.Timeout = 60 * time.Second
		cfg.Server.Port = "5000"
		cfg.App.DefaultFormat = "json"
		cfg.App.SupportedFormats = []string{"json", "text", "markdown"}
		return cfg
	}

	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:        "valid config",
			mutate:      func(c *Config) {},
			expectError: false,
		},
		{
			name:        "zero AI timeout",
			mutate:      func(c *Config) { c.AI.Timeout = 0 },
			expectError: true,
			errorMsg:    "AI timeout must be positive",
		},
		{
			name:        "missing server port",
			mutate:      func(c *Config) { c.Server.Port = "" },
			expectError: true,
			errorMsg:    "server port is required",
		},
		{
			name:        "unsupported default format",
			mutate:      func(c *Config) { c.App.DefaultFormat = "yaml" },
			expectError: true,
			errorMsg:    "invalid default format: yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
