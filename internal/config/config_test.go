package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "TWILIO_WHATSAPP_NUMBER", "DEFAULT_TIMEZONE", "POLL_INTERVAL",
		"OPENAI_MODEL", "GEMINI_MODEL", "LLM_MAX_TOKENS", "METRICS_ENABLED", "TWILIO_VALIDATE_SIGNATURE",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, defaultBotNumber, cfg.TwilioWhatsAppNumber)
	assert.Equal(t, "Asia/Kolkata", cfg.DefaultTimezone)
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Equal(t, 200, cfg.LLMMaxTokens)
	assert.True(t, cfg.MetricsEnabled)
	assert.False(t, cfg.TwilioValidateSignature)
}

func TestLoadFallsBackOnInvalidValues(t *testing.T) {
	t.Setenv("DEFAULT_TIMEZONE", "Mars/Olympus_Mons")
	t.Setenv("POLL_INTERVAL", "-5s")
	t.Setenv("LLM_MAX_TOKENS", "lots")

	cfg := Load()

	assert.Equal(t, "UTC", cfg.DefaultTimezone)
	assert.Equal(t, defaultPollInterval, cfg.PollInterval)
	assert.Equal(t, 200, cfg.LLMMaxTokens)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DEFAULT_TIMEZONE", "Europe/Berlin")
	t.Setenv("POLL_INTERVAL", "1m")
	t.Setenv("TWILIO_VALIDATE_SIGNATURE", "true")

	cfg := Load()

	assert.Equal(t, "Europe/Berlin", cfg.DefaultTimezone)
	assert.Equal(t, time.Minute, cfg.PollInterval)
	assert.True(t, cfg.TwilioValidateSignature)
}
