package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultBotNumber    = "whatsapp:+14155238886"
	defaultTimezone     = "Asia/Kolkata"
	defaultPollInterval = 30 * time.Second
)

// Config stores runtime configuration loaded from environment variables.
type Config struct {
	Port string

	TwilioAccountSID        string
	TwilioAuthToken         string
	TwilioWhatsAppNumber    string
	TwilioValidateSignature bool
	PublicWebhookURL        string

	OpenAIAPIKey string
	OpenAIModel  string
	GeminiAPIKey string
	GeminiModel  string
	LLMMaxTokens int

	DatabaseURL string

	// DefaultTimezone is the IANA zone used for users who have not told us theirs.
	DefaultTimezone string
	PollInterval    time.Duration
	MetricsEnabled  bool
}

// Load reads configuration values and prepares defaults where applicable.
func Load() *Config {
	_ = godotenv.Load()

	timezoneName := getenvDefault("DEFAULT_TIMEZONE", defaultTimezone)
	if _, err := time.LoadLocation(timezoneName); err != nil {
		log.Printf("config: invalid DEFAULT_TIMEZONE %q, defaulting to UTC: %v", timezoneName, err)
		timezoneName = "UTC"
	}

	return &Config{
		Port:                    getenvDefault("PORT", "8080"),
		TwilioAccountSID:        os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:         os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioWhatsAppNumber:    getenvDefault("TWILIO_WHATSAPP_NUMBER", defaultBotNumber),
		TwilioValidateSignature: ParseBoolEnv("TWILIO_VALIDATE_SIGNATURE", false),
		PublicWebhookURL:        os.Getenv("PUBLIC_WEBHOOK_URL"),
		OpenAIAPIKey:            os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:             getenvDefault("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiAPIKey:            os.Getenv("GEMINI_API_KEY"),
		GeminiModel:             getenvDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		LLMMaxTokens:            ParseIntEnv("LLM_MAX_TOKENS", 200),
		DatabaseURL:             os.Getenv("DATABASE_URL"),
		DefaultTimezone:         timezoneName,
		PollInterval:            ParseDurationEnv("POLL_INTERVAL", defaultPollInterval),
		MetricsEnabled:          ParseBoolEnv("METRICS_ENABLED", true),
	}
}

func getenvDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

// ParseIntEnv returns the integer value for an environment variable or the provided default.
func ParseIntEnv(key string, def int) int {
	value := os.Getenv(key)
	if value == "" {
		return def
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("config: unable to parse %s=%q as int: %v", key, value, err)
		return def
	}
	return parsed
}

// ParseBoolEnv returns the boolean value for an environment variable or the provided default.
func ParseBoolEnv(key string, def bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return def
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("config: unable to parse %s=%q as bool: %v", key, value, err)
		return def
	}
	return parsed
}

// ParseDurationEnv returns a positive duration such as "30s" or the provided default.
func ParseDurationEnv(key string, def time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return def
	}

	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		log.Printf("config: unable to parse %s=%q as a positive duration: %v", key, value, err)
		return def
	}
	return parsed
}
