package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config carries all process configuration. It is populated once at startup
// and read-only afterwards; tests construct their own instances instead of
// sharing package state.
type Config struct {
	DatabasePath string
	DownloadDir  string
	RedisAddr    string
	ListenAddr   string
	APIToken     string
	BaseURL      string

	// CheckInterval is an asynq scheduler spec, e.g. "@every 1h".
	CheckInterval string

	SenderName       string
	SenderEmail      string
	DefaultRecipient string
	AhaSendAPIKey    string
	AhaSendURL       string

	WhisperModel  string
	GeminiModel   string
	SummaryLength string

	FetchTimeout      time.Duration
	TranscribeTimeout time.Duration
	SummarizeTimeout  time.Duration
	NotifyTimeout     time.Duration
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		DatabasePath:     getEnv("DATABASE_PATH", "summacast.db"),
		DownloadDir:      getEnv("DOWNLOAD_DIR", "podcasts"),
		RedisAddr:        getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		ListenAddr:       ":" + getEnv("PORT", "8080"),
		APIToken:         os.Getenv("API_TOKEN"),
		BaseURL:          getEnv("BASE_URL", "http://localhost:8080"),
		CheckInterval:    getEnv("CHECK_INTERVAL", "@every 1h"),
		SenderName:       getEnv("SENDER_NAME", "Summacast"),
		SenderEmail:      os.Getenv("SENDER_EMAIL"),
		DefaultRecipient: os.Getenv("RECIPIENT_EMAIL"),
		AhaSendAPIKey:    os.Getenv("AHASEND_API_KEY"),
		AhaSendURL:       getEnv("AHASEND_URL", "https://api.ahasend.com/v1/email/send"),

		WhisperModel:  getEnv("WHISPER_MODEL", "medium"),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		SummaryLength: getEnv("SUMMARY_LENGTH", "medium"),

		FetchTimeout:      getDuration("FETCH_TIMEOUT", 2*time.Minute),
		TranscribeTimeout: getDuration("TRANSCRIBE_TIMEOUT", 45*time.Minute),
		SummarizeTimeout:  getDuration("SUMMARIZE_TIMEOUT", 5*time.Minute),
		NotifyTimeout:     getDuration("NOTIFY_TIMEOUT", 30*time.Second),
	}
}

// ValidateMail checks the fields required to deliver summary emails. The
// worker refuses to start without them; a pipeline that cannot notify can
// never record an episode.
func (c *Config) ValidateMail() error {
	var missing []string
	if c.AhaSendAPIKey == "" {
		missing = append(missing, "AHASEND_API_KEY")
	}
	if c.SenderEmail == "" {
		missing = append(missing, "SENDER_EMAIL")
	}
	if c.DefaultRecipient == "" {
		missing = append(missing, "RECIPIENT_EMAIL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
