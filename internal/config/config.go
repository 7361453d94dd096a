// Package config manages application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the pipeline needs. Components receive the
// relevant slice of it at construction; nothing reads ambient state.
type Config struct {
	// WorkDir is where transient run artifacts are written.
	WorkDir string

	// Subreddits is the pool of sources candidates are drawn from.
	Subreddits []string
	// UserAgent identifies the client to the content API.
	UserAgent string

	// VideoPool lists background video URLs for narrated posts.
	VideoPool []string
	// BaseVideoMinStart is the earliest subclip offset into a background video.
	BaseVideoMinStart time.Duration

	// MaxTrials bounds how many candidates one run will try.
	MaxTrials int

	// WordsPerMinute is the voiceover speech rate.
	WordsPerMinute int
	// SpeechProvider selects the TTS backend (openai, gemini).
	SpeechProvider string
	// OpenAIKey, GeminiKey and AnthropicKey hold provider credentials.
	OpenAIKey    string
	GeminiKey    string
	AnthropicKey string

	// MaxAttempts and BaseDelay drive the shared retry policy.
	MaxAttempts int
	BaseDelay   time.Duration

	// UploadChunkSize is the resumable upload chunk size in bytes.
	UploadChunkSize int64

	// Humanlike inserts randomized pauses between workflow steps.
	Humanlike bool

	// InstagramURL, InstagramUser and InstagramPass drive the social share flow.
	InstagramURL  string
	InstagramUser string
	InstagramPass string

	// YouTubeCategoryID and YouTubePrivacy are applied to every upload.
	YouTubeCategoryID string
	YouTubePrivacy    string

	// DriveFolderID is the backup destination folder.
	DriveFolderID string
	// CredentialsFile and TokenFile hold the OAuth client and token.
	CredentialsFile string
	TokenFile       string
}

// DefaultConfig returns configuration with safe defaults.
func DefaultConfig() *Config {
	return &Config{
		WorkDir:           ".",
		UserAgent:         "shortpost/1.0",
		BaseVideoMinStart: 10 * time.Second,
		MaxTrials:         5,
		WordsPerMinute:    170,
		SpeechProvider:    "openai",
		MaxAttempts:       5,
		BaseDelay:         time.Second,
		UploadChunkSize:   8 * 1024 * 1024,
		Humanlike:         true,
		InstagramURL:      "https://www.instagram.com",
		YouTubeCategoryID: "23",
		YouTubePrivacy:    "public",
		CredentialsFile:   "client_secret.json",
		TokenFile:         "token.json",
	}
}

// Load reads an optional .env file, applies environment overrides on top of
// the defaults and validates the result.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := DefaultConfig()
	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromEnv overrides config with environment variables.
func (c *Config) loadFromEnv() {
	if v := os.Getenv("SHORTPOST_WORKDIR"); v != "" {
		c.WorkDir = v
	}
	if v := os.Getenv("SHORTPOST_SUBREDDITS"); v != "" {
		c.Subreddits = splitList(v)
	}
	if v := os.Getenv("SHORTPOST_USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("SHORTPOST_VIDEO_POOL"); v != "" {
		c.VideoPool = splitList(v)
	}
	if v := os.Getenv("SHORTPOST_MAX_TRIALS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxTrials = n
		}
	}
	if v := os.Getenv("SHORTPOST_WPM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.WordsPerMinute = n
		}
	}
	if v := os.Getenv("SHORTPOST_SPEECH_PROVIDER"); v != "" {
		c.SpeechProvider = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.GeminiKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.AnthropicKey = v
	}
	if v := os.Getenv("SHORTPOST_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxAttempts = n
		}
	}
	if v := os.Getenv("SHORTPOST_BASE_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.BaseDelay = d
		}
	}
	if v := os.Getenv("SHORTPOST_CHUNK_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.UploadChunkSize = n
		}
	}
	if v := os.Getenv("SHORTPOST_HUMANLIKE"); v != "" {
		c.Humanlike = v == "true" || v == "1"
	}
	if v := os.Getenv("SHORTPOST_INSTAGRAM_URL"); v != "" {
		c.InstagramURL = v
	}
	if v := os.Getenv("SHORTPOST_INSTAGRAM_USER"); v != "" {
		c.InstagramUser = v
	}
	if v := os.Getenv("SHORTPOST_INSTAGRAM_PASS"); v != "" {
		c.InstagramPass = v
	}
	if v := os.Getenv("SHORTPOST_YT_CATEGORY"); v != "" {
		c.YouTubeCategoryID = v
	}
	if v := os.Getenv("SHORTPOST_YT_PRIVACY"); v != "" {
		c.YouTubePrivacy = v
	}
	if v := os.Getenv("SHORTPOST_DRIVE_FOLDER"); v != "" {
		c.DriveFolderID = v
	}
	if v := os.Getenv("SHORTPOST_CREDENTIALS_FILE"); v != "" {
		c.CredentialsFile = v
	}
	if v := os.Getenv("SHORTPOST_TOKEN_FILE"); v != "" {
		c.TokenFile = v
	}
}

// Validate checks that configuration values are valid and consistent.
func (c *Config) Validate() error {
	if c.MaxTrials <= 0 {
		return fmt.Errorf("max_trials must be positive")
	}
	if c.WordsPerMinute <= 0 {
		return fmt.Errorf("words_per_minute must be positive")
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("max_attempts must be positive")
	}
	if c.BaseDelay <= 0 {
		return fmt.Errorf("base_delay must be positive")
	}
	if c.UploadChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive")
	}
	switch c.SpeechProvider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("unsupported speech provider: %s", c.SpeechProvider)
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
