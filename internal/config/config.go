package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Runtime holds process-wide settings loaded once at startup and shared
// read-only across all job runs.
type Runtime struct {
	DryRun   bool
	Headless bool
	Timeout  time.Duration // per browser action

	CaptchaMode         string
	CaptchaFixedCode    string
	CaptchaInputTimeout time.Duration // 0 = wait forever

	StorageStatePath string // empty disables session persistence

	TelegramBotToken string
	TelegramChatID   string
	SlackWebhookURL  string
	SendGridAPIKey   string
	AlertEmail       string

	DatabaseURL string // empty disables attempt history

	// ops web UI; empty OpsAddr disables it
	OpsAddr         string
	OpsPasswordHash string
	CookieHashKey   []byte
	CookieBlockKey  []byte
}

// FromEnv reads the runtime configuration from the environment. A .env file
// in the working directory is honored when present.
func FromEnv() (Runtime, error) {
	_ = godotenv.Load()

	rt := Runtime{
		DryRun:           envBool("DRY_RUN", true),
		Headless:         envBool("HEADLESS", true),
		CaptchaMode:      strings.ToLower(envDefault("CAPTCHA_MODE", "manual")),
		CaptchaFixedCode: strings.TrimSpace(os.Getenv("CAPTCHA_FIXED_CODE")),
		StorageStatePath: envDefault("STORAGE_STATE_PATH", "cfg/storage_state.json"),
		TelegramBotToken: strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		TelegramChatID:   strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")),
		SlackWebhookURL:  strings.TrimSpace(os.Getenv("SLACK_WEBHOOK_URL")),
		SendGridAPIKey:   strings.TrimSpace(os.Getenv("SENDGRID_API_KEY")),
		AlertEmail:       strings.TrimSpace(os.Getenv("ALERT_EMAIL")),
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		OpsAddr:          strings.TrimSpace(os.Getenv("OPS_ADDR")),
		OpsPasswordHash:  strings.TrimSpace(os.Getenv("OPS_PASSWORD_HASH")),
	}

	timeoutMS, err := envInt("TIMEOUT_MS", 15000)
	if err != nil || timeoutMS < 1 {
		return Runtime{}, fmt.Errorf("invalid TIMEOUT_MS")
	}
	rt.Timeout = time.Duration(timeoutMS) * time.Millisecond

	inputMS, err := envInt("CAPTCHA_INPUT_TIMEOUT_MS", 0)
	if err != nil || inputMS < 0 {
		return Runtime{}, fmt.Errorf("invalid CAPTCHA_INPUT_TIMEOUT_MS")
	}
	rt.CaptchaInputTimeout = time.Duration(inputMS) * time.Millisecond

	if rt.OpsAddr != "" {
		if rt.OpsPasswordHash == "" {
			return Runtime{}, fmt.Errorf("OPS_PASSWORD_HASH is required when OPS_ADDR is set")
		}
		rt.CookieHashKey, err = mustB64("COOKIE_HASH_KEY")
		if err != nil {
			return Runtime{}, err
		}
		rt.CookieBlockKey, err = mustB64("COOKIE_BLOCK_KEY")
		if err != nil {
			return Runtime{}, err
		}
	}

	return rt, nil
}

func envDefault(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(k)))
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func envInt(k string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func mustB64(k string) ([]byte, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return nil, fmt.Errorf("%s is required (base64)", k)
	}
	if b, err := base64.StdEncoding.DecodeString(v); err == nil {
		return b, nil
	}
	b, err := base64.RawStdEncoding.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", k, err)
	}
	return b, nil
}
