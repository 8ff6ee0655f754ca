package config

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DRY_RUN", "HEADLESS", "TIMEOUT_MS", "CAPTCHA_MODE", "CAPTCHA_FIXED_CODE",
		"CAPTCHA_INPUT_TIMEOUT_MS", "STORAGE_STATE_PATH", "TELEGRAM_BOT_TOKEN",
		"TELEGRAM_CHAT_ID", "SLACK_WEBHOOK_URL", "SENDGRID_API_KEY", "ALERT_EMAIL",
		"DATABASE_URL", "OPS_ADDR", "OPS_PASSWORD_HASH", "COOKIE_HASH_KEY", "COOKIE_BLOCK_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	rt, err := FromEnv()
	if err != nil {
		t.Fatalf("defaults must load cleanly: %v", err)
	}
	if !rt.DryRun {
		t.Error("DRY_RUN should default to true")
	}
	if !rt.Headless {
		t.Error("HEADLESS should default to true")
	}
	if rt.Timeout != 15*time.Second {
		t.Errorf("TIMEOUT_MS should default to 15000, got %v", rt.Timeout)
	}
	if rt.CaptchaMode != "manual" {
		t.Errorf("CAPTCHA_MODE should default to manual, got %q", rt.CaptchaMode)
	}
	if rt.CaptchaInputTimeout != 0 {
		t.Errorf("captcha input wait should default to unbounded, got %v", rt.CaptchaInputTimeout)
	}
	if rt.StorageStatePath != "cfg/storage_state.json" {
		t.Errorf("unexpected storage state default %q", rt.StorageStatePath)
	}
	if rt.OpsAddr != "" || rt.DatabaseURL != "" {
		t.Error("optional surfaces must stay off without configuration")
	}
}

func TestFromEnvBoolParsing(t *testing.T) {
	clearEnv(t)
	t.Setenv("DRY_RUN", "0")
	t.Setenv("HEADLESS", "FALSE")

	rt, err := FromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if rt.DryRun {
		t.Error("DRY_RUN=0 must disable dry run")
	}
	if rt.Headless {
		t.Error("HEADLESS=FALSE must disable headless")
	}

	for _, v := range []string{"1", "true", "YES", "on"} {
		t.Setenv("DRY_RUN", v)
		rt, err := FromEnv()
		if err != nil {
			t.Fatal(err)
		}
		if !rt.DryRun {
			t.Errorf("DRY_RUN=%s should enable dry run", v)
		}
	}
}

func TestFromEnvRejectsBadTimeout(t *testing.T) {
	clearEnv(t)
	for _, v := range []string{"abc", "0", "-5"} {
		t.Setenv("TIMEOUT_MS", v)
		if _, err := FromEnv(); err == nil {
			t.Errorf("TIMEOUT_MS=%s should be rejected", v)
		}
	}
}

func TestFromEnvCaptchaSettings(t *testing.T) {
	clearEnv(t)
	t.Setenv("CAPTCHA_MODE", "Fixed")
	t.Setenv("CAPTCHA_FIXED_CODE", " AB12 ")
	t.Setenv("CAPTCHA_INPUT_TIMEOUT_MS", "30000")

	rt, err := FromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if rt.CaptchaMode != "fixed" {
		t.Errorf("mode should lowercase, got %q", rt.CaptchaMode)
	}
	if rt.CaptchaFixedCode != "AB12" {
		t.Errorf("fixed code should trim, got %q", rt.CaptchaFixedCode)
	}
	if rt.CaptchaInputTimeout != 30*time.Second {
		t.Errorf("unexpected input timeout %v", rt.CaptchaInputTimeout)
	}
}

func TestFromEnvOpsRequiresAuthMaterial(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPS_ADDR", ":8080")

	if _, err := FromEnv(); err == nil || !strings.Contains(err.Error(), "OPS_PASSWORD_HASH") {
		t.Errorf("OPS_ADDR without a password hash must fail, got %v", err)
	}

	t.Setenv("OPS_PASSWORD_HASH", "$2a$10$fakehash")
	if _, err := FromEnv(); err == nil || !strings.Contains(err.Error(), "COOKIE_HASH_KEY") {
		t.Errorf("missing cookie hash key must fail, got %v", err)
	}

	hashKey := base64.StdEncoding.EncodeToString(make([]byte, 32))
	blockKey := base64.StdEncoding.EncodeToString(make([]byte, 16))
	t.Setenv("COOKIE_HASH_KEY", hashKey)
	t.Setenv("COOKIE_BLOCK_KEY", blockKey)

	rt, err := FromEnv()
	if err != nil {
		t.Fatalf("complete ops config must load: %v", err)
	}
	if len(rt.CookieHashKey) != 32 || len(rt.CookieBlockKey) != 16 {
		t.Errorf("cookie keys not decoded: %d/%d bytes", len(rt.CookieHashKey), len(rt.CookieBlockKey))
	}
}

func TestFromEnvChannelCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", " tok ")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")

	rt, err := FromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if rt.TelegramBotToken != "tok" {
		t.Errorf("token should trim, got %q", rt.TelegramBotToken)
	}
	if rt.TelegramChatID != "-100123" {
		t.Errorf("chat id lost, got %q", rt.TelegramChatID)
	}
}
