package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	env := "JWT_SECRET=from-file\nPORT=9000\nCORS_ALLOWED_ORIGINS=http://a.test, http://b.test\nJWT_ACCESS_TTL_MINUTES=15\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("PORT", "9100")

	config, err := loadConfig(filepath.Join(dir, ".env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if config.JWT.Secret != "from-file" {
		t.Fatalf("expected secret from file, got %q", config.JWT.Secret)
	}
	if config.App.Port != "9100" {
		t.Fatalf("expected environment to win, got %q", config.App.Port)
	}
	if config.JWT.AccessTTL != 15*time.Minute {
		t.Fatalf("unexpected access ttl %v", config.JWT.AccessTTL)
	}
	if len(config.App.AllowedOrigins) != 2 || config.App.AllowedOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins %v", config.App.AllowedOrigins)
	}
	if config.OTP.Length != 6 || config.RateLimit.Window != time.Minute {
		t.Fatalf("defaults not applied: %+v %+v", config.OTP, config.RateLimit)
	}
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := loadConfig(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}
}
