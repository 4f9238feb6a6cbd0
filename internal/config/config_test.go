package config

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// chdir moves into dir for the test so no stray .env file is picked up.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadConfigDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"PORT", "API_BASE_URL", "PAGE_SIZE", "HTTP_TIMEOUT", "CSRF_KEY", "SESSION_KEY", "COOKIE_SECURE"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Port != "8585" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.APIBaseURL != "https://avien-clothing-admin.onrender.com/api" {
		t.Fatalf("unexpected default API base URL %s", cfg.APIBaseURL)
	}
	if cfg.PageSize != 10 || cfg.HTTPTimeout != 30*time.Second || cfg.CookieSecure {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if len(cfg.CSRFKey) != 32 || len(cfg.SessionKey) != 32 {
		t.Fatalf("expected generated 32 byte keys")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	key := bytes.Repeat([]byte{7}, 32)
	t.Setenv("PORT", "9090")
	t.Setenv("API_BASE_URL", "http://localhost:4000/api")
	t.Setenv("PAGE_SIZE", "25")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("LOGIN_RATE_WINDOW_SECONDS", "60")
	t.Setenv("IMAGE_MAX_WIDTH", "640")
	t.Setenv("CSRF_KEY", base64.StdEncoding.EncodeToString(key))
	t.Setenv("COOKIE_SECURE", "true")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("expected PORT override, got %s", cfg.Port)
	}
	if cfg.APIBaseURL != "http://localhost:4000/api" {
		t.Fatalf("expected API_BASE_URL override, got %s", cfg.APIBaseURL)
	}
	if cfg.PageSize != 25 {
		t.Fatalf("expected PAGE_SIZE 25, got %d", cfg.PageSize)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Fatalf("expected HTTP_TIMEOUT 5s, got %s", cfg.HTTPTimeout)
	}
	if cfg.LoginRateWindow != time.Minute {
		t.Fatalf("expected LOGIN_RATE_WINDOW 1m, got %s", cfg.LoginRateWindow)
	}
	if cfg.ImageMaxWidth != 640 {
		t.Fatalf("expected IMAGE_MAX_WIDTH 640, got %d", cfg.ImageMaxWidth)
	}
	if !bytes.Equal(cfg.CSRFKey, key) {
		t.Fatalf("expected CSRF_KEY to be decoded")
	}
	if !cfg.CookieSecure {
		t.Fatalf("expected COOKIE_SECURE true")
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "http")
	t.Setenv("PAGE_SIZE", "-3")
	t.Setenv("IMAGE_MAX_WIDTH", "-1")
	t.Setenv("SESSION_KEY", base64.StdEncoding.EncodeToString([]byte("short")))

	cfg, _ := LoadConfig()
	if cfg.Port != "8585" || cfg.PageSize != 10 {
		t.Fatalf("expected fallbacks, got port=%s page=%d", cfg.Port, cfg.PageSize)
	}
	if cfg.ImageMaxWidth != 800 {
		t.Fatalf("expected default image width, got %d", cfg.ImageMaxWidth)
	}
	if len(cfg.SessionKey) != 32 {
		t.Fatalf("expected short SESSION_KEY to be replaced")
	}
}

func TestDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("UPLOAD_PRESET=from_file\nPORT=7000\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("PORT", "7100")
	t.Setenv("UPLOAD_PRESET", "")
	os.Unsetenv("UPLOAD_PRESET")

	cfg, _ := LoadConfig()
	if cfg.UploadPreset != "from_file" {
		t.Fatalf("expected preset from .env, got %s", cfg.UploadPreset)
	}
	if cfg.Port != "7100" {
		t.Fatalf("environment must win over .env, got %s", cfg.Port)
	}
}
