package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := Load(context.Background(), WithEnvMap(map[string]string{}), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.Addr() != ":8080" {
		t.Errorf("unexpected addr %s", cfg.Server.Addr())
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.API.BaseURL != defaultAPIBaseURL {
		t.Errorf("unexpected api base url %s", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("unexpected api timeout %s", cfg.API.Timeout)
	}
	if !cfg.IsLocal() || !cfg.DevMode {
		t.Errorf("expected local dev mode by default")
	}
	if cfg.Session.CookieSecure {
		t.Errorf("expected insecure cookies locally")
	}
	if cfg.Cart.Backend != "memory" || cfg.Cart.IdleTTL != 30*time.Minute {
		t.Errorf("unexpected cart config %+v", cfg.Cart)
	}
	if cfg.Locale.Fallback != "vi" || len(cfg.Locale.Supported) != 2 {
		t.Errorf("unexpected locale config %+v", cfg.Locale)
	}
}

func TestLoadWithOverrides(t *testing.T) {
	env := map[string]string{
		"THIEP_WEB_ENV":               "prod",
		"THIEP_WEB_PORT":              "9090",
		"THIEP_WEB_IDLE_TIMEOUT":      "2m",
		"THIEP_WEB_API_BASE_URL":      "https://api.thiepcuoi.vn/api/v1/",
		"THIEP_WEB_API_TIMEOUT":       "3s",
		"THIEP_WEB_SESSION_HASH_KEY":  "0123456789abcdef0123456789abcdef",
		"THIEP_WEB_SESSION_BLOCK_KEY": "0123456789abcdef",
		"THIEP_WEB_CART_BACKEND":      "SQLITE",
		"THIEP_WEB_CART_DSN":          "file:/data/carts.db",
		"THIEP_WEB_LOCALE_SUPPORTED":  "vi, en",
	}

	cfg, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Server.IdleTimeout != 2*time.Minute {
		t.Errorf("unexpected idle timeout: %s", cfg.Server.IdleTimeout)
	}
	if cfg.API.BaseURL != "https://api.thiepcuoi.vn/api/v1" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.API.BaseURL)
	}
	if cfg.IsLocal() || cfg.DevMode {
		t.Errorf("expected production mode")
	}
	if !cfg.Session.CookieSecure {
		t.Errorf("expected secure cookies outside local")
	}
	if cfg.Cart.Backend != "sqlite" || cfg.Cart.DSN != "file:/data/carts.db" {
		t.Errorf("unexpected cart config %+v", cfg.Cart)
	}
}

func TestLoadOfflineClearsBaseURL(t *testing.T) {
	env := map[string]string{"THIEP_WEB_API_OFFLINE": "true"}
	cfg, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !cfg.API.Offline || cfg.API.BaseURL != "" {
		t.Fatalf("expected offline api config, got %+v", cfg.API)
	}
}

func TestLoadDotEnvFallback(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env.test")
	content := "THIEP_WEB_PORT=7070\nexport THIEP_WEB_CART_BACKEND=file\nTHIEP_WEB_CART_PATH=\"/tmp/carts\"\n"
	if err := os.WriteFile(envPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write dotenv file: %v", err)
	}

	cfg, err := Load(context.Background(), WithEnvFile(envPath), WithoutSystemEnv())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Errorf("expected port from dotenv 7070, got %s", cfg.Server.Port)
	}
	if cfg.Cart.Backend != "file" || cfg.Cart.Path != "/tmp/carts" {
		t.Errorf("unexpected cart config %+v", cfg.Cart)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("THIEP_WEB_PORT=7070\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("THIEP_WEB_PORT", "7171")

	cfg, err := Load(context.Background(), WithEnvFile(envPath))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "7171" {
		t.Fatalf("expected OS env to beat dotenv, got %s", cfg.Server.Port)
	}

	cfg, err = Load(context.Background(), WithEnvFile(envPath), WithEnvMap(map[string]string{"THIEP_WEB_PORT": "7272"}))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "7272" {
		t.Fatalf("expected explicit map to win, got %s", cfg.Server.Port)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		field string
	}{
		{name: "prod needs keys", env: map[string]string{"THIEP_WEB_ENV": "prod"}, field: "Session.HashKey"},
		{name: "bad block key", env: map[string]string{"THIEP_WEB_SESSION_BLOCK_KEY": "short"}, field: "Session.BlockKey"},
		{name: "unknown backend", env: map[string]string{"THIEP_WEB_CART_BACKEND": "redis"}, field: "Cart.Backend"},
		{name: "firestore needs project", env: map[string]string{"THIEP_WEB_CART_BACKEND": "firestore"}, field: "Cart.ProjectID"},
		{name: "bad base url", env: map[string]string{"THIEP_WEB_API_BASE_URL": "localhost:8080"}, field: "API.BaseURL"},
		{name: "fallback not supported", env: map[string]string{"THIEP_WEB_LOCALE_FALLBACK": "ja"}, field: "Locale.Fallback"},
		{name: "non numeric port", env: map[string]string{"THIEP_WEB_PORT": "http"}, field: "Server.Port"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(context.Background(), WithEnvMap(tc.env), WithoutSystemEnv(), WithEnvFile(""))
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			found := false
			for _, f := range verr.Fields() {
				if f == tc.field {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected field %s in %v", tc.field, verr.Fields())
			}
		})
	}
}
