package config

import (
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CALC_HTTP_ADDR",
		"CALC_SERVICE_URL",
		"CALC_REQUEST_TIMEOUT",
		"CALC_SESSION_TTL",
		"CALC_TELEMETRY_ENABLED",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTPAddr != ":3000" {
		t.Fatalf("expected addr %q, got %q", ":3000", cfg.HTTPAddr)
	}
	if cfg.ServiceURL != "http://localhost:8080" {
		t.Fatalf("expected service url %q, got %q", "http://localhost:8080", cfg.ServiceURL)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Fatalf("expected timeout 10s, got %s", cfg.RequestTimeout)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("expected session ttl 30m, got %s", cfg.SessionTTL)
	}
	if !cfg.TelemetryEnabled {
		t.Fatal("expected telemetry to be enabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CALC_HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("CALC_SERVICE_URL", "https://calc.internal:8443")
	t.Setenv("CALC_REQUEST_TIMEOUT", "2s")
	t.Setenv("CALC_SESSION_TTL", "5m")
	t.Setenv("CALC_TELEMETRY_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTPAddr != "127.0.0.1:9000" {
		t.Fatalf("expected addr override, got %q", cfg.HTTPAddr)
	}
	if cfg.ServiceURL != "https://calc.internal:8443" {
		t.Fatalf("expected service url override, got %q", cfg.ServiceURL)
	}
	if cfg.RequestTimeout != 2*time.Second {
		t.Fatalf("expected timeout 2s, got %s", cfg.RequestTimeout)
	}
	if cfg.SessionTTL != 5*time.Minute {
		t.Fatalf("expected session ttl 5m, got %s", cfg.SessionTTL)
	}
	if cfg.TelemetryEnabled {
		t.Fatal("expected telemetry to be disabled")
	}
}

func TestLoadReportsEveryInvalidValue(t *testing.T) {
	clearEnv(t)
	t.Setenv("CALC_SERVICE_URL", "ftp://calc")
	t.Setenv("CALC_REQUEST_TIMEOUT", "soon")
	t.Setenv("CALC_SESSION_TTL", "-1m")
	t.Setenv("CALC_TELEMETRY_ENABLED", "maybe")

	_, err := Load()
	if err == nil {
		t.Fatal("expected an error")
	}

	for _, key := range []string{
		"CALC_SERVICE_URL",
		"CALC_REQUEST_TIMEOUT",
		"CALC_SESSION_TTL",
		"CALC_TELEMETRY_ENABLED",
	} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected error to mention %s, got %q", key, err)
		}
	}
}
