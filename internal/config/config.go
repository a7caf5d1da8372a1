package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr         string
	ServiceURL       string
	RequestTimeout   time.Duration
	SessionTTL       time.Duration
	TelemetryEnabled bool
}

const (
	defaultHTTPAddr       = ":3000"
	defaultServiceURL     = "http://localhost:8080"
	defaultRequestTimeout = 10 * time.Second
	defaultSessionTTL     = 30 * time.Minute
)

// Load reads the process environment. Call it after .env has been loaded so
// file values are visible. Every invalid variable is reported, not just the
// first one.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:         envOr("CALC_HTTP_ADDR", defaultHTTPAddr),
		ServiceURL:       envOr("CALC_SERVICE_URL", defaultServiceURL),
		RequestTimeout:   defaultRequestTimeout,
		SessionTTL:       defaultSessionTTL,
		TelemetryEnabled: true,
	}

	var errs []error

	if err := validateServiceURL(cfg.ServiceURL); err != nil {
		errs = append(errs, fmt.Errorf("CALC_SERVICE_URL: %w", err))
	}

	if v, ok := lookup("CALC_REQUEST_TIMEOUT"); ok {
		d, err := parsePositiveDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("CALC_REQUEST_TIMEOUT: %w", err))
		} else {
			cfg.RequestTimeout = d
		}
	}

	if v, ok := lookup("CALC_SESSION_TTL"); ok {
		d, err := parsePositiveDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("CALC_SESSION_TTL: %w", err))
		} else {
			cfg.SessionTTL = d
		}
	}

	if v, ok := lookup("CALC_TELEMETRY_ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("CALC_TELEMETRY_ENABLED: %w", err))
		} else {
			cfg.TelemetryEnabled = b
		}
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v, ok := lookup(key); ok {
		return v
	}
	return def
}

// lookup treats an empty variable as unset.
func lookup(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func parsePositiveDuration(v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", d)
	}
	return d, nil
}

func validateServiceURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}
