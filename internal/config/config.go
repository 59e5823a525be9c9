package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultCurrency         = "EUR"
	defaultDepositPercent   = "20"
	defaultDepositMinCents  = "2000"
	defaultDepositMaxCents  = "15000"
	defaultShortNoticeHours = "24"
	defaultCheckoutTimeout  = "10s"
	defaultReapGraceWindow  = "24h"
	defaultServiceRates     = `{"standard":3500,"deep":5500,"move_out":6000,"windows":3000}`
)

// Config carries every tunable the deposit/booking flow reads. It is
// loaded once in main and passed by value so services never reach for
// ambient state.
type Config struct {
	AppEnv string

	Currency         string
	DepositsEnabled  bool
	DepositPercent   int
	DepositMinCents  int64
	DepositMaxCents  int64
	ShortNoticeHours int

	// Cents per hour by service type, used to estimate the job total the
	// deposit percentage applies to.
	ServiceRates map[string]int64

	// Service types that require a deposit on their own (long jobs with
	// high no-show cost).
	DepositServiceTypes []string

	// Postal-code prefixes treated as elevated risk.
	HighRiskPostalPrefixes []string

	CheckoutBaseURL    string
	CheckoutAPIKey     string
	CheckoutSuccessURL string
	CheckoutCancelURL  string
	CheckoutTimeout    time.Duration

	ReapGraceWindow time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.Currency = strings.ToUpper(strings.TrimSpace(getEnv("DEPOSIT_CURRENCY", defaultCurrency)))
	cfg.DepositsEnabled = parseBoolEnv("DEPOSITS_ENABLED", "true")

	var err error
	if cfg.DepositPercent, err = parseIntEnv("DEPOSIT_PERCENT", defaultDepositPercent); err != nil {
		return nil, err
	}
	if cfg.DepositMinCents, err = parseInt64Env("DEPOSIT_MIN_CENTS", defaultDepositMinCents); err != nil {
		return nil, err
	}
	if cfg.DepositMaxCents, err = parseInt64Env("DEPOSIT_MAX_CENTS", defaultDepositMaxCents); err != nil {
		return nil, err
	}
	if cfg.ShortNoticeHours, err = parseIntEnv("SHORT_NOTICE_HOURS", defaultShortNoticeHours); err != nil {
		return nil, err
	}

	ratesRaw := getEnv("SERVICE_RATES_JSON", defaultServiceRates)
	if err := json.Unmarshal([]byte(ratesRaw), &cfg.ServiceRates); err != nil {
		return nil, fmt.Errorf("invalid SERVICE_RATES_JSON: %w", err)
	}

	cfg.DepositServiceTypes = splitEnv("DEPOSIT_SERVICE_TYPES", "deep,move_out")
	cfg.HighRiskPostalPrefixes = splitEnv("HIGH_RISK_POSTAL_PREFIXES", "")

	cfg.CheckoutBaseURL = strings.TrimRight(strings.TrimSpace(os.Getenv("CHECKOUT_BASE_URL")), "/")
	cfg.CheckoutAPIKey = strings.TrimSpace(os.Getenv("CHECKOUT_API_KEY"))
	cfg.CheckoutSuccessURL = getEnv("CHECKOUT_SUCCESS_URL", "")
	cfg.CheckoutCancelURL = getEnv("CHECKOUT_CANCEL_URL", "")
	if cfg.CheckoutTimeout, err = parseDurationEnv("CHECKOUT_TIMEOUT", defaultCheckoutTimeout); err != nil {
		return nil, err
	}

	if cfg.ReapGraceWindow, err = parseDurationEnv("REAP_GRACE_WINDOW", defaultReapGraceWindow); err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CheckoutConfigured reports whether the gateway credentials are present.
// When they are not, every deposit decision is downgraded instead of
// failing booking creation.
func (c *Config) CheckoutConfigured() bool {
	return c.CheckoutBaseURL != "" && c.CheckoutAPIKey != ""
}

func validate(cfg *Config) error {
	if cfg.DepositPercent <= 0 || cfg.DepositPercent > 100 {
		return fmt.Errorf("DEPOSIT_PERCENT must be in (0,100], got %d", cfg.DepositPercent)
	}
	if cfg.DepositMinCents < 0 {
		return fmt.Errorf("DEPOSIT_MIN_CENTS must be >= 0")
	}
	if cfg.DepositMaxCents < cfg.DepositMinCents {
		return fmt.Errorf("DEPOSIT_MAX_CENTS must be >= DEPOSIT_MIN_CENTS")
	}
	if cfg.ShortNoticeHours <= 0 {
		return fmt.Errorf("SHORT_NOTICE_HOURS must be > 0")
	}
	if len(cfg.Currency) != 3 {
		return fmt.Errorf("DEPOSIT_CURRENCY must be a 3-letter code, got %q", cfg.Currency)
	}
	if cfg.CheckoutTimeout <= 0 {
		return fmt.Errorf("CHECKOUT_TIMEOUT must be > 0")
	}
	if cfg.ReapGraceWindow <= 0 {
		return fmt.Errorf("REAP_GRACE_WINDOW must be > 0")
	}
	if isProdLike(cfg.AppEnv) && !cfg.CheckoutConfigured() && cfg.DepositsEnabled {
		return fmt.Errorf("in prod/release CHECKOUT_BASE_URL and CHECKOUT_API_KEY must be set while deposits are enabled")
	}
	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func splitEnv(name, fallback string) []string {
	raw := getEnv(name, fallback)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseInt64Env(name, fallback string) (int64, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}
