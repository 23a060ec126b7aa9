package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	CredentialModeRelay             = "relay"
	CredentialModeClientCredentials = "client_credentials"

	defaultHTTPAddr             = ":8080"
	defaultShutdownTimeout      = 10 * time.Second
	defaultReadHeaderTimeout    = 5 * time.Second
	defaultCatalogServiceURL    = "http://localhost:8081"
	defaultFeedbackServiceURL   = "http://localhost:8084"
	defaultCatalogRegistration  = "catalog"
	defaultFeedbackRegistration = "feedback"
	defaultDownstreamTimeout    = 5 * time.Second
	defaultCredentialExpirySkew = 30 * time.Second
	defaultRateLimitRPS         = 20.0
	defaultRateLimitBurst       = 40
)

type Storefront struct {
	HTTPAddr          string
	RabbitMQURL       string
	EventsQueue       string
	ShutdownTimeout   time.Duration
	ReadHeaderTimeout time.Duration

	CatalogServiceURL    string
	FeedbackServiceURL   string
	CatalogRegistration  string
	FeedbackRegistration string
	DownstreamTimeout    time.Duration

	CredentialMode       string
	OAuthTokenURL        string
	OAuthClientID        string
	OAuthClientSecret    string
	OAuthScopes          []string
	CredentialExpirySkew time.Duration

	FavouriteSoftFail bool
	RateLimitRPS      float64
	RateLimitBurst    int
}

func LoadStorefront() (Storefront, error) {
	cfg := Storefront{
		HTTPAddr:             getEnv("HTTP_ADDR", defaultHTTPAddr),
		RabbitMQURL:          getEnv("RABBITMQ_URL", ""),
		EventsQueue:          getEnv("EVENTS_QUEUE", defaultEventsQueue),
		ShutdownTimeout:      defaultShutdownTimeout,
		ReadHeaderTimeout:    defaultReadHeaderTimeout,
		CatalogServiceURL:    strings.TrimRight(getEnv("CATALOG_SERVICE_URL", defaultCatalogServiceURL), "/"),
		FeedbackServiceURL:   strings.TrimRight(getEnv("FEEDBACK_SERVICE_URL", defaultFeedbackServiceURL), "/"),
		CatalogRegistration:  getEnv("CATALOG_REGISTRATION", defaultCatalogRegistration),
		FeedbackRegistration: getEnv("FEEDBACK_REGISTRATION", defaultFeedbackRegistration),
		CredentialMode:       getEnv("CREDENTIAL_MODE", CredentialModeRelay),
		OAuthTokenURL:        getEnv("OAUTH_TOKEN_URL", ""),
		OAuthClientID:        getEnv("OAUTH_CLIENT_ID", ""),
		OAuthClientSecret:    getEnv("OAUTH_CLIENT_SECRET", ""),
		OAuthScopes:          getEnvList("OAUTH_SCOPES"),
	}

	var err error
	if cfg.DownstreamTimeout, err = getEnvDuration("DOWNSTREAM_TIMEOUT", defaultDownstreamTimeout); err != nil {
		return Storefront{}, err
	}
	if cfg.CredentialExpirySkew, err = getEnvDuration("CREDENTIAL_EXPIRY_SKEW", defaultCredentialExpirySkew); err != nil {
		return Storefront{}, err
	}
	if cfg.FavouriteSoftFail, err = getEnvBool("FAVOURITE_SOFT_FAIL", true); err != nil {
		return Storefront{}, err
	}
	if cfg.RateLimitRPS, err = getEnvFloat("RATE_LIMIT_RPS", defaultRateLimitRPS); err != nil {
		return Storefront{}, err
	}
	if cfg.RateLimitBurst, err = getEnvInt("RATE_LIMIT_BURST", defaultRateLimitBurst); err != nil {
		return Storefront{}, err
	}

	if cfg.RabbitMQURL == "" {
		return Storefront{}, fmt.Errorf("RABBITMQ_URL is required")
	}

	switch cfg.CredentialMode {
	case CredentialModeRelay:
	case CredentialModeClientCredentials:
		if cfg.OAuthTokenURL == "" {
			return Storefront{}, fmt.Errorf("OAUTH_TOKEN_URL is required")
		}
		if cfg.OAuthClientID == "" {
			return Storefront{}, fmt.Errorf("OAUTH_CLIENT_ID is required")
		}
		if cfg.OAuthClientSecret == "" {
			return Storefront{}, fmt.Errorf("OAUTH_CLIENT_SECRET is required")
		}
	default:
		return Storefront{}, fmt.Errorf("CREDENTIAL_MODE must be %q or %q", CredentialModeRelay, CredentialModeClientCredentials)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration", key)
	}
	return value, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean", key)
	}
	return value, nil
}

func getEnvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return value, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("%s must be a non-negative number", key)
	}
	return value, nil
}
