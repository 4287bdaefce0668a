package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration parsed from environment variables.
// Credentials have no built-in fallback values: startup fails when any of
// them is missing.
type Config struct {
	HTTPAddr        string
	DBConnString    string
	ShutdownTimeout time.Duration

	BackendURL     string
	PublishableKey string
	RegionID       string

	BackendAdminEmail    string
	BackendAdminPassword string

	StripeSecretKey string

	MailAPIKey string
	MailDomain string
	FromEmail  string

	// AdminAPIKeyHash is a bcrypt hash of the key required by /api/admin
	// routes. When empty the routes stay disabled.
	AdminAPIKeyHash string

	CORSOrigins   []string
	SearchTimeout time.Duration
}

// FromEnv builds Config from environment variables. It returns an error
// listing every missing required key rather than the first one.
func FromEnv() (Config, error) {
	var missing []string
	require := func(key string) string {
		v := os.Getenv(key)
		if strings.TrimSpace(v) == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg := Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		DBConnString:    require("DB_DSN"),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT_SECONDS", 10*time.Second),

		BackendURL:     strings.TrimRight(require("MEDUSA_URL"), "/"),
		PublishableKey: require("MEDUSA_PUBLISHABLE_KEY"),
		RegionID:       require("MEDUSA_REGION_ID"),

		BackendAdminEmail:    require("MEDUSA_ADMIN_EMAIL"),
		BackendAdminPassword: require("MEDUSA_ADMIN_PASSWORD"),

		StripeSecretKey: require("STRIPE_SECRET_KEY"),

		MailAPIKey: require("MAILGUN_API_KEY"),
		MailDomain: require("MAILGUN_DOMAIN"),
		FromEmail:  envOrDefault("FROM_EMAIL", "Südpfote <noreply@suedpfote.de>"),

		AdminAPIKeyHash: os.Getenv("ADMIN_API_KEY_HASH"),

		CORSOrigins:   splitList(os.Getenv("CORS_ORIGINS")),
		SearchTimeout: envDuration("SEARCH_TIMEOUT_SECONDS", 8*time.Second),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		seconds, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}

func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
