package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contains runtime configuration values.
type Config struct {
	Environment string
	Port        string
	DatabaseURL string
	JWTSecret   string
	TokenTTL    time.Duration

	WebhookURL      string
	NotifierTimeout time.Duration

	RateLimitRPM   int
	AllowedOrigins []string

	// StrictAssigneeWorkspace rejects task assignees outside the creator's workspace.
	StrictAssigneeWorkspace bool
	// RestrictMemberUpdates limits Members to updating tasks assigned to them.
	RestrictMemberUpdates bool
}

var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

// Load reads configuration from the environment. A .env file is optional.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment:             getEnv("APP_ENV", "development"),
		Port:                    getEnv("PORT", "5000"),
		DatabaseURL:             strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:               os.Getenv("JWT_SECRET"),
		TokenTTL:                getDuration("TOKEN_TTL", 24*time.Hour),
		WebhookURL:              strings.TrimSpace(getEnv("NOTIFIER_WEBHOOK_URL", os.Getenv("BOLTIC_WEBHOOK_URL"))),
		NotifierTimeout:         getDuration("NOTIFIER_TIMEOUT", 5*time.Second),
		RateLimitRPM:            getInt("RATE_LIMIT_RPM", 600),
		AllowedOrigins:          allowedOrigins(),
		StrictAssigneeWorkspace: getBool("STRICT_ASSIGNEE_WORKSPACE", true),
		RestrictMemberUpdates:   getBool("RESTRICT_MEMBER_UPDATES", false),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET environment variable is not set")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL environment variable is not set")
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("TOKEN_TTL must be positive")
	}

	return cfg, nil
}

func allowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := strings.TrimSpace(os.Getenv("CLIENT_URL")); clientURL != "" {
		origins = append(origins, clientURL)
	}

	return append(origins, getList("ALLOWED_ORIGINS", nil)...)
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(v) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}

func getList(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok {
		var cleaned []string
		for _, p := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				cleaned = append(cleaned, trimmed)
			}
		}
		if len(cleaned) > 0 {
			return cleaned
		}
	}
	return def
}
