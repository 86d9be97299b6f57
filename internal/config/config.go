package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// DefaultMaxAttempts is how many times a student may submit the survey.
const DefaultMaxAttempts = 3

type Config struct {
	Mode     Mode
	HTTPAddr string

	StoreDriver string // sql|memory
	DBDriver    string // sqlite|postgres
	DBDSN       string

	AuthSecret  string
	MaxAttempts int

	AdminEmail    string // seeded when no admin exists
	AdminPassword string

	CORSOrigins []string
}

func FromEnv() Config {
	// .env is a dev convenience; absence is not an error.
	_ = godotenv.Load()

	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	return Config{
		Mode:          mode,
		HTTPAddr:      envOr("HTTP_ADDR", ":8080"),
		StoreDriver:   envOr("STORE_DRIVER", "sql"),
		DBDriver:      envOr("DB_DRIVER", "sqlite"),
		DBDSN:         envOr("DB_DSN", ""),
		AuthSecret:    envOr("AUTH_HMAC_SECRET", "surveydesk-dev-key"),
		MaxAttempts:   envInt("MAX_ATTEMPTS", DefaultMaxAttempts),
		AdminEmail:    envOr("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword: envOr("ADMIN_PASSWORD", "password123"),
		CORSOrigins:   csvOr("CORS_ORIGINS", "http://localhost:3000"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return n
	}
	return def
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
