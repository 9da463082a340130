package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultDSN = "host=db user=postgres password=1234 dbname=testdb port=5432 sslmode=disable"

type Config struct {
	Port              string
	DatabaseURL       string
	DBConnectAttempts int

	SessionKey    string
	SecureCookies bool

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	LogMode string

	// ReorderTransactional wraps the three lesson-swap writes in one database
	// transaction. When false each write is committed on its own.
	ReorderTransactional bool
	ToggleMaxAttempts    int
	ToggleRetryDelay     time.Duration

	CORSAllowedOrigins []string
}

// LoadDotEnv reads .env into the process environment. A missing file is not an error.
func LoadDotEnv(paths ...string) {
	if err := godotenv.Load(paths...); err != nil {
		log.Println("config: .env not loaded, using process environment")
	}
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:                 str("PORT", "8080"),
		DatabaseURL:          str("DATABASE_URL", defaultDSN),
		DBConnectAttempts:    intVal("DB_CONNECT_ATTEMPTS", 5),
		SessionKey:           str("SESSION_KEY", ""),
		SecureCookies:        boolVal("SECURE_COOKIES", false),
		GoogleClientID:       str("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   str("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:    str("GOOGLE_REDIRECT_URL", ""),
		LogMode:              str("LOG_MODE", "dev"),
		ReorderTransactional: boolVal("REORDER_TRANSACTIONAL", true),
		ToggleMaxAttempts:    intVal("TOGGLE_MAX_ATTEMPTS", 3),
		ToggleRetryDelay:     duration("TOGGLE_RETRY_DELAY", 100*time.Millisecond),
		CORSAllowedOrigins:   list("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}

	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" || cfg.GoogleRedirectURL == "" {
		return nil, errors.New("config: GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET and GOOGLE_REDIRECT_URL must be set")
	}
	if cfg.SessionKey == "" {
		// Только для разработки!
		cfg.SessionKey = "super-secret-default-key"
		log.Println("config: SESSION_KEY not set, using the development default")
	}
	if cfg.ToggleMaxAttempts < 1 {
		cfg.ToggleMaxAttempts = 1
	}
	if cfg.DBConnectAttempts < 1 {
		cfg.DBConnectAttempts = 1
	}
	return cfg, nil
}

func str(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

func intVal(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func boolVal(name string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func duration(name string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func list(name string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
