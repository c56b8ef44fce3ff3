package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendJSON     = "json"
	BackendPostgres = "postgres"
)

type Config struct {
	Backend  string
	DBSource string
	UsersFile string

	TemplatesDir string
	OutputDir    string

	Port string
	Env  string

	AdminIDs  []int64
	OpsToken  string
	UnitPrice int64

	GeminiAPIKey string
	GeminiModel  string

	SessionTTL    time.Duration
	ConsoleUserID int64
}

func Load() (*Config, error) {
	cfg := &Config{
		Backend:       getEnv("LEDGER_BACKEND", BackendJSON),
		DBSource:      os.Getenv("DB_SOURCE"),
		UsersFile:     getEnv("USERS_FILE", "data/users.json"),
		TemplatesDir:  getEnv("TEMPLATES_DIR", "templates"),
		OutputDir:     getEnv("OUTPUT_DIR", "output"),
		Port:          getEnv("SERVER_PORT", "8080"),
		Env:           getEnv("ENVIRONMENT", "development"),
		OpsToken:      os.Getenv("OPS_TOKEN"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   os.Getenv("GEMINI_MODEL"),
		ConsoleUserID: 1,
		SessionTTL:    30 * time.Minute,
		UnitPrice:     500,
	}

	switch cfg.Backend {
	case BackendJSON:
	case BackendPostgres:
		if cfg.DBSource == "" {
			return nil, fmt.Errorf("DB_SOURCE environment variable is required for the postgres backend")
		}
	default:
		return nil, fmt.Errorf("unknown LEDGER_BACKEND %q", cfg.Backend)
	}

	if raw := os.Getenv("ADMIN_IDS"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("malformed ADMIN_IDS entry %q", part)
			}
			cfg.AdminIDs = append(cfg.AdminIDs, id)
		}
	}

	if raw := os.Getenv("UNIT_PRICE"); raw != "" {
		price, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || price <= 0 {
			return nil, fmt.Errorf("UNIT_PRICE must be a positive integer, got %q", raw)
		}
		cfg.UnitPrice = price
	}

	if raw := os.Getenv("SESSION_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("malformed SESSION_TTL %q", raw)
		}
		cfg.SessionTTL = ttl
	}

	if raw := os.Getenv("CONSOLE_USER_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed CONSOLE_USER_ID %q", raw)
		}
		cfg.ConsoleUserID = id
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
