package utils

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnv reads an optional .env file from the working directory.
// Variables already set in the environment win.
func LoadEnv() {
	_ = godotenv.Load()
}

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration
}

func LoadAuthConfig() AuthConfig {
	secret := os.Getenv("YAMDB_JWT_SECRET")
	if secret == "" {
		// dev default (change for production)
		secret = "dev-secret-change-me"
	}

	issuer := os.Getenv("YAMDB_JWT_ISSUER")
	if issuer == "" {
		issuer = "yamdb"
	}

	return AuthConfig{
		JWTSecret:   secret,
		JWTIssuer:   issuer,
		JWTDuration: time.Duration(envInt("YAMDB_JWT_TTL_HOURS", 24)) * time.Hour,
	}
}

// DataConfig drives the CSV load-data run.
type DataConfig struct {
	Dir       string
	BatchSize int
}

func LoadDataConfig() DataConfig {
	dir := strings.TrimSpace(os.Getenv("YAMDB_DATA_DIR"))
	if dir == "" {
		dir = "static/data"
	}
	return DataConfig{
		Dir:       dir,
		BatchSize: envInt("YAMDB_BATCH_SIZE", 200),
	}
}

type ServerConfig struct {
	Addr     string
	LogLevel string
}

func LoadServerConfig() ServerConfig {
	addr := os.Getenv("YAMDB_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return ServerConfig{
		Addr:     addr,
		LogLevel: os.Getenv("YAMDB_LOG_LEVEL"),
	}
}

// envInt parses a positive integer variable; anything else yields def.
func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
