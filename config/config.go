// Package config loads and validates configuration from environment
// variables. Each app passes its own Defaults (database name, port, static
// and migration directories); every problem found during loading is
// collected and reported as a single aggregated error.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// PoolConfig holds settings for a single database connection pool.
type PoolConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	MaxSize  int
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port      string
	StaticDir string
}

// SessionConfig holds session cookie and lifetime settings.
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
}

// Config is the top-level configuration for one app.
type Config struct {
	DB            *PoolConfig
	Server        *ServerConfig
	Session       *SessionConfig
	MigrationsDir string
}

// Defaults carries the per-app fallback values used when the corresponding
// environment variables are unset.
type Defaults struct {
	DBName        string
	Port          string
	StaticDir     string
	MigrationsDir string
	CookieName    string
}

func getRequiredEnv(key string, errs *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		*errs = append(*errs, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getOptionalEnvInt(key string, defaultValue int, errs *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected integer, got %q: %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

func getOptionalEnvDuration(key string, defaultValue time.Duration, errs *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected duration string, got %q: %v", key, valueStr, err))
		return defaultValue
	}
	return valueDuration
}

// clampPoolSize keeps the pool size within 1..100.
func clampPoolSize(size int, varName string, errs *[]string) int {
	if size < 1 {
		*errs = append(*errs, fmt.Sprintf("pool size for %s (%d) is less than minimum 1, clamping to 1", varName, size))
		return 1
	}
	if size > 100 {
		*errs = append(*errs, fmt.Sprintf("pool size for %s (%d) is greater than maximum 100, clamping to 100", varName, size))
		return 100
	}
	return size
}

// Load reads the environment and returns the app configuration, using def
// for any app-specific value that is not set. It returns a single error
// listing everything that was missing or malformed.
func Load(def Defaults) (*Config, error) {
	var errs []string

	dbUser := getRequiredEnv("DB_USER", &errs)
	dbPassword := getRequiredEnv("DB_PASSWORD", &errs)
	dbName := getOptionalEnv("DB_NAME", def.DBName)
	dbHost := getOptionalEnv("DB_HOST", "localhost")
	dbPort := getOptionalEnvInt("DB_PORT", 5432, &errs)
	poolSize := clampPoolSize(getOptionalEnvInt("DB_POOL_SIZE", 10, &errs), "DB_POOL_SIZE", &errs)

	db := &PoolConfig{
		Host:     dbHost,
		Port:     dbPort,
		User:     dbUser,
		Password: dbPassword,
		DBName:   dbName,
		MaxSize:  poolSize,
	}

	server := &ServerConfig{
		Port:      getOptionalEnv("PORT", def.Port),
		StaticDir: getOptionalEnv("STATIC_DIR", def.StaticDir),
	}

	session := &SessionConfig{
		CookieName: getOptionalEnv("SESSION_COOKIE", def.CookieName),
		TTL:        getOptionalEnvDuration("SESSION_TTL", 24*time.Hour, &errs),
	}

	migrationsDir := getOptionalEnv("MIGRATIONS_DIR", def.MigrationsDir)

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errs, "\n- "))
	}

	return &Config{
		DB:            db,
		Server:        server,
		Session:       session,
		MigrationsDir: migrationsDir,
	}, nil
}
