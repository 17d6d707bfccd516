package config

import (
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/iamasit07/connect4-hotseat/internal/domain"
)

type Config struct {
	Port                 string
	AllowedOrigins       []string
	FrontendURL          string
	DatabaseURL          string
	DBMaxOpenConns       int
	DBMaxIdleConns       int
	DBConnMaxLifetimeMin int
	RedisURL             string
	RedisPassword        string
	TableTokenSecret     string
	TableTokenTTL        time.Duration
	DefaultSettings      domain.Settings
	MaxBoardWidth        int
	MaxBoardHeight       int
	TableIdleTimeout     time.Duration
	CleanupInterval      time.Duration
}

func LoadConfig() *Config {
	port := GetEnv("PORT", "8080")

	// Frontend & CORS
	frontendURL := GetEnv("FRONTEND_URL", "http://localhost:5173")
	allowedOriginsStr := GetEnv("ALLOWED_ORIGINS", "")

	allowedOrigins := []string{frontendURL}
	if allowedOriginsStr != "" {
		for _, origin := range strings.Split(allowedOriginsStr, ",") {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				allowedOrigins = append(allowedOrigins, trimmed)
			}
		}
	}

	// Database Config. An empty URL disables the archive.
	dbURL := GetEnv("DATABASE_URL", GetEnv("DATABASE_URI", ""))
	if dbURL != "" {
		if u, err := url.Parse(dbURL); err == nil && u.Scheme != "" {
			q := u.Query()
			if q.Get("sslmode") == "" {
				q.Set("sslmode", "disable")
				u.RawQuery = q.Encode()
				dbURL = u.String()
			}
		}
	}

	defaults := domain.DefaultSettings()
	settings := domain.Settings{
		Width:        GetEnvAsInt("BOARD_WIDTH", defaults.Width),
		Height:       GetEnvAsInt("BOARD_HEIGHT", defaults.Height),
		Player1Color: GetEnv("PLAYER1_COLOR", defaults.Player1Color),
		Player2Color: GetEnv("PLAYER2_COLOR", defaults.Player2Color),
	}

	maxWidth := GetEnvAsInt("MAX_BOARD_WIDTH", 20)
	maxHeight := GetEnvAsInt("MAX_BOARD_HEIGHT", 20)
	if err := settings.Validate(maxWidth, maxHeight); err != nil {
		log.Printf("[CONFIG] Invalid default board settings (%v), using %dx%d", err, defaults.Width, defaults.Height)
		settings = defaults
	}

	return &Config{
		Port:                 port,
		AllowedOrigins:       allowedOrigins,
		FrontendURL:          frontendURL,
		DatabaseURL:          dbURL,
		DBMaxOpenConns:       GetEnvAsInt("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns:       GetEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetimeMin: GetEnvAsInt("DB_CONN_MAX_LIFETIME_MINUTES", 5),
		RedisURL:             GetEnv("REDIS_URL", ""),
		RedisPassword:        GetEnv("REDIS_PASSWORD", ""),
		TableTokenSecret:     GetEnv("TABLE_TOKEN_SECRET", "change-this-table-secret"),
		TableTokenTTL:        GetEnvAsDuration("TABLE_TOKEN_TTL_HOURS", 24, time.Hour),
		DefaultSettings:      settings,
		MaxBoardWidth:        maxWidth,
		MaxBoardHeight:       maxHeight,
		TableIdleTimeout:     GetEnvAsDuration("TABLE_IDLE_TIMEOUT_MINUTES", 60, time.Minute),
		CleanupInterval:      GetEnvAsDuration("CLEANUP_INTERVAL_MINUTES", 10, time.Minute),
	}
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

// GetEnvAsDuration reads a positive integer count of unit. Non-positive values fall back to the default.
func GetEnvAsDuration(key string, defaultValue int, unit time.Duration) time.Duration {
	value := GetEnvAsInt(key, defaultValue)
	if value <= 0 {
		log.Printf("Invalid duration value for %s: %d, using default: %d", key, value, defaultValue)
		value = defaultValue
	}
	return time.Duration(value) * unit
}
