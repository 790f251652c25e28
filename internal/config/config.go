package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultSessionSecret = "default-secret-key-change-in-production"

type Config struct {
	Port string
	// DBUrl is a MySQL DSN. Empty selects in-memory storage.
	DBUrl    string
	RedisURL string

	SessionSecret string
	SessionTTL    time.Duration

	AccessCode        string
	AdminPassword     string
	AdminPasswordHash string
	SiteLocked        bool

	LogLevel  string
	LogFormat string
}

// UsesDefaultSecret reports whether SESSION_SECRET was left unset.
func (c Config) UsesDefaultSecret() bool {
	return c.SessionSecret == defaultSessionSecret
}

func LoadConfig() Config {
	err := godotenv.Load()
	if err != nil {
		log.Println(".env file not found, using defaults")
	}

	return Config{
		Port:              getEnv("PORT", "8001"),
		DBUrl:             os.Getenv("DB_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		SessionSecret:     getEnv("SESSION_SECRET", defaultSessionSecret),
		SessionTTL:        getDuration("SESSION_TTL", 24*time.Hour),
		AccessCode:        getEnv("ACCESS_CODE", "2108"),
		AdminPassword:     getEnv("ADMIN_PASSWORD", "2108"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		SiteLocked:        getBool("SITE_LOCKED", true),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "console"),
	}
}

type ClientConfig struct {
	APIURL      string
	SessionFile string
	LogLevel    string
}

// LoadClientConfig reads the settings used by embrunsctl.
func LoadClientConfig() ClientConfig {
	_ = godotenv.Load()

	sessionFile := os.Getenv("EMBRUNS_SESSION_FILE")
	if sessionFile == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			sessionFile = dir + string(os.PathSeparator) + "embruns" + string(os.PathSeparator) + "session.json"
		} else {
			sessionFile = ".embruns-session.json"
		}
	}

	return ClientConfig{
		APIURL:      getEnv("EMBRUNS_API_URL", "http://localhost:8001/api"),
		SessionFile: sessionFile,
		LogLevel:    getEnv("LOG_LEVEL", "warn"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
