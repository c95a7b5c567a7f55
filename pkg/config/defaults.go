// Package config provides centralized default values for the advent calendar
package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		file, err := os.Open(".env")
		if err != nil {
			return
		}
		defer file.Close()

		log.Println("Loading configuration overrides from .env file...")
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseFloat(valStr, 64); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%g (default: %g)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseBool(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%t (default: %t)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Database
	DBDriver string
	DBPath   string

	// Remote attempt store (GitHub Gist API shape)
	GistAPIBase   string
	GistID        string
	GistToken     string
	RemoteTimeout time.Duration

	// Identity resolution
	IPEchoPrimary   string
	IPEchoSecondary string
	IPEchoTimeout   time.Duration

	// Prize draw
	CalendarDays   int
	WinProbFinal   float64
	WinProbDefault float64
	UnlockAllDays  bool

	// Admin auth
	JWTSecret         string
	AdminPasswordHash string
	AdminTokenTTL     time.Duration

	// Organizer notifications
	ResendAPIKey   string
	OrganizerEmail string
	EmailFrom      string

	// Observability
	SlowQueryThreshold time.Duration
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Database
	DBDriver = getEnvString("DB_DRIVER", "sqlite3")
	DBPath = getEnvString("DB_PATH", "advent.db")

	// Remote attempt store
	GistAPIBase = getEnvString("GIST_API_BASE", "https://api.github.com")
	GistID = getEnvString("GIST_ID", "")
	GistToken = getEnvString("GIST_TOKEN", "")
	RemoteTimeout = getEnvDuration("REMOTE_TIMEOUT", 10*time.Second)

	// Identity resolution
	IPEchoPrimary = getEnvString("IP_ECHO_PRIMARY", "https://api.ipify.org?format=json")
	IPEchoSecondary = getEnvString("IP_ECHO_SECONDARY", "https://api64.ipify.org?format=json")
	IPEchoTimeout = getEnvDuration("IP_ECHO_TIMEOUT", 10*time.Second)

	// Prize draw
	CalendarDays = getEnvInt("CALENDAR_DAYS", 24)
	WinProbFinal = getEnvFloat("WIN_PROB_FINAL", 0.98)
	WinProbDefault = getEnvFloat("WIN_PROB_DEFAULT", 0.005)
	UnlockAllDays = getEnvBool("UNLOCK_ALL_DAYS", false)

	// Admin auth
	JWTSecret = getEnvString("JWT_SECRET", "")
	AdminPasswordHash = getEnvString("ADMIN_PASSWORD_HASH", "")
	AdminTokenTTL = getEnvDuration("ADMIN_TOKEN_TTL", 12*time.Hour)

	// Organizer notifications
	ResendAPIKey = getEnvString("RESEND_API_KEY", "")
	OrganizerEmail = getEnvString("ORGANIZER_EMAIL", "")
	EmailFrom = getEnvString("EMAIL_FROM", "noreply@atriskmedia.com")

	// Observability
	SlowQueryThreshold = getEnvDuration("SLOW_QUERY_THRESHOLD", 50*time.Millisecond)
}
