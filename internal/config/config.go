package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/api"
)

type Config struct {
	Port string

	APIBaseURL    string
	UploadURL     string
	UploadPreset  string
	ImageMaxWidth uint
	HTTPTimeout   time.Duration

	CSRFKey      []byte
	SessionKey   []byte
	CookieDomain string
	CookieSecure bool

	LoginRateWindow time.Duration
	PageSize        int
	StateDBPath     string
}

// LoadConfig reads the environment, after loading a .env file when present.
// Variables already set in the environment win over the file.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Could not load .env file", "error", err)
	}

	cfg := &Config{
		Port:            getEnv("PORT", "8585"),
		APIBaseURL:      getEnv("API_BASE_URL", api.DefaultBaseURL),
		UploadURL:       getEnv("UPLOAD_URL", "https://api.cloudinary.com/v1_1/dwu3l0nug/image/upload"),
		UploadPreset:    getEnv("UPLOAD_PRESET", "ml_default"),
		HTTPTimeout:     getEnvDuration("HTTP_TIMEOUT", 30*time.Second),
		CookieDomain:    getEnv("COOKIE_DOMAIN", ""),
		CookieSecure:    getEnv("COOKIE_SECURE", "false") == "true",
		LoginRateWindow: getEnvDuration("LOGIN_RATE_WINDOW", 10*time.Second),
		PageSize:        getEnvInt("PAGE_SIZE", 10),
		StateDBPath:     getEnv("STATE_DB_PATH", defaultStatePath()),
	}

	cfg.CSRFKey = loadKey("CSRF_KEY")
	cfg.SessionKey = loadKey("SESSION_KEY")

	// Make sure port is valid
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		slog.Error("Invalid PORT environment variable. Falling back to default.", "PORT", os.Getenv("PORT"))
		cfg.Port = "8585"
	}
	width := getEnvInt("IMAGE_MAX_WIDTH", 800)
	if width <= 0 {
		slog.Warn("IMAGE_MAX_WIDTH must be positive. Falling back to default.", "IMAGE_MAX_WIDTH", width)
		width = 800
	}
	cfg.ImageMaxWidth = uint(width)
	if cfg.PageSize <= 0 {
		slog.Warn("PAGE_SIZE must be positive. Falling back to default.", "PAGE_SIZE", cfg.PageSize)
		cfg.PageSize = 10
	}

	return cfg, nil
}

// loadKey decodes a base64 key of at least 32 bytes, or generates a random
// one for development.
func loadKey(name string) []byte {
	keyStr := os.Getenv(name)
	if keyStr == "" {
		slog.Warn(name + " environment variable not set. Generating a random key for development. It will change on each restart. PLEASE SET " + name + " IN PRODUCTION!")
		return generateRandomBytes(32)
	}
	decodedKey, err := base64.StdEncoding.DecodeString(keyStr)
	if err != nil || len(decodedKey) < 32 {
		slog.Warn(name + " is invalid or too short (min 32 bytes). Generating a random key for development. PLEASE SET A SECURE " + name + " IN PRODUCTION!")
		return generateRandomBytes(32)
	}
	return decodedKey
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "./avien-admin.db"
	}
	return dir + string(os.PathSeparator) + "avien-admin.db"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
		slog.Warn("Ignoring invalid integer", "key", key, "value", val)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	if val := os.Getenv(key + "_SECONDS"); val != "" {
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// generateRandomBytes uses crypto/rand; it panics when the system has no
// randomness, since no safe key can be made then.
func generateRandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic("config: crypto/rand unavailable: " + err.Error())
	}
	return b
}
