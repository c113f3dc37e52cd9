package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session store backends
const (
	StoreFile  = "file"
	StoreRedis = "redis"
	StoreMongo = "mongo"
)

// Config holds everything the client needs to reach the backend and keep a session
type Config struct {
	APIBaseURL  string
	SocketURL   string
	HTTPTimeout time.Duration

	SessionStore   string
	SessionFile    string
	SessionProfile string
	SessionTTL     time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MongoURI      string
	MongoDatabase string

	LogLevel  string
	LogFormat string

	// EnvFileLoaded reports whether a .env file was found
	EnvFileLoaded bool
}

// Load reads an optional .env file and then the process environment
func Load() *Config {
	loaded := godotenv.Load() == nil

	base := strings.TrimRight(getEnv("CLASH_API_BASE_URL", "http://localhost:5000"), "/")

	cfg := &Config{
		APIBaseURL:     base,
		SocketURL:      getEnv("CLASH_SOCKET_URL", ""),
		HTTPTimeout:    getEnvAsDuration("CLASH_HTTP_TIMEOUT", 15*time.Second),
		SessionStore:   strings.ToLower(getEnv("CLASH_SESSION_STORE", StoreFile)),
		SessionFile:    getEnv("CLASH_SESSION_FILE", defaultSessionFile()),
		SessionProfile: getEnv("CLASH_SESSION_PROFILE", "default"),
		SessionTTL:     getEnvAsDuration("CLASH_SESSION_TTL", 0),
		RedisAddr:      strings.TrimPrefix(getEnv("REDIS_ADDR", "localhost:6379"), "redis://"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvAsInt("REDIS_DB", 0),
		MongoURI:       getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:  getEnv("MONGODB_DATABASE", "codeclash"),
		LogLevel:       getEnv("CLASH_LOG_LEVEL", "info"),
		LogFormat:      getEnv("CLASH_LOG_FORMAT", "console"),
		EnvFileLoaded:  loaded,
	}
	if cfg.SocketURL == "" {
		cfg.SocketURL = SocketURLFor(base)
	}
	return cfg
}

// SocketURLFor derives the realtime endpoint from the HTTP base URL
func SocketURLFor(base string) string {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return "ws://localhost:5000/ws"
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String()
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "codeclash", "session.json")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	// bare numbers are seconds
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
