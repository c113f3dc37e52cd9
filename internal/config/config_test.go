package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CLASH_API_BASE_URL", "")
	t.Setenv("CLASH_SOCKET_URL", "")
	t.Setenv("CLASH_SESSION_STORE", "")

	cfg := Load()
	assert.Equal(t, "http://localhost:5000", cfg.APIBaseURL)
	assert.Equal(t, "ws://localhost:5000/ws", cfg.SocketURL)
	assert.Equal(t, StoreFile, cfg.SessionStore)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CLASH_API_BASE_URL", "https://clash.example.com/")
	t.Setenv("CLASH_SOCKET_URL", "")
	t.Setenv("CLASH_SESSION_STORE", "Redis")
	t.Setenv("CLASH_HTTP_TIMEOUT", "3")
	t.Setenv("REDIS_ADDR", "redis://cache:6379")

	cfg := Load()
	assert.Equal(t, "https://clash.example.com", cfg.APIBaseURL)
	assert.Equal(t, "wss://clash.example.com/ws", cfg.SocketURL)
	assert.Equal(t, StoreRedis, cfg.SessionStore)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
}

func TestSocketURLFor(t *testing.T) {
	assert.Equal(t, "ws://127.0.0.1:8080/api/ws", SocketURLFor("http://127.0.0.1:8080/api"))
	assert.Equal(t, "ws://localhost:5000/ws", SocketURLFor("::bad"))
}
