package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"codeclash/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backend struct {
	mux *http.ServeMux

	mu   sync.Mutex
	hits []string
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{mux: http.NewServeMux()}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.hits = append(b.hits, r.Method+" "+r.URL.Path)
		b.mu.Unlock()
		b.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	t.Setenv("CLASH_API_BASE_URL", srv.URL)
	t.Setenv("CLASH_SESSION_STORE", "file")
	t.Setenv("CLASH_SESSION_FILE", filepath.Join(t.TempDir(), "session.json"))
	t.Setenv("CLASH_LOG_LEVEL", "fatal")
	return b
}

func (b *backend) reply(pattern string, status int, v any) {
	b.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	})
}

func (b *backend) requests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.hits)
}

func (b *backend) reset() {
	b.mu.Lock()
	b.hits = nil
	b.mu.Unlock()
}

func clash(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestUsage(t *testing.T) {
	code, out, _ := clash()
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "create-match")
	assert.Contains(t, out, "admin-questions")

	code, _, errOut := clash("dance")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, `unknown command "dance"`)
}

func TestCommandsNeedSession(t *testing.T) {
	b := newBackend(t)
	code, _, errOut := clash("questions")
	assert.Equal(t, 1, code)
	assert.Equal(t, "Please log in first.\n", errOut)
	assert.Empty(t, b.requests())
}

func TestLoginPersistsAcrossRuns(t *testing.T) {
	b := newBackend(t)
	b.reply("POST /api/auth/login", http.StatusOK, map[string]any{
		"token": "tok",
		"user":  map[string]any{"_id": "a1", "username": "alice"},
	})
	var (
		mu          sync.Mutex
		auth, query string
	)
	b.mux.HandleFunc("GET /api/questions", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		auth, query = r.Header.Get("Authorization"), r.URL.RawQuery
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]model.Question{{ID: "q1", Title: "Two Sum", Difficulty: model.DifficultyHard}})
	})

	code, out, errOut := clash("login", "-email", "a@b.c", "-password", "pw")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Logged in as alice")

	code, out, errOut = clash("questions", "-difficulty", "Hard")
	require.Equal(t, 0, code, errOut)
	mu.Lock()
	assert.Equal(t, "Bearer tok", auth)
	assert.Equal(t, "difficulty=Hard", query)
	mu.Unlock()
	assert.Contains(t, out, "Two Sum [Hard]")
	assert.Contains(t, out, "(q1)")

	code, out, _ = clash("logout")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Logged out.")
	code, _, _ = clash("whoami")
	assert.Equal(t, 1, code)
}

func TestServerMessageGoesToStderr(t *testing.T) {
	b := newBackend(t)
	b.reply("POST /api/auth/login", http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})

	code, out, errOut := clash("login", "-email", "a@b.c", "-password", "nope")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Equal(t, "Invalid credentials\n", errOut)
}

func TestCreateMatchValidatesBeforeRequests(t *testing.T) {
	b := newBackend(t)
	b.reply("POST /api/auth/login", http.StatusOK, map[string]any{"token": "tok", "_id": "a1", "username": "alice"})
	code, _, errOut := clash("login", "-email", "a@b.c", "-password", "pw")
	require.Equal(t, 0, code, errOut)
	b.reset()

	code, _, errOut = clash("create-match", "-open=false", "-langs", "python", "-random", "1,0,0")
	assert.Equal(t, 1, code)
	assert.Equal(t, "Room name is required.\n", errOut)
	assert.Empty(t, b.requests())

	code, _, errOut = clash("create-match", "-open=false", "-name", "Finals", "-questions", "3", "-langs", "python", "-random", "1,1,0")
	assert.Equal(t, 1, code)
	assert.Equal(t, "Total random questions must equal 3.\n", errOut)
}

func TestRandomCounts(t *testing.T) {
	got, err := randomCounts("1, 2,0")
	require.NoError(t, err)
	assert.Equal(t, model.RandomCounts{Easy: 1, Medium: 2}, got)

	for _, bad := range []string{"1,2", "a,b,c"} {
		_, err := randomCounts(bad)
		assert.Error(t, err, bad)
	}
}

func TestBadFlagIsBanner(t *testing.T) {
	newBackend(t)
	code, _, errOut := clash("questions", "-nope")
	assert.Equal(t, 1, code)
	assert.True(t, strings.HasSuffix(errOut, "flag provided but not defined: -nope\n"), errOut)
}
