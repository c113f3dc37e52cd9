package controller

import (
	"codeclash/internal/model"
	"codeclash/internal/session"
	"codeclash/internal/transport/rest"
	"codeclash/internal/transport/ws/wstest"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingNav struct {
	mu    sync.Mutex
	paths []string
}

func (n *recordingNav) Navigate(path string) {
	n.mu.Lock()
	n.paths = append(n.paths, path)
	n.mu.Unlock()
}

func (n *recordingNav) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

func (n *recordingNav) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.paths) == 0 {
		return ""
	}
	return n.paths[len(n.paths)-1]
}

type manualTicker struct {
	ch      chan time.Time
	stopped bool
}

type manualAfter struct {
	f     func()
	done  bool
	abort bool
}

// manualClock only moves when the test says so
type manualClock struct {
	mu      sync.Mutex
	tickers []*manualTicker
	afters  []*manualAfter
}

func (c *manualClock) Tick(time.Duration) (<-chan time.Time, func()) {
	t := &manualTicker{ch: make(chan time.Time)}
	c.mu.Lock()
	c.tickers = append(c.tickers, t)
	c.mu.Unlock()
	return t.ch, func() {
		c.mu.Lock()
		t.stopped = true
		c.mu.Unlock()
	}
}

func (c *manualClock) AfterFunc(_ time.Duration, f func()) func() bool {
	a := &manualAfter{f: f}
	c.mu.Lock()
	c.afters = append(c.afters, a)
	c.mu.Unlock()
	return func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		if a.done || a.abort {
			return false
		}
		a.abort = true
		return true
	}
}

// tick delivers one tick to every live ticker and waits for it to be taken
func (c *manualClock) tick(t *testing.T) {
	t.Helper()
	c.mu.Lock()
	var live []*manualTicker
	for _, tk := range c.tickers {
		if !tk.stopped {
			live = append(live, tk)
		}
	}
	c.mu.Unlock()
	for _, tk := range live {
		select {
		case tk.ch <- time.Now():
		case <-time.After(time.Second):
			t.Fatal("ticker not drained")
		}
	}
}

// fire runs every pending AfterFunc callback
func (c *manualClock) fire() {
	c.mu.Lock()
	var due []*manualAfter
	for _, a := range c.afters {
		if !a.done && !a.abort {
			a.done = true
			due = append(due, a)
		}
	}
	c.mu.Unlock()
	for _, a := range due {
		a.f()
	}
}

func (c *manualClock) liveTickers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, tk := range c.tickers {
		if !tk.stopped {
			n++
		}
	}
	return n
}

type testEnv struct {
	mux      *http.ServeMux
	rt       *wstest.Fake
	sessions *session.Manager
	nav      *recordingNav
	clock    *manualClock
	deps     Deps
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	sessions := session.NewManager(session.NewFileStore(filepath.Join(t.TempDir(), "session.json")), nil)
	e := &testEnv{
		mux:      mux,
		rt:       wstest.New(),
		sessions: sessions,
		nav:      &recordingNav{},
		clock:    &manualClock{},
	}
	e.deps = Deps{
		API:      rest.NewClient(srv.URL, sessions, 5*time.Second, nil),
		RT:       e.rt,
		Sessions: sessions,
		Nav:      e.nav,
		Clock:    e.clock,
	}
	return e
}

func (e *testEnv) handle(pattern string, h http.HandlerFunc) {
	e.mux.HandleFunc(pattern, h)
}

func (e *testEnv) reply(pattern string, status int, v any) {
	e.handle(pattern, func(w http.ResponseWriter, r *http.Request) { writeJSON(w, status, v) })
}

func (e *testEnv) login(t *testing.T, u model.User) {
	t.Helper()
	require.NoError(t, e.sessions.Login(context.Background(), &model.Session{Token: "tok-" + u.ID.String(), User: u}))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeBody(t *testing.T, r *http.Request, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(r.Body).Decode(v))
}

var alice = model.User{ID: "a1", Username: "alice", Avatar: "a.png"}
var bob = model.User{ID: "b2", Username: "bob"}
