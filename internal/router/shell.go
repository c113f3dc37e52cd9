// Package router maps screen paths to screens and runs one screen at a time.
package router

import (
	"codeclash/internal/logging"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Screen is a mounted view controller
type Screen interface {
	Mount(ctx context.Context) error
	Unmount()
}

// Location is a resolved path
type Location struct {
	Name  string
	Path  string
	Vars  map[string]string
	Query url.Values
}

// Factory builds the screen for a resolved location
type Factory func(loc Location) Screen

// Sessions is the session state the guard reads
type Sessions interface {
	Authenticated() bool
	IsAdmin() bool
}

var ErrNotFound = errors.New("no such screen")

// Shell owns the current screen. Navigate is safe from any goroutine and
// from inside Mount and Unmount; such calls are queued and run in order.
type Shell struct {
	ctx      context.Context
	router   *mux.Router
	access   map[string]Access
	sessions Sessions
	log      *zap.Logger

	mu        sync.Mutex
	factories map[string]Factory
	queue     []string
	running   bool
	current   Screen
	location  Location
	onChange  func(Location)
}

// New creates a shell with every route in Routes registered. Screens mount
// with ctx.
func New(ctx context.Context, sessions Sessions, log *zap.Logger) *Shell {
	s := &Shell{
		ctx:       ctx,
		router:    mux.NewRouter(),
		access:    make(map[string]Access, len(Routes)),
		sessions:  sessions,
		log:       logging.OrNop(log).Named("router"),
		factories: make(map[string]Factory),
	}
	for _, r := range Routes {
		s.router.NewRoute().Name(r.Name).Path(r.Path).Methods(http.MethodGet)
		s.access[r.Name] = r.Access
	}
	return s
}

// Handle sets the factory for a named route
func (s *Shell) Handle(name string, f Factory) error {
	if s.router.Get(name) == nil {
		return fmt.Errorf("handle %q: %w", name, ErrNotFound)
	}
	s.mu.Lock()
	s.factories[name] = f
	s.mu.Unlock()
	return nil
}

// OnChange registers a hook run after every completed navigation
func (s *Shell) OnChange(f func(Location)) {
	s.mu.Lock()
	s.onChange = f
	s.mu.Unlock()
}

// URL builds the path of a named route
func (s *Shell) URL(name string, pairs ...string) (string, error) {
	r := s.router.Get(name)
	if r == nil {
		return "", fmt.Errorf("url %q: %w", name, ErrNotFound)
	}
	u, err := r.URLPath(pairs...)
	if err != nil {
		return "", fmt.Errorf("url %q: %w", name, err)
	}
	return u.Path, nil
}

// Resolve matches a path, with an optional query, to a named route
func (s *Shell) Resolve(path string) (Location, error) {
	u, err := url.Parse(path)
	if err != nil {
		return Location{}, fmt.Errorf("resolve %q: %w", path, err)
	}
	req := &http.Request{Method: http.MethodGet, URL: u, Host: "clash"}
	var m mux.RouteMatch
	if !s.router.Match(req, &m) || m.Route == nil {
		return Location{}, fmt.Errorf("resolve %q: %w", path, ErrNotFound)
	}
	vars := m.Vars
	if vars == nil {
		vars = map[string]string{}
	}
	return Location{Name: m.Route.GetName(), Path: u.Path, Vars: vars, Query: u.Query()}, nil
}

// Current returns the mounted screen and its location
func (s *Shell) Current() (Screen, Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.location
}

// Navigate unmounts the current screen and mounts the one at path
func (s *Shell) Navigate(path string) {
	s.mu.Lock()
	s.queue = append(s.queue, path)
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	for len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
		s.transition(next)
		s.mu.Lock()
	}
	s.running = false
	s.mu.Unlock()
}

// Close unmounts the current screen
func (s *Shell) Close() {
	s.mu.Lock()
	cur := s.current
	s.current, s.location = nil, Location{}
	s.mu.Unlock()
	if cur != nil {
		cur.Unmount()
	}
}

func (s *Shell) guard(loc Location) (string, bool) {
	a := s.access[loc.Name]
	switch {
	case a == Open:
		return "", true
	case s.sessions == nil || !s.sessions.Authenticated():
		return a.redirect(), false
	case a == Admin && !s.sessions.IsAdmin():
		return a.redirect(), false
	}
	return "", true
}

func (s *Shell) transition(path string) {
	loc, err := s.Resolve(path)
	if err != nil {
		s.log.Warn("navigate ignored", zap.String("path", path), zap.Error(err))
		return
	}
	if to, ok := s.guard(loc); !ok {
		s.log.Info("route guarded", zap.String("path", path), zap.String("redirect", to))
		if loc, err = s.Resolve(to); err != nil {
			return
		}
	}

	s.mu.Lock()
	f := s.factories[loc.Name]
	prev := s.current
	s.current, s.location = nil, loc
	s.mu.Unlock()

	if prev != nil {
		prev.Unmount()
	}
	if f == nil {
		s.log.Warn("no screen registered", zap.String("route", loc.Name))
		s.changed(loc)
		return
	}

	next := f(loc)
	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
	if err := next.Mount(s.ctx); err != nil {
		s.log.Debug("screen mount failed", zap.String("route", loc.Name), zap.Error(err))
	}
	s.changed(loc)
}

func (s *Shell) changed(loc Location) {
	s.mu.Lock()
	f := s.onChange
	s.mu.Unlock()
	if f != nil {
		f(loc)
	}
}
