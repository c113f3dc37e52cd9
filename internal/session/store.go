package session

import (
	"codeclash/internal/model"
	"context"
	"errors"
)

// ErrNoSession is returned when an operation needs a logged-in user
var ErrNoSession = errors.New("no active session")

// Store persists one session between runs.
// Get returns nil, nil when nothing is stored.
type Store interface {
	Set(ctx context.Context, s *model.Session) error
	Get(ctx context.Context) (*model.Session, error)
	Delete(ctx context.Context) error
}
