package controller

import (
	"codeclash/internal/model"
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

const (
	searchDebounce = 300 * time.Millisecond
	minSearchLen   = 2
)

// SearchView is the player search screen
type SearchView struct {
	Query         string
	Loading       bool
	Error         string
	Results       []model.User
	FollowLoading map[model.Ref]bool
}

// SearchPlayers finds players by name and follows them from the result list
type SearchPlayers struct {
	base[SearchView]
	d Deps

	debounceMu   sync.Mutex
	debounceStop func() bool
	ctx          context.Context
}

// NewSearchPlayers creates the search controller
func NewSearchPlayers(d Deps) *SearchPlayers {
	c := &SearchPlayers{d: d.named("search"), ctx: context.Background()}
	c.view.FollowLoading = map[model.Ref]bool{}
	return c
}

func (c *SearchPlayers) Mount(ctx context.Context) error {
	c.debounceMu.Lock()
	c.ctx = ctx
	c.debounceMu.Unlock()
	return nil
}

func (c *SearchPlayers) Unmount() {
	c.debounceMu.Lock()
	stop := c.debounceStop
	c.debounceStop = nil
	c.debounceMu.Unlock()
	if stop != nil {
		stop()
	}
}

// SetQuery records the query and searches once typing pauses
func (c *SearchPlayers) SetQuery(q string) {
	c.update(func(v *SearchView) { v.Query = q })

	c.debounceMu.Lock()
	defer c.debounceMu.Unlock()
	if c.debounceStop != nil {
		c.debounceStop()
	}
	ctx := c.ctx
	c.debounceStop = c.d.Clock.AfterFunc(searchDebounce, func() {
		_ = c.Search(ctx, q)
	})
}

// Search runs the query now. Queries shorter than two characters clear the
// results without a request.
func (c *SearchPlayers) Search(ctx context.Context, q string) error {
	if len(strings.TrimSpace(q)) < minSearchLen {
		c.update(func(v *SearchView) { v.Results = []model.User{} })
		return nil
	}
	c.update(func(v *SearchView) {
		v.Loading = true
		v.Error = ""
	})
	users, err := c.d.API.Users.Search(ctx, q)
	c.update(func(v *SearchView) {
		v.Loading = false
		if err != nil {
			v.Error = bannerOr(err, msgSearchFailed)
			return
		}
		v.Results = orEmpty(users)
	})
	return err
}

// Follow marks a result as followed at once and reverts on failure
func (c *SearchPlayers) Follow(ctx context.Context, id model.Ref) error {
	return c.toggle(ctx, id, true)
}

// Unfollow is the optimistic inverse of Follow
func (c *SearchPlayers) Unfollow(ctx context.Context, id model.Ref) error {
	return c.toggle(ctx, id, false)
}

func (c *SearchPlayers) toggle(ctx context.Context, id model.Ref, follow bool) error {
	busy := false
	c.update(func(v *SearchView) {
		if v.FollowLoading[id] {
			busy = true
			return
		}
		v.FollowLoading = setFlag(v.FollowLoading, id, true)
		v.Error = ""
		v.Results = withFollowing(v.Results, id, follow)
	})
	if busy {
		return ErrBusy
	}

	var err error
	fallback := msgFollowFailed
	if follow {
		err = c.d.API.Users.Follow(ctx, id)
	} else {
		err = c.d.API.Users.Unfollow(ctx, id)
		fallback = msgUnfollowFailed
	}
	c.update(func(v *SearchView) {
		v.FollowLoading = setFlag(v.FollowLoading, id, false)
		if err != nil {
			v.Results = withFollowing(v.Results, id, !follow)
			v.Error = bannerOr(err, fallback)
		}
	})
	return err
}

func withFollowing(users []model.User, id model.Ref, following bool) []model.User {
	out := slices.Clone(users)
	for i := range out {
		if out[i].ID == id {
			out[i].IsFollowing = following
		}
	}
	return out
}
