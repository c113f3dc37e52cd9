package controller

import (
	"codeclash/internal/model"
	"context"
	"math"
	"slices"

	"golang.org/x/sync/errgroup"
	"go.uber.org/zap"
)

// Stats are the headline numbers derived from match history
type Stats struct {
	MatchesPlayed int
	Wins          int
	// FastestTime is the quickest accepted submission; nil without one
	FastestTime *int
	Accuracy    int
}

// ComputeStats derives the dashboard numbers. A win is a match with 100%
// accuracy.
func ComputeStats(matches []model.MatchSummary) Stats {
	st := Stats{MatchesPlayed: len(matches)}
	for _, m := range matches {
		if m.Won() {
			st.Wins++
		}
		if m.Analytics == nil || m.Analytics.FastestSubmission == nil || m.Analytics.FastestSubmission.TimeTaken == nil {
			continue
		}
		t := *m.Analytics.FastestSubmission.TimeTaken
		if st.FastestTime == nil || t < *st.FastestTime {
			st.FastestTime = &t
		}
	}
	if st.MatchesPlayed > 0 {
		st.Accuracy = int(math.Round(float64(st.Wins) / float64(st.MatchesPlayed) * 100))
	}
	return st
}

// DashboardView is the home screen after login
type DashboardView struct {
	Loading   bool
	Error     string
	User      *model.User
	Followers []model.User
	Following []model.User
	Matches   []model.MatchSummary
	Stats     Stats

	Suggestions     []model.User
	SuggestionError string
	FollowLoading   map[model.Ref]bool
}

// NewFollowers are the suggestions that follow the user without being
// followed back, at most five
func (v DashboardView) NewFollowers() []model.User {
	out := make([]model.User, 0, 5)
	for _, u := range v.Suggestions {
		if u.IsFollowBack && len(out) < 5 {
			out = append(out, u)
		}
	}
	return out
}

// Dashboard loads the profile, social graph and match history
type Dashboard struct {
	base[DashboardView]
	d Deps
}

// NewDashboard creates the dashboard controller
func NewDashboard(d Deps) *Dashboard {
	c := &Dashboard{d: d.named("dashboard")}
	c.view.FollowLoading = map[model.Ref]bool{}
	return c
}

// Mount fetches the profile first, goes online, then loads the rest in
// parallel
func (c *Dashboard) Mount(ctx context.Context) error {
	c.update(func(v *DashboardView) {
		v.Loading = true
		v.Error = ""
	})

	me, err := c.d.API.Users.Me(ctx)
	if err != nil {
		c.update(func(v *DashboardView) {
			v.Loading = false
			v.Error = BannerMessage(err)
		})
		return err
	}
	c.update(func(v *DashboardView) { v.User = me })
	goOnline(ctx, c.d, me.ID)

	var (
		followers, following []model.User
		matches              []model.MatchSummary
	)
	// each list loads on its own; the first failure only sets the banner
	var g errgroup.Group
	g.Go(func() (err error) {
		followers, err = c.d.API.Users.Followers(ctx, me.ID)
		return err
	})
	g.Go(func() (err error) {
		following, err = c.d.API.Users.Following(ctx, me.ID)
		return err
	})
	g.Go(func() (err error) {
		matches, err = c.d.API.Matches.History(ctx)
		return err
	})
	err = g.Wait()

	c.update(func(v *DashboardView) {
		v.Loading = false
		v.Followers = orEmpty(followers)
		v.Following = orEmpty(following)
		v.Matches = orEmpty(matches)
		v.Stats = ComputeStats(v.Matches)
		if err != nil {
			v.Error = BannerMessage(err)
		}
	})
	c.refreshSuggestions(ctx)
	return err
}

func (c *Dashboard) Unmount() {}

// RefreshSuggestions reloads the follow-back list
func (c *Dashboard) RefreshSuggestions(ctx context.Context) { c.refreshSuggestions(ctx) }

func (c *Dashboard) refreshSuggestions(ctx context.Context) {
	list, err := c.d.API.Users.FollowBackSuggestions(ctx)
	c.update(func(v *DashboardView) {
		if err != nil {
			v.SuggestionError = bannerOr(err, msgSuggestFailed)
			return
		}
		v.SuggestionError = ""
		v.Suggestions = orEmpty(list)
	})
}

// FollowBack follows a suggested user and drops them from the suggestions
func (c *Dashboard) FollowBack(ctx context.Context, id model.Ref) error {
	c.update(func(v *DashboardView) { v.FollowLoading = setFlag(v.FollowLoading, id, true) })
	err := c.d.API.Users.Follow(ctx, id)
	c.update(func(v *DashboardView) {
		v.FollowLoading = setFlag(v.FollowLoading, id, false)
		if err != nil {
			v.SuggestionError = bannerOr(err, msgFollowFailed)
			return
		}
		v.Suggestions = slices.DeleteFunc(slices.Clone(v.Suggestions), func(u model.User) bool { return u.ID == id })
	})
	if err != nil {
		c.d.Log.Warn("follow back failed", zap.String("user", id.String()), zap.Error(err))
	}
	return err
}

// Logout ends the session from the dashboard
func (c *Dashboard) Logout(ctx context.Context) error {
	return logout(ctx, c.d, "/login")
}

// setFlag returns a copy of m with id set or cleared, so snapshots already
// handed out never change underneath their reader
func setFlag(m map[model.Ref]bool, id model.Ref, on bool) map[model.Ref]bool {
	out := make(map[model.Ref]bool, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	if on {
		out[id] = true
	} else {
		delete(out, id)
	}
	return out
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
