package controller

import (
	"codeclash/internal/model"
	"context"
	"math"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
	"go.uber.org/zap"
)

// ProfileView is one player's public profile
type ProfileView struct {
	Loading     bool
	Error       string
	User        *model.User
	Followers   []model.User
	Following   []model.User
	Played      []model.MatchSummary
	IsFollowing bool
	IsOwn       bool
	Editing     bool
	FollowBusy  bool
}

// WinRate is wins over matches played, rounded to a whole percent
func (v ProfileView) WinRate() int {
	if v.User == nil || v.User.MatchesPlayed == 0 {
		return 0
	}
	return int(math.Round(float64(v.User.WinCount) / float64(v.User.MatchesPlayed) * 100))
}

// Profile loads a profile and its social graph and handles follows and
// own-profile edits
type Profile struct {
	base[ProfileView]
	d  Deps
	id model.Ref
}

// NewProfile creates the profile controller for user id
func NewProfile(d Deps, id string) *Profile {
	return &Profile{d: d.named("profile"), id: model.Ref(id)}
}

func (c *Profile) me() model.User {
	u, _ := c.d.Sessions.User()
	return u
}

func (c *Profile) Mount(ctx context.Context) error {
	c.update(func(v *ProfileView) {
		v.Loading = true
		v.Error = ""
	})
	u, err := c.d.API.Users.Profile(ctx, c.id)
	if err != nil {
		c.update(func(v *ProfileView) {
			v.Loading = false
			v.Error = BannerMessage(err)
		})
		return err
	}
	me := c.me()
	c.update(func(v *ProfileView) {
		v.User = u
		v.IsOwn = !me.ID.Empty() && (me.ID == c.id || me.ID == u.ID)
	})

	// the social graph and history are best effort and load independently
	var (
		followers, following []model.User
		played               []model.MatchSummary
	)
	var g errgroup.Group
	g.Go(func() (err error) {
		followers, err = c.d.API.Users.Followers(ctx, u.ID)
		return err
	})
	g.Go(func() (err error) {
		following, err = c.d.API.Users.Following(ctx, u.ID)
		return err
	})
	g.Go(func() (err error) {
		played, err = c.d.API.Users.Matches(ctx, u.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		c.d.Log.Warn("profile details incomplete", zap.String("user", u.ID.String()), zap.Error(err))
	}

	c.update(func(v *ProfileView) {
		v.Loading = false
		v.Followers = orEmpty(followers)
		v.Following = orEmpty(following)
		v.Played = orEmpty(played)
		v.IsFollowing = containsUser(v.Followers, me.ID)
	})
	return nil
}

func (c *Profile) Unmount() {}

func containsUser(users []model.User, id model.Ref) bool {
	if id.Empty() {
		return false
	}
	return slices.ContainsFunc(users, func(u model.User) bool { return u.ID == id })
}

// Follow follows the profile owner. The follower list and flag change at
// once and revert if the request fails.
func (c *Profile) Follow(ctx context.Context) error { return c.toggleFollow(ctx, true) }

// Unfollow is the optimistic inverse of Follow
func (c *Profile) Unfollow(ctx context.Context) error { return c.toggleFollow(ctx, false) }

func (c *Profile) toggleFollow(ctx context.Context, follow bool) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	me := c.me()
	var (
		target        model.Ref
		prevFollowers []model.User
		prevFlag      bool
	)
	c.update(func(v *ProfileView) {
		if v.User != nil {
			target = v.User.ID
		}
		prevFollowers, prevFlag = v.Followers, v.IsFollowing
		v.FollowBusy = true
		v.Error = ""
		if follow {
			v.IsFollowing = true
			if !containsUser(v.Followers, me.ID) {
				v.Followers = append(slices.Clone(v.Followers), model.User{ID: me.ID, Username: me.Username})
			}
		} else {
			v.IsFollowing = false
			v.Followers = slices.DeleteFunc(slices.Clone(v.Followers), func(u model.User) bool { return u.ID == me.ID })
		}
	})
	if target.Empty() {
		c.update(func(v *ProfileView) {
			v.FollowBusy = false
			v.Followers, v.IsFollowing = prevFollowers, prevFlag
		})
		return nil
	}

	var err error
	fallback := msgFollowFailed
	if follow {
		err = c.d.API.Users.Follow(ctx, target)
	} else {
		err = c.d.API.Users.Unfollow(ctx, target)
		fallback = msgUnfollowFailed
	}
	c.update(func(v *ProfileView) {
		v.FollowBusy = false
		if err != nil {
			v.Followers, v.IsFollowing = prevFollowers, prevFlag
			v.Error = bannerOr(err, fallback)
		}
	})
	return err
}

// StartEdit opens the own-profile editor
func (c *Profile) StartEdit() {
	c.update(func(v *ProfileView) { v.Editing = v.IsOwn })
}

// CancelEdit closes the editor
func (c *Profile) CancelEdit() {
	c.update(func(v *ProfileView) { v.Editing = false })
}

// UpdateProfile saves a new username and optional avatar for the signed-in
// user and refreshes the stored session
func (c *Profile) UpdateProfile(ctx context.Context, username string, avatar *model.Avatar) error {
	if !c.View().IsOwn {
		return nil
	}
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	u, err := c.d.API.Users.UpdateMe(ctx, model.ProfileUpdate{Username: strings.TrimSpace(username), Avatar: avatar})
	if err == nil {
		err = c.d.Sessions.UpdateUser(ctx, *u)
	}
	c.update(func(v *ProfileView) {
		if err != nil {
			v.Error = BannerMessage(err)
			return
		}
		v.User = u
		v.Editing = false
	})
	return err
}
