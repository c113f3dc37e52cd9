package rest

import (
	"codeclash/internal/model"
	"context"
	"net/http"
	"net/url"
)

// UsersAPI covers /api/users
type UsersAPI struct {
	c *Client
}

func userPath(id model.Ref, suffix string) string {
	return "/api/users/" + url.PathEscape(id.String()) + suffix
}

// Me returns the logged-in user's profile
func (a *UsersAPI) Me(ctx context.Context) (*model.User, error) {
	var out model.User
	if err := a.c.doJSON(ctx, http.MethodGet, "/api/users/profile", nil, authRequired, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMe edits the logged-in user's username and avatar
func (a *UsersAPI) UpdateMe(ctx context.Context, upd model.ProfileUpdate) (*model.User, error) {
	body, contentType, err := multipartBody([]formField{{"username", upd.Username}}, upd.Avatar)
	if err != nil {
		return nil, err
	}
	var out model.User
	err = a.c.do(ctx, request{
		method:      http.MethodPut,
		path:        "/api/users/profile",
		body:        body,
		contentType: contentType,
		auth:        authRequired,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Complete finishes a first-time profile, as left by Google sign-up
func (a *UsersAPI) Complete(ctx context.Context, id model.Ref, upd model.ProfileUpdate) error {
	body, contentType, err := multipartBody([]formField{
		{"username", upd.Username},
		{"profileIncomplete", "false"},
	}, upd.Avatar)
	if err != nil {
		return err
	}
	return a.c.do(ctx, request{
		method:      http.MethodPatch,
		path:        userPath(id, ""),
		body:        body,
		contentType: contentType,
		auth:        authRequired,
	}, nil)
}

// Profile returns another user's public profile
func (a *UsersAPI) Profile(ctx context.Context, id model.Ref) (*model.User, error) {
	var out model.User
	if err := a.c.doJSON(ctx, http.MethodGet, userPath(id, "/profile"), nil, authRequired, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Followers lists who follows id
func (a *UsersAPI) Followers(ctx context.Context, id model.Ref) ([]model.User, error) {
	var out []model.User
	err := a.c.doJSON(ctx, http.MethodGet, userPath(id, "/followers"), nil, authRequired, &out)
	return out, err
}

// Following lists who id follows
func (a *UsersAPI) Following(ctx context.Context, id model.Ref) ([]model.User, error) {
	var out []model.User
	err := a.c.doJSON(ctx, http.MethodGet, userPath(id, "/following"), nil, authRequired, &out)
	return out, err
}

// Matches lists the matches id played
func (a *UsersAPI) Matches(ctx context.Context, id model.Ref) ([]model.MatchSummary, error) {
	out, err := a.MatchesOf(ctx, id)
	if err != nil {
		return nil, err
	}
	return out.Played, nil
}

// MatchesOf returns both the hosted and the played matches of id
func (a *UsersAPI) MatchesOf(ctx context.Context, id model.Ref) (*model.UserMatches, error) {
	var out model.UserMatches
	if err := a.c.doJSON(ctx, http.MethodGet, userPath(id, "/matches"), nil, authRequired, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Follow starts following id
func (a *UsersAPI) Follow(ctx context.Context, id model.Ref) error {
	return a.c.doJSON(ctx, http.MethodPost, userPath(id, "/follow"), struct{}{}, authRequired, nil)
}

// Unfollow stops following id
func (a *UsersAPI) Unfollow(ctx context.Context, id model.Ref) error {
	return a.c.doJSON(ctx, http.MethodPost, userPath(id, "/unfollow"), struct{}{}, authRequired, nil)
}

// Search finds players by name
func (a *UsersAPI) Search(ctx context.Context, query string) ([]model.User, error) {
	var out []model.User
	err := a.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/api/users/search",
		query:  url.Values{"query": {query}},
		auth:   authRequired,
	}, &out)
	return out, err
}

// FollowBackSuggestions lists followers the user does not follow yet
func (a *UsersAPI) FollowBackSuggestions(ctx context.Context) ([]model.User, error) {
	var out []model.User
	err := a.c.doJSON(ctx, http.MethodGet, "/api/users/suggestions/follow-back", nil, authRequired, &out)
	return out, err
}

// All lists every user; admin only
func (a *UsersAPI) All(ctx context.Context) ([]model.User, error) {
	var out []model.User
	err := a.c.doJSON(ctx, http.MethodGet, "/api/users/all", nil, authRequired, &out)
	return out, err
}
