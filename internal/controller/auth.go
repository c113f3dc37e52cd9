package controller

import (
	"codeclash/internal/form"
	"codeclash/internal/model"
	"codeclash/internal/session"
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// OAuth callback errors and the banners they map to
const (
	oauthExists   = "User already exists. Please login with Google."
	oauthNoAcct   = "No account found. Please sign up with Google."
	msgOAuthDup   = "An account with this Google account already exists. Please log in instead."
	msgOAuthNone  = "No account found for this Google account. Please sign up first."
	msgOAuthOther = "Google authentication failed. Please try again."

	msgNotAdmin       = "Not an admin account"
	msgProfileFailed  = "Failed to update profile. Please try again."
	msgLoginOK        = "Login successful!"
	msgRegisterOK     = "Registration successful! Redirecting to dashboard..."
	msgUserIDMissing  = "User ID missing. Please log in again."
	msgFollowFailed   = "Failed to follow user. Please try again."
	msgUnfollowFailed = "Failed to unfollow user. Please try again."
	msgSearchFailed   = "Failed to search users. Please try again."
	msgSuggestFailed  = "Failed to load suggestions. Please try again."
	msgFetchQuestions = "Failed to fetch questions"
	msgDeleteQuestion = "Failed to delete question"
	msgMatchesFailed  = "Failed to fetch matches"
	msgMatchCreated   = "Match created successfully!"
)

// AuthView is the state of the login, register, OAuth and profile
// completion screens
type AuthView struct {
	Loading bool
	Error   string
	Success string
	// OAuthAction is "login" or "register" when the OAuth error banner
	// offers a way out
	OAuthAction string
}

// Auth drives every screen that creates or ends a session
type Auth struct {
	base[AuthView]
	d Deps
}

// NewAuth creates the auth controller
func NewAuth(d Deps) *Auth {
	return &Auth{d: d.named("auth")}
}

func (a *Auth) Mount(ctx context.Context) error { return nil }

func (a *Auth) Unmount() {}

func (a *Auth) start() error {
	if err := a.begin(); err != nil {
		return err
	}
	a.update(func(v *AuthView) {
		v.Loading = true
		v.Error = ""
		v.Success = ""
		v.OAuthAction = ""
	})
	return nil
}

func (a *Auth) finish(err error) error {
	a.end()
	a.update(func(v *AuthView) {
		v.Loading = false
		if err != nil {
			v.Error = BannerMessage(err)
		}
	})
	return err
}

// Login signs in with email and password, announces presence and opens
// the dashboard
func (a *Auth) Login(ctx context.Context, email, password string) error {
	if err := a.start(); err != nil {
		return err
	}
	s, err := a.d.API.Auth.Login(ctx, model.LoginRequest{Email: strings.TrimSpace(email), Password: password})
	if err == nil {
		err = a.d.Sessions.Login(ctx, s)
	}
	if err != nil {
		return a.finish(err)
	}
	u, _ := a.d.Sessions.User()
	goOnline(ctx, a.d, u.ID)
	a.update(func(v *AuthView) { v.Success = msgLoginOK })
	a.finish(nil)
	a.d.Nav.Navigate("/dashboard")
	return nil
}

// AdminLogin signs in by username and keeps the session only for admins
func (a *Auth) AdminLogin(ctx context.Context, username, password string) error {
	if err := a.start(); err != nil {
		return err
	}
	s, err := a.d.API.Auth.Login(ctx, model.LoginRequest{Username: strings.TrimSpace(username), Password: password})
	if err != nil {
		return a.finish(err)
	}
	if !isAdminSession(s) {
		return a.finish(invalid(msgNotAdmin))
	}
	if err := a.d.Sessions.Login(ctx, s); err != nil {
		return a.finish(err)
	}
	a.finish(nil)
	a.d.Nav.Navigate("/admin-dashboard")
	return nil
}

func isAdminSession(s *model.Session) bool {
	if s.User.Role != "" {
		return s.User.IsAdmin()
	}
	c, err := session.DecodeClaims(s.Token)
	return err == nil && c.Role == model.RoleAdmin
}

// Register creates the account, then signs in with the same credentials
func (a *Auth) Register(ctx context.Context, username, email, password string, avatar *model.Avatar) error {
	if err := a.start(); err != nil {
		return err
	}
	if err := form.ValidateAvatar(avatar); err != nil {
		return a.finish(err)
	}
	req := model.RegisterRequest{
		Username: strings.TrimSpace(username),
		Email:    strings.TrimSpace(email),
		Password: password,
		Avatar:   avatar,
	}
	if err := a.d.API.Auth.Register(ctx, req); err != nil {
		return a.finish(err)
	}
	s, err := a.d.API.Auth.Login(ctx, model.LoginRequest{Email: req.Email, Password: password})
	if err == nil {
		err = a.d.Sessions.Login(ctx, s)
	}
	if err != nil {
		return a.finish(err)
	}
	a.update(func(v *AuthView) { v.Success = msgRegisterOK })
	a.finish(nil)
	a.d.Nav.Navigate("/dashboard")
	return nil
}

// OAuthCallback handles the query the backend redirects to after Google
// sign-in
func (a *Auth) OAuthCallback(ctx context.Context, q url.Values) error {
	userJSON, token, errParam := q.Get("user"), q.Get("token"), q.Get("error")
	if userJSON != "" && token != "" {
		if err := a.start(); err != nil {
			return err
		}
		s, err := model.ParseOAuthCallback(userJSON, token)
		if err == nil {
			err = a.d.Sessions.Login(ctx, s)
		}
		if err != nil {
			a.d.Log.Warn("oauth callback rejected", zap.Error(err))
			return a.finish(invalid(msgOAuthOther))
		}
		a.finish(nil)
		if s.User.ProfileIncomplete {
			a.d.Nav.Navigate("/complete-profile")
			return nil
		}
		a.d.Nav.Navigate("/dashboard")
		return nil
	}
	if errParam == "" {
		return nil
	}

	msg, action := msgOAuthOther, ""
	switch errParam {
	case oauthExists:
		msg, action = msgOAuthDup, "login"
	case oauthNoAcct:
		msg, action = msgOAuthNone, "register"
	}
	a.update(func(v *AuthView) {
		v.Error = msg
		v.OAuthAction = action
	})
	return invalid(msg)
}

// OAuthExit follows the way out the OAuth error banner offers
func (a *Auth) OAuthExit() {
	switch a.View().OAuthAction {
	case "login":
		a.d.Nav.Navigate("/login")
	case "register":
		a.d.Nav.Navigate("/register")
	}
}

// GoogleURL is the browser URL that starts Google sign-in or sign-up
func (a *Auth) GoogleURL(signup bool) string {
	if signup {
		return a.d.API.Auth.GoogleSignupURL()
	}
	return a.d.API.Auth.GoogleLoginURL()
}

// CompleteProfile finishes an OAuth sign-up with a username and optional
// avatar
func (a *Auth) CompleteProfile(ctx context.Context, username string, avatar *model.Avatar) error {
	if err := a.start(); err != nil {
		return err
	}
	u, ok := a.d.Sessions.User()
	if !ok || u.ID.Empty() {
		return a.finish(invalid(msgUserIDMissing))
	}
	upd := model.ProfileUpdate{Username: strings.TrimSpace(username), Avatar: avatar, Complete: true}
	if err := a.d.API.Users.Complete(ctx, u.ID, upd); err != nil {
		a.d.Log.Warn("complete profile failed", zap.Error(err))
		return a.finish(invalid(msgProfileFailed))
	}
	u.Username = upd.Username
	u.ProfileIncomplete = false
	if err := a.d.Sessions.UpdateUser(ctx, u); err != nil {
		return a.finish(fmt.Errorf("complete profile: %w", err))
	}
	a.finish(nil)
	a.d.Nav.Navigate("/dashboard")
	return nil
}

// Logout announces the user offline, clears the session and returns to
// the login screen
func (a *Auth) Logout(ctx context.Context) error {
	return logout(ctx, a.d, "/login")
}

func logout(ctx context.Context, d Deps, next string) error {
	if u, ok := d.Sessions.User(); ok {
		goOffline(d, u.ID)
	}
	err := d.Sessions.Logout(ctx)
	d.Nav.Navigate(next)
	return err
}
