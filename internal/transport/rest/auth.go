package rest

import (
	"codeclash/internal/model"
	"context"
	"encoding/json"
	"net/http"
)

// AuthAPI covers /api/auth
type AuthAPI struct {
	c *Client
}

// Login exchanges credentials for a session
func (a *AuthAPI) Login(ctx context.Context, req model.LoginRequest) (*model.Session, error) {
	var raw json.RawMessage
	if err := a.c.doJSON(ctx, http.MethodPost, "/api/auth/login", req, authNone, &raw); err != nil {
		return nil, err
	}
	s, err := model.ParseAuthResponse(raw)
	if err != nil {
		return nil, &Error{Kind: KindDecode, Status: http.StatusOK, Message: FallbackMessage, Err: err}
	}
	return s, nil
}

// Register creates an account. The avatar travels as a multipart file.
func (a *AuthAPI) Register(ctx context.Context, req model.RegisterRequest) error {
	body, contentType, err := multipartBody([]formField{
		{"username", req.Username},
		{"email", req.Email},
		{"password", req.Password},
	}, req.Avatar)
	if err != nil {
		return err
	}
	return a.c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/api/auth/register",
		body:        body,
		contentType: contentType,
	}, nil)
}

// GoogleLoginURL is where a browser starts Google sign-in
func (a *AuthAPI) GoogleLoginURL() string {
	return a.c.baseURL + "/api/auth/google-login"
}

// GoogleSignupURL is where a browser starts Google sign-up
func (a *AuthAPI) GoogleSignupURL() string {
	return a.c.baseURL + "/api/auth/google-signup"
}
