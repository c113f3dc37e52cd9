package rest

import (
	"bytes"
	"codeclash/internal/logging"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const maxResponseBody = 8 << 20

// TokenSource supplies the bearer token for authenticated calls
type TokenSource interface {
	Token() string
}

type authMode int

const (
	authNone authMode = iota
	// authOptional attaches the token when one exists
	authOptional
	authRequired
)

// Client talks to the backend HTTP API. Calls are single-attempt; callers
// decide whether to retry.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	log        *zap.Logger

	Auth      *AuthAPI
	Questions *QuestionsAPI
	Matches   *MatchesAPI
	Users     *UsersAPI
}

// NewClient creates an API client rooted at baseURL
func NewClient(baseURL string, tokens TokenSource, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		baseURL: baseURL,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: logging.OrNop(log).Named("rest"),
	}
	c.Auth = &AuthAPI{c: c}
	c.Questions = &QuestionsAPI{c: c}
	c.Matches = &MatchesAPI{c: c}
	c.Users = &UsersAPI{c: c}
	return c
}

// BaseURL returns the backend root the client was built with
func (c *Client) BaseURL() string { return c.baseURL }

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	auth        authMode
}

func jsonRequest(method, path string, in any, auth authMode) (request, error) {
	r := request{method: method, path: path, auth: auth}
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return r, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		r.body = bytes.NewReader(data)
		r.contentType = "application/json"
	}
	return r, nil
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// do performs the request and decodes a 2xx body into out
func (c *Client) do(ctx context.Context, r request, out any) error {
	token := ""
	if r.auth != authNone {
		token = c.token()
		if token == "" && r.auth == authRequired {
			return ErrNotLoggedIn
		}
	}

	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, r.body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("request failed", zap.String("method", r.method), zap.String("path", r.path), zap.Error(err))
		return &Error{Kind: KindNetwork, Message: FallbackMessage, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return &Error{Kind: KindNetwork, Status: resp.StatusCode, Message: FallbackMessage, Err: err}
	}

	c.log.Debug("request",
		zap.String("method", r.method),
		zap.String("path", r.path),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode >= 400 {
		apiErr := newServerError(resp.StatusCode, body)
		c.log.Info("request rejected", zap.String("path", r.path), zap.Int("status", resp.StatusCode), zap.String("message", apiErr.Message))
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Kind: KindDecode, Status: resp.StatusCode, Message: FallbackMessage, Err: err}
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any, auth authMode, out any) error {
	r, err := jsonRequest(method, path, in, auth)
	if err != nil {
		return err
	}
	return c.do(ctx, r, out)
}
