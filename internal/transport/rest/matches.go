package rest

import (
	"codeclash/internal/model"
	"context"
	"net/http"
	"net/url"
)

// MatchesAPI covers /api/matches
type MatchesAPI struct {
	c *Client
}

// Create configures a new room and returns its join code
func (a *MatchesAPI) Create(ctx context.Context, req model.CreateMatchRequest) (string, error) {
	var out model.CreateMatchResponse
	if err := a.c.doJSON(ctx, http.MethodPost, "/api/matches/create", req, authRequired, &out); err != nil {
		return "", err
	}
	if out.RoomCode == "" {
		return "", &Error{Kind: KindDecode, Status: http.StatusOK, Message: FallbackMessage}
	}
	return out.RoomCode, nil
}

// Join registers the user with a room before the lobby opens
func (a *MatchesAPI) Join(ctx context.Context, roomCode string) error {
	return a.c.doJSON(ctx, http.MethodPost, "/api/matches/join", model.JoinMatchRequest{RoomCode: roomCode}, authRequired, nil)
}

// History lists the user's past matches
func (a *MatchesAPI) History(ctx context.Context) ([]model.MatchSummary, error) {
	var out []model.MatchSummary
	err := a.c.doJSON(ctx, http.MethodGet, "/api/matches/history", nil, authRequired, &out)
	return out, err
}

// Run judges code against the room's test cases
func (a *MatchesAPI) Run(ctx context.Context, roomCode string, req model.RunRequest) (*model.RunResponse, error) {
	var out model.RunResponse
	if err := a.c.doJSON(ctx, http.MethodPost, "/api/matches/"+url.PathEscape(roomCode)+"/run", req, authRequired, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FullState loads questions, leaderboard and settings of a running room
func (a *MatchesAPI) FullState(ctx context.Context, roomCode string) (*model.MatchState, error) {
	var out model.MatchState
	if err := a.c.doJSON(ctx, http.MethodGet, "/api/matches/full/bycode/"+url.PathEscape(roomCode), nil, authRequired, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
