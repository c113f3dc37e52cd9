package rest

import (
	"codeclash/internal/model"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, token string, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, staticToken(token), 5*time.Second, nil)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestLoginSurfacesServerMessage(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
	})

	_, err := c.Auth.Login(context.Background(), model.LoginRequest{Email: "a@b.c", Password: "nope"})
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindServer, apiErr.Kind)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.True(t, apiErr.Unauthorized())
	assert.Equal(t, "Invalid credentials", Message(err))
}

func TestServerErrorFallbacks(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"message", `{"message":"Room not found"}`, "Room not found"},
		{"error key", `{"error":"invalid token"}`, "invalid token"},
		{"non string", `{"message":{"code":1}}`, FallbackMessage},
		{"html", `<html>bad gateway</html>`, FallbackMessage},
		{"empty", ``, FallbackMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			apiErr := newServerError(http.StatusBadGateway, []byte(tc.body))
			assert.Equal(t, tc.want, apiErr.Message)
		})
	}
}

func TestNetworkErrorUsesFallback(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewClient(srv.URL, staticToken("t"), time.Second, nil)

	_, err := c.Matches.History(context.Background())
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindNetwork, apiErr.Kind)
	assert.Equal(t, FallbackMessage, Message(err))
	assert.Equal(t, FallbackMessage, Message(errors.New("boom")))
}

func TestBearerHeaderAndRequiredAuth(t *testing.T) {
	var calls int
	c := newTestClient(t, "tok-1", func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, []model.MatchSummary{{ID: "m1", RoomName: "Finals"}})
	})
	history, err := c.Matches.History(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Finals", history[0].RoomName)

	anon := NewClient(c.BaseURL(), staticToken(""), time.Second, nil)
	_, err = anon.Matches.History(context.Background())
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.Equal(t, 1, calls)
}

func TestQuestionListFilters(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "Medium", q.Get("difficulty"))
		assert.Equal(t, "DSA", q.Get("category"))
		assert.Equal(t, "Arrays,DP", q.Get("tags"))
		assert.Equal(t, "two sum", q.Get("search"))
		writeJSON(w, http.StatusOK, []model.Question{{ID: "q1", Title: "Two Sum"}})
	})
	qs, err := c.Questions.List(context.Background(), model.QuestionFilter{
		Difficulty: model.DifficultyMedium,
		Category:   "DSA",
		Tags:       []string{"Arrays", "DP"},
		Search:     "two sum",
	})
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, model.Ref("q1"), qs[0].ID)
}

func TestCreateMatchSendsRandomSplit(t *testing.T) {
	c := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/matches/create", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"easy": 1.0, "medium": 1.0, "hard": 0.0}, body["randomQuestions"])
		_, hasQuestions := body["questions"]
		assert.False(t, hasQuestions)
		writeJSON(w, http.StatusCreated, map[string]string{"roomCode": "ABC123"})
	})
	code, err := c.Matches.Create(context.Background(), model.CreateMatchRequest{
		RoomName:        "Finals",
		TimeLimit:       30,
		MaxPlayers:      2,
		Languages:       []string{"python"},
		RandomQuestions: &model.RandomCounts{Easy: 1, Medium: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, "ABC123", code)
}

func TestRegisterIsMultipart(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "alice", r.FormValue("username"))
		assert.Equal(t, "a@x.io", r.FormValue("email"))
		f, hdr, err := r.FormFile("avatar")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "me.png", hdr.Filename)
		assert.Equal(t, []byte("PNG"), data)
		writeJSON(w, http.StatusCreated, map[string]string{"message": "ok"})
	})
	err := c.Auth.Register(context.Background(), model.RegisterRequest{
		Username: "alice",
		Email:    "a@x.io",
		Password: "pw",
		Avatar:   &model.Avatar{Filename: "/tmp/me.png", Data: []byte("PNG")},
	})
	require.NoError(t, err)
}

func TestRunAndUserEndpoints(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/matches/ROOM1/run", func(w http.ResponseWriter, r *http.Request) {
		var req model.RunRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "python", req.Language)
		writeJSON(w, http.StatusOK, map[string]any{"result": []map[string]bool{{"passed": true}, {"passed": false}}})
	})
	mux.HandleFunc("/api/users/u1/matches", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"played": []map[string]string{{"_id": "m1", "winner": "u1"}}})
	})
	mux.HandleFunc("/api/users/u1/follow", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/users/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "bo b", r.URL.Query().Get("query"))
		writeJSON(w, http.StatusOK, []model.User{{ID: "u2", Username: "bob", IsFollowing: true}})
	})
	c := newTestClient(t, "tok", mux.ServeHTTP)
	ctx := context.Background()

	res, err := c.Matches.Run(ctx, "ROOM1", model.RunRequest{Code: "print(1)", Language: "python", User: "alice"})
	require.NoError(t, err)
	assert.True(t, res.Judged())
	assert.Len(t, res.Result, 2)

	played, err := c.Users.Matches(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, played, 1)
	assert.Equal(t, model.Ref("u1"), played[0].Winner)

	require.NoError(t, c.Users.Follow(ctx, "u1"))

	found, err := c.Users.Search(ctx, "bo b")
	require.NoError(t, err)
	assert.True(t, found[0].IsFollowing)
}

func TestCreateQuestionRequiresID(t *testing.T) {
	c := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"title": "no id"})
	})
	_, err := c.Questions.Create(context.Background(), model.Question{Title: "x"})
	assert.Equal(t, "Failed to save question", Message(err))
}
