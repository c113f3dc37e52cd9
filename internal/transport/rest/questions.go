package rest

import (
	"codeclash/internal/model"
	"context"
	"net/http"
	"net/url"
	"strings"
)

// QuestionsAPI covers /api/questions
type QuestionsAPI struct {
	c *Client
}

func filterQuery(f model.QuestionFilter) url.Values {
	q := url.Values{}
	if f.Difficulty != "" {
		q.Set("difficulty", string(f.Difficulty))
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if len(f.Tags) > 0 {
		q.Set("tags", strings.Join(f.Tags, ","))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	return q
}

// List returns the public bank, narrowed by f
func (a *QuestionsAPI) List(ctx context.Context, f model.QuestionFilter) ([]model.Question, error) {
	var out []model.Question
	err := a.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/api/questions",
		query:  filterQuery(f),
		auth:   authOptional,
	}, &out)
	return out, err
}

// Global returns the admin-owned bank
func (a *QuestionsAPI) Global(ctx context.Context, f model.QuestionFilter) ([]model.Question, error) {
	var out []model.Question
	err := a.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/api/questions/global",
		query:  filterQuery(f),
		auth:   authRequired,
	}, &out)
	return out, err
}

// Get fetches one question
func (a *QuestionsAPI) Get(ctx context.Context, id string) (*model.Question, error) {
	var out model.Question
	if err := a.c.doJSON(ctx, http.MethodGet, "/api/questions/"+url.PathEscape(id), nil, authOptional, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create stores a new question and returns it with its id
func (a *QuestionsAPI) Create(ctx context.Context, q model.Question) (*model.Question, error) {
	var out model.Question
	if err := a.c.doJSON(ctx, http.MethodPost, "/api/questions", q, authRequired, &out); err != nil {
		return nil, err
	}
	if !out.Persisted() {
		return nil, &Error{Kind: KindDecode, Status: http.StatusOK, Message: "Failed to save question"}
	}
	return &out, nil
}

// Delete removes a question
func (a *QuestionsAPI) Delete(ctx context.Context, id string) error {
	return a.c.doJSON(ctx, http.MethodDelete, "/api/questions/"+url.PathEscape(id), nil, authRequired, nil)
}
