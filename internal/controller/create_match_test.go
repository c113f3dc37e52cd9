package controller

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"codeclash/internal/form"
	"codeclash/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finalsForm(f *form.MatchForm) {
	f.RoomName = "Finals"
	f.NumQuestions = 3
	f.MaxPlayers = 4
	f.TimeLimit = 20
	f.ToggleLanguage(model.LangCpp)
	f.ToggleLanguage(model.LangPython)
}

func TestCreateMatchValidationBlocksRequests(t *testing.T) {
	e := newEnv(t)
	e.login(t, alice)
	var calls atomic.Int32
	e.handle("/", func(w http.ResponseWriter, r *http.Request) { calls.Add(1) })

	c := NewCreateMatch(e.deps)
	require.Error(t, c.Create(context.Background()))
	assert.Equal(t, "Room name is required.", c.View().Error)

	c.Edit(func(f *form.MatchForm) {
		finalsForm(f)
		f.Source = form.SourceRandom
		f.SetRandom(model.DifficultyEasy, 1)
		f.SetRandom(model.DifficultyHard, 1)
	})
	require.Error(t, c.Create(context.Background()))
	assert.Equal(t, "Total random questions must equal 3.", c.View().Error)
	assert.Zero(t, calls.Load())
	assert.False(t, c.View().Loading)
}

func TestCreateMatchRandomRequest(t *testing.T) {
	e := newEnv(t)
	e.login(t, alice)
	var got model.CreateMatchRequest
	e.handle("POST /api/matches/create", func(w http.ResponseWriter, r *http.Request) {
		decodeBody(t, r, &got)
		writeJSON(w, http.StatusCreated, map[string]string{"roomCode": "ABC123"})
	})

	c := NewCreateMatch(e.deps)
	c.Edit(func(f *form.MatchForm) {
		finalsForm(f)
		f.Source = form.SourceRandom
		f.SetRandom(model.DifficultyEasy, 1)
		f.SetRandom(model.DifficultyMedium, 1)
		f.SetRandom(model.DifficultyHard, 1)
	})
	require.NoError(t, c.Create(context.Background()))

	assert.Equal(t, model.CreateMatchRequest{
		RoomName:        "Finals",
		TimeLimit:       20,
		MaxPlayers:      4,
		Languages:       []string{model.LangCpp, model.LangPython},
		RandomQuestions: &model.RandomCounts{Easy: 1, Medium: 1, Hard: 1},
	}, got)

	v := c.View()
	assert.Equal(t, "ABC123", v.RoomCode)
	assert.Equal(t, msgMatchCreated, v.Success)
	assert.Empty(t, e.nav.Paths())

	e.clock.fire()
	assert.Equal(t, "/lobby/ABC123", e.nav.Last())
}

func TestCreateMatchSavesNewQuestionsFirst(t *testing.T) {
	e := newEnv(t)
	e.login(t, alice)
	var order []string
	e.handle("POST /api/questions", func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "question")
		var q model.Question
		decodeBody(t, r, &q)
		q.ID = "q-new"
		writeJSON(w, http.StatusCreated, q)
	})
	var got model.CreateMatchRequest
	e.handle("POST /api/matches/create", func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "match")
		decodeBody(t, r, &got)
		writeJSON(w, http.StatusCreated, map[string]string{"roomCode": "XYZ789"})
	})

	c := NewCreateMatch(e.deps)
	c.Edit(func(f *form.MatchForm) {
		finalsForm(f)
		f.NumQuestions = 2
	})
	require.True(t, c.AddFromBank(model.Question{ID: "q1", Title: "Two Sum"}))
	require.True(t, c.AddNew(model.Question{Title: "Fresh"}))

	require.NoError(t, c.Create(context.Background()))
	assert.Equal(t, []string{"question", "match"}, order)
	assert.Equal(t, []model.Ref{"q1", "q-new"}, got.Questions)
	assert.Nil(t, got.RandomQuestions)
	assert.Equal(t, model.Ref("q-new"), c.View().Form.Selected[1].ID)
}

func TestCreateMatchQuestionSaveFailure(t *testing.T) {
	e := newEnv(t)
	e.login(t, alice)
	e.reply("POST /api/questions", http.StatusBadRequest, map[string]string{"message": "Title taken"})
	var matchCalls atomic.Int32
	e.handle("POST /api/matches/create", func(w http.ResponseWriter, r *http.Request) { matchCalls.Add(1) })

	c := NewCreateMatch(e.deps)
	c.Edit(finalsForm)
	c.Edit(func(f *form.MatchForm) { f.NumQuestions = 1 })
	c.AddNew(model.Question{Title: "Fresh"})

	require.Error(t, c.Create(context.Background()))
	assert.Equal(t, "Title taken", c.View().Error)
	assert.Zero(t, matchCalls.Load())
}

func TestCreateMatchRedirectCanceledOnUnmount(t *testing.T) {
	e := newEnv(t)
	e.login(t, alice)
	e.reply("POST /api/matches/create", http.StatusCreated, map[string]string{"roomCode": "ABC123"})

	c := NewCreateMatch(e.deps)
	c.Edit(func(f *form.MatchForm) {
		finalsForm(f)
		f.Source = form.SourceRandom
		f.SetRandom(model.DifficultyEasy, 3)
	})
	require.NoError(t, c.Create(context.Background()))
	c.Unmount()
	e.clock.fire()
	assert.Empty(t, e.nav.Paths())

	c.JoinLobby()
	assert.Equal(t, "/lobby/ABC123", e.nav.Last())
}

func TestCreateMatchPickerClosesAtCount(t *testing.T) {
	e := newEnv(t)
	e.login(t, alice)
	e.reply("GET /api/questions", http.StatusOK, []model.Question{{ID: "q1"}, {ID: "q2"}})

	c := NewCreateMatch(e.deps)
	c.Edit(func(f *form.MatchForm) { f.NumQuestions = 2 })
	require.NoError(t, c.OpenPicker(context.Background()))
	require.Len(t, c.View().Bank, 2)

	assert.True(t, c.AddFromBank(model.Question{ID: "q1"}))
	assert.False(t, c.AddFromBank(model.Question{ID: "q1"}))
	assert.True(t, c.View().PickerOpen)
	assert.False(t, c.View().CanSubmit())

	assert.True(t, c.AddFromBank(model.Question{ID: "q2"}))
	assert.False(t, c.View().PickerOpen)
	assert.True(t, c.View().CanSubmit())

	c.Remove(0)
	require.Len(t, c.View().Form.Selected, 1)
	assert.Equal(t, model.Ref("q2"), c.View().Form.Selected[0].ID)
}

func TestJoinMatch(t *testing.T) {
	e := newEnv(t)
	e.login(t, alice)
	var got model.JoinMatchRequest
	e.handle("POST /api/matches/join", func(w http.ResponseWriter, r *http.Request) {
		decodeBody(t, r, &got)
		writeJSON(w, http.StatusOK, map[string]string{})
	})

	c := NewJoinMatch(e.deps)
	require.Error(t, c.Join(context.Background(), "  "))
	assert.Equal(t, "Room code is required.", c.View().Error)
	assert.Empty(t, got.RoomCode)

	require.NoError(t, c.Join(context.Background(), " ABC123 "))
	assert.Equal(t, "ABC123", got.RoomCode)
	assert.Equal(t, "/lobby/ABC123", e.nav.Last())
	assert.Empty(t, c.View().Error)
}

func TestJoinMatchServerMessage(t *testing.T) {
	e := newEnv(t)
	e.login(t, alice)
	e.reply("POST /api/matches/join", http.StatusNotFound, map[string]string{"message": "Match not found"})

	c := NewJoinMatch(e.deps)
	require.Error(t, c.Join(context.Background(), "NOPE00"))
	assert.Equal(t, "Match not found", c.View().Error)
	assert.Empty(t, e.nav.Paths())
}
