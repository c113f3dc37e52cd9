package view

import (
	"strings"
	"testing"

	"codeclash/internal/form"
	"codeclash/internal/model"
	"codeclash/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = model.User{ID: "a1", Username: "alice"}
	bob   = model.User{ID: "b2", Username: "bob"}
)

func TestAlert(t *testing.T) {
	assert.Empty(t, Alert(AlertError, ""))
	assert.Equal(t, "[!] Invalid credentials", Alert(AlertError, "Invalid credentials"))
	assert.Equal(t, "[ok] Login successful!", Alert(AlertSuccess, "Login successful!"))
	assert.Equal(t, "/ Loading", Spinner(5, "Loading"))
	assert.Equal(t, "[r] ready  [q] leave", Keys("r", "ready", "q", "leave"))
}

func TestLobbyPlayersBadges(t *testing.T) {
	l := state.NewLobby("ABC123", "b2")
	l = state.ReduceLobby(l, state.LobbyUpdated{Update: model.LobbyUpdate{
		Players:      []model.User{bob, alice},
		HostID:       "a1",
		ReadyPlayers: []model.Ref{"b2"},
	}})

	out := LobbyPlayers(l)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Players (1 ready of 2)", lines[0])
	assert.Equal(t, "  alice [Host]", lines[1])
	assert.Equal(t, "  bob (you) [Ready]", lines[2])
	assert.Equal(t, "You are ready. Waiting for the others.", LobbyStatus(l))
}

func TestLobbyStatus(t *testing.T) {
	l := state.NewLobby("ABC123", "a1")
	assert.Contains(t, LobbyStatus(l), "Joining room ABC123")

	l = state.ReduceLobby(l, state.LobbyUpdated{Update: model.LobbyUpdate{Players: []model.User{alice}, HostID: "a1"}})
	assert.Equal(t, "Press r when you are ready.", LobbyStatus(l))

	l = state.ReduceLobby(l, state.LobbyCloseRequested{Seconds: 5})
	assert.Equal(t, "Closing the room in 5... press c to cancel", LobbyStatus(l))

	l = state.ReduceLobby(l, state.LobbyCountdownTick{Seconds: 3})
	assert.Equal(t, "Match starts in 3...", LobbyStatus(l))

	l = state.ReduceLobby(l, state.LobbyClosedEvent{})
	assert.Equal(t, "The host closed this room.", LobbyStatus(l))
}

func TestChatKeepsTail(t *testing.T) {
	msgs := []model.ChatMessage{
		{User: "a1", Username: "alice", Text: "hi"},
		{User: "bob", Text: "hey"},
		{User: "a1", Username: "alice", Text: "gl"},
	}
	assert.Equal(t, "bob: hey\nalice: gl", Chat(msgs, 2))
	assert.Equal(t, "No messages yet.", Chat(nil, 5))
}

func TestLeaderboardMarksSelf(t *testing.T) {
	out := Leaderboard([]model.LeaderboardEntry{
		{User: "bob", Score: 100, Time: 75},
		{User: "alice", Score: 50, Time: 130},
	}, "alice")
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "  1"))
	assert.True(t, strings.HasPrefix(lines[2], "> 2"))
	assert.Contains(t, lines[1], "01:15")
	assert.Contains(t, lines[2], "alice")
	assert.Equal(t, "No submissions yet.", Leaderboard(nil, "alice"))
}

func TestClockUrgency(t *testing.T) {
	m := state.NewMatch("R", alice)
	m.TimeLeft = 600
	assert.Equal(t, "Time left 10:00", Clock(m))
	m.TimeLeft = 200
	assert.Equal(t, "Time left 03:20 !", Clock(m))
	m.TimeLeft = 30
	assert.Equal(t, "Time left 00:30 !!", Clock(m))
}

func TestRunResult(t *testing.T) {
	assert.Empty(t, RunResult(nil))
	out := RunResult(&state.RunResult{
		Status:  state.RunPartial,
		Message: state.PartialMessage,
		Cases:   []model.CaseResult{{Passed: true}, {Passed: false, Expected: "3", Output: "4"}},
	})
	assert.Equal(t, "[!] Some test cases failed.\n  case 1: pass\n  case 2: fail (expected \"3\", got \"4\")", out)
}

func TestMatchTabsAndLanguages(t *testing.T) {
	m := state.ReduceMatch(state.NewMatch("R", alice), state.MatchLoaded{State: model.MatchState{
		Languages: []string{model.LangCpp, model.LangJava},
		Questions: []model.Question{{Title: "Two Sum"}, {Title: "Reverse"}},
	}})
	assert.Equal(t, "[1. Two Sum]  2. Reverse", QuestionTabs(m))
	assert.Equal(t, "[cpp] java", Languages(m))
}

func TestMatchSettingsAndSelection(t *testing.T) {
	f := *form.NewMatchForm()
	f.RoomName = "Finals"
	f.NumQuestions = 2
	f.Languages = []string{model.LangCpp}
	f.Selected = []model.Question{
		{ID: "q1", Title: "Two Sum", Difficulty: model.DifficultyEasy},
		{Title: "Fresh", Difficulty: model.DifficultyHard},
	}

	settings := MatchSettings(f)
	assert.Contains(t, settings, "Finals")
	assert.Contains(t, settings, "custom (2 of 2 picked)")

	assert.Equal(t, "1. Two Sum (Easy)\n2. Fresh (Hard) *new", SelectedQuestions(f))

	f.Source = form.SourceRandom
	f.Random = model.RandomCounts{Easy: 1, Hard: 1}
	assert.Contains(t, MatchSettings(f), "random (easy 1, medium 0, hard 1)")
}

func TestQuestionCard(t *testing.T) {
	q := model.Question{Title: "Two Sum", Difficulty: model.DifficultyEasy, Category: "Arrays", Tags: []string{"hash", "math"}, Status: model.StatusDraft}
	assert.Equal(t, "Two Sum [Easy] Arrays #hash #math (draft)", QuestionCard(q))
	assert.Equal(t, "No questions found.", QuestionList(nil))
}

func TestQuestionDetail(t *testing.T) {
	q := model.Question{
		Title:       "Two Sum",
		Difficulty:  model.DifficultyEasy,
		Description: "Add them.",
		InputFormat: "a b",
		Examples:    []model.Example{{Input: "1 2", Output: "3", Explanation: "1+2"}},
	}
	out := QuestionDetail(q, []model.TestCase{{Input: "2 2", Output: "4"}})
	assert.True(t, strings.HasPrefix(out, "Two Sum\n======="))
	assert.Contains(t, out, "Input:\na b")
	assert.NotContains(t, out, "Constraints")
	assert.Contains(t, out, "why: 1+2")
	assert.Contains(t, out, "Sample 1:\n  in:  2 2")
}

func TestStatsAndUsers(t *testing.T) {
	fast := 17
	assert.Equal(t, "Matches 3 | Wins 1 | Fastest 17s | Accuracy 33%", Stats(3, 1, &fast, 33))
	assert.Equal(t, "Matches 0 | Wins 0 | Fastest - | Accuracy 0%", Stats(0, 0, nil, 0))

	assert.Equal(t, "bob *online (following)", UserLine(model.User{Username: "bob", IsFollowing: true}, true))
	out := Users([]model.User{alice, bob}, map[model.Ref]bool{"b2": true})
	assert.Contains(t, out, "bob *online")
	assert.NotContains(t, strings.Split(out, "\n")[0], "online")
}
