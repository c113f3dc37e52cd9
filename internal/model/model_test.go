package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefDecodesMixedShapes(t *testing.T) {
	cases := map[string]string{
		`"abc"`:                  "abc",
		`{"_id":"abc"}`:          "abc",
		`{"_id":{"$oid":"abc"}}`: "abc",
		`{"$oid":"abc"}`:         "abc",
		`{"id":"abc"}`:           "abc",
		`null`:                   "",
		`{"username":"no id"}`:   "",
	}
	for in, want := range cases {
		var r Ref
		require.NoError(t, json.Unmarshal([]byte(in), &r), in)
		assert.Equal(t, Ref(want), r, in)
	}
}

func TestLobbyUpdateHostIDForms(t *testing.T) {
	var a, b LobbyUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"players":[{"_id":"A","username":"alice"}],"hostId":"A","readyPlayers":["A"]}`), &a))
	require.NoError(t, json.Unmarshal([]byte(`{"players":[{"_id":"A","username":"alice"}],"hostId":{"_id":"A","username":"alice"},"readyPlayers":[{"_id":"A"}]}`), &b))
	assert.Equal(t, a.HostID, b.HostID)
	assert.Equal(t, a.ReadyPlayers, b.ReadyPlayers)
	assert.Nil(t, a.Chat)
}

func TestParseAuthResponse(t *testing.T) {
	nested, err := ParseAuthResponse([]byte(`{"token":"t1","user":{"_id":"u1","username":"alice","role":"admin"}}`))
	require.NoError(t, err)
	assert.Equal(t, "t1", nested.Token)
	assert.Equal(t, Ref("u1"), nested.User.ID)
	assert.True(t, nested.User.IsAdmin())

	flat, err := ParseAuthResponse([]byte(`{"token":"t2","_id":"u2","username":"bob","email":"b@x.io"}`))
	require.NoError(t, err)
	assert.Equal(t, Ref("u2"), flat.User.ID)
	assert.Equal(t, "bob", flat.User.Username)

	_, err = ParseAuthResponse([]byte(`{"_id":"u3"}`))
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestParseOAuthCallback(t *testing.T) {
	s, err := ParseOAuthCallback(`{"_id":"u9","username":"gopher"}`, "tok")
	require.NoError(t, err)
	assert.Equal(t, "gopher", s.User.Username)

	_, err = ParseOAuthCallback(`{}`, "")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestQuestionHelpers(t *testing.T) {
	hidden := false
	q := Question{
		StarterCode: map[string]string{"Python": "def solve():", "cpp": "int main(){}"},
		TestCases: []TestCase{
			{Input: "1", Output: "1"},
			{Input: "2", Output: "2", IsPublic: &hidden},
		},
	}
	assert.False(t, q.Persisted())
	assert.Len(t, q.SampleTests(), 1)
	assert.Equal(t, "def solve():", q.StarterFor("python"))
	assert.Equal(t, "int main(){}", q.StarterFor("cpp"))
	assert.Equal(t, "", q.StarterFor("java"))
}

func TestMatchStateTimeBudget(t *testing.T) {
	assert.Equal(t, 15*time.Minute, MatchState{}.TimeBudget())
	assert.Equal(t, 30*time.Minute, MatchState{TimeLimit: 30}.TimeBudget())
	assert.Equal(t, "", MatchState{}.HostName())
}

func TestCreateMatchRequestShape(t *testing.T) {
	body, err := json.Marshal(CreateMatchRequest{
		RoomName:        "Finals",
		TimeLimit:       30,
		MaxPlayers:      4,
		Languages:       []string{LangPython},
		RandomQuestions: &RandomCounts{Easy: 1, Medium: 1},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"roomName":"Finals","timeLimit":30,"maxPlayers":4,"languages":["python"],"randomQuestions":{"easy":1,"medium":1,"hard":0}}`, string(body))
}
