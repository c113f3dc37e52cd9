package model

import "time"

// Editor languages a match can allow
const (
	LangC      = "c"
	LangCpp    = "cpp"
	LangJava   = "java"
	LangPython = "python"
)

// LanguageOption is an editor language id with its display label
type LanguageOption struct {
	ID    string
	Label string
}

var MatchLanguages = []LanguageOption{
	{ID: LangC, Label: "C"},
	{ID: LangCpp, Label: "C++"},
	{ID: LangJava, Label: "Java"},
	{ID: LangPython, Label: "Python"},
}

// DefaultLanguage seeds the match editor before the room's allowed set is known
const DefaultLanguage = LangPython

// DefaultTimeBudget is used when the room reports no time limit
const DefaultTimeBudget = 15 * time.Minute

// RandomCounts is the per-difficulty split for randomly drawn questions
type RandomCounts struct {
	Easy   int `json:"easy"`
	Medium int `json:"medium"`
	Hard   int `json:"hard"`
}

// Total sums the split
func (r RandomCounts) Total() int { return r.Easy + r.Medium + r.Hard }

// CreateMatchRequest is the body for POST /api/matches/create. Exactly one of
// Questions and RandomQuestions is set.
type CreateMatchRequest struct {
	RoomName        string        `json:"roomName"`
	TimeLimit       int           `json:"timeLimit"`
	MaxPlayers      int           `json:"maxPlayers"`
	Languages       []string      `json:"languages"`
	Questions       []Ref         `json:"questions,omitempty"`
	RandomQuestions *RandomCounts `json:"randomQuestions,omitempty"`
}

// CreateMatchResponse carries the join code of the new room
type CreateMatchResponse struct {
	RoomCode string `json:"roomCode"`
}

// JoinMatchRequest is the body for POST /api/matches/join
type JoinMatchRequest struct {
	RoomCode string `json:"roomCode"`
}

// MatchAdmin identifies the room host in the full match state
type MatchAdmin struct {
	ID       Ref    `json:"_id,omitempty"`
	Username string `json:"username"`
}

// MatchState is GET /api/matches/full/bycode/{code}. TimeLimit is in minutes.
type MatchState struct {
	RoomCode    string             `json:"roomCode,omitempty"`
	RoomName    string             `json:"roomName"`
	TimeLimit   int                `json:"timeLimit"`
	Questions   []Question         `json:"questions"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	Admin       *MatchAdmin        `json:"admin,omitempty"`
	Languages   []string           `json:"languages"`
}

// TimeBudget converts the room limit to a duration, defaulting to fifteen minutes
func (m MatchState) TimeBudget() time.Duration {
	if m.TimeLimit <= 0 {
		return DefaultTimeBudget
	}
	return time.Duration(m.TimeLimit) * time.Minute
}

// HostName is the admin username, or empty when the room reports none
func (m MatchState) HostName() string {
	if m.Admin == nil {
		return ""
	}
	return m.Admin.Username
}

// FastestSubmission is the quickest accepted answer of a match
type FastestSubmission struct {
	Question  string `json:"question,omitempty"`
	TimeTaken *int   `json:"timeTaken,omitempty"`
}

// MatchAnalytics are the per-match stats history rows carry
type MatchAnalytics struct {
	Accuracy          float64            `json:"accuracy"`
	FastestSubmission *FastestSubmission `json:"fastestSubmission,omitempty"`
}

// MatchSummary is a row of match history
type MatchSummary struct {
	ID        Ref             `json:"_id"`
	RoomCode  string          `json:"roomCode,omitempty"`
	RoomName  string          `json:"roomName,omitempty"`
	Status    string          `json:"status,omitempty"`
	Winner    Ref             `json:"winner,omitempty"`
	Analytics *MatchAnalytics `json:"analytics,omitempty"`
	CreatedAt *time.Time      `json:"createdAt,omitempty"`
}

// Won reports a perfect-accuracy match
func (m MatchSummary) Won() bool {
	return m.Analytics != nil && m.Analytics.Accuracy == 100
}

// UserMatches is GET /api/users/{id}/matches
type UserMatches struct {
	Hosted []MatchSummary `json:"hosted"`
	Played []MatchSummary `json:"played"`
}

// RunRequest is the body for POST /api/matches/{code}/run
type RunRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	User     string `json:"user"`
}

// CaseResult is one judged test case
type CaseResult struct {
	Passed   bool   `json:"passed"`
	Input    string `json:"input,omitempty"`
	Expected string `json:"expected,omitempty"`
	Output   string `json:"output,omitempty"`
	Error    string `json:"error,omitempty"`
}

// RunResponse wraps the judged cases
type RunResponse struct {
	Result []CaseResult `json:"result"`
}

// Judged reports whether the response carried a result array. A missing or
// null result decodes to nil; an empty array decodes to an empty slice.
func (r *RunResponse) Judged() bool { return r != nil && r.Result != nil }

// Submission is the submitCode payload body
type Submission struct {
	User     string `json:"user"`
	Code     string `json:"code"`
	Language string `json:"language"`
	Time     int    `json:"time"`
}
