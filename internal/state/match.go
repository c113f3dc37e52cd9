package state

import (
	"codeclash/internal/model"
	"fmt"
	"slices"
)

// DefaultMatchError is shown when match:error carries no message
const DefaultMatchError = "Match error."

// Run verdict messages
const (
	RunningMessage  = "Running test cases..."
	AcceptedMessage = "All test cases passed!"
	PartialMessage  = "Some test cases failed."
	RunErrorMessage = "Error running code."
)

// RunStatus is the aggregate verdict of a code run
type RunStatus string

const (
	RunRunning  RunStatus = "running"
	RunAccepted RunStatus = "accepted"
	RunPartial  RunStatus = "partial"
	RunError    RunStatus = "error"
)

// RunResult is the latest run shown under the editor
type RunResult struct {
	Status  RunStatus
	Message string
	Cases   []model.CaseResult
}

// MatchPhase is the match room lifecycle
type MatchPhase int

const (
	MatchLoading MatchPhase = iota
	MatchRunning
	MatchEnded
)

func (p MatchPhase) String() string {
	switch p {
	case MatchLoading:
		return "loading"
	case MatchRunning:
		return "running"
	case MatchEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Match mirrors a running room. TimeLeft is a local display countdown only.
type Match struct {
	RoomCode string
	Self     model.User

	Loaded   bool
	RoomName string
	HostName string

	Questions []model.Question
	Current   int
	Languages []string
	Language  string
	Code      string

	Leaderboard []model.LeaderboardEntry
	Chat        []model.ChatMessage

	TimeLimit int
	TimeLeft  int
	Elapsed   int

	Result     *RunResult
	Submitting bool
	Ended      bool
	Error      string
}

// NewMatch is the state right after mount
func NewMatch(roomCode string, self model.User) Match {
	budget := int(model.DefaultTimeBudget.Seconds())
	return Match{
		RoomCode:  roomCode,
		Self:      self,
		Language:  model.DefaultLanguage,
		TimeLimit: budget,
		TimeLeft:  budget,
	}
}

// Phase derives the lifecycle phase
func (m Match) Phase() MatchPhase {
	switch {
	case m.Ended:
		return MatchEnded
	case !m.Loaded:
		return MatchLoading
	default:
		return MatchRunning
	}
}

// IsHost reports whether this client created the room
func (m Match) IsHost() bool {
	return m.HostName != "" && m.Self.Username == m.HostName
}

// Question returns the selected question
func (m Match) Question() (model.Question, bool) {
	if m.Current < 0 || m.Current >= len(m.Questions) {
		return model.Question{}, false
	}
	return m.Questions[m.Current], true
}

// AllowedLanguages is the room's set, or every editor language when the room
// sent none
func (m Match) AllowedLanguages() []string {
	if len(m.Languages) > 0 {
		return m.Languages
	}
	out := make([]string, len(model.MatchLanguages))
	for i, l := range model.MatchLanguages {
		out[i] = l.ID
	}
	return out
}

// Rank is the 1-based leaderboard position of this player, 0 when unranked
func (m Match) Rank() int {
	return RankOf(m.Leaderboard, m.Self.Username)
}

// RankOf finds username in a server-ordered leaderboard
func RankOf(board []model.LeaderboardEntry, username string) int {
	if username == "" {
		return 0
	}
	for i, e := range board {
		if e.User == username {
			return i + 1
		}
	}
	return 0
}

// Running reports whether a code run is in flight
func (m Match) Running() bool {
	return m.Result != nil && m.Result.Status == RunRunning
}

// TimeStatus buckets the remaining time for display
func (m Match) TimeStatus() string {
	switch {
	case m.TimeLeft > 300:
		return "ok"
	case m.TimeLeft > 120:
		return "warning"
	default:
		return "critical"
	}
}

// Clock renders seconds as MM:SS
func Clock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// MatchEvent is anything that moves the match state
type MatchEvent interface{ isMatchEvent() }

// MatchLoaded carries GET /api/matches/full/bycode
type MatchLoaded struct{ State model.MatchState }

func (MatchLoaded) isMatchEvent() {}

// MatchLoadFailed leaves the room without questions
type MatchLoadFailed struct{}

func (MatchLoadFailed) isMatchEvent() {}

// MatchLobbyUpdate is lobby:update seen from the match room
type MatchLobbyUpdate struct{ Update model.LobbyUpdate }

func (MatchLobbyUpdate) isMatchEvent() {}

// MatchChatReplaced is a lobby:chat push
type MatchChatReplaced struct{ Chat []model.ChatMessage }

func (MatchChatReplaced) isMatchEvent() {}

// MatchLeaderboardReplaced is a leaderboardUpdate push
type MatchLeaderboardReplaced struct{ Entries []model.LeaderboardEntry }

func (MatchLeaderboardReplaced) isMatchEvent() {}

// MatchTick is one second of local time
type MatchTick struct{}

func (MatchTick) isMatchEvent() {}

// MatchQuestionSelected switches the visible question
type MatchQuestionSelected struct{ Index int }

func (MatchQuestionSelected) isMatchEvent() {}

// MatchLanguageSelected switches the editor language
type MatchLanguageSelected struct{ Language string }

func (MatchLanguageSelected) isMatchEvent() {}

// MatchCodeEdited replaces the editor buffer
type MatchCodeEdited struct{ Code string }

func (MatchCodeEdited) isMatchEvent() {}

// MatchRunStarted marks a run in flight
type MatchRunStarted struct{}

func (MatchRunStarted) isMatchEvent() {}

// MatchRunFinished carries the judged cases. Judged is false when the
// response had no result array, which never counts as a pass.
type MatchRunFinished struct {
	Cases  []model.CaseResult
	Judged bool
}

func (MatchRunFinished) isMatchEvent() {}

// MatchRunFailed means the run request itself failed
type MatchRunFailed struct{}

func (MatchRunFailed) isMatchEvent() {}

// MatchSubmitStarted raises the transient submitting flag
type MatchSubmitStarted struct{}

func (MatchSubmitStarted) isMatchEvent() {}

// MatchSubmitSettled lowers it again
type MatchSubmitSettled struct{}

func (MatchSubmitSettled) isMatchEvent() {}

// MatchFailed is a match:error push or a local failure
type MatchFailed struct{ Message string }

func (MatchFailed) isMatchEvent() {}

// MatchErrorDismissed clears the banner
type MatchErrorDismissed struct{}

func (MatchErrorDismissed) isMatchEvent() {}

// MatchEndedEvent is match:ended or matchEnded
type MatchEndedEvent struct{}

func (MatchEndedEvent) isMatchEvent() {}

// ReduceMatch applies one event
func ReduceMatch(m Match, ev MatchEvent) Match {
	switch e := ev.(type) {
	case MatchLoaded:
		m.Loaded = true
		m.RoomName = e.State.RoomName
		m.HostName = e.State.HostName()
		m.Questions = orEmpty(e.State.Questions)
		m.Current = 0
		m.Leaderboard = orEmpty(e.State.Leaderboard)

		m.TimeLimit = int(e.State.TimeBudget().Seconds())
		m.TimeLeft = max(m.TimeLimit-m.Elapsed, 0)

		if len(e.State.Languages) > 0 {
			m.Languages = e.State.Languages
			if !slices.Contains(m.Languages, m.Language) {
				m.Language = m.Languages[0]
			}
		}
		m = withStarter(m)

	case MatchLoadFailed:
		m.Loaded = true
		m.Questions = []model.Question{}

	case MatchLobbyUpdate:
		if e.Update.Chat != nil {
			m.Chat = e.Update.Chat
		}
		if e.Update.Leaderboard != nil {
			m.Leaderboard = e.Update.Leaderboard
		}

	case MatchChatReplaced:
		m.Chat = orEmpty(e.Chat)

	case MatchLeaderboardReplaced:
		m.Leaderboard = orEmpty(e.Entries)

	case MatchTick:
		m.Elapsed++
		if m.TimeLeft > 0 {
			m.TimeLeft--
		}

	case MatchQuestionSelected:
		if e.Index >= 0 && e.Index < len(m.Questions) && e.Index != m.Current {
			m.Current = e.Index
			m = withStarter(m)
		}

	case MatchLanguageSelected:
		if slices.Contains(m.AllowedLanguages(), e.Language) && e.Language != m.Language {
			m.Language = e.Language
			m = withStarter(m)
		}

	case MatchCodeEdited:
		m.Code = e.Code

	case MatchRunStarted:
		m.Result = &RunResult{Status: RunRunning, Message: RunningMessage}

	case MatchRunFinished:
		allPassed := e.Judged
		for _, c := range e.Cases {
			if !c.Passed {
				allPassed = false
				break
			}
		}
		if allPassed {
			m.Result = &RunResult{Status: RunAccepted, Message: AcceptedMessage, Cases: e.Cases}
		} else {
			m.Result = &RunResult{Status: RunPartial, Message: PartialMessage, Cases: e.Cases}
		}

	case MatchRunFailed:
		m.Result = &RunResult{Status: RunError, Message: RunErrorMessage}

	case MatchSubmitStarted:
		m.Submitting = true

	case MatchSubmitSettled:
		m.Submitting = false

	case MatchFailed:
		m.Error = e.Message
		if m.Error == "" {
			m.Error = DefaultMatchError
		}

	case MatchErrorDismissed:
		m.Error = ""

	case MatchEndedEvent:
		m.Ended = true
	}
	return m
}

// withStarter loads the starter code of the current question for the current
// language. Questions without any starter code leave the buffer alone.
func withStarter(m Match) Match {
	q, ok := m.Question()
	if !ok || len(q.StarterCode) == 0 {
		return m
	}
	m.Code = q.StarterFor(m.Language)
	return m
}
