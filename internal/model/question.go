package model

import "strings"

// Difficulty buckets a question
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// QuestionStatus is draft or published
type QuestionStatus string

const (
	StatusDraft     QuestionStatus = "draft"
	StatusPublished QuestionStatus = "published"
)

var (
	Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
	Categories   = []string{"DSA", "SQL", "Web", "Other"}
	Tags         = []string{"Arrays", "Hashmap", "String", "DP", "Math", "Tree", "Graph", "Sorting", "Greedy", "Backtracking", "Stack", "Queue", "Heap", "Recursion", "Bit Manipulation"}

	// StarterLanguages are the keys a new question carries starter code for
	StarterLanguages = []string{"Java", "Python", "C++", "C"}
)

// Example is a worked input/output pair shown with the statement
type Example struct {
	Key         string `json:"-" bson:"-"`
	Input       string `json:"input"`
	Output      string `json:"output"`
	Explanation string `json:"explanation,omitempty"`
}

// TestCase is a judged input/output pair. A nil IsPublic counts as public.
type TestCase struct {
	Key      string `json:"-" bson:"-"`
	Input    string `json:"input"`
	Output   string `json:"output"`
	IsPublic *bool  `json:"is_public,omitempty"`
}

// Sample reports whether the case is visible to players
func (t TestCase) Sample() bool { return t.IsPublic == nil || *t.IsPublic }

// Question is a coding problem in a personal or the global bank
type Question struct {
	ID           Ref               `json:"_id,omitempty"`
	Title        string            `json:"title"`
	Difficulty   Difficulty        `json:"difficulty"`
	Category     string            `json:"category,omitempty"`
	Topic        string            `json:"topic,omitempty"`
	Tags         []string          `json:"tags,omitempty"`
	Description  string            `json:"description"`
	InputFormat  string            `json:"inputFormat,omitempty"`
	OutputFormat string            `json:"outputFormat,omitempty"`
	Constraints  string            `json:"constraints,omitempty"`
	Examples     []Example         `json:"examples,omitempty"`
	StarterCode  map[string]string `json:"starterCode,omitempty"`
	Notes        string            `json:"notes,omitempty"`
	TestCases    []TestCase        `json:"testCases,omitempty"`
	Status       QuestionStatus    `json:"status,omitempty"`
	IsGlobal     *bool             `json:"isGlobal,omitempty"`
	CreatedBy    Ref               `json:"createdBy,omitempty"`
}

// Persisted reports whether the question already exists on the backend
func (q Question) Persisted() bool { return !q.ID.Empty() }

// SampleTests returns the test cases players may see
func (q Question) SampleTests() []TestCase {
	out := make([]TestCase, 0, len(q.TestCases))
	for _, tc := range q.TestCases {
		if tc.Sample() {
			out = append(out, tc)
		}
	}
	return out
}

// starterAliases maps editor language ids to the labels questions are authored with
var starterAliases = map[string]string{
	"python": "Python",
	"java":   "Java",
	"cpp":    "C++",
	"c":      "C",
}

// StarterFor returns the starter code for an editor language, accepting either
// the id ("cpp") or the authored label ("C++") as the map key
func (q Question) StarterFor(lang string) string {
	if code, ok := q.StarterCode[lang]; ok {
		return code
	}
	if label, ok := starterAliases[strings.ToLower(lang)]; ok {
		return q.StarterCode[label]
	}
	return ""
}

// QuestionFilter narrows a question listing
type QuestionFilter struct {
	Difficulty Difficulty
	Category   string
	Tags       []string
	Search     string
}
