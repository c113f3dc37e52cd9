package form

import (
	"codeclash/internal/model"
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// QuestionForm is the create-question form. Examples and test cases always
// keep at least one row.
type QuestionForm struct {
	Title        string
	Difficulty   model.Difficulty
	Category     string
	Topic        string
	Tags         []string
	Description  string
	InputFormat  string
	OutputFormat string
	Constraints  string
	Notes        string
	Examples     []model.Example
	TestCases    []model.TestCase
	StarterCode  map[string]string

	// Global only applies to admins, who default to the global bank
	Global bool
	Admin  bool
}

// NewQuestionForm returns an empty form for a user with the given role
func NewQuestionForm(admin bool) *QuestionForm {
	return &QuestionForm{
		Difficulty:  model.DifficultyEasy,
		Category:    model.Categories[0],
		Tags:        []string{},
		Examples:    []model.Example{newExample()},
		TestCases:   []model.TestCase{newTestCase()},
		StarterCode: map[string]string{},
		Global:      admin,
		Admin:       admin,
	}
}

func newExample() model.Example { return model.Example{Key: uuid.NewString()} }

func newTestCase() model.TestCase {
	public := true
	return model.TestCase{Key: uuid.NewString(), IsPublic: &public}
}

// ToggleTag adds or removes a tag
func (f *QuestionForm) ToggleTag(tag string) {
	if i := slices.Index(f.Tags, tag); i >= 0 {
		f.Tags = slices.Delete(f.Tags, i, i+1)
		return
	}
	f.Tags = append(f.Tags, tag)
}

// AddExample appends an empty example row and returns its key
func (f *QuestionForm) AddExample() string {
	ex := newExample()
	f.Examples = append(f.Examples, ex)
	return ex.Key
}

// RemoveExample drops the row with key unless it is the last one
func (f *QuestionForm) RemoveExample(key string) bool {
	if len(f.Examples) <= 1 {
		return false
	}
	before := len(f.Examples)
	f.Examples = slices.DeleteFunc(f.Examples, func(e model.Example) bool { return e.Key == key })
	return len(f.Examples) != before
}

// UpdateExample replaces the fields of the row with key
func (f *QuestionForm) UpdateExample(key, input, output, explanation string) bool {
	for i := range f.Examples {
		if f.Examples[i].Key == key {
			f.Examples[i].Input = input
			f.Examples[i].Output = output
			f.Examples[i].Explanation = explanation
			return true
		}
	}
	return false
}

// AddTestCase appends an empty public test case and returns its key
func (f *QuestionForm) AddTestCase() string {
	tc := newTestCase()
	f.TestCases = append(f.TestCases, tc)
	return tc.Key
}

// RemoveTestCase drops the row with key unless it is the last one
func (f *QuestionForm) RemoveTestCase(key string) bool {
	if len(f.TestCases) <= 1 {
		return false
	}
	before := len(f.TestCases)
	f.TestCases = slices.DeleteFunc(f.TestCases, func(tc model.TestCase) bool { return tc.Key == key })
	return len(f.TestCases) != before
}

// UpdateTestCase replaces the fields of the row with key
func (f *QuestionForm) UpdateTestCase(key, input, output string, public bool) bool {
	for i := range f.TestCases {
		if f.TestCases[i].Key == key {
			f.TestCases[i].Input = input
			f.TestCases[i].Output = output
			f.TestCases[i].IsPublic = &public
			return true
		}
	}
	return false
}

// SetStarter sets the starter code for one authored language label
func (f *QuestionForm) SetStarter(lang, code string) {
	if f.StarterCode == nil {
		f.StarterCode = map[string]string{}
	}
	f.StarterCode[lang] = code
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// Validate runs the checks in display order and returns the first failure
func (f *QuestionForm) Validate() error {
	if blank(f.Title) || blank(f.Description) || blank(f.InputFormat) || blank(f.OutputFormat) || blank(f.Constraints) {
		return invalid("Please fill all required fields.")
	}
	for _, ex := range f.Examples {
		if blank(ex.Input) || blank(ex.Output) {
			return invalid("All examples must have input and output.")
		}
	}
	for _, tc := range f.TestCases {
		if blank(tc.Input) || blank(tc.Output) {
			return invalid("All test cases must have input and output.")
		}
	}
	return nil
}

// Question validates the form and builds the payload. publish selects the
// published status; otherwise the question is saved as a draft.
func (f *QuestionForm) Question(publish bool) (model.Question, error) {
	if err := f.Validate(); err != nil {
		return model.Question{}, err
	}
	q := model.Question{
		Title:        f.Title,
		Difficulty:   f.Difficulty,
		Category:     f.Category,
		Topic:        f.Topic,
		Tags:         slices.Clone(f.Tags),
		Description:  f.Description,
		InputFormat:  f.InputFormat,
		OutputFormat: f.OutputFormat,
		Constraints:  f.Constraints,
		Examples:     slices.Clone(f.Examples),
		StarterCode:  FillStarterCode(f.StarterCode),
		Notes:        f.Notes,
		TestCases:    slices.Clone(f.TestCases),
		Status:       model.StatusDraft,
	}
	if publish {
		q.Status = model.StatusPublished
	}
	if f.Admin {
		global := f.Global
		q.IsGlobal = &global
	}
	return q, nil
}

// FillStarterCode returns a copy with an entry for every starter language
func FillStarterCode(in map[string]string) map[string]string {
	out := maps.Clone(in)
	if out == nil {
		out = map[string]string{}
	}
	for _, lang := range model.StarterLanguages {
		if _, ok := out[lang]; !ok {
			out[lang] = ""
		}
	}
	return out
}

// FromQuestion prefills a form from an authored question, as read from a
// file. Rows get fresh keys and an empty list keeps its single blank row.
func FromQuestion(q model.Question, admin bool) *QuestionForm {
	f := NewQuestionForm(admin)
	f.Title = q.Title
	if q.Difficulty != "" {
		f.Difficulty = q.Difficulty
	}
	if q.Category != "" {
		f.Category = q.Category
	}
	f.Topic = q.Topic
	f.Tags = append(f.Tags, q.Tags...)
	f.Description = q.Description
	f.InputFormat = q.InputFormat
	f.OutputFormat = q.OutputFormat
	f.Constraints = q.Constraints
	f.Notes = q.Notes
	maps.Copy(f.StarterCode, q.StarterCode)
	if q.IsGlobal != nil {
		f.Global = *q.IsGlobal
	}

	if len(q.Examples) > 0 {
		f.Examples = make([]model.Example, len(q.Examples))
		for i, ex := range q.Examples {
			ex.Key = uuid.NewString()
			f.Examples[i] = ex
		}
	}
	if len(q.TestCases) > 0 {
		f.TestCases = make([]model.TestCase, len(q.TestCases))
		for i, tc := range q.TestCases {
			tc.Key = uuid.NewString()
			f.TestCases[i] = tc
		}
	}
	return f
}
