package controller

import (
	"codeclash/internal/model"
	"context"
	"slices"
)

// QuestionsView is a filtered question listing
type QuestionsView struct {
	Loading   bool
	Error     string
	Filter    model.QuestionFilter
	Questions []model.Question
}

// FilterActive reports whether any filter narrows the listing
func (v QuestionsView) FilterActive() bool {
	f := v.Filter
	return f.Difficulty != "" || f.Category != "" || len(f.Tags) > 0 || f.Search != ""
}

// Questions is the question bank browser. The global variant lists the
// admin bank and allows deletes.
type Questions struct {
	base[QuestionsView]
	d      Deps
	global bool
}

// NewQuestions browses the caller's bank plus published questions
func NewQuestions(d Deps) *Questions {
	return &Questions{d: d.named("questions")}
}

// NewAdminQuestionBank browses the global bank
func NewAdminQuestionBank(d Deps) *Questions {
	return &Questions{d: d.named("admin-questions"), global: true}
}

func (c *Questions) Mount(ctx context.Context) error { return c.Refresh(ctx) }

func (c *Questions) Unmount() {}

// Refresh refetches with the current filter
func (c *Questions) Refresh(ctx context.Context) error {
	c.update(func(v *QuestionsView) {
		v.Loading = true
		v.Error = ""
	})
	f := c.View().Filter

	var (
		list []model.Question
		err  error
	)
	if c.global {
		list, err = c.d.API.Questions.Global(ctx, f)
	} else {
		list, err = c.d.API.Questions.List(ctx, f)
	}

	c.update(func(v *QuestionsView) {
		v.Loading = false
		if err != nil {
			if c.global {
				v.Error = bannerOr(err, msgFetchQuestions)
			} else {
				v.Error = BannerMessage(err)
			}
			return
		}
		v.Questions = orEmpty(list)
	})
	return err
}

func (c *Questions) setFilter(ctx context.Context, fn func(f *model.QuestionFilter)) error {
	c.update(func(v *QuestionsView) {
		f := v.Filter
		f.Tags = slices.Clone(f.Tags)
		fn(&f)
		v.Filter = f
	})
	return c.Refresh(ctx)
}

// SetDifficulty filters by difficulty; empty clears it
func (c *Questions) SetDifficulty(ctx context.Context, d model.Difficulty) error {
	return c.setFilter(ctx, func(f *model.QuestionFilter) { f.Difficulty = d })
}

// SetCategory filters by category; empty clears it
func (c *Questions) SetCategory(ctx context.Context, category string) error {
	return c.setFilter(ctx, func(f *model.QuestionFilter) { f.Category = category })
}

// ToggleTag adds or removes a tag filter
func (c *Questions) ToggleTag(ctx context.Context, tag string) error {
	return c.setFilter(ctx, func(f *model.QuestionFilter) {
		if i := slices.Index(f.Tags, tag); i >= 0 {
			f.Tags = slices.Delete(f.Tags, i, i+1)
			return
		}
		f.Tags = append(f.Tags, tag)
	})
}

// SetSearch filters by free text
func (c *Questions) SetSearch(ctx context.Context, q string) error {
	return c.setFilter(ctx, func(f *model.QuestionFilter) { f.Search = q })
}

// SetFilter replaces the whole filter with one refetch
func (c *Questions) SetFilter(ctx context.Context, f model.QuestionFilter) error {
	f.Tags = slices.Clone(f.Tags)
	return c.setFilter(ctx, func(cur *model.QuestionFilter) { *cur = f })
}

// Clear drops every filter
func (c *Questions) Clear(ctx context.Context) error {
	return c.setFilter(ctx, func(f *model.QuestionFilter) { *f = model.QuestionFilter{} })
}

// Delete removes a question and refetches
func (c *Questions) Delete(ctx context.Context, id model.Ref) error {
	if err := c.d.API.Questions.Delete(ctx, id.String()); err != nil {
		c.update(func(v *QuestionsView) { v.Error = bannerOr(err, msgDeleteQuestion) })
		return err
	}
	return c.Refresh(ctx)
}

// QuestionDetailView is one question with its visible test cases
type QuestionDetailView struct {
	Loading  bool
	Error    string
	Question *model.Question
	Samples  []model.TestCase
}

// QuestionDetail shows a single question
type QuestionDetail struct {
	base[QuestionDetailView]
	d  Deps
	id string
}

// NewQuestionDetail creates the detail controller for id
func NewQuestionDetail(d Deps, id string) *QuestionDetail {
	return &QuestionDetail{d: d.named("question"), id: id}
}

func (c *QuestionDetail) Mount(ctx context.Context) error {
	c.update(func(v *QuestionDetailView) {
		v.Loading = true
		v.Error = ""
	})
	q, err := c.d.API.Questions.Get(ctx, c.id)
	c.update(func(v *QuestionDetailView) {
		v.Loading = false
		if err != nil {
			v.Error = BannerMessage(err)
			return
		}
		v.Question = q
		v.Samples = q.SampleTests()
	})
	return err
}

func (c *QuestionDetail) Unmount() {}
