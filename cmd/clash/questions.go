package main

import (
	"codeclash/internal/controller"
	"codeclash/internal/form"
	"codeclash/internal/model"
	"codeclash/internal/view"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
)

// filterFlags binds the question filter flags shared by the listings
func filterFlags(fs *flag.FlagSet) func() model.QuestionFilter {
	difficulty := fs.String("difficulty", "", "Easy, Medium or Hard")
	category := fs.String("category", "", "DSA, SQL, Web or Other")
	tags := fs.String("tags", "", "comma-separated tags")
	search := fs.String("search", "", "free text")
	return func() model.QuestionFilter {
		f := model.QuestionFilter{
			Difficulty: model.Difficulty(*difficulty),
			Category:   *category,
			Search:     *search,
		}
		for _, t := range strings.Split(*tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				f.Tags = append(f.Tags, t)
			}
		}
		return f
	}
}

func (e *env) listQuestions(ctx context.Context, c *controller.Questions, f model.QuestionFilter) error {
	if err := c.SetFilter(ctx, f); err != nil {
		return err
	}
	fmt.Fprintln(e.out, view.QuestionList(c.View().Questions))
	return nil
}

func runQuestions(ctx context.Context, e *env, args []string) error {
	fs := flags("questions")
	filter := filterFlags(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := e.requireSession(); err != nil {
		return err
	}
	return e.listQuestions(ctx, controller.NewQuestions(e.deps()), filter())
}

func runAdminQuestions(ctx context.Context, e *env, args []string) error {
	fs := flags("admin-questions")
	filter := filterFlags(fs)
	remove := fs.String("delete", "", "delete the question with this id first")
	if err := parse(fs, args); err != nil {
		return err
	}
	if !e.sessions.IsAdmin() {
		return &form.ValidationError{Message: "Please log in as an admin first."}
	}
	c := controller.NewAdminQuestionBank(e.deps())
	if *remove != "" {
		if err := c.Delete(ctx, model.Ref(*remove)); err != nil {
			return err
		}
		fmt.Fprintln(e.out, view.Alert(view.AlertSuccess, "Question deleted."))
	}
	return e.listQuestions(ctx, c, filter())
}

func runQuestion(ctx context.Context, e *env, args []string) error {
	fs := flags("question")
	id := fs.String("id", "", "question id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := e.requireSession(); err != nil {
		return err
	}
	if *id == "" && fs.NArg() > 0 {
		*id = fs.Arg(0)
	}
	c := controller.NewQuestionDetail(e.deps(), *id)
	if err := c.Mount(ctx); err != nil {
		return err
	}
	v := c.View()
	fmt.Fprintln(e.out, view.QuestionDetail(*v.Question, v.Samples))
	return nil
}

// readQuestions accepts either one question object or an array of them
func readQuestions(path string) ([]model.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}
	var many []model.Question
	if err := json.Unmarshal(data, &many); err == nil {
		return many, nil
	}
	var one model.Question
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, &form.ValidationError{Message: "The question file is not valid JSON."}
	}
	return []model.Question{one}, nil
}

func runCreateQuestion(ctx context.Context, e *env, args []string) error {
	fs := flags("create-question")
	file := fs.String("file", "", "JSON file with the question")
	publish := fs.Bool("publish", false, "publish instead of saving a draft")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := e.requireSession(); err != nil {
		return err
	}
	if *file == "" {
		return &form.ValidationError{Message: "Pass the question file with -file."}
	}
	qs, err := readQuestions(*file)
	if err != nil {
		return err
	}

	ed := controller.NewQuestionEditor(e.deps(), nil)
	for _, q := range qs {
		ed.Form = form.FromQuestion(q, e.sessions.IsAdmin())
		if err := ed.Save(ctx, *publish); err != nil {
			return fmt.Errorf("save %q: %w", q.Title, err)
		}
		saved := ed.View().Saved
		fmt.Fprintf(e.out, "%s  (%s)\n", view.QuestionCard(*saved), saved.ID)
	}
	return nil
}
