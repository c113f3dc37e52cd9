package main

import (
	"codeclash/internal/config"
	"codeclash/internal/form"
	"codeclash/internal/logging"
	"codeclash/internal/model"
	"codeclash/internal/session"
	"codeclash/internal/transport/rest"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// seeder pushes a question file into the bank through the API, once per title
type seeder struct {
	api     *rest.Client
	log     *zap.Logger
	admin   bool
	publish bool
	dryRun  bool
	outDir  string
}

// key is the de-dup and file key of a question
func key(q model.Question) string { return slug.Make(q.Title) }

// existing collects the keys already in the bank the seeder writes to
func (s *seeder) existing(ctx context.Context) (map[string]bool, error) {
	var (
		list []model.Question
		err  error
	)
	if s.admin {
		list, err = s.api.Questions.Global(ctx, model.QuestionFilter{})
	} else {
		list, err = s.api.Questions.List(ctx, model.QuestionFilter{})
	}
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	seen := make(map[string]bool, len(list))
	for _, q := range list {
		seen[key(q)] = true
	}
	return seen, nil
}

// result counts what a run did
type result struct {
	Created, Skipped, Invalid int
}

func (s *seeder) run(ctx context.Context, qs []model.Question) (result, error) {
	var res result
	seen, err := s.existing(ctx)
	if err != nil {
		return res, err
	}

	for _, q := range qs {
		k := key(q)
		if k == "" || seen[k] {
			s.log.Info("skip", zap.String("title", q.Title))
			res.Skipped++
			continue
		}
		payload, err := form.FromQuestion(q, s.admin).Question(s.publish)
		if err != nil {
			msg, _ := form.Message(err)
			s.log.Warn("invalid question", zap.String("title", q.Title), zap.String("reason", msg))
			res.Invalid++
			continue
		}
		seen[k] = true
		if s.dryRun {
			s.log.Info("would create", zap.String("key", k))
			res.Created++
			continue
		}

		created, err := s.api.Questions.Create(ctx, payload)
		if err != nil {
			return res, fmt.Errorf("create %q: %w", q.Title, err)
		}
		res.Created++
		s.log.Info("created", zap.String("key", k), zap.String("id", created.ID.String()))
		if err := s.save(k, created); err != nil {
			return res, err
		}
	}
	return res, nil
}

// save writes the created question to outDir/<key>.json
func (s *seeder) save(k string, q *model.Question) error {
	if s.outDir == "" {
		return nil
	}
	data, err := json.MarshalIndent(q, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", k, err)
	}
	if err := os.MkdirAll(s.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return os.WriteFile(filepath.Join(s.outDir, k+".json"), data, 0o644)
}

func readFile(path string) ([]model.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var qs []model.Question
	if err := json.Unmarshal(data, &qs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return qs, nil
}

func main() {
	file := flag.String("file", "questions.json", "JSON array of questions")
	publish := flag.Bool("publish", true, "publish the questions instead of saving drafts")
	dryRun := flag.Bool("dry-run", false, "report what would be created")
	outDir := flag.String("out", "", "write each created question to this directory")
	flag.Parse()

	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat).Named("seed")
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	store, closeStore, err := session.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("open session store", zap.Error(err))
	}
	defer closeStore()
	sessions := session.NewManager(store, log)
	if err := sessions.Restore(ctx); err != nil {
		log.Fatal("restore session", zap.Error(err))
	}
	if !sessions.Authenticated() {
		log.Fatal("no session; log in with clash login or clash admin-login first")
	}

	qs, err := readFile(*file)
	if err != nil {
		log.Fatal("load questions", zap.Error(err))
	}

	s := &seeder{
		api:     rest.NewClient(cfg.APIBaseURL, sessions, cfg.HTTPTimeout, log),
		log:     log,
		admin:   sessions.IsAdmin(),
		publish: *publish,
		dryRun:  *dryRun,
		outDir:  *outDir,
	}
	res, err := s.run(ctx, qs)
	if err != nil {
		log.Fatal("seed failed", zap.Error(err), zap.Int("created", res.Created))
	}
	fmt.Printf("created %d, skipped %d, invalid %d\n", res.Created, res.Skipped, res.Invalid)
}
