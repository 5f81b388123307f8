// Package tutor wires the pipeline together: material processing, question
// generation, grading, performance tracking and weakness analysis.
package tutor

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/abhisek/studyloop/internal/concepts"
	"github.com/abhisek/studyloop/internal/grading"
	"github.com/abhisek/studyloop/internal/llm"
	"github.com/abhisek/studyloop/internal/logger"
	"github.com/abhisek/studyloop/internal/material"
	"github.com/abhisek/studyloop/internal/questiongen"
	"github.com/abhisek/studyloop/internal/session"
	"github.com/abhisek/studyloop/internal/store"
	"github.com/abhisek/studyloop/internal/weakness"
)

// DefaultQuestionCount is used when a request does not set a count.
const DefaultQuestionCount = 5

// practiceCount is how many fresh questions TargetedPractice generates
// when the user has no weaknesses.
const practiceCount = 3

var (
	ErrEmptyMaterial    = errors.New("material produced no text")
	ErrQuestionNotFound = errors.New("question not found")
)

// Deps holds the collaborators of a Tutor. Provider, Performance and
// Sessions are required.
type Deps struct {
	Provider    llm.Provider
	Performance store.PerformanceRepo
	Sessions    session.Store
	Chunker     *material.Chunker
	Cache       *session.QuestionCache
	Logger      *logger.Logger
	Rand        *rand.Rand
	Now         func() time.Time
}

// Tutor runs the study loop for any number of users.
type Tutor struct {
	chunker   *material.Chunker
	extractor *concepts.Extractor
	generator *questiongen.Generator
	evaluator *grading.Evaluator
	perf      store.PerformanceRepo
	analyzer  *weakness.Analyzer
	sessions  session.Store
	cache     *session.QuestionCache
	log       *logger.Logger
	now       func() time.Time
}

// New assembles a Tutor from deps.
func New(d Deps) *Tutor {
	log := logger.OrNop(d.Logger)
	now := d.Now
	if now == nil {
		now = time.Now
	}
	chunker := d.Chunker
	if chunker == nil {
		chunker = material.NewChunker(nil, material.DefaultMaxTokens, log)
	}
	cache := d.Cache
	if cache == nil {
		cache = session.NewQuestionCache(session.DefaultCacheSize)
	}

	genOpts := []questiongen.Option{questiongen.WithLogger(log)}
	if d.Rand != nil {
		genOpts = append(genOpts, questiongen.WithRand(d.Rand))
	}

	return &Tutor{
		chunker:   chunker,
		extractor: concepts.NewExtractor(d.Provider),
		generator: questiongen.New(d.Provider, questiongen.DefaultConfig(), genOpts...),
		evaluator: grading.NewEvaluator(d.Provider, log),
		perf:      d.Performance,
		analyzer:  weakness.NewAnalyzer(d.Performance, weakness.WithClock(now)),
		sessions:  d.Sessions,
		cache:     cache,
		log:       log,
		now:       now,
	}
}

// Material is study input: either inline text or a file path.
type Material struct {
	Text string
	Path string
}

// ProcessMaterial chunks the material, extracts a concept digest when the
// model cooperates, and stores the result as a new session.
func (t *Tutor) ProcessMaterial(ctx context.Context, m Material) (*session.Session, error) {
	var (
		chunks []material.Chunk
		source = material.SourceDirectInput
		err    error
	)
	if m.Path != "" {
		source = m.Path
		chunks, err = t.chunker.LoadFile(m.Path)
		if err != nil {
			return nil, err
		}
	} else {
		chunks = t.chunker.LoadText(m.Text)
	}
	if len(chunks) == 0 {
		return nil, ErrEmptyMaterial
	}

	digest, err := t.extractor.Extract(ctx, chunks)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		t.log.Warn("concept extraction failed, continuing without digest", "error", err)
	}

	s := session.New(source, chunks, digest, t.now())
	if err := t.sessions.Put(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	t.log.Info("material processed", "session_id", s.ID, "chunks", len(chunks), "digest", digest != nil)
	return s, nil
}

// Session returns the session with id, or the latest one when id is empty.
func (t *Tutor) Session(ctx context.Context, id string) (*session.Session, error) {
	if id == "" {
		return t.sessions.Latest(ctx)
	}
	return t.sessions.Get(ctx, id)
}

// Mix is a difficulty-mix preset that picks question types when a request
// does not name them.
type Mix string

const (
	MixAdaptive  Mix = "adaptive"
	MixEasy      Mix = "easy"
	MixChallenge Mix = "challenge"
)

// ParseMix parses a preset name. Empty means adaptive.
func ParseMix(s string) (Mix, error) {
	switch m := Mix(strings.ToLower(strings.TrimSpace(s))); m {
	case "", MixAdaptive:
		return MixAdaptive, nil
	case MixEasy, MixChallenge:
		return m, nil
	}
	return "", fmt.Errorf("unknown difficulty mix %q", s)
}

func (m Mix) types() []questiongen.Type {
	switch m {
	case MixEasy:
		return []questiongen.Type{questiongen.TypeMultipleChoice}
	case MixChallenge:
		return []questiongen.Type{questiongen.TypeShortAnswer}
	}
	return nil
}

// GenerateRequest asks for a question set from a session.
type GenerateRequest struct {
	SessionID string // empty means the latest session
	Count     int
	Types     []questiongen.Type
	Mix       Mix
}

func (t *Tutor) input(ctx context.Context, req GenerateRequest) (questiongen.Input, error) {
	s, err := t.Session(ctx, req.SessionID)
	if err != nil {
		return questiongen.Input{}, err
	}
	count := req.Count
	if count <= 0 {
		count = DefaultQuestionCount
	}
	types := req.Types
	if len(types) == 0 {
		types = req.Mix.types()
	}
	return questiongen.Input{
		Chunks: s.Chunks,
		Count:  count,
		Types:  types,
		Digest: s.Digest,
	}, nil
}

// GenerateQuestions produces a question set and caches it for answering.
func (t *Tutor) GenerateQuestions(ctx context.Context, req GenerateRequest) ([]*questiongen.Question, error) {
	in, err := t.input(ctx, req)
	if err != nil {
		return nil, err
	}
	questions, err := t.generator.Generate(ctx, in)
	t.cache.Add(questions...)
	if err != nil {
		return questions, err
	}
	t.log.Info("questions generated", "requested", in.Count, "generated", len(questions))
	return questions, nil
}

// StreamQuestions streams a question set. Completed questions are cached
// as they arrive.
func (t *Tutor) StreamQuestions(ctx context.Context, req GenerateRequest) iter.Seq2[questiongen.Event, error] {
	return func(yield func(questiongen.Event, error) bool) {
		in, err := t.input(ctx, req)
		if err != nil {
			yield(nil, err)
			return
		}
		for ev, err := range t.generator.Stream(ctx, in) {
			if c, ok := ev.(questiongen.Completed); ok {
				t.cache.Add(c.Question)
			}
			if !yield(ev, err) {
				return
			}
		}
	}
}

// Question returns a previously generated question.
func (t *Tutor) Question(id string) (*questiongen.Question, error) {
	q, ok := t.cache.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrQuestionNotFound, id)
	}
	return q, nil
}
