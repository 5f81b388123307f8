package questiongen

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/abhisek/studyloop/internal/concepts"
	"github.com/abhisek/studyloop/internal/llm"
	"github.com/abhisek/studyloop/internal/logger"
	"github.com/abhisek/studyloop/internal/material"
)

// ErrNoChunks is returned when generation is requested without material.
var ErrNoChunks = errors.New("no material chunks to generate questions from")

// Input describes one question set.
type Input struct {
	Chunks []material.Chunk

	// Count is the number of questions requested.
	Count int

	// Types restricts the variants drawn from. Empty means all of them.
	Types []Type

	// Digest is optional context from concept extraction.
	Digest *concepts.Digest
}

// Generator synthesizes questions with an LLM provider. It is safe for
// concurrent use.
type Generator struct {
	provider llm.Provider
	config   Config
	log      *logger.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// Option customizes a Generator.
type Option func(*Generator)

// WithRand sets the source used for type choice and chunk sampling.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) { g.rng = r }
}

// WithLogger sets the logger used to report skipped questions.
func WithLogger(l *logger.Logger) Option {
	return func(g *Generator) { g.log = l }
}

// New creates a Generator.
func New(provider llm.Provider, cfg Config, opts ...Option) *Generator {
	g := &Generator{
		provider: provider,
		config:   cfg,
		log:      logger.Nop(),
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.log = logger.OrNop(g.log)
	return g
}

// plan is everything decided about a question before the model is asked.
type plan struct {
	index      int
	typ        Type
	difficulty Difficulty
	excerpts   []string
	context    string
}

func (g *Generator) intN(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.IntN(n)
}

// sample picks k distinct chunk texts, or all of them when there are fewer.
func (g *Generator) sample(chunks []material.Chunk, k int) []string {
	g.mu.Lock()
	perm := g.rng.Perm(len(chunks))
	g.mu.Unlock()

	perm = perm[:min(k, len(perm))]
	out := make([]string, len(perm))
	for i, idx := range perm {
		out[i] = chunks[idx].Text
	}
	return out
}

func (g *Generator) plan(input Input, index int) plan {
	types := input.Types
	if len(types) == 0 {
		types = AllTypes
	}
	t := types[g.intN(len(types))]

	k := 2
	if t == TypeMultipleChoice {
		k = 3
	}
	return plan{
		index:      index,
		typ:        t,
		difficulty: DifficultyAt(index, input.Count),
		excerpts:   g.sample(input.Chunks, k),
		context:    input.Digest.PromptContext(),
	}
}

// Generate produces up to input.Count questions. A question whose request,
// decoding or validation fails is logged and skipped; only cancellation
// aborts the set.
func (g *Generator) Generate(ctx context.Context, input Input) ([]*Question, error) {
	if len(input.Chunks) == 0 {
		return nil, ErrNoChunks
	}

	questions := make([]*Question, 0, max(input.Count, 0))
	for i := range input.Count {
		p := g.plan(input, i)
		q, err := g.generate(ctx, p, nil)
		if err != nil {
			if ctx.Err() != nil {
				return questions, ctx.Err()
			}
			g.log.Warn("question skipped", "index", i, "type", p.typ, "error", err)
			continue
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// Event is one step of a streamed question set: Started, Delta or
// Completed.
type Event interface {
	isEvent()
}

// Started announces question Index (1-based) of Total.
type Started struct {
	Index int
	Total int
}

// Delta carries a fragment of raw model output for the current question.
type Delta struct {
	Text string
}

// Completed carries the finished question.
type Completed struct {
	Question *Question
}

func (Started) isEvent()   {}
func (Delta) isEvent()     {}
func (Completed) isEvent() {}

// Stream generates questions one at a time, yielding Started, the model's
// output deltas and Completed for each. The next question is only requested
// once the consumer pulls past Completed. A multiple-choice or short-answer
// question that cannot be produced ends the sequence with an error;
// true/false questions fall back to a built-in statement instead.
func (g *Generator) Stream(ctx context.Context, input Input) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		if len(input.Chunks) == 0 {
			yield(nil, ErrNoChunks)
			return
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		for i := range input.Count {
			if !yield(Started{Index: i + 1, Total: input.Count}, nil) {
				return
			}

			stopped := false
			onDelta := func(text string) {
				if stopped {
					return
				}
				if !yield(Delta{Text: text}, nil) {
					stopped = true
					cancel()
				}
			}

			q, err := g.generate(ctx, g.plan(input, i), onDelta)
			if stopped {
				return
			}
			if err != nil {
				yield(nil, fmt.Errorf("question %d: %w", i+1, err))
				return
			}
			if !yield(Completed{Question: q}, nil) {
				return
			}
		}
	}
}

// Callbacks receive the progress of GenerateStream. Any may be nil.
type Callbacks struct {
	OnStart    func(index, total int)
	OnChunk    func(text string)
	OnComplete func(q *Question)
}

// GenerateStream drives Stream and reports progress through callbacks. It
// returns the questions completed before any error.
func (g *Generator) GenerateStream(ctx context.Context, input Input, cb Callbacks) ([]*Question, error) {
	var questions []*Question
	for ev, err := range g.Stream(ctx, input) {
		if err != nil {
			return questions, err
		}
		switch ev := ev.(type) {
		case Started:
			if cb.OnStart != nil {
				cb.OnStart(ev.Index, ev.Total)
			}
		case Delta:
			if cb.OnChunk != nil {
				cb.OnChunk(ev.Text)
			}
		case Completed:
			questions = append(questions, ev.Question)
			if cb.OnComplete != nil {
				cb.OnComplete(ev.Question)
			}
		}
	}
	return questions, nil
}

// generate requests and builds one question. A nil onDelta selects a
// non-streaming request.
func (g *Generator) generate(ctx context.Context, p plan, onDelta func(string)) (*Question, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestionGen)

	schema := schemaFor(p.typ)
	req := llm.Request{
		System:      systemPrompts[p.typ],
		Messages:    llm.UserMessage(buildUserMessage(p.typ, p.difficulty, p.excerpts, p.context)),
		Schema:      schema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	method := MethodLLM
	var (
		resp *llm.Response
		err  error
	)
	if onDelta != nil {
		method = MethodLLMStream
		resp, err = g.provider.Stream(ctx, req, onDelta)
	} else {
		resp, err = g.provider.Generate(ctx, req)
	}

	var q *Question
	if err == nil {
		q, err = g.build(p, schema, resp, method)
	}
	if err == nil {
		err = g.validate(q)
	}
	if err != nil {
		if p.typ == TypeTrueFalse && ctx.Err() == nil {
			g.log.Warn("true/false generation failed, using fallback", "error", err)
			return g.fallbackTrueFalse(p), nil
		}
		return nil, err
	}
	return q, nil
}

func (g *Generator) build(p plan, schema *llm.Schema, resp *llm.Response, method string) (*Question, error) {
	q := &Question{
		Difficulty:   p.difficulty,
		SourceChunks: p.excerpts,
		Metadata:     map[string]any{MetaGenerationMethod: method},
	}

	switch p.typ {
	case TypeMultipleChoice:
		var out multipleChoiceOutput
		if err := llm.DecodeJSON(schema, resp.Content, &out); err != nil {
			return nil, err
		}
		q.Content = out.Question
		q.CorrectAnswer = out.CorrectAnswer
		q.Explanation = out.Explanation
		q.Tags = cleanTags(out.Tags)
		q.Body = &MultipleChoice{Options: out.Options}

	case TypeShortAnswer:
		var out shortAnswerOutput
		if err := llm.DecodeJSON(schema, resp.Content, &out); err != nil {
			return nil, err
		}
		q.Content = out.Question
		q.CorrectAnswer = out.ReferenceAnswer
		q.Explanation = out.Explanation
		q.Tags = cleanTags(out.Tags)
		q.Metadata[MetaScoringCriteria] = out.ScoringCriteria
		q.Body = &ShortAnswer{Criteria: out.ScoringCriteria}

	case TypeTrueFalse:
		var out trueFalseOutput
		if err := llm.DecodeJSON(schema, resp.Content, &out); err != nil {
			return nil, err
		}
		q.Content = out.Statement
		q.CorrectAnswer = out.CorrectAnswer
		q.Explanation = out.Explanation
		q.Tags = []string{string(TypeTrueFalse), string(p.difficulty)}
		q.Metadata[MetaSource] = "generated"
		q.Body = &TrueFalse{}

	default:
		return nil, fmt.Errorf("unknown question type %q", p.typ)
	}

	q.ID = QuestionID(q.Content, q.Difficulty)
	return q, nil
}

func (g *Generator) validate(q *Question) error {
	for _, v := range g.config.Validators {
		if verr := v.Validate(q); verr != nil {
			return verr
		}
	}
	return nil
}

// cleanTags trims tags and drops blanks and repeats, keeping first-seen
// order.
func cleanTags(tags []string) []string {
	trimmed := lo.Map(tags, func(t string, _ int) string { return strings.TrimSpace(t) })
	return lo.Uniq(lo.Compact(trimmed))
}
