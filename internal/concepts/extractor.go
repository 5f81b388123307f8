// Package concepts asks the model for a short digest of the material's key
// concepts, used to ground question prompts.
package concepts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/studyloop/internal/llm"
	"github.com/abhisek/studyloop/internal/material"
)

// MaxChunks is how many leading chunks feed extraction.
const MaxChunks = 10

const (
	extractTemperature = 0.3
	extractMaxTokens   = 1024
)

// Digest summarises the material. Every field may be empty.
type Digest struct {
	Concepts        []string `json:"concepts"`
	KeyPoints       []string `json:"key_points"`
	DifficultyLevel string   `json:"difficulty_level"`
}

// PromptContext renders the digest for inclusion in a question prompt.
// A nil or empty digest renders as "".
func (d *Digest) PromptContext() string {
	if d == nil || (len(d.Concepts) == 0 && len(d.KeyPoints) == 0) {
		return ""
	}
	var b strings.Builder
	if len(d.Concepts) > 0 {
		fmt.Fprintf(&b, "Key concepts: %s\n", strings.Join(d.Concepts, ", "))
	}
	for _, p := range d.KeyPoints {
		fmt.Fprintf(&b, "- %s\n", p)
	}
	if d.DifficultyLevel != "" {
		fmt.Fprintf(&b, "Material level: %s\n", d.DifficultyLevel)
	}
	return b.String()
}

// ErrNoMaterial is returned when there are no chunks to extract from.
var ErrNoMaterial = errors.New("no material to extract concepts from")

// Extractor produces a Digest with a single JSON-mode model call.
type Extractor struct {
	provider llm.Provider
}

// NewExtractor creates an extractor backed by provider.
func NewExtractor(provider llm.Provider) *Extractor {
	return &Extractor{provider: provider}
}

const systemPrompt = `You are an expert instructional designer. Read the study material and identify what a learner must understand.

Return a JSON object with exactly these keys:
- "concepts": the core concepts, as short noun phrases
- "key_points": the most important facts or relationships, one sentence each
- "difficulty_level": one of "beginner", "intermediate", "advanced"`

// Extract reads the first MaxChunks chunks and asks for a digest. Beyond
// being parseable JSON the reply is not validated. Callers should treat any
// error as "no digest" rather than aborting.
func (e *Extractor) Extract(ctx context.Context, chunks []material.Chunk) (*Digest, error) {
	if len(chunks) == 0 {
		return nil, ErrNoMaterial
	}
	chunks = chunks[:min(len(chunks), MaxChunks)]

	ctx = llm.WithPurpose(ctx, llm.PurposeConceptExtraction)
	resp, err := e.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    llm.UserMessage("Study material:\n\n" + strings.Join(material.Texts(chunks), "\n")),
		JSONMode:    true,
		MaxTokens:   extractMaxTokens,
		Temperature: extractTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("extract concepts: %w", err)
	}

	var d Digest
	if err := llm.DecodeJSON(nil, resp.Content, &d); err != nil {
		return nil, fmt.Errorf("decode concepts: %w", err)
	}
	return &d, nil
}
