package material

import (
	"regexp"
	"strings"

	"github.com/abhisek/studyloop/internal/logger"
)

// DefaultMaxTokens is the per-chunk token budget.
const DefaultMaxTokens = 1000

var (
	paragraphBreak = regexp.MustCompile(`\n\s*\n`)
	sentenceEnd    = regexp.MustCompile(`[.!?]\s+`)
)

// Chunker splits text into chunks no larger than MaxTokens, except where a
// single sentence alone exceeds the budget.
type Chunker struct {
	counter   TokenCounter
	maxTokens int
}

// NewChunker builds a chunker. A nil counter selects tiktoken's cl100k
// encoding, falling back to EstimateCounter when it cannot be loaded.
func NewChunker(counter TokenCounter, maxTokens int, log *logger.Logger) *Chunker {
	if counter == nil {
		c, err := NewTiktokenCounter(DefaultEncoding)
		if err != nil {
			logger.OrNop(log).Warn("tokenizer unavailable, estimating token counts", "encoding", DefaultEncoding, "error", err)
			c = EstimateCounter
		}
		counter = c
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Chunker{counter: counter, maxTokens: maxTokens}
}

// Chunk splits text on blank-line paragraph boundaries. A paragraph within
// budget becomes one chunk; a longer one is split into sentences that are
// packed greedily and joined by single spaces. Every chunk receives its own
// copy of metadata. Blank input yields no chunks.
func (c *Chunker) Chunk(text string, metadata map[string]any) []Chunk {
	var chunks []Chunk
	for _, para := range paragraphBreak.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if c.counter.Count(para) <= c.maxTokens {
			chunks = append(chunks, newChunk(para, metadata))
			continue
		}
		for _, packed := range c.pack(splitSentences(para)) {
			chunks = append(chunks, newChunk(packed, metadata))
		}
	}
	return chunks
}

func (c *Chunker) pack(sentences []string) []string {
	var (
		out     []string
		current []string
		size    int
	)
	for _, s := range sentences {
		n := c.counter.Count(s)
		if len(current) > 0 && size+n > c.maxTokens {
			out = append(out, strings.Join(current, " "))
			current, size = nil, 0
		}
		current = append(current, s)
		size += n
	}
	if len(current) > 0 {
		out = append(out, strings.Join(current, " "))
	}
	return out
}

// splitSentences breaks text after '.', '!' or '?' followed by whitespace,
// keeping the terminator with its sentence.
func splitSentences(text string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[start : loc[0]+1]); s != "" {
			out = append(out, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}
