// Package material turns study material (plain text or PDF) into
// token-bounded chunks that later stages sample from.
package material

import "maps"

// Metadata keys set by the loaders.
const (
	MetaSource = "source"
	MetaPage   = "page"
)

// SourceDirectInput marks text that was pasted rather than loaded from a file.
const SourceDirectInput = "direct_input"

// Chunk is a bounded slice of source text. Each chunk owns its metadata;
// mutating one chunk's map never affects another.
type Chunk struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`

	// Embedding is reserved for similarity retrieval and is never populated.
	Embedding []float32 `json:"embedding,omitempty"`
}

func newChunk(text string, metadata map[string]any) Chunk {
	return Chunk{Text: text, Metadata: maps.Clone(metadata)}
}

// Source returns the chunk's source label, if any.
func (c Chunk) Source() string {
	s, _ := c.Metadata[MetaSource].(string)
	return s
}

// Texts returns the text of each chunk.
func Texts(chunks []Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}
