package material

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// wordCounter counts whitespace-separated words, making budgets easy to reason about.
var wordCounter = TokenCounterFunc(func(s string) int { return len(strings.Fields(s)) })

func TestChunk_ParagraphsWithinBudget(t *testing.T) {
	c := NewChunker(wordCounter, 50, nil)
	text := "First paragraph about entropy.\n\nSecond paragraph about information gain.\n  \n\nThird one."

	chunks := c.Chunk(text, map[string]any{MetaSource: "notes.txt"})
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %q", len(chunks), Texts(chunks))
	}
	if chunks[1].Text != "Second paragraph about information gain." {
		t.Errorf("chunk[1] = %q", chunks[1].Text)
	}
	for _, ch := range chunks {
		if ch.Source() != "notes.txt" {
			t.Errorf("metadata not copied: %v", ch.Metadata)
		}
	}
}

func TestChunk_MetadataIsIndependent(t *testing.T) {
	c := NewChunker(wordCounter, 50, nil)
	meta := map[string]any{MetaSource: "x"}
	chunks := c.Chunk("a.\n\nb.", meta)

	chunks[0].Metadata["extra"] = true
	if _, ok := chunks[1].Metadata["extra"]; ok {
		t.Fatal("chunks share a metadata map")
	}
	if _, ok := meta["extra"]; ok {
		t.Fatal("caller's metadata was mutated")
	}
}

func TestChunk_LongParagraphPacksSentences(t *testing.T) {
	c := NewChunker(wordCounter, 6, nil)
	// Sentences of 3, 3, 4 and 2 words.
	para := "One two three. Four five six! Seven eight nine ten? Eleven twelve."

	chunks := c.Chunk(para, nil)
	want := []string{
		"One two three. Four five six!",
		"Seven eight nine ten? Eleven twelve.",
	}
	if got := Texts(chunks); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("chunks = %q, want %q", got, want)
	}
	for _, ch := range chunks {
		if n := wordCounter.Count(ch.Text); n > 6 {
			t.Errorf("chunk over budget (%d): %q", n, ch.Text)
		}
	}
}

func TestChunk_OversizeSentenceEmittedWhole(t *testing.T) {
	c := NewChunker(wordCounter, 3, nil)
	para := "Short one. This single sentence has far too many words for the budget. End."

	chunks := c.Chunk(para, nil)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %q", Texts(chunks))
	}
	if chunks[1].Text != "This single sentence has far too many words for the budget." {
		t.Errorf("oversize sentence split: %q", chunks[1].Text)
	}
}

func TestChunk_EmptyInput(t *testing.T) {
	c := NewChunker(wordCounter, 10, nil)
	for _, in := range []string{"", "   ", "\n\n\n"} {
		if got := c.Chunk(in, nil); len(got) != 0 {
			t.Errorf("Chunk(%q) = %q, want none", in, Texts(got))
		}
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("Is it? Yes.  It is!\nDone")
	want := []string{"Is it?", "Yes.", "It is!", "Done"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("splitSentences = %q, want %q", got, want)
	}
}

func TestLoadText(t *testing.T) {
	c := NewChunker(wordCounter, 100, nil)
	chunks := c.LoadText(SampleText)
	if len(chunks) != 6 {
		t.Fatalf("expected 6 paragraphs from sample text, got %d", len(chunks))
	}
	if chunks[0].Source() != SourceDirectInput {
		t.Errorf("source = %q", chunks[0].Source())
	}
}

func TestLoadFile_Text(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.md")
	if err := os.WriteFile(path, []byte("Bias.\n\nVariance."), 0o644); err != nil {
		t.Fatal(err)
	}
	c := NewChunker(wordCounter, 100, nil)
	chunks, err := c.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(chunks) != 2 || chunks[0].Source() != path {
		t.Fatalf("chunks = %+v", chunks)
	}
}

func TestLoadPDF_MissingFile(t *testing.T) {
	c := NewChunker(wordCounter, 100, nil)
	if _, err := c.LoadPDF(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Fatal("expected error for missing PDF")
	}
	if _, err := c.LoadFile(filepath.Join(t.TempDir(), "missing.PDF")); err == nil {
		t.Fatal("expected error for missing PDF via LoadFile")
	}
}

func TestEstimateCounter(t *testing.T) {
	if got := EstimateCounter.Count("abcdefgh"); got != 2 {
		t.Errorf("Count(8 chars) = %d, want 2", got)
	}
	if got := EstimateCounter.Count(""); got != 0 {
		t.Errorf("Count(\"\") = %d, want 0", got)
	}
}
