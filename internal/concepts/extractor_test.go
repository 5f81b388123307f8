package concepts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/abhisek/studyloop/internal/llm"
	"github.com/abhisek/studyloop/internal/material"
)

func chunks(n int) []material.Chunk {
	out := make([]material.Chunk, n)
	for i := range out {
		out[i] = material.Chunk{Text: fmt.Sprintf("paragraph %d", i)}
	}
	return out
}

func TestExtract(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"concepts":["overfitting","regularisation"],"key_points":["More data reduces variance."],"difficulty_level":"intermediate"}`),
	})

	d, err := NewExtractor(mock).Extract(context.Background(), chunks(12))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(d.Concepts) != 2 || d.DifficultyLevel != "intermediate" {
		t.Fatalf("digest = %+v", d)
	}

	req := mock.Calls[0]
	if !req.JSONMode || req.Temperature != extractTemperature {
		t.Errorf("request mode/temperature = %v/%v", req.JSONMode, req.Temperature)
	}
	prompt := req.Messages[0].Content
	if !strings.Contains(prompt, "paragraph 9") || strings.Contains(prompt, "paragraph 10") {
		t.Errorf("prompt should contain only the first %d chunks", MaxChunks)
	}
}

func TestExtract_Failures(t *testing.T) {
	tests := []struct {
		name string
		resp llm.MockResponse
	}{
		{"provider error", llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}}},
		{"not json", llm.MockResponse{Content: json.RawMessage(`Concepts: overfitting`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewExtractor(llm.NewMockProvider(tt.resp)).Extract(context.Background(), chunks(1))
			if err == nil || d != nil {
				t.Fatalf("expected error and nil digest, got %+v, %v", d, err)
			}
		})
	}
}

func TestExtract_NoChunks(t *testing.T) {
	mock := llm.NewMockProvider()
	if _, err := NewExtractor(mock).Extract(context.Background(), nil); !errors.Is(err, ErrNoMaterial) {
		t.Fatalf("expected ErrNoMaterial, got %v", err)
	}
	if mock.CallCount() != 0 {
		t.Fatal("no model call expected")
	}
}

func TestPromptContext(t *testing.T) {
	var nilDigest *Digest
	if nilDigest.PromptContext() != "" {
		t.Error("nil digest should render empty")
	}
	d := &Digest{Concepts: []string{"bias", "variance"}, KeyPoints: []string{"Trade-off."}}
	got := d.PromptContext()
	if !strings.Contains(got, "Key concepts: bias, variance") || !strings.Contains(got, "- Trade-off.") {
		t.Errorf("PromptContext = %q", got)
	}
}
