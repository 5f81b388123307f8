package home

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyloop/internal/llm"
	"github.com/abhisek/studyloop/internal/material"
	"github.com/abhisek/studyloop/internal/router"
	"github.com/abhisek/studyloop/internal/session"
	"github.com/abhisek/studyloop/internal/store"
	"github.com/abhisek/studyloop/internal/tutor"
)

func newTestTutor(t *testing.T, mock *llm.MockProvider) *tutor.Tutor {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open(fmt.Sprintf("file:home_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return tutor.New(tutor.Deps{
		Provider:    mock,
		Performance: s.PerformanceRepo(),
		Sessions:    session.NewMemoryStore(time.Hour),
		Chunker:     material.NewChunker(material.EstimateCounter, material.DefaultMaxTokens, nil),
		Rand:        rand.New(rand.NewPCG(1, 2)),
	})
}

func TestHome_MenuPushesScreens(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"concepts":[],"key_points":[],"difficulty_level":"beginner"}`)})
	tut := newTestTutor(t, mock)
	_, err := tut.ProcessMaterial(context.Background(), tutor.Material{Text: material.SampleText})
	require.NoError(t, err)

	h := New(tut, Options{UserID: "ana", Source: "notes.txt", Count: 2})

	_, _ = h.Update(h.Init()())
	view := h.View(80, 24)
	assert.Contains(t, view, "No answers yet")
	assert.Contains(t, view, "Material: notes.txt")

	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	push, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "Practice", push.Screen.Title())

	// Down to "Review wrong answers", then "Progress report".
	for range 4 {
		_, _ = h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	}
	_, cmd = h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	push, ok = cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "Review", push.Screen.Title())

	_, _ = h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd = h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	push, ok = cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "Progress Report", push.Screen.Title())
}

func TestHome_Shortcut(t *testing.T) {
	h := New(nil, Options{UserID: "ana"})
	_, cmd := h.Update(tea.KeyPressMsg{Code: 's', Text: "s"})
	require.NotNil(t, cmd)
	push, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "Progress Report", push.Screen.Title())
}

func TestHome_StatsLine(t *testing.T) {
	h := New(nil, Options{UserID: "ana"})
	_, _ = h.Update(statsMsg{stats: &store.UserStats{TotalAttempts: 4, OverallAccuracy: 0.75, UnmasteredWrong: 1}})
	assert.Equal(t, "4 answered · 75% correct · 1 to review", h.statsLine())
}
