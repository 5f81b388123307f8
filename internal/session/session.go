// Package session keeps processed study material between requests.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/studyloop/internal/concepts"
	"github.com/abhisek/studyloop/internal/material"
)

// DefaultTTL is how long a session lives after it is created.
const DefaultTTL = 24 * time.Hour

// ErrSessionNotFound is returned for unknown or expired sessions.
var ErrSessionNotFound = errors.New("session not found")

// Session is one processed piece of study material.
type Session struct {
	ID        string           `json:"id"`
	Source    string           `json:"source"`
	Chunks    []material.Chunk `json:"chunks"`
	Digest    *concepts.Digest `json:"digest,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// New creates a session with a fresh id.
func New(source string, chunks []material.Chunk, digest *concepts.Digest, now time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Source:    source,
		Chunks:    chunks,
		Digest:    digest,
		CreatedAt: now,
	}
}

// Store is the session registry.
type Store interface {
	// Put saves s, replacing any session with the same id, and makes it
	// the latest.
	Put(ctx context.Context, s *Session) error

	// Get returns the session or ErrSessionNotFound.
	Get(ctx context.Context, id string) (*Session, error)

	// Latest returns the most recently stored live session or
	// ErrSessionNotFound.
	Latest(ctx context.Context) (*Session, error)
}
