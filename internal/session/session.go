// Package session stores per-conversation state: the message history the
// assistant engine replays into the LLM each turn.
package session

import (
	"context"
	"errors"
	"time"

	"aria/internal/llm"
)

// ErrNotFound reports a lookup for a session that does not exist.
var ErrNotFound = errors.New("session not found")

// Session is one conversation.
type Session struct {
	ID        string        `json:"id"`
	Messages  []llm.Message `json:"messages"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// AddMessage appends a message and bumps the update timestamp.
func (s *Session) AddMessage(msg llm.Message) {
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = time.Now()
}

// Store persists sessions.
type Store interface {
	// Get returns the session, or ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)
	// GetOrCreate returns the session, creating it when absent.
	GetOrCreate(ctx context.Context, id string) (*Session, error)
	// Save persists the session.
	Save(ctx context.Context, session *Session) error
	// List returns all known session ids.
	List(ctx context.Context) ([]string, error)
	// Delete removes a session; deleting a missing id is a no-op.
	Delete(ctx context.Context, id string) error
}
