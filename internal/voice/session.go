// Package voice implements the voice-to-voice conversation channel.
package voice

import (
	"github.com/google/uuid"
)

// Conversation roles.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is one utterance in a conversation.
type Turn struct {
	Role string
	Text string
}

// Session holds the conversation of a single connection. It is created when
// the socket is upgraded and discarded when it closes, so conversations never
// leak between clients. A Session is used by one goroutine at a time.
type Session struct {
	ID         string
	maxHistory int
	history    []Turn
}

// NewSession creates a session keeping at most maxHistory turns.
// A non-positive maxHistory keeps every turn.
func NewSession(maxHistory int) *Session {
	return &Session{
		ID:         uuid.NewString(),
		maxHistory: maxHistory,
	}
}

// Append records a turn, dropping the oldest turns beyond the cap.
func (s *Session) Append(role, text string) {
	s.history = append(s.history, Turn{Role: role, Text: text})
	if s.maxHistory > 0 && len(s.history) > s.maxHistory {
		s.history = append([]Turn(nil), s.history[len(s.history)-s.maxHistory:]...)
	}
}

// History returns a copy of the recorded turns, oldest first.
func (s *Session) History() []Turn {
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}

// Len returns the number of recorded turns.
func (s *Session) Len() int {
	return len(s.history)
}
