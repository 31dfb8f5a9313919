package service

import (
	"strings"
	"sync"

	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/llm"
)

// Turn is one (query, answer) exchange.
type Turn struct {
	Query  string
	Answer string
}

// History is the append-only conversation memory owned by a session.
// It keeps at most maxTurns recent turns to prevent prompt bloat and
// is discarded when the process ends.
type History struct {
	mu       sync.Mutex
	turns    []Turn
	maxTurns int
}

// NewHistory creates a history capped at maxTurns (default 10).
func NewHistory(maxTurns int) *History {
	if maxTurns <= 0 {
		maxTurns = 10
	}
	return &History{maxTurns: maxTurns}
}

// Append records a completed exchange, trimming the oldest turns past
// the cap.
func (h *History) Append(query, answer string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns, Turn{Query: query, Answer: answer})
	if len(h.turns) > h.maxTurns {
		h.turns = h.turns[len(h.turns)-h.maxTurns:]
	}
}

// Turns returns a copy of the recorded exchanges, oldest first.
func (h *History) Turns() []Turn {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Len reports the number of recorded turns.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.turns)
}

// Clear forgets the conversation.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = nil
}

// Format renders the history for prompt inclusion, one line per
// message, or the [None] placeholder when empty.
func (h *History) Format() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.turns) == 0 {
		return llm.EmptyHistory
	}
	var lines []string
	for _, t := range h.turns {
		lines = append(lines, "[User] "+t.Query, "[AI] "+t.Answer)
	}
	return strings.Join(lines, "\n")
}
