package memory

import (
	"strings"
	"sync"

	"github.com/loansight/loansight/schema"
)

// maxTurnsPerSession bounds unbounded chat sessions; oldest turns fall off.
const maxTurnsPerSession = 100

// Store keeps per-session conversation turns in process memory. Safe for
// concurrent use.
type Store struct {
	mu    sync.RWMutex
	turns map[string][]schema.ConversationTurn
}

func NewStore() *Store {
	return &Store{turns: make(map[string][]schema.ConversationTurn)}
}

func (s *Store) Append(sessionID string, turn schema.ConversationTurn) {
	if sessionID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := append(s.turns[sessionID], turn)
	if len(list) > maxTurnsPerSession {
		list = list[len(list)-maxTurnsPerSession:]
	}
	s.turns[sessionID] = list
}

// LastN returns up to n most recent turns in chronological order.
func (s *Store) LastN(sessionID string, n int) []schema.ConversationTurn {
	if sessionID == "" || n <= 0 {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.turns[sessionID]
	if len(list) > n {
		list = list[len(list)-n:]
	}
	out := make([]schema.ConversationTurn, len(list))
	copy(out, list)
	return out
}

func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.turns, sessionID)
}

func (s *Store) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// Render formats turns for prompt injection, capping each message so one long
// answer cannot crowd out the rest of the prompt.
func Render(turns []schema.ConversationTurn, charCap int) string {
	if len(turns) == 0 {
		return ""
	}
	var b strings.Builder
	for _, t := range turns {
		content := t.Content
		if charCap > 0 {
			// Cap on runes, not bytes, so a multi-byte name at the
			// boundary is not split mid-rune.
			if r := []rune(content); len(r) > charCap {
				content = string(r[:charCap]) + "..."
			}
		}
		b.WriteString(t.Role)
		b.WriteString(": ")
		b.WriteString(content)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
