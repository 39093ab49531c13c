package memory

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loansight/loansight/schema"
)

func TestAppendAndLastN(t *testing.T) {
	s := NewStore()
	s.Append("s1", schema.ConversationTurn{Role: "user", Content: "q1"})
	s.Append("s1", schema.ConversationTurn{Role: "assistant", Content: "a1"})
	s.Append("s1", schema.ConversationTurn{Role: "user", Content: "q2"})
	s.Append("s2", schema.ConversationTurn{Role: "user", Content: "other session"})

	turns := s.LastN("s1", 2)
	require.Len(t, turns, 2)
	assert.Equal(t, "a1", turns[0].Content)
	assert.Equal(t, "q2", turns[1].Content)

	assert.Len(t, s.LastN("s1", 10), 3)
	assert.Empty(t, s.LastN("unknown", 3))
	assert.Empty(t, s.LastN("s1", 0))
}

func TestEmptySessionIDIgnored(t *testing.T) {
	s := NewStore()
	s.Append("", schema.ConversationTurn{Role: "user", Content: "anonymous"})
	assert.Equal(t, 0, s.Sessions())
}

func TestClear(t *testing.T) {
	s := NewStore()
	s.Append("s1", schema.ConversationTurn{Role: "user", Content: "q"})
	require.Equal(t, 1, s.Sessions())

	s.Clear("s1")
	assert.Equal(t, 0, s.Sessions())
	assert.Empty(t, s.LastN("s1", 5))
}

func TestTurnCapEvictsOldest(t *testing.T) {
	s := NewStore()
	for i := 0; i < maxTurnsPerSession+10; i++ {
		s.Append("s1", schema.ConversationTurn{Role: "user", Content: fmt.Sprintf("turn %d", i)})
	}
	turns := s.LastN("s1", maxTurnsPerSession+10)
	require.Len(t, turns, maxTurnsPerSession)
	assert.Equal(t, "turn 10", turns[0].Content)
}

func TestRenderCapsLongMessages(t *testing.T) {
	long := ""
	for i := 0; i < 60; i++ {
		long += "0123456789"
	}
	out := Render([]schema.ConversationTurn{
		{Role: "user", Content: "short"},
		{Role: "assistant", Content: long},
	}, 500)

	assert.Contains(t, out, "user: short")
	assert.Contains(t, out, "assistant: ")
	assert.Contains(t, out, "...")
	assert.Less(t, len(out), 540)

	assert.Equal(t, "", Render(nil, 500))
}

func TestRenderCapRuneSafe(t *testing.T) {
	// A multi-byte message longer than the cap must be cut on a rune
	// boundary, never mid-character.
	long := strings.Repeat("é", 40)
	out := Render([]schema.ConversationTurn{
		{Role: "assistant", Content: long},
	}, 25)

	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, "assistant: "+strings.Repeat("é", 25)+"...", out)
}
