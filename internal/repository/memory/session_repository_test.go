package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateReturnsSameWindow(t *testing.T) {
	repo := NewSessionRepository(10, "human", "ai")

	w1 := repo.GetOrCreate("session-a")
	w1.AddExchange("What is the capital of France?", "Paris.")

	w2 := repo.GetOrCreate("session-a")
	assert.Same(t, w1, w2)
	assert.Equal(t, 1, w2.Len())
}

func TestSessionsAreIsolated(t *testing.T) {
	repo := NewSessionRepository(10, "human", "ai")

	a := repo.GetOrCreate("session-a")
	a.AddExchange("q", "a")

	b := repo.GetOrCreate("session-b")
	assert.Equal(t, 0, b.Len())
}

func TestGetMissingSession(t *testing.T) {
	repo := NewSessionRepository(10, "human", "ai")

	_, found := repo.Get("nope")
	assert.False(t, found)
}

func TestWindowsCarryConfiguredRoleTags(t *testing.T) {
	repo := NewSessionRepository(10, "user", "assistant")

	w := repo.GetOrCreate("session-a")
	w.AddExchange("q", "a")

	msgs := w.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "assistant", msgs[1].Role)
}

func TestDeleteRemovesWindow(t *testing.T) {
	repo := NewSessionRepository(10, "human", "ai")

	w := repo.GetOrCreate("session-a")
	require.NotNil(t, w)

	repo.Delete("session-a")
	_, found := repo.Get("session-a")
	assert.False(t, found)
}
