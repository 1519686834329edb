package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindowEvictsOldestFirst(t *testing.T) {
	w := NewWindow(2, "human", "ai")

	w.AddExchange("q1", "a1")
	w.AddExchange("q2", "a2")
	w.AddExchange("q3", "a3")

	assert.Equal(t, 2, w.Len())

	msgs := w.Messages()
	assert.Len(t, msgs, 4)
	assert.Equal(t, "q2", msgs[0].Content)
	assert.Equal(t, "a3", msgs[3].Content)
}

func TestWindowRender(t *testing.T) {
	w := NewWindow(10, "human", "ai")
	assert.Equal(t, "", w.Render())

	w.AddExchange("hello", "hi there")

	assert.Equal(t, "human: hello\nai: hi there", w.Render())
}

func TestWindowLoadDropsOverflow(t *testing.T) {
	w := NewWindow(2, "human", "ai")

	w.Load([]Message{
		{Role: "human", Content: "q1"}, {Role: "ai", Content: "a1"},
		{Role: "human", Content: "q2"}, {Role: "ai", Content: "a2"},
		{Role: "human", Content: "q3"}, {Role: "ai", Content: "a3"},
	})

	assert.Equal(t, 2, w.Len())
	msgs := w.Messages()
	assert.Equal(t, "q2", msgs[0].Content)
	assert.Equal(t, "q3", msgs[2].Content)
}

func TestWindowLoadSkipsUnknownRoles(t *testing.T) {
	w := NewWindow(10, "human", "ai")

	w.Load([]Message{
		{Role: "system", Content: "You are a helpful assistant."},
		{Role: "human", Content: "q1"},
		{Role: "tool", Content: "lookup result"},
		{Role: "ai", Content: "a1"},
	})

	assert.Equal(t, 1, w.Len())
	assert.Equal(t, "human: q1\nai: a1", w.Render())
}

func TestWindowLoadMatchesConfiguredTags(t *testing.T) {
	w := NewWindow(10, "user", "assistant")

	w.Load([]Message{
		{Role: "user", Content: "q1"},
		{Role: "assistant", Content: "a1"},
		{Role: "human", Content: "wrong tag, skipped"},
		{Role: "ai", Content: "also skipped"},
	})

	assert.Equal(t, 1, w.Len())
	assert.Equal(t, "user", w.Messages()[0].Role)
}

func TestWindowLoadDropsUnansweredHuman(t *testing.T) {
	w := NewWindow(10, "human", "ai")

	w.Load([]Message{
		{Role: "human", Content: "q1"},
		{Role: "ai", Content: "a1"},
		{Role: "human", Content: "never answered"},
	})

	assert.Equal(t, 1, w.Len())
}

func TestWindowDefaults(t *testing.T) {
	w := NewWindow(0, "", "")

	for i := 0; i < 15; i++ {
		w.AddExchange("q", "a")
	}
	assert.Equal(t, 10, w.Len())

	msgs := w.Messages()
	assert.Equal(t, "human", msgs[0].Role)
	assert.Equal(t, "ai", msgs[1].Role)
}
