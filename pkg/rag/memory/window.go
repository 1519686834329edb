package memory

import (
	"fmt"
	"strings"
	"sync"
)

// Message is one conversational turn with its role tag.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Window keeps the most recent k human/ai exchange pairs. Older pairs
// are evicted oldest-first, so the prompt context stays bounded no
// matter how long the conversation runs.
type Window struct {
	mu       sync.Mutex
	k        int
	humanTag string
	aiTag    string
	pairs    [][2]Message
}

// NewWindow creates a conversation window holding at most k pairs.
// Non-positive k falls back to 10.
func NewWindow(k int, humanTag, aiTag string) *Window {
	if k <= 0 {
		k = 10
	}
	if humanTag == "" {
		humanTag = "human"
	}
	if aiTag == "" {
		aiTag = "ai"
	}
	return &Window{k: k, humanTag: humanTag, aiTag: aiTag}
}

// AddExchange records one completed question/answer pair, evicting the
// oldest pair when the window is full.
func (w *Window) AddExchange(question, answer string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pairs = append(w.pairs, [2]Message{
		{Role: w.humanTag, Content: question},
		{Role: w.aiTag, Content: answer},
	})
	if len(w.pairs) > w.k {
		w.pairs = w.pairs[len(w.pairs)-w.k:]
	}
}

// Load replaces the window contents from a role-tagged transcript,
// e.g. chat context carried on the request. Each turn matching the
// human tag is paired with the next turn matching the ai tag; turns
// with any other role (system, tool) are skipped, as is a human turn
// that never gets an answer. Pairs beyond the window size are dropped
// oldest-first.
func (w *Window) Load(messages []Message) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pairs = w.pairs[:0]
	pendingHuman := ""
	hasPending := false
	for _, m := range messages {
		switch m.Role {
		case w.humanTag:
			pendingHuman = m.Content
			hasPending = true
		case w.aiTag:
			if !hasPending {
				continue
			}
			w.pairs = append(w.pairs, [2]Message{
				{Role: w.humanTag, Content: pendingHuman},
				{Role: w.aiTag, Content: m.Content},
			})
			hasPending = false
		}
	}
	if len(w.pairs) > w.k {
		w.pairs = w.pairs[len(w.pairs)-w.k:]
	}
}

// Messages returns the retained turns oldest-first.
func (w *Window) Messages() []Message {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]Message, 0, len(w.pairs)*2)
	for _, p := range w.pairs {
		out = append(out, p[0], p[1])
	}
	return out
}

// Render formats the retained turns as "tag: content" lines for prompt
// interpolation. An empty window renders as an empty string.
func (w *Window) Render() string {
	msgs := w.Messages()
	if len(msgs) == 0 {
		return ""
	}
	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s: %s", m.Role, m.Content)
	}
	return b.String()
}

// Len reports the number of retained pairs.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pairs)
}
