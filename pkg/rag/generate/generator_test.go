package generate

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-qna-be/pkg/llm"
	"doc-qna-be/pkg/rag"
	"doc-qna-be/pkg/rag/memory"
	"doc-qna-be/pkg/rag/prompt"
	"doc-qna-be/pkg/rag/stream"
)

// fakeStreamProvider replays a fixed token sequence.
type fakeStreamProvider struct {
	tokens     []string
	lastPrompt string
}

func (f *fakeStreamProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	f.lastPrompt = history[len(history)-1].Content
	full := ""
	for _, tok := range f.tokens {
		full += tok
	}
	return full, nil
}

func (f *fakeStreamProvider) Generate(ctx context.Context, p string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: p}}, opts...)
}

func (f *fakeStreamProvider) ChatStream(ctx context.Context, history []llm.Message, onToken llm.TokenHandler, opts ...llm.Option) (string, error) {
	f.lastPrompt = history[len(history)-1].Content
	full := ""
	for _, tok := range f.tokens {
		if err := onToken(tok); err != nil {
			return "", err
		}
		full += tok
	}
	return full, nil
}

type recorderConn struct {
	events    []stream.Event
	failAfter int // fail on the n-th send, -1 never
}

func (r *recorderConn) SendJSON(v interface{}) error {
	if r.failAfter >= 0 && len(r.events) >= r.failAfter {
		return assert.AnError
	}
	r.events = append(r.events, v.(stream.Event))
	return nil
}

func discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

const fallback = "I tried to look for this information, but could not find something highly relevant to your query."

func TestNewGeneratorRejectsBrokenTemplate(t *testing.T) {
	broken, err := prompt.New("{question} only", "question")
	require.NoError(t, err)

	_, err = NewGenerator(&fakeStreamProvider{}, broken, fallback, discard())

	assert.ErrorIs(t, err, rag.ErrTemplateInvalid)
}

func TestGenerateInterpolatesContext(t *testing.T) {
	provider := &fakeStreamProvider{tokens: []string{"Paris."}}
	g, err := NewGenerator(provider, nil, fallback, discard())
	require.NoError(t, err)

	window := memory.NewWindow(10, "human", "ai")
	window.AddExchange("hello", "hi")

	answer, err := g.Generate(context.Background(), "capital of France?",
		[]rag.Document{{Content: "Paris is the capital of France."}}, window, "en")

	require.NoError(t, err)
	assert.Equal(t, "Paris.", answer)
	assert.Contains(t, provider.lastPrompt, "Found 1 relevant documents.")
	assert.Contains(t, provider.lastPrompt, "Paris is the capital of France.")
	assert.Contains(t, provider.lastPrompt, "human: hello")
	assert.Contains(t, provider.lastPrompt, `Respond ONLY in "en"`)
}

func TestGenerateEmptyContextReturnsFallback(t *testing.T) {
	g, err := NewGenerator(&fakeStreamProvider{tokens: []string{"should not be used"}}, nil, fallback, discard())
	require.NoError(t, err)

	answer, err := g.Generate(context.Background(), "anything", nil, nil, "en")

	require.NoError(t, err)
	assert.Equal(t, fallback, answer)
}

func TestGenerateStreamOrdering(t *testing.T) {
	provider := &fakeStreamProvider{tokens: []string{"The", "cat", "sat"}}
	g, err := NewGenerator(provider, nil, fallback, discard())
	require.NoError(t, err)

	conn := &recorderConn{failAfter: -1}
	emitter := stream.NewEmitter(conn)

	answer, err := g.GenerateStream(context.Background(), "q",
		[]rag.Document{{Content: "ctx"}}, nil, "en", emitter)

	require.NoError(t, err)
	assert.Equal(t, "Thecatsat", answer)

	require.Len(t, conn.events, 5)
	assert.Equal(t, stream.TypeStart, conn.events[0].Type)
	assert.Equal(t, "The", conn.events[1].Message)
	assert.Equal(t, "cat", conn.events[2].Message)
	assert.Equal(t, "sat", conn.events[3].Message)
	assert.Equal(t, stream.TypeEnd, conn.events[4].Type)
}

func TestGenerateStreamDeliveryFailureAborts(t *testing.T) {
	provider := &fakeStreamProvider{tokens: []string{"a", "b", "c"}}
	g, err := NewGenerator(provider, nil, fallback, discard())
	require.NoError(t, err)

	// start + first chunk succeed, second chunk fails.
	conn := &recorderConn{failAfter: 2}
	emitter := stream.NewEmitter(conn)

	_, err = g.GenerateStream(context.Background(), "q",
		[]rag.Document{{Content: "ctx"}}, nil, "en", emitter)

	assert.ErrorIs(t, err, rag.ErrStreamDelivery)
}

func TestGenerateStreamEmptyContextStreamsFallback(t *testing.T) {
	g, err := NewGenerator(&fakeStreamProvider{}, nil, fallback, discard())
	require.NoError(t, err)

	conn := &recorderConn{failAfter: -1}
	answer, err := g.GenerateStream(context.Background(), "q", nil, nil, "en", stream.NewEmitter(conn))

	require.NoError(t, err)
	assert.Equal(t, fallback, answer)
	require.Len(t, conn.events, 3)
	assert.Equal(t, fallback, conn.events[1].Message)
}
