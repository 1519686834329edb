package rewrite

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"doc-qna-be/pkg/llm"
)

type fakeProvider struct {
	reply string
	err   error
}

func (f *fakeProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return f.reply, f.err
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.reply, f.err
}

func discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestRewriteReturnsQuery(t *testing.T) {
	r := NewRewriter(&fakeProvider{reply: `"Python programming tutorials resources"`}, "", discard())

	query, ok := r.Rewrite(context.Background(), "What are some good resources for learning python programming?")

	assert.True(t, ok)
	assert.Equal(t, "Python programming tutorials resources", query)
}

func TestRewriteSmallTalkSentinel(t *testing.T) {
	for _, reply := range []string{"None", "none", " None \n"} {
		r := NewRewriter(&fakeProvider{reply: reply}, "", discard())

		query, ok := r.Rewrite(context.Background(), "Hi, how are you?")

		assert.False(t, ok, "reply %q should skip retrieval", reply)
		assert.Equal(t, "", query)
	}
}

func TestRewriteModelFailureSkipsRetrieval(t *testing.T) {
	r := NewRewriter(&fakeProvider{err: errors.New("model down")}, "", discard())

	query, ok := r.Rewrite(context.Background(), "What is the capital of France?")

	assert.False(t, ok)
	assert.Equal(t, "", query)
}
