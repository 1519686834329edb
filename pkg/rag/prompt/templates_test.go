package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-qna-be/pkg/rag"
)

func TestNewRejectsMissingPlaceholder(t *testing.T) {
	_, err := New("Answer {question}", "question", "context")

	require.Error(t, err)
	assert.ErrorIs(t, err, rag.ErrTemplateInvalid)
	assert.Contains(t, err.Error(), "{context}")
}

func TestRenderSubstitutesValues(t *testing.T) {
	tpl, err := New("Q: {question} in {language}", "question", "language")
	require.NoError(t, err)

	out := tpl.Render(map[string]string{
		"question": "capital of France?",
		"language": "en",
	})

	assert.Equal(t, "Q: capital of France? in en", out)
}

func TestRenderLeavesUnknownPlaceholders(t *testing.T) {
	tpl, err := New("{question} {missing}", "question")
	require.NoError(t, err)

	out := tpl.Render(map[string]string{"question": "hi"})

	assert.Equal(t, "hi {missing}", out)
}

func TestCanonicalTemplatesCarryRequiredFields(t *testing.T) {
	for _, field := range []string{"doc_count", "context", "language", "chat_history", "question"} {
		assert.True(t, strings.Contains(QnA.Text(), "{"+field+"}"), "QnA missing {%s}", field)
	}
	assert.Contains(t, DocParser.Text(), "{context}")
	assert.Contains(t, DistillSummary.Text(), "{docs}")
	assert.Contains(t, Rewrite.Text(), "{question}")
}
