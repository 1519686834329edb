package prompt

import (
	"fmt"
	"strings"

	"doc-qna-be/pkg/rag"
)

// Template is a prompt body with {name} placeholders. Required
// placeholders are checked at construction so a broken template fails
// at startup instead of mid-conversation.
type Template struct {
	text     string
	required []string
}

// New validates that every required placeholder occurs in text.
func New(text string, required ...string) (*Template, error) {
	for _, name := range required {
		if !strings.Contains(text, "{"+name+"}") {
			return nil, fmt.Errorf("%w: missing placeholder {%s}", rag.ErrTemplateInvalid, name)
		}
	}
	return &Template{text: text, required: required}, nil
}

// MustNew is New for package-level templates whose text is fixed.
func MustNew(text string, required ...string) *Template {
	t, err := New(text, required...)
	if err != nil {
		panic(err)
	}
	return t
}

// Render substitutes values into the template. Placeholders without a
// value are left as-is rather than silently erased.
func (t *Template) Render(values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for name, value := range values {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(t.text)
}

// Text returns the raw template body.
func (t *Template) Text() string { return t.text }

const qnaPrefix = `You are a professional AI research assistant providing accurate and relevant answers based on the given context. Follow these guidelines:
1. Use ONLY the provided context to answer questions
2. Stay focused on the specific question asked
3. Provide clear and concise answers
4. Include specific details and facts from the context when available

Remember: Accuracy is more important than comprehensiveness.
`

const qnaContext = `Found {doc_count} relevant documents.

Context Information:
{context}

Based on these documents, here is my response:
`

const qnaSuffix = `
Important Instructions:
- Respond ONLY in "{language}"
- If no relevant information is found, say: "I apologize, but I could not find sufficiently relevant information to answer your question accurately. Could you please rephrase your question or ask about a different topic?"
- Focus on the most relevant details from the context
`

const qnaPostSuffix = `Previous Conversation:
{chat_history}

Current Question: {question}
Assistant:`

// QnA is the answer-generation template. Placeholders: doc_count,
// context, language, chat_history, question.
var QnA = MustNew(
	strings.Join([]string{qnaPrefix, qnaContext, qnaSuffix, qnaPostSuffix}, "\n"),
	"doc_count", "context", "language", "chat_history", "question",
)

// DocParser extracts structured key content from one source document.
var DocParser = MustNew(`
Extract key content from the following document and structure it into a well-organized format:"

{context}
`, "context")

// DistillSummary consolidates a set of partial summaries.
var DistillSummary = MustNew(`
The following is a set of summaries:
{docs}

Take these and distill it into a final, consolidated summary of the main themes.
`, "docs")

// Rewrite turns a conversational question into a retrieval query, or
// the literal string "None" when the input is small talk.
var Rewrite = MustNew(`
    Input Description: A natural language user query about a specific topic.

    Transformation Guidelines: Convert the user query into a more effective retrieval query by following these steps:

    Keyword Focus: Identify and use specific keywords that are central to the topic.
    Synonyms and Variants: Include synonyms or related terms to cover variations in how the information might be phrased.
    Streamlining: Eliminate common stop words and unnecessary punctuation to improve search focus.
    Conciseness: Ensure the query is concise, ideally between 4-12 words, to maintain focus without over-specifying.
    Exact Matches: Enclose terms in quotes to enforce exact phrase matching when necessary to capture precise information.
    Special Handling for Irrelevant Queries:

    If the query is casual or non-informative (e.g., "Hi, how are you"), return None to indicate that the query does not require a retrieval-based response.
    Output: Deliver the optimized query formatted according to the above guidelines, or None if the query is identified as irrelevant.

    Example:

    Original User Query: "What are some good resources for learning python programming?"

    Optimized Query: "Python programming tutorials resources"

    Original User Query: "Hi, how are you?"

    Optimized Query: None

    USER QUERY : {question}

    Note : Only return the transformed query or "None" if a user is trying to do a small talk.
`, "question")
