package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTextShortInput(t *testing.T) {
	chunks := SplitText("short text", 1000, 200)
	assert.Equal(t, []string{"short text"}, chunks)
}

func TestSplitTextEmptyInput(t *testing.T) {
	assert.Nil(t, SplitText("   ", 1000, 200))
}

func TestSplitTextOverlap(t *testing.T) {
	text := strings.Repeat("a", 250)
	chunks := SplitText(text, 100, 20)

	// step = 80: chunks start at 0, 80, 160, 240
	assert.Len(t, chunks, 4)
	assert.Len(t, chunks[0], 100)
	assert.Len(t, chunks[3], 10)
}

func TestSplitTextNonPositiveChunkSize(t *testing.T) {
	// A zero or negative chunk size falls back to the default instead
	// of looping forever on a zero step.
	chunks := SplitText("some document text", 0, 200)
	assert.Equal(t, []string{"some document text"}, chunks)

	chunks = SplitText(strings.Repeat("c", 1500), -5, 0)
	assert.Len(t, chunks, 2)
}

func TestSplitTextOverlapAtLeastChunk(t *testing.T) {
	// overlap >= chunkSize must not loop forever
	text := strings.Repeat("b", 50)
	chunks := SplitText(text, 10, 10)

	assert.Len(t, chunks, 5)
}
