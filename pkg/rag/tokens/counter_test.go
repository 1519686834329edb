package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateCounter(t *testing.T) {
	c := EstimateCounter{}

	assert.Equal(t, 0, c.Count("abc"))
	assert.Equal(t, 10, c.Count("0123456789012345678901234567890123456789"))
	assert.Equal(t, 20, c.CountAll([]string{
		"0123456789012345678901234567890123456789",
		"0123456789012345678901234567890123456789",
	}))
}

func TestNewTiktokenCounterModelSelection(t *testing.T) {
	tests := []struct {
		model        string
		wantEncoding string
	}{
		{"gpt-4o", "o200k_base"},
		{"gpt-4o-mini", "o200k_base"},
		{"gpt-4", "cl100k_base"},
		{"gpt-4o-2024-08-06", "o200k_base"}, // prefix match
		{"totally-unknown", "cl100k_base"},  // fallback
	}

	for _, tt := range tests {
		c := NewTiktokenCounter(tt.model)
		assert.Equal(t, tt.wantEncoding, c.encoding, "model %s", tt.model)
	}
}
