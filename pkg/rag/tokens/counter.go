package tokens

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Counter reports token lengths for budget decisions in the pipeline.
// All budget checks (can this batch be summarized in one call, is the
// collapsed set under the ceiling) go through the same counter so that
// they agree with each other.
type Counter interface {
	Count(text string) int
	CountAll(texts []string) int
}

// modelEncodings maps model names to their tiktoken encoding.
var modelEncodings = map[string]string{
	"gpt-4o":                 "o200k_base",
	"gpt-4o-mini":            "o200k_base",
	"gpt-4-turbo":            "cl100k_base",
	"gpt-4":                  "cl100k_base",
	"gpt-3.5-turbo":          "cl100k_base",
	"text-embedding-3-large": "cl100k_base",
	"text-embedding-3-small": "cl100k_base",
}

// TiktokenCounter counts tokens with the encoding of an OpenAI-family
// model. Encoding data is loaded lazily on first use; if loading fails
// the counter falls back to a length/4 estimate so budget decisions
// still get made instead of the pipeline failing on a counting detail.
type TiktokenCounter struct {
	model    string
	encoding string
	enc      *tiktoken.Tiktoken
	once     sync.Once
	initErr  error
}

// NewTiktokenCounter creates a counter for the given model. Unknown
// models fall back to cl100k_base after a prefix match attempt.
func NewTiktokenCounter(model string) *TiktokenCounter {
	encoding, ok := modelEncodings[model]
	if !ok {
		// Longest prefix wins so gpt-4o variants do not match gpt-4.
		best := 0
		for prefix, e := range modelEncodings {
			if strings.HasPrefix(model, prefix) && len(prefix) > best {
				encoding = e
				best = len(prefix)
				ok = true
			}
		}
	}
	if !ok {
		encoding = "cl100k_base"
	}
	return &TiktokenCounter{model: model, encoding: encoding}
}

func (c *TiktokenCounter) init() error {
	c.once.Do(func() {
		enc, err := tiktoken.GetEncoding(c.encoding)
		if err != nil {
			c.initErr = fmt.Errorf("init tiktoken encoding %s: %w", c.encoding, err)
			return
		}
		c.enc = enc
	})
	return c.initErr
}

func (c *TiktokenCounter) Count(text string) int {
	if err := c.init(); err != nil {
		// Rough estimate: ~4 characters per token for English text.
		return len(text) / 4
	}
	return len(c.enc.Encode(text, nil, nil))
}

func (c *TiktokenCounter) CountAll(texts []string) int {
	total := 0
	for _, t := range texts {
		total += c.Count(t)
	}
	return total
}

// EstimateCounter is a deterministic length/4 counter. It backs tests
// and deployments where downloading encoding data is not wanted.
type EstimateCounter struct{}

func (EstimateCounter) Count(text string) int { return len(text) / 4 }

func (e EstimateCounter) CountAll(texts []string) int {
	total := 0
	for _, t := range texts {
		total += e.Count(t)
	}
	return total
}
