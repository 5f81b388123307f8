package material

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the BPE encoding used to measure chunk size.
const DefaultEncoding = "cl100k_base"

// TokenCounter measures text length in model tokens.
type TokenCounter interface {
	Count(text string) int
}

// TokenCounterFunc adapts a function to TokenCounter.
type TokenCounterFunc func(string) int

func (f TokenCounterFunc) Count(text string) int { return f(text) }

// tiktokenCounter counts with a tiktoken encoding. Encoding is not
// documented as goroutine-safe, so calls are serialised.
type tiktokenCounter struct {
	mu  sync.Mutex
	enc *tiktoken.Tiktoken
}

// NewTiktokenCounter loads the named encoding. The BPE ranks are fetched
// on first use and cached under TIKTOKEN_CACHE_DIR.
func NewTiktokenCounter(encoding string) (TokenCounter, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, err
	}
	return &tiktokenCounter{enc: enc}, nil
}

func (c *tiktokenCounter) Count(text string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.enc.Encode(text, nil, nil))
}

// EstimateCounter approximates cl100k token counts at four characters per
// token. Used when the encoding cannot be loaded.
var EstimateCounter TokenCounter = TokenCounterFunc(func(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4
})
