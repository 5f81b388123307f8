package session

import (
	"sync"

	"github.com/abhisek/studyloop/internal/questiongen"
)

// DefaultCacheSize bounds the question cache.
const DefaultCacheSize = 500

// QuestionCache remembers generated questions by id so answers can be
// submitted by id. The oldest entries are dropped first.
type QuestionCache struct {
	mu    sync.Mutex
	size  int
	items map[string]*questiongen.Question
	order []string
}

// NewQuestionCache creates a cache holding up to size questions.
func NewQuestionCache(size int) *QuestionCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &QuestionCache{size: size, items: make(map[string]*questiongen.Question)}
}

// Add stores questions, replacing entries with the same id.
func (c *QuestionCache) Add(questions ...*questiongen.Question) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, q := range questions {
		if _, ok := c.items[q.ID]; !ok {
			c.order = append(c.order, q.ID)
		}
		c.items[q.ID] = q
	}
	for len(c.order) > c.size {
		delete(c.items, c.order[0])
		c.order = c.order[1:]
	}
}

// Get returns the question with id.
func (c *QuestionCache) Get(id string) (*questiongen.Question, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	q, ok := c.items[id]
	return q, ok
}

// All returns the cached questions, oldest first.
func (c *QuestionCache) All() []*questiongen.Question {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*questiongen.Question, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}
