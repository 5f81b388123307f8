package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// mockDeltaRunes is the fragment size the mock uses when streaming content
// that has no explicit Deltas.
const mockDeltaRunes = 16

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error

	// Deltas overrides how Stream fragments Content. When nil, Content is
	// split into fixed-size rune fragments.
	Deltas []string
}

// MockProvider is a deterministic Provider for testing.
// It returns canned responses in FIFO order and records all requests.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Generate returns the next canned response or ErrProviderUnavailable if
// the queue is empty. Schemas are enforced exactly as real providers do.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	next, err := m.next(req)
	if err != nil {
		return nil, err
	}
	if err := validateResponse(req.Schema, next.Content); err != nil {
		return nil, err
	}
	return m.response(next), nil
}

// Stream replays the next canned response as a sequence of deltas.
func (m *MockProvider) Stream(ctx context.Context, req Request, onDelta func(string)) (*Response, error) {
	next, err := m.next(req)
	if err != nil {
		return nil, err
	}

	deltas := next.Deltas
	if deltas == nil {
		deltas = splitRunes(string(next.Content), mockDeltaRunes)
	}
	for _, d := range deltas {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if onDelta != nil {
			onDelta(d)
		}
	}

	if err := validateResponse(req.Schema, next.Content); err != nil {
		return nil, err
	}
	return m.response(next), nil
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate and Stream calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Remaining returns the number of queued responses not yet consumed.
func (m *MockProvider) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.responses)
}

func (m *MockProvider) next(req Request) (MockResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if len(m.responses) == 0 {
		return MockResponse{}, &ErrProviderUnavailable{Err: nil}
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]

	if resp.Err != nil {
		return MockResponse{}, resp.Err
	}
	return resp, nil
}

func (m *MockProvider) response(r MockResponse) *Response {
	return &Response{
		Content:    r.Content,
		Usage:      r.Usage,
		Model:      "mock",
		StopReason: "end",
	}
}

func splitRunes(s string, size int) []string {
	runes := []rune(s)
	var out []string
	for len(runes) > 0 {
		n := min(size, len(runes))
		out = append(out, string(runes[:n]))
		runes = runes[n:]
	}
	return out
}
