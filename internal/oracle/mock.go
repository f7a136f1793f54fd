package oracle

import (
	"context"
	"sync"
)

// MockOracle is a deterministic Oracle for tests and offline runs. Responses
// can be queued per call or generated by a function; every invocation is
// recorded.
type MockOracle struct {
	mu        sync.Mutex
	responses []string
	err       error
	// Respond, when set, computes the response instead of the queue.
	Respond func(systemInstruction, inputText string) (string, error)
	// Calls records every (systemInstruction, inputText) pair.
	Calls [][2]string
}

// NewMockOracle returns a mock that replays the given responses in order,
// repeating the last one once the queue is exhausted.
func NewMockOracle(responses ...string) *MockOracle {
	return &MockOracle{responses: responses}
}

// Fail makes every subsequent Invoke return err.
func (m *MockOracle) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Invoke implements Oracle.
func (m *MockOracle) Invoke(ctx context.Context, systemInstruction, inputText string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, [2]string{systemInstruction, inputText})
	if m.err != nil {
		return "", m.err
	}
	if m.Respond != nil {
		return m.Respond(systemInstruction, inputText)
	}
	if len(m.responses) == 0 {
		return "{}", nil
	}
	resp := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return resp, nil
}
