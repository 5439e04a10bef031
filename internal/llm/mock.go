package llm

import (
	"context"
	"fmt"
	"sync"
)

// MockClient implements Client for tests. Responses are returned in the
// order they were queued; when the queue is empty it falls back to a plain
// text reply.
type MockClient struct {
	mu        sync.Mutex
	queue     []*ChatResponse
	Requests  []*ChatRequest
	model     string
	FallbackText string
}

// NewMockClient creates a mock client.
func NewMockClient(model string) *MockClient {
	return &MockClient{model: model, FallbackText: "ok"}
}

// Model returns the mock model name.
func (m *MockClient) Model() string { return m.model }

// Enqueue appends a canned response.
func (m *MockClient) Enqueue(resp *ChatResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, resp)
}

// EnqueueText appends a plain assistant text reply.
func (m *MockClient) EnqueueText(text string) {
	m.Enqueue(&ChatResponse{
		Model: m.model,
		Choices: []Choice{{
			Message:      Message{Role: "assistant", Content: text},
			FinishReason: "stop",
		}},
	})
}

// EnqueueToolCall appends a response in which the model calls one tool.
func (m *MockClient) EnqueueToolCall(callID, name, arguments string) {
	m.Enqueue(&ChatResponse{
		Model: m.model,
		Choices: []Choice{{
			Message: Message{
				Role: "assistant",
				ToolCalls: []ToolCall{{
					ID:   callID,
					Type: "function",
					Function: FunctionCall{Name: name, Arguments: arguments},
				}},
			},
			FinishReason: "tool_calls",
		}},
	})
}

// Chat records the request and returns the next queued response.
func (m *MockClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("request cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)
	if len(m.queue) == 0 {
		return &ChatResponse{
			Model: m.model,
			Choices: []Choice{{
				Message:      Message{Role: "assistant", Content: m.FallbackText},
				FinishReason: "stop",
			}},
		}, nil
	}
	resp := m.queue[0]
	m.queue = m.queue[1:]
	return resp, nil
}
