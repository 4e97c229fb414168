package sentinel

import (
	"context"
	"sync"

	"github.com/Kulek-Kulek/ai-travel-planner-sub000/internal/incident"
	"github.com/Kulek-Kulek/ai-travel-planner-sub000/internal/llm"
)

const (
	acceptJSON    = `{"isValid":true,"isTravelRelated":true,"hasPromptInjection":false,"hasInappropriateContent":false,"category":"","reason":"real place","confidence":95}`
	injectionJSON = `{"isValid":false,"isTravelRelated":false,"hasPromptInjection":true,"hasInappropriateContent":false,"category":"prompt_injection","reason":"override attempt","confidence":93}`
	sexualJSON    = `{"isValid":false,"isTravelRelated":true,"hasPromptInjection":false,"hasInappropriateContent":true,"category":"sexual_content","reason":"adult entertainment","confidence":96}`
)

// mockProvider is a scripted llm.Provider that records every call.
type mockProvider struct {
	mu      sync.Mutex
	content string
	err     error
	block   bool // wait for the context to end
	calls   int
	last    llm.ChatRequest
}

func (m *mockProvider) ChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	m.mu.Lock()
	m.calls++
	m.last = req
	m.mu.Unlock()

	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llm.ChatResponse{Content: m.content}, nil
}

func (m *mockProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockLogger records incidents synchronously.
type mockLogger struct {
	mu      sync.Mutex
	records []incident.Record
}

func (m *mockLogger) Log(_ context.Context, rec incident.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
}

func (m *mockLogger) Close() error { return nil }

func (m *mockLogger) all() []incident.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]incident.Record(nil), m.records...)
}

type panickingLogger struct{}

func (panickingLogger) Log(context.Context, incident.Record) { panic("sink exploded") }
func (panickingLogger) Close() error                         { return nil }

func strPtr(s string) *string { return &s }

func ptr[T any](v T) *T { return &v }

func request(destination, notes string) Request {
	return Request{Destination: strPtr(destination), Notes: strPtr(notes), UserID: strPtr("user-1")}
}
