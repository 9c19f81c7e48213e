// Package memory keeps the bounded conversation transcript the agent
// feeds back into model prompts, and optionally mirrors it to an
// external sink for observation.
package memory

import (
	"sync"
	"time"
)

// Role identifies who produced a message.
type Role string

const (
	RoleUser       Role = "user"
	RoleAssistant  Role = "assistant"
	RoleToolCall   Role = "tool_call"
	RoleToolResult Role = "tool_result"
	RoleSystem     Role = "system"
)

// Message is one transcript entry.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Sink receives a copy of every appended message. Sink failures never
// affect the transcript; they are fire-and-forget.
type Sink interface {
	Record(msg Message)
}

const defaultCapacity = 200

// Memory is a bounded transcript. When full, the oldest entry is
// evicted. Safe for concurrent use.
type Memory struct {
	mu       sync.Mutex
	messages []Message
	capacity int
	sink     Sink
}

// Option configures a Memory.
type Option func(*Memory)

// WithCapacity sets the maximum retained message count.
func WithCapacity(n int) Option {
	return func(m *Memory) {
		if n > 0 {
			m.capacity = n
		}
	}
}

// WithSink mirrors appended messages to sink.
func WithSink(sink Sink) Option {
	return func(m *Memory) {
		m.sink = sink
	}
}

// New creates an empty transcript.
func New(opts ...Option) *Memory {
	m := &Memory{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Append records a message, evicting the oldest entry when at capacity.
func (m *Memory) Append(role Role, content string) {
	msg := Message{Role: role, Content: content, Timestamp: time.Now()}

	m.mu.Lock()
	m.messages = append(m.messages, msg)
	if len(m.messages) > m.capacity {
		m.messages = m.messages[len(m.messages)-m.capacity:]
	}
	sink := m.sink
	m.mu.Unlock()

	if sink != nil {
		sink.Record(msg)
	}
}

// Messages returns a copy of the transcript in chronological order.
func (m *Memory) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// Len returns the current message count.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

// Clear drops all messages.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
}
