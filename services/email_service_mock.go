package services

import (
	"sync"
)

// MockEmailSender records sent messages for testing
type MockEmailSender struct {
	mu       sync.Mutex
	messages []EmailMessage

	// FailNext makes the next Send report failure
	FailNext bool
	// FailAll makes every Send report failure
	FailAll bool
}

// NewMockEmailSender creates a new mock email sender
func NewMockEmailSender() *MockEmailSender {
	return &MockEmailSender{}
}

// SetAsMockForTesting sets this mock as the global email sender for testing
func (m *MockEmailSender) SetAsMockForTesting() {
	SetEmailSender(m)
}

// Send records the message and reports the configured outcome.
func (m *MockEmailSender) Send(msg EmailMessage) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	if m.FailAll {
		return false
	}
	if m.FailNext {
		m.FailNext = false
		return false
	}
	return true
}

// Messages returns a copy of all recorded messages.
func (m *MockEmailSender) Messages() []EmailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EmailMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

// Reset clears recorded messages.
func (m *MockEmailSender) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
}
