package services

import (
	"sync"
)

// MockInvoiceService records invoice generation calls for testing
type MockInvoiceService struct {
	mu    sync.Mutex
	calls []InvoiceParams

	// Err is returned from every call when set
	Err error
	// Result is returned on success; a default is used when nil
	Result *InvoiceResult
}

// NewMockInvoiceService creates a new mock invoice service
func NewMockInvoiceService() *MockInvoiceService {
	return &MockInvoiceService{}
}

// SetAsMockForTesting sets this mock as the global invoice service for testing
func (m *MockInvoiceService) SetAsMockForTesting() {
	SetInvoiceService(m)
}

// CreateInvoice records the call and returns the configured outcome.
func (m *MockInvoiceService) CreateInvoice(params InvoiceParams) (*InvoiceResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, params)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Result != nil {
		return m.Result, nil
	}
	return &InvoiceResult{InvoiceNo: "INV-TEST-0001", PDFPath: "", PDFURL: ""}, nil
}

// Calls returns a copy of all recorded calls.
func (m *MockInvoiceService) Calls() []InvoiceParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]InvoiceParams, len(m.calls))
	copy(out, m.calls)
	return out
}

// Reset clears recorded calls.
func (m *MockInvoiceService) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}
