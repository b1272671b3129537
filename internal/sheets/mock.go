package sheets

import (
	"context"
	"sync"

	"github.com/Veraticus/ledger/internal/service"
)

// MockWriter records reports instead of sending them anywhere.
type MockWriter struct {
	// Err, when set, is returned from every Write after the report is
	// recorded.
	Err     error
	reports []service.Report
	mu      sync.Mutex
}

var _ service.ReportWriter = (*MockWriter)(nil)

// NewMockWriter creates an empty recorder.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// Write records report.
func (m *MockWriter) Write(_ context.Context, report service.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reports = append(m.reports, report)
	return m.Err
}

// Reports returns a copy of everything written so far.
func (m *MockWriter) Reports() []service.Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]service.Report(nil), m.reports...)
}
