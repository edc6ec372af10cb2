package screening

import "sync"

// ReportStore keeps the latest completed report in memory for the API
type ReportStore struct {
	mu     sync.RWMutex
	latest *Report
}

// NewReportStore creates an empty store
func NewReportStore() *ReportStore {
	return &ReportStore{}
}

// Set replaces the latest report
func (s *ReportStore) Set(r *Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = r
}

// Latest returns the most recent report, or nil before the first run
func (s *ReportStore) Latest() *Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}
