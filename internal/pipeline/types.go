package pipeline

import (
	"time"

	"github.com/adanbank/signal-sentinel/internal/privacy"
)

// Scrubber is the masking surface the pipeline depends on.
type Scrubber interface {
	Scrub(text string) privacy.ScrubResult
	ScanStructured(text string) []privacy.Finding
}

// BatchReport summarizes one executed batch.
type BatchReport struct {
	BatchNumber      int64         `json:"batch_number"`
	Duration         time.Duration `json:"duration"`
	RecordsRequested int           `json:"records_requested"`
	RecordsPersisted int           `json:"records_persisted"`
	TotalRecords     int           `json:"total_records"`
	PIIMasked        int           `json:"pii_masked"`
	ValidationPassed bool          `json:"validation_passed"`
	Issues           []string      `json:"issues,omitempty"`
	GeneratorCalls   int           `json:"generator_calls"`
}
