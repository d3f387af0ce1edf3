package pipeline

import (
	"fmt"

	"github.com/adanbank/signal-sentinel/internal/synth"
)

// ValidateBatch checks scrubbed records before persistence and collects
// every violation rather than stopping at the first. Validation failure
// never blocks persistence; the caller reports it.
func ValidateBatch(records []synth.AnonymizedRecord, scanner Scrubber) []string {
	var issues []string

	for i, r := range records {
		for _, f := range scanner.ScanStructured(r.RawText) {
			issues = append(issues,
				fmt.Sprintf("record %d (%s): residual %s at [%d:%d]",
					i, r.SyntheticID, f.Label, f.Start, f.End))
		}

		if r.SyntheticID == "" {
			issues = append(issues, fmt.Sprintf("record %d: missing synthetic_id", i))
		}
		if r.Timestamp == "" {
			issues = append(issues, fmt.Sprintf("record %d (%s): missing timestamp", i, r.SyntheticID))
		}
		if r.RawText == "" {
			issues = append(issues, fmt.Sprintf("record %d (%s): missing raw_text", i, r.SyntheticID))
		}
		if r.SourceType == "" {
			issues = append(issues, fmt.Sprintf("record %d (%s): missing source_type", i, r.SyntheticID))
		}
		if r.Category != synth.CategoryUnset {
			issues = append(issues,
				fmt.Sprintf("record %d (%s): category = %q, want %q before enrichment",
					i, r.SyntheticID, r.Category, synth.CategoryUnset))
		}
		if r.GenerationSequence <= 0 {
			issues = append(issues, fmt.Sprintf("record %d (%s): invalid generation_sequence %d",
				i, r.SyntheticID, r.GenerationSequence))
		}
		if r.PIIScrubbedCount < 0 {
			issues = append(issues, fmt.Sprintf("record %d (%s): negative pii_scrubbed_count",
				i, r.SyntheticID))
		}
	}

	return issues
}
