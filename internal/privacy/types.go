package privacy

import "sync"

// Labels for detected entity kinds.
const (
	LabelPersonName    = "PERSON_NAME"
	LabelEmailAddress  = "EMAIL_ADDRESS"
	LabelPhoneNumber   = "PHONE_NUMBER"
	LabelSSN           = "SSN"
	LabelAccountNumber = "ACCOUNT_NUMBER"
	LabelCreditCard    = "CREDIT_CARD"
	LabelRoutingNumber = "ROUTING_NUMBER"
	LabelCurrency      = "CURRENCY_AMOUNT"
)

// DefaultSentinel is the replacement token for every masked entity.
const DefaultSentinel = "<MASKED>"

// Span is a half-open [Start, End) byte range in the scanned text.
type Span struct {
	Start int
	End   int
}

// Finding is a single detected entity.
type Finding struct {
	Label string
	Span
}

// ScrubResult is the outcome of masking one text.
type ScrubResult struct {
	MaskedText string
	Count      int
}

// Stats tracks masking counts for the process lifetime.
type Stats struct {
	mu      sync.Mutex
	total   int64
	byLabel map[string]int64
}

// NewStats creates an empty stats accumulator.
func NewStats() *Stats {
	return &Stats{byLabel: make(map[string]int64)}
}

func (s *Stats) add(label string, n int) {
	if n == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total += int64(n)
	s.byLabel[label] += int64(n)
}

// Total returns the total number of masked entities.
func (s *Stats) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Snapshot returns a copy of the per-label counts.
func (s *Stats) Snapshot() map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int64, len(s.byLabel))
	for k, v := range s.byLabel {
		out[k] = v
	}
	return out
}
