package privacy

import (
	"strings"
	"testing"

	"github.com/adanbank/signal-sentinel/internal/logger"
)

func newTestScrubber(t *testing.T, names NameRecognizer) *Scrubber {
	t.Helper()
	s, err := NewScrubber(DefaultSentinel, []string{"all"}, names, logger.Nop())
	if err != nil {
		t.Fatalf("NewScrubber: %v", err)
	}
	return s
}

func TestScrubStructured(t *testing.T) {
	s := newTestScrubber(t, nil)

	tests := []struct {
		name  string
		input string
		want  string
		count int
	}{
		{
			name:  "email",
			input: "reach me at john.doe@example.com today",
			want:  "reach me at <MASKED> today",
			count: 1,
		},
		{
			name:  "phone",
			input: "call 555-123-4567 after lunch",
			want:  "call <MASKED> after lunch",
			count: 1,
		},
		{
			name:  "phone with country code",
			input: "call 1-555-123-4567 now",
			want:  "call <MASKED> now",
			count: 1,
		},
		{
			name:  "ssn",
			input: "my SSN is 123-45-6789 ok",
			want:  "my SSN is <MASKED> ok",
			count: 1,
		},
		{
			name:  "account number with keyword",
			input: "my account #1234567890123 was charged",
			want:  "my <MASKED> was charged",
			count: 1,
		},
		{
			name:  "credit card",
			input: "card 4111-1111-1111-1111 declined",
			want:  "card <MASKED> declined",
			count: 1,
		},
		{
			name:  "routing number with context",
			input: "routing number 123456789 for wires",
			want:  "routing number <MASKED> for wires",
			count: 1,
		},
		{
			name:  "routing context after digits",
			input: "use 123456789 routing for transfers",
			want:  "use <MASKED> routing for transfers",
			count: 1,
		},
		{
			name:  "routing context far from digits",
			input: "sent 123456789 to the wrong routing destination",
			want:  "sent <MASKED> to the wrong routing destination",
			count: 1,
		},
		{
			name:  "currency dollar sign",
			input: "charged $1,234.56 in fees",
			want:  "charged <MASKED> in fees",
			count: 1,
		},
		{
			name:  "currency word form",
			input: "lost 500 dollars overnight",
			want:  "lost <MASKED> overnight",
			count: 1,
		},
		{
			name:  "bare nine digits without routing context",
			input: "confirmation 123456789 received",
			want:  "confirmation 123456789 received",
			count: 0,
		},
		{
			name:  "multiple entities",
			input: "email a@b.com or call 555-123-4567",
			want:  "email <MASKED> or call <MASKED>",
			count: 2,
		},
		{
			name:  "clean text",
			input: "the mobile app is great",
			want:  "the mobile app is great",
			count: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Scrub(tt.input)
			if got.MaskedText != tt.want {
				t.Errorf("masked = %q, want %q", got.MaskedText, tt.want)
			}
			if got.Count != tt.count {
				t.Errorf("count = %d, want %d", got.Count, tt.count)
			}
		})
	}
}

func TestScrubIdempotent(t *testing.T) {
	s := newTestScrubber(t, NewLexiconRecognizer())

	inputs := []string{
		"call 555-123-4567 or email a@b.com",
		"Sarah Johnson moved $2,500.00 from account #12345678",
		"SSN 123-45-6789 and routing number 123456789",
	}

	for _, input := range inputs {
		first := s.Scrub(input)
		second := s.Scrub(first.MaskedText)
		if second.MaskedText != first.MaskedText {
			t.Errorf("rescrub changed text: %q -> %q", first.MaskedText, second.MaskedText)
		}
		if second.Count != 0 {
			t.Errorf("rescrub of %q counted %d entities, want 0", first.MaskedText, second.Count)
		}
	}
}

func TestScrubPersonNames(t *testing.T) {
	s := newTestScrubber(t, NewLexiconRecognizer())

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lexicon name with surname",
			input: "I spoke with Sarah Johnson yesterday",
			want:  "I spoke with <MASKED> yesterday",
		},
		{
			name:  "honorific name",
			input: "Dr. Smith approved the loan",
			want:  "<MASKED> approved the loan",
		},
		{
			name:  "bank name untouched",
			input: "Pineapple Savings raised fees again",
			want:  "Pineapple Savings raised fees again",
		},
		{
			name:  "lowercase is not a name",
			input: "please call sarah back",
			want:  "please call sarah back",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Scrub(tt.input)
			if got.MaskedText != tt.want {
				t.Errorf("masked = %q, want %q", got.MaskedText, tt.want)
			}
		})
	}
}

func TestScrubStatsConservation(t *testing.T) {
	s := newTestScrubber(t, NewLexiconRecognizer())

	inputs := []string{
		"call 555-123-4567",
		"Sarah Johnson paid $50.00",
		"account #99887766 closed by Dr. Brown",
		"nothing sensitive here",
	}

	total := 0
	for _, input := range inputs {
		total += s.Scrub(input).Count
	}

	if got := s.Stats().Total(); got != int64(total) {
		t.Errorf("stats total = %d, want %d (sum of per-call counts)", got, total)
	}

	var byLabel int64
	for _, n := range s.Stats().Snapshot() {
		byLabel += n
	}
	if byLabel != int64(total) {
		t.Errorf("per-label sum = %d, want %d", byLabel, total)
	}
}

func TestScanStructured(t *testing.T) {
	s := newTestScrubber(t, nil)

	findings := s.ScanStructured("email a@b.com, SSN 123-45-6789")
	if len(findings) != 2 {
		t.Fatalf("findings = %d, want 2", len(findings))
	}
	labels := map[string]bool{}
	for _, f := range findings {
		labels[f.Label] = true
	}
	if !labels[LabelEmailAddress] || !labels[LabelSSN] {
		t.Errorf("unexpected labels: %v", labels)
	}

	if got := s.ScanStructured("masked text with <MASKED> only"); len(got) != 0 {
		t.Errorf("sentinel text produced findings: %v", got)
	}
}

func TestDetectorSelection(t *testing.T) {
	t.Run("unknown detector", func(t *testing.T) {
		_, err := NewScrubber(DefaultSentinel, []string{"dna_sequence"}, nil, logger.Nop())
		if err == nil || !strings.Contains(err.Error(), "unknown detector") {
			t.Errorf("err = %v, want unknown detector error", err)
		}
	})

	t.Run("subset", func(t *testing.T) {
		s, err := NewScrubber(DefaultSentinel, []string{"email"}, nil, logger.Nop())
		if err != nil {
			t.Fatalf("NewScrubber: %v", err)
		}
		got := s.Scrub("a@b.com and 555-123-4567")
		if got.Count != 1 {
			t.Errorf("count = %d, want 1 (only email enabled)", got.Count)
		}
		if !strings.Contains(got.MaskedText, "555-123-4567") {
			t.Errorf("phone was masked with email-only config: %q", got.MaskedText)
		}
	})
}
