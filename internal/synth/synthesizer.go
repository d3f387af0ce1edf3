package synth

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adanbank/signal-sentinel/internal/corpus"
	"github.com/adanbank/signal-sentinel/internal/logger"
)

const bankPlaceholder = "{bank_name}"

// Synthesizer turns generated texts into capture records. It owns the
// generation sequence counter, which increases monotonically for the
// process lifetime.
type Synthesizer struct {
	rng    *rand.Rand
	seq    int64
	now    func() time.Time
	logger *logger.Logger
}

// New creates a synthesizer seeded for reproducible tests.
func New(seed int64, log *logger.Logger) *Synthesizer {
	return &Synthesizer{
		rng:    rand.New(rand.NewSource(seed)),
		now:    time.Now,
		logger: log.WithComponent("synth"),
	}
}

// Sequence returns the last assigned generation sequence number.
func (s *Synthesizer) Sequence() int64 {
	return s.seq
}

// Synthesize builds one record per text. texts and categories must be the
// same length; a mismatch is an error, never truncated or padded. All
// records in one call share the same capture timestamp.
func (s *Synthesizer) Synthesize(texts []string, categories []corpus.Category) ([]Record, error) {
	if len(texts) != len(categories) {
		return nil, fmt.Errorf("texts/categories length mismatch: %d vs %d", len(texts), len(categories))
	}

	timestamp := s.now().UTC().Format(time.RFC3339)

	records := make([]Record, 0, len(texts))
	for _, text := range texts {
		if strings.Contains(text, bankPlaceholder) {
			bank := BankNames[s.rng.Intn(len(BankNames))]
			text = strings.ReplaceAll(text, bankPlaceholder, bank)
		}

		s.seq++
		records = append(records, Record{
			SyntheticID:        uuid.NewString(),
			Timestamp:          timestamp,
			RawText:            text,
			SourceType:         SourceTypes[s.rng.Intn(len(SourceTypes))],
			Category:           CategoryUnset,
			GenerationSequence: s.seq,
		})
	}

	s.logger.Debug("records synthesized",
		zap.Int("count", len(records)),
		zap.Int64("sequence", s.seq))

	return records, nil
}
