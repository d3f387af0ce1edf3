package privacy

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/adanbank/signal-sentinel/internal/logger"
)

// Scrubber masks PII in text. The scan runs in two fixed passes: person
// names first, then the structured rules in table order. Every replacement
// uses the same sentinel token, and the sentinel itself matches no rule, so
// scrubbing already-masked text is a no-op.
type Scrubber struct {
	sentinel string
	rules    []DetectionRule
	names    NameRecognizer
	stats    *Stats
	logger   *logger.Logger
}

// NewScrubber creates a scrubber with the given detectors enabled.
// detectors may name individual rules or contain "all"; an unknown name is
// an error. names may be nil to disable the person-name pass.
func NewScrubber(sentinel string, detectors []string, names NameRecognizer, log *logger.Logger) (*Scrubber, error) {
	if sentinel == "" {
		sentinel = DefaultSentinel
	}

	rules, err := selectRules(detectors)
	if err != nil {
		return nil, err
	}

	s := &Scrubber{
		sentinel: sentinel,
		rules:    rules,
		names:    names,
		stats:    NewStats(),
		logger:   log.WithComponent("privacy"),
	}

	s.logger.Info("PII scrubber initialized",
		zap.Int("rules", len(rules)),
		zap.Bool("name_pass", names != nil))

	return s, nil
}

func selectRules(detectors []string) ([]DetectionRule, error) {
	all := GetDefaultRules()

	enableAll := len(detectors) == 0
	requested := make(map[string]bool)
	for _, d := range detectors {
		if d == "all" {
			enableAll = true
			continue
		}
		requested[d] = true
	}

	known := make(map[string]bool, len(all))
	for _, r := range all {
		known[r.Name] = true
	}
	for name := range requested {
		if !known[name] {
			return nil, fmt.Errorf("unknown detector: %s", name)
		}
	}

	if enableAll {
		return all, nil
	}

	var rules []DetectionRule
	for _, r := range all {
		if requested[r.Name] {
			rules = append(rules, r)
		}
	}
	return rules, nil
}

// Stats returns the process-wide masking counters.
func (s *Scrubber) Stats() *Stats {
	return s.stats
}

// Scrub masks all detected PII in text and returns the masked text together
// with the number of masked entities.
func (s *Scrubber) Scrub(text string) ScrubResult {
	masked := text
	count := 0

	if s.names != nil {
		spans := s.names.Recognize(masked)
		sort.Slice(spans, func(i, j int) bool { return spans[i].Start > spans[j].Start })
		applied := 0
		for _, sp := range spans {
			if sp.Start < 0 || sp.End > len(masked) || sp.Start >= sp.End {
				continue
			}
			masked = masked[:sp.Start] + s.sentinel + masked[sp.End:]
			applied++
		}
		count += applied
		s.stats.add(LabelPersonName, applied)
	}

	for _, rule := range s.rules {
		matches := matchRule(rule, masked)
		if len(matches) == 0 {
			continue
		}
		for i := len(matches) - 1; i >= 0; i-- {
			m := matches[i]
			masked = masked[:m[0]] + s.sentinel + masked[m[1]:]
		}
		count += len(matches)
		s.stats.add(rule.Label, len(matches))
	}

	if count > 0 {
		s.logger.Debug("masked PII entities", zap.Int("count", count))
	}

	return ScrubResult{MaskedText: masked, Count: count}
}

// ScanStructured reports residual structured-PII findings without masking.
// Used by batch validation to verify persisted text is clean.
func (s *Scrubber) ScanStructured(text string) []Finding {
	var findings []Finding
	for _, rule := range s.rules {
		for _, m := range matchRule(rule, text) {
			findings = append(findings, Finding{
				Label: rule.Label,
				Span:  Span{Start: m[0], End: m[1]},
			})
		}
	}
	return findings
}

// matchRule finds a rule's matches, honoring its context gate.
func matchRule(rule DetectionRule, text string) [][]int {
	if rule.Context != nil && !rule.Context.MatchString(text) {
		return nil
	}
	return rule.Pattern.FindAllStringIndex(text, -1)
}
