package privacy

import (
	"regexp"
	"strings"
)

// NameRecognizer finds person-name spans in text. Implementations must
// return non-overlapping spans in any order.
type NameRecognizer interface {
	Recognize(text string) []Span
}

var honorificPattern = regexp.MustCompile(`\b(?:Mr|Mrs|Ms|Dr|Prof)\.?\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)?`)

var tokenPattern = regexp.MustCompile(`[A-Za-z]+`)

// lexiconStoplist holds capitalized words that look like names but are part
// of institution names or common sentence starters, so the lexicon
// recognizer never extends into them.
var lexiconStoplist = map[string]bool{
	"Bank": true, "Savings": true, "Capital": true, "Trust": true,
	"Pineapple": true, "Feynman": true, "Zebra": true, "Nebula": true,
	"Quantum": true, "The": true, "They": true, "This": true, "That": true,
	"Monday": true, "Tuesday": true, "Wednesday": true, "Thursday": true,
	"Friday": true, "Saturday": true, "Sunday": true,
}

var givenNames = map[string]bool{}

func init() {
	names := []string{
		"James", "John", "Robert", "Michael", "William", "David", "Richard",
		"Joseph", "Thomas", "Charles", "Daniel", "Matthew", "Anthony", "Mark",
		"Steven", "Paul", "Andrew", "Joshua", "Kevin", "Brian", "George",
		"Edward", "Ronald", "Timothy", "Jason", "Jeffrey", "Ryan", "Jacob",
		"Nicholas", "Eric", "Jonathan", "Stephen", "Justin", "Scott",
		"Brandon", "Benjamin", "Samuel", "Gregory", "Patrick", "Alexander",
		"Dennis", "Tyler", "Aaron", "Henry", "Peter", "Carl", "Arthur",
		"Mary", "Patricia", "Jennifer", "Linda", "Elizabeth", "Barbara",
		"Susan", "Jessica", "Sarah", "Karen", "Nancy", "Lisa", "Margaret",
		"Sandra", "Ashley", "Dorothy", "Kimberly", "Emily", "Donna",
		"Michelle", "Carol", "Amanda", "Melissa", "Deborah", "Stephanie",
		"Rebecca", "Laura", "Sharon", "Cynthia", "Kathleen", "Amy", "Angela",
		"Anna", "Brenda", "Pamela", "Nicole", "Katherine", "Samantha",
		"Christine", "Emma", "Catherine", "Rachel", "Janet", "Olivia",
		"Heather", "Diane", "Julie", "Victoria", "Kelly", "Christina",
		"Lauren", "Megan", "Andrea", "Hannah", "Martha", "Teresa", "Sophia",
		"Grace", "Natalie", "Charlotte", "Marie", "Alice", "Julia",
	}
	for _, n := range names {
		givenNames[n] = true
	}
}

// LexiconRecognizer is the default deterministic person-name recognizer:
// honorific-prefixed names plus a given-name lexicon with optional
// capitalized surname extension.
type LexiconRecognizer struct{}

// NewLexiconRecognizer creates the default recognizer.
func NewLexiconRecognizer() *LexiconRecognizer {
	return &LexiconRecognizer{}
}

// Recognize implements NameRecognizer.
func (r *LexiconRecognizer) Recognize(text string) []Span {
	var spans []Span

	for _, m := range honorificPattern.FindAllStringIndex(text, -1) {
		spans = append(spans, Span{Start: m[0], End: m[1]})
	}

	for _, m := range tokenPattern.FindAllStringIndex(text, -1) {
		word := text[m[0]:m[1]]
		if !givenNames[word] {
			continue
		}
		span := Span{Start: m[0], End: m[1]}
		if overlapsAny(span, spans) {
			continue
		}
		// Extend into one following capitalized surname token.
		rest := text[m[1]:]
		if strings.HasPrefix(rest, " ") {
			if sm := tokenPattern.FindStringIndex(rest); sm != nil && sm[0] == 1 {
				next := rest[sm[0]:sm[1]]
				if isCapitalizedWord(next) && !lexiconStoplist[next] && !givenNames[next] {
					span.End = m[1] + sm[1]
				}
			}
		}
		spans = append(spans, span)
	}

	return spans
}

func isCapitalizedWord(w string) bool {
	if len(w) < 2 {
		return false
	}
	if w[0] < 'A' || w[0] > 'Z' {
		return false
	}
	return strings.ToLower(w[1:]) == w[1:]
}

func overlapsAny(s Span, spans []Span) bool {
	for _, o := range spans {
		if s.Start < o.End && o.Start < s.End {
			return true
		}
	}
	return false
}
