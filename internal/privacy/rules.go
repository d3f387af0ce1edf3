package privacy

import "regexp"

// DetectionRule pairs a named pattern with the label it reports. When
// Context is set, the rule only fires on texts where Context matches
// somewhere, which stands in for lookaheads Go's regexp cannot express.
type DetectionRule struct {
	Name    string
	Label   string
	Pattern *regexp.Regexp
	Context *regexp.Regexp
}

// GetDefaultRules returns the structured detection rules in their fixed
// application order. Order matters: broader numeric patterns run after the
// context-anchored ones so account and routing matches are not split up by
// the credit card rule.
func GetDefaultRules() []DetectionRule {
	return []DetectionRule{
		{
			Name:    "email",
			Label:   LabelEmailAddress,
			Pattern: regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		},
		{
			Name:    "phone",
			Label:   LabelPhoneNumber,
			Pattern: regexp.MustCompile(`\b(?:\+?1[-.\s]?)?\(?[0-9]{3}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}\b`),
		},
		{
			Name:    "ssn",
			Label:   LabelSSN,
			Pattern: regexp.MustCompile(`\b[0-9]{3}-[0-9]{2}-[0-9]{4}\b`),
		},
		{
			Name:    "account_number",
			Label:   LabelAccountNumber,
			Pattern: regexp.MustCompile(`(?i)\b(?:account|acct)[\s#:]*[0-9]{8,16}\b`),
		},
		{
			Name:    "credit_card",
			Label:   LabelCreditCard,
			Pattern: regexp.MustCompile(`\b(?:[0-9]{4}[-\s]?){3}[0-9]{4}\b`),
		},
		{
			// Any bare 9-digit run counts as a routing number as soon as
			// "routing" appears anywhere in the text, wherever the word
			// sits relative to the digits.
			Name:    "routing_number",
			Label:   LabelRoutingNumber,
			Pattern: regexp.MustCompile(`\b[0-9]{9}\b`),
			Context: regexp.MustCompile(`(?i)routing`),
		},
		{
			Name:    "currency",
			Label:   LabelCurrency,
			Pattern: regexp.MustCompile(`(?i)\$\s*[0-9]{1,3}(?:,[0-9]{3})*(?:\.[0-9]{2})?|\b[0-9]{1,3}(?:,[0-9]{3})*(?:\.[0-9]{2})?\s*(?:dollars?|USD)\b`),
		},
	}
}
