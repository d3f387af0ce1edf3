package synth

// BankNames is the fixed set substituted for the {bank_name} placeholder.
var BankNames = []string{
	"ADAN Bank",
	"Pineapple Savings",
	"Feynman Bank",
	"Zebra Capital",
	"Nebula Bank",
	"Quantum Trust",
}

// SourceTypes is the fixed set of simulated capture channels.
var SourceTypes = []string{
	"public_forum",
	"social_media",
	"review_site",
	"community_board",
}

// CategoryUnset marks a record whose categorization happens downstream.
const CategoryUnset = "None"

// Record is one synthesized signal before anonymization.
type Record struct {
	SyntheticID        string `json:"synthetic_id"`
	Timestamp          string `json:"timestamp"`
	RawText            string `json:"raw_text"`
	SourceType         string `json:"source_type"`
	Category           string `json:"category"`
	GenerationSequence int64  `json:"generation_sequence"`
}

// AnonymizedRecord is a Record whose RawText has been scrubbed, plus the
// number of masked entities.
type AnonymizedRecord struct {
	Record
	PIIScrubbedCount int `json:"pii_scrubbed_count"`
}
