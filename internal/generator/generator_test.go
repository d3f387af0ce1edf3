package generator

import (
	"errors"
	"strings"
	"testing"
)

func TestParseBatchResponse(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   int
		texts  []string
		reason string
	}{
		{
			name:  "plain array",
			raw:   `["first post", "second post"]`,
			want:  2,
			texts: []string{"first post", "second post"},
		},
		{
			name:  "fenced json",
			raw:   "```json\n[\"only post\"]\n```",
			want:  1,
			texts: []string{"only post"},
		},
		{
			name:  "fenced without language tag",
			raw:   "```\n[\"a\", \"b\", \"c\"]\n```",
			want:  3,
			texts: []string{"a", "b", "c"},
		},
		{
			name:   "not an array",
			raw:    `{"posts": ["x"]}`,
			want:   1,
			reason: "not a JSON array",
		},
		{
			name:   "length mismatch",
			raw:    `["one", "two"]`,
			want:   3,
			reason: "expected 3 texts, got 2",
		},
		{
			name:   "empty element",
			raw:    `["ok", "  "]`,
			want:   2,
			reason: "text 1 is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseBatchResponse(tt.raw, tt.want)
			if tt.reason != "" {
				var cv *ContractViolationError
				if !errors.As(err, &cv) {
					t.Fatalf("err = %v, want ContractViolationError", err)
				}
				if !strings.Contains(cv.Reason, tt.reason) {
					t.Errorf("reason = %q, want contains %q", cv.Reason, tt.reason)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseBatchResponse: %v", err)
			}
			if len(got) != len(tt.texts) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.texts))
			}
			for i := range got {
				if got[i] != tt.texts[i] {
					t.Errorf("texts[%d] = %q, want %q", i, got[i], tt.texts[i])
				}
			}
		})
	}
}

func TestContractViolationPayloadTruncated(t *testing.T) {
	long := strings.Repeat("x", 1000)
	err := newContractViolation("bad", long)
	if len(err.Payload) > maxPayloadPreview+3 {
		t.Errorf("payload length = %d, want <= %d", len(err.Payload), maxPayloadPreview+3)
	}
	if !strings.HasSuffix(err.Payload, "...") {
		t.Error("truncated payload should end with ellipsis")
	}
}
