package generator

import (
	"context"
	"fmt"

	"github.com/adanbank/signal-sentinel/internal/corpus"
)

// BatchGenerator produces one synthetic text per requested category using
// exactly one external round trip per call.
type BatchGenerator interface {
	GenerateBatch(ctx context.Context, categories []corpus.Category) ([]string, error)
}

const maxPayloadPreview = 300

// ContractViolationError reports a model response that broke the batch
// contract. Payload carries a truncated preview of the raw response for
// diagnosis.
type ContractViolationError struct {
	Reason  string
	Payload string
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("generation contract violation: %s (payload: %s)", e.Reason, e.Payload)
}

func newContractViolation(reason, payload string) *ContractViolationError {
	if len(payload) > maxPayloadPreview {
		payload = payload[:maxPayloadPreview] + "..."
	}
	return &ContractViolationError{Reason: reason, Payload: payload}
}

// EmptyPoolError reports a requested category with no training examples.
type EmptyPoolError struct {
	Category corpus.Category
}

func (e *EmptyPoolError) Error() string {
	return fmt.Sprintf("no training examples for requested category %s", e.Category)
}
