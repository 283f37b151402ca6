package domain

import "context"

// Outcome tells the handler which acknowledgement the gateway should get.
// Every outcome except a returned error maps to the literal "OK" body that
// stops gateway retries.
type Outcome string

const (
	OutcomePromoted      Outcome = "promoted"
	OutcomeFailedPayment Outcome = "failed_payment"
	OutcomeDuplicate     Outcome = "duplicate"
	OutcomeDraftMissing  Outcome = "draft_missing"
)

type Service interface {
	// HandleCallback verifies and processes one gateway callback. Errors
	// are limited to ErrInvalidPayload, ErrInvalidSignature and
	// ErrCommitFailed; everything else acknowledges the gateway.
	HandleCallback(ctx context.Context, cb Callback) (Outcome, error)
}
