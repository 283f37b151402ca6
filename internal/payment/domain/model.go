package domain

import (
	"errors"
	"strings"
)

// StatusSuccess is the literal the gateway sends for a captured payment.
// Anything else is a failed attempt.
const StatusSuccess = "success"

var (
	ErrInvalidPayload   = errors.New("payment: invalid callback payload")
	ErrInvalidSignature = errors.New("payment: invalid callback signature")
	ErrCommitFailed     = errors.New("payment: promotion commit failed")
)

// Callback is the form-encoded payload the gateway posts after a payment
// attempt settles. Amount fields arrive as decimal strings and are kept as
// received for hash verification; ParseAmount converts them for storage.
type Callback struct {
	MerchantOID      string `form:"merchant_oid"`
	Status           string `form:"status"`
	TotalAmount      string `form:"total_amount"`
	Hash             string `form:"hash"`
	FailedReasonCode string `form:"failed_reason_code"`
	FailedReasonMsg  string `form:"failed_reason_msg"`
	TestMode         string `form:"test_mode"`
	PaymentType      string `form:"payment_type"`
	Currency         string `form:"currency"`
	PaymentAmount    string `form:"payment_amount"`
}

func (c Callback) Success() bool {
	return c.Status == StatusSuccess
}

func (c Callback) IsTest() bool {
	return c.TestMode == "1"
}

// Validate checks the fields every callback must carry. Missing fields are
// a malformed payload, never a crash in the handler.
func (c Callback) Validate() error {
	if strings.TrimSpace(c.MerchantOID) == "" ||
		strings.TrimSpace(c.Status) == "" ||
		strings.TrimSpace(c.TotalAmount) == "" ||
		strings.TrimSpace(c.Hash) == "" {
		return ErrInvalidPayload
	}
	return nil
}
