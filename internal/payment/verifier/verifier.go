// Package verifier recomputes the gateway's callback hash. This is the
// hard authenticity gate in front of the promotion flow; a callback that
// fails here must never touch the store.
package verifier

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"github.com/bloomloft/garland/internal/config"
	"github.com/bloomloft/garland/internal/payment/domain"
)

type Verifier struct {
	key  []byte
	salt string
}

func New(cfg config.GatewayConfig) *Verifier {
	return &Verifier{
		key:  []byte(cfg.MerchantKey),
		salt: cfg.MerchantSalt,
	}
}

// Verify checks the callback hash in constant time. Missing fields make
// the hash unmatchable and report false rather than an error.
func (v *Verifier) Verify(cb domain.Callback) bool {
	if strings.TrimSpace(cb.Hash) == "" {
		return false
	}
	expected := v.Sign(cb.MerchantOID, cb.Status, cb.TotalAmount)
	return hmac.Equal([]byte(cb.Hash), []byte(expected))
}

// Sign computes the hash the gateway is expected to send: HMAC-SHA256
// over the concatenation of merchant_oid, status, total_amount and the
// merchant salt, base64-encoded.
func (v *Verifier) Sign(merchantOID, status, totalAmount string) string {
	mac := hmac.New(sha256.New, v.key)
	mac.Write([]byte(merchantOID + status + totalAmount + v.salt))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
