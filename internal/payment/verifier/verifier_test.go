package verifier

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bloomloft/garland/internal/config"
	"github.com/bloomloft/garland/internal/payment/domain"
)

func newTestVerifier() *Verifier {
	return New(config.GatewayConfig{
		MerchantID:   "123456",
		MerchantKey:  "test-merchant-key",
		MerchantSalt: "test-merchant-salt",
	})
}

func TestVerifyAcceptsOwnSignature(t *testing.T) {
	v := newTestVerifier()

	cb := domain.Callback{
		MerchantOID: "CD250101-AB12",
		Status:      domain.StatusSuccess,
		TotalAmount: "450.00",
	}
	cb.Hash = v.Sign(cb.MerchantOID, cb.Status, cb.TotalAmount)

	require.True(t, v.Verify(cb))
}

func TestVerifyRejectsTamperedFields(t *testing.T) {
	v := newTestVerifier()

	cb := domain.Callback{
		MerchantOID: "CD250101-AB12",
		Status:      domain.StatusSuccess,
		TotalAmount: "450.00",
	}
	cb.Hash = v.Sign(cb.MerchantOID, cb.Status, cb.TotalAmount)

	tampered := cb
	tampered.TotalAmount = "1.00"
	require.False(t, v.Verify(tampered))

	tampered = cb
	tampered.Status = "failed"
	require.False(t, v.Verify(tampered))

	tampered = cb
	tampered.MerchantOID = "CD250101-ZZ99"
	require.False(t, v.Verify(tampered))
}

func TestVerifyRejectsMissingHash(t *testing.T) {
	v := newTestVerifier()

	require.False(t, v.Verify(domain.Callback{
		MerchantOID: "CD250101-AB12",
		Status:      domain.StatusSuccess,
		TotalAmount: "450.00",
	}))
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	v := newTestVerifier()
	other := New(config.GatewayConfig{
		MerchantKey:  "another-key",
		MerchantSalt: "another-salt",
	})

	cb := domain.Callback{
		MerchantOID: "CD250101-AB12",
		Status:      domain.StatusSuccess,
		TotalAmount: "450.00",
	}
	cb.Hash = other.Sign(cb.MerchantOID, cb.Status, cb.TotalAmount)

	require.False(t, v.Verify(cb))
}
