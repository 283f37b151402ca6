package domain

import (
	"context"

	orderdomain "github.com/bloomloft/garland/internal/order/domain"
)

// Dispatcher fans a freshly promoted order out to the configured channels.
// Dispatch blocks until every attempt has settled but never reports
// failure to its caller; the payment has already been recorded by the time
// it runs, so delivery is lossy by contract.
type Dispatcher interface {
	Dispatch(ctx context.Context, order *orderdomain.Order)
}
