package storage

import (
	"context"

	"gorm.io/gorm"
)

// AtomicRunner executes a mutator whose reads and writes concern a single
// draft session, identified by key. Implementations differ in how strong
// "atomic" is:
//
//   - TxRunner wraps the mutator in a real database transaction with a
//     locked read of the draft row. This is the implementation the
//     promotion flow is designed for.
//   - BatchRunner pins a single connection and issues the writes
//     back-to-back without an enclosing transaction. Writes still land
//     together in practice, but there is no read-then-write isolation, so
//     a concurrent duplicate callback can theoretically race. Used only
//     when the privileged store credential is absent.
//
// Callers must be written against this interface and must not assume the
// stronger guarantee.
type AtomicRunner interface {
	RunAtomic(ctx context.Context, key string, fn func(tx *gorm.DB) error) error
	// Transactional reports whether RunAtomic provides read isolation.
	Transactional() bool
}
