package domain

import "context"

// Store groups the repositories and runs units of work against them.
type Store interface {
	AccountUser() AccountUserRepository
	Account() AccountRepository
	Transaction() TransactionRepository
	// WithTransaction runs fn against a Store bound to one database
	// transaction. The transaction commits when fn returns nil and rolls back
	// otherwise.
	WithTransaction(ctx context.Context, fn func(Store) error) error
}

// IDGenerator produces collision-free opaque transaction identifiers.
type IDGenerator interface {
	NewTransactionID() string
}
