package repository

import (
	"context"
	"errors"

	"wallet-graph-explorer/internal/domain/entity"
)

// ErrNotFound reports that an entity does not exist in the backing store or
// API. During expansion this is a normal dead-end, not a failure.
var ErrNotFound = errors.New("entity not found")

// ErrSourceUnavailable reports a connectivity, timeout or query failure. The
// caller decides whether to retry or record the entity as unresolved; it must
// never be treated as "no transactions".
var ErrSourceUnavailable = errors.New("transaction source unavailable")

// TransactionSource defines the interface every backend exposes to the
// expansion core. For an address it returns every transaction referencing the
// address as an input or output recipient; for a transaction hash it returns
// that single record with inputs and outputs resolved.
type TransactionSource interface {
	// Fetch retrieves the transactions associated with an entity
	Fetch(ctx context.Context, id entity.EntityID) ([]*entity.Transaction, error)

	// Close releases backend resources
	Close(ctx context.Context) error
}
