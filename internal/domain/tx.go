package domain

import "context"

// Transactor runs fn inside a single database transaction. The transaction
// travels in the context; repositories pick it up transparently, so every
// repository call made from fn shares one commit/rollback scope.
//
// This is the boundary the capacity protocol relies on: the exclusive row
// lock taken by EventRepository.GetByIDForUpdate is held until WithinTx
// returns, serializing concurrent registrations for the same event across
// all service instances.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
