package repository

import (
	"context"

	"github.com/hszk-dev/catalog/internal/domain/model"
)

// UnitOfWork coordinates one relational transaction across repository calls
// and collects the aggregates written during the operation so that their
// pending domain events can be dispatched exactly once, after commit.
//
// One instance serves exactly one logical operation. It must not be shared
// across concurrent operations; the orchestrator constructs it, drives it and
// discards it.
type UnitOfWork interface {
	// Start begins a transaction. Returns ErrTransactionActive if one is
	// already open on this instance.
	Start(ctx context.Context) error

	// Commit finalizes the transaction. The collected aggregate roots remain
	// readable afterwards so the caller can dispatch their events.
	Commit(ctx context.Context) error

	// Rollback discards the transaction and the collected aggregate roots.
	Rollback(ctx context.Context) error

	// Do runs fn inside a transaction: Start if none is active, Commit on
	// nil return, Rollback (propagating the original error) otherwise.
	Do(ctx context.Context, fn func(ctx context.Context) error) error

	// AddAggregateRoot registers an aggregate written during the current
	// operation. Called by repositories after a successful write.
	AddAggregateRoot(root model.AggregateRoot)

	// AggregateRoots returns the aggregates collected so far.
	AggregateRoots() []model.AggregateRoot
}
