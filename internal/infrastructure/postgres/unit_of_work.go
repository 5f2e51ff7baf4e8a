package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hszk-dev/catalog/internal/domain/model"
	"github.com/hszk-dev/catalog/internal/domain/repository"
)

// UnitOfWork implements repository.UnitOfWork over a pgx transaction. Every
// repository bound to this instance issues its statements through Conn(), so
// a multi-step write (scalar update, stale join-row delete, fresh join-row
// insert) is atomic: a failure partway rolls back all prior steps.
//
// One instance serves one logical operation.
type UnitOfWork struct {
	db    DB
	tx    pgx.Tx
	roots []model.AggregateRoot
}

func NewUnitOfWork(db DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// Start begins a transaction.
func (u *UnitOfWork) Start(ctx context.Context) error {
	if u.tx != nil {
		return repository.ErrTransactionActive
	}
	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	u.tx = tx
	return nil
}

// Commit finalizes the transaction. The collected aggregate roots are kept so
// the caller can dispatch their pending events after the writes are durable.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return repository.ErrNoTransaction
	}
	if err := u.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	u.tx = nil
	return nil
}

// Rollback discards the transaction and the collected aggregate roots.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return repository.ErrNoTransaction
	}
	if err := u.tx.Rollback(ctx); err != nil {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	u.tx = nil
	u.roots = nil
	return nil
}

// Do runs fn inside a transaction. On error the transaction is rolled back
// and the original error propagates; the rollback error, if any, is attached.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := u.Start(ctx); err != nil {
		return err
	}
	if err := fn(ctx); err != nil {
		if rbErr := u.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	return u.Commit(ctx)
}

// Conn returns the handle repositories must attach their statements to: the
// active transaction, or the pool when no transaction is open.
func (u *UnitOfWork) Conn() DBTX {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

// AddAggregateRoot registers an aggregate written during this operation.
func (u *UnitOfWork) AddAggregateRoot(root model.AggregateRoot) {
	u.roots = append(u.roots, root)
}

// AggregateRoots returns the aggregates collected so far.
func (u *UnitOfWork) AggregateRoots() []model.AggregateRoot {
	return u.roots
}

// Compile-time verification that UnitOfWork implements repository.UnitOfWork.
var _ repository.UnitOfWork = (*UnitOfWork)(nil)
