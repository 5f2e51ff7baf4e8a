package repository

import "errors"

var (
	// ErrEmptyIDs is returned by ExistsByID when called with an empty id list.
	ErrEmptyIDs = errors.New("ids must not be empty")

	// ErrDuplicateEntity is returned when inserting an entity whose id already exists.
	ErrDuplicateEntity = errors.New("entity already exists")

	// ErrTransactionActive is returned by UnitOfWork.Start when a transaction
	// is already open on this instance.
	ErrTransactionActive = errors.New("transaction already active")

	// ErrNoTransaction is returned by Commit/Rollback without a prior Start.
	ErrNoTransaction = errors.New("no active transaction")

	// ErrBucketNotFound is returned when the configured storage bucket does not exist.
	ErrBucketNotFound = errors.New("bucket not found")
)
