package core

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// txMaxAttempts bounds the retry budget for contended transactions.
const txMaxAttempts = 3

// Lock ordering across all operations: warehouse rows first (sorted by
// code), then item rows (sorted by item code). Every multi-row operation
// in this package follows it, so AB/BA deadlocks cannot form between
// receives, issues, transfers and reservations.

func isRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// serialization_failure, deadlock_detected
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

// runInTx executes fn inside a transaction. Serialization failures and
// deadlocks are retried with a short backoff; once the budget is exhausted
// the error surfaces as a retryable conflict. All aggregates are left in
// their pre-operation state on any failure.
func runInTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	var err error
	for attempt := 1; attempt <= txMaxAttempts; attempt++ {
		err = tryTx(ctx, pool, fn)
		if err == nil || !isRetryableTxError(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return storagef(ctx.Err(), "transaction aborted")
		case <-time.After(time.Duration(attempt) * 25 * time.Millisecond):
		}
	}
	return &Error{Kind: KindConflict, Message: "operation could not be committed due to contention", Err: err}
}

func tryTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return storagef(err, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isRetryableTxError(err) {
			return err
		}
		return storagef(err, "failed to commit transaction")
	}
	return nil
}
