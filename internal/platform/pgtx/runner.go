package pgtx

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	defaultMaxAttempts = 3
	defaultBackoff     = 50 * time.Millisecond
)

// Runner executes functions inside a Postgres transaction and retries on
// transient failures (serialization conflicts, deadlocks).
type Runner struct {
	db          *sqlx.DB
	maxAttempts int
	backoff     time.Duration
}

type Option func(*Runner)

func WithMaxAttempts(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

func WithBackoff(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.backoff = d
		}
	}
}

func New(db *sqlx.DB, opts ...Option) *Runner {
	r := &Runner{
		db:          db,
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes fn inside a transaction. The transaction is rolled back when
// fn returns an error and committed otherwise. Transient errors restart fn
// from a fresh transaction, so fn must be safe to re-run.
func (r *Runner) Run(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	if r == nil || r.db == nil {
		return errors.New("pgtx: runner requires a database handle")
	}
	if fn == nil {
		return errors.New("pgtx: fn is required")
	}

	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		lastErr = r.runOnce(ctx, fn)
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
		if err := sleep(ctx, time.Duration(attempt)*r.backoff); err != nil {
			return errors.CombineErrors(err, lastErr)
		}
	}

	return errors.Wrapf(lastErr, "pgtx: giving up after %d attempts", r.maxAttempts)
}

func (r *Runner) runOnce(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "pgtx: begin transaction")
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "pgtx: commit transaction")
	}
	return nil
}

// IsRetryable reports whether err is a transient Postgres failure worth a
// fresh transaction attempt. Context cancellation is never retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.IsAny(err, context.Canceled, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, sql.ErrTxDone) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01", "55P03":
			return true
		}
	}
	return false
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
