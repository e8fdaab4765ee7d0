package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/khmer-content/internal/domain"
	"github.com/heartmarshall/khmer-content/internal/store"
)

// mapError converts pgx/pgconn errors to domain and store errors.
// context.DeadlineExceeded and context.Canceled are NOT mapped and pass through.
func mapError(err error, op, table string) error {
	if err == nil {
		return nil
	}

	// context errors pass through as-is
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", op, table, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", op, table, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42P01": // undefined_table
			return fmt.Errorf("%s %s: %w: %w", op, table, store.ErrTableNotFound, err)
		case "23505": // unique_violation
			return fmt.Errorf("%s %s: %w: %w", op, table, domain.ErrAlreadyExists, err)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s %s: %w: %w", op, table, store.ErrForeignKey, err)
		case "23514": // check_violation
			return fmt.Errorf("%s %s: %w: %w", op, table, domain.ErrValidation, err)
		case "40001", "40P01": // serialization_failure, deadlock_detected; the statement was rolled back
			return fmt.Errorf("%s %s: %w: %w: %w", op, table, domain.ErrTransient, store.ErrNotApplied, err)
		}
		return fmt.Errorf("%s %s: %w", op, table, err)
	}

	// Connection-level failures that never reached the server are safe to repeat.
	if pgconn.SafeToRetry(err) {
		return fmt.Errorf("%s %s: %w: %w: %w", op, table, domain.ErrTransient, store.ErrNotApplied, err)
	}
	if pgconn.Timeout(err) {
		return fmt.Errorf("%s %s: %w: %w", op, table, domain.ErrTransient, err)
	}

	return fmt.Errorf("%s %s: %w", op, table, err)
}
