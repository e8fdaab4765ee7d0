package store

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/khmer-content/internal/retry"
)

type inTxKey struct{}

// Resilient wraps every call of a ContentStore in retry.Do. Calls made
// inside RunInTx are not retried individually; the transaction is retried
// as a whole instead.
type Resilient struct {
	inner  ContentStore
	policy retry.Policy
	log    *slog.Logger
}

// WithRetry wraps inner with policy.
func WithRetry(inner ContentStore, policy retry.Policy, log *slog.Logger) *Resilient {
	return &Resilient{inner: inner, policy: policy, log: log.With("component", "store")}
}

func (r *Resilient) Upsert(ctx context.Context, table string, rows []Row, onConflict string) ([]Row, error) {
	return call(ctx, r, "upsert", table, func(ctx context.Context) ([]Row, error) {
		return r.inner.Upsert(ctx, table, rows, onConflict)
	})
}

// Insert is not idempotent, so it is repeated only when the failure proves
// nothing was written.
func (r *Resilient) Insert(ctx context.Context, table string, rows []Row) ([]Row, error) {
	insert := func(ctx context.Context) ([]Row, error) {
		return r.inner.Insert(ctx, table, rows)
	}
	if inTx, _ := ctx.Value(inTxKey{}).(bool); inTx {
		return insert(ctx)
	}
	p := r.withLogging("insert", table)
	classify := p.Classify
	if classify == nil {
		classify = retry.IsTransient
	}
	p.Classify = func(err error) bool {
		return IsNotApplied(err) && classify(err)
	}
	return retry.DoValue(ctx, p, insert)
}

func (r *Resilient) Delete(ctx context.Context, table string, filters ...Filter) (int, error) {
	return call(ctx, r, "delete", table, func(ctx context.Context) (int, error) {
		return r.inner.Delete(ctx, table, filters...)
	})
}

func (r *Resilient) Select(ctx context.Context, table string, q Query) ([]Row, error) {
	return call(ctx, r, "select", table, func(ctx context.Context) ([]Row, error) {
		return r.inner.Select(ctx, table, q)
	})
}

// RunInTx retries the whole transaction on transient failure when the
// wrapped store supports transactions, and runs fn directly otherwise.
func (r *Resilient) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, ok := r.inner.(Transactor)
	if !ok {
		return fn(ctx)
	}
	return retry.Do(ctx, r.withLogging("transaction", ""), func(ctx context.Context) error {
		return tx.RunInTx(ctx, func(txCtx context.Context) error {
			return fn(context.WithValue(txCtx, inTxKey{}, true))
		})
	})
}

func call[T any](ctx context.Context, r *Resilient, op, table string, fn func(ctx context.Context) (T, error)) (T, error) {
	if inTx, _ := ctx.Value(inTxKey{}).(bool); inTx {
		return fn(ctx)
	}
	return retry.DoValue(ctx, r.withLogging(op, table), fn)
}

func (r *Resilient) withLogging(op, table string) retry.Policy {
	p := r.policy
	p.OnRetry = func(attempt int, err error) {
		r.log.Warn("store call failed, retrying",
			slog.String("op", op),
			slog.String("table", table),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)
	}
	return p
}
