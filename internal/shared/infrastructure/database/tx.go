package database

import "context"

type txKey struct{}

// WithTx stores a transaction in the context.
func WithTx(ctx context.Context, tx Transaction) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext returns the transaction in ctx, or nil.
func TxFromContext(ctx context.Context) Transaction {
	tx, _ := ctx.Value(txKey{}).(Transaction)
	return tx
}

// ExecutorFromContext returns the transaction in ctx if there is one,
// otherwise conn.
func ExecutorFromContext(ctx context.Context, conn Connection) Executor {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return conn
}

// RunInTx runs fn inside a transaction. A transaction already present in
// ctx is reused and left for its owner to finish.
func RunInTx(ctx context.Context, conn Connection, fn func(ctx context.Context) error) error {
	if TxFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := conn.BeginTx(ctx)
	if err != nil {
		return err
	}
	if err := fn(WithTx(ctx, tx)); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}
