package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	txcontext "medtrack/pkg/platform/tx"
)

// StoreTx is the atomic unit around caretaker selection and the two inserts
// of patient signup. Implementations either wrap a database transaction or,
// in memory, a coarse lock; either way the select-then-bind sequence cannot
// interleave with a competing signup.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

// inMemoryTx serializes pairing mutations behind one mutex. Pairing is rare
// (once per patient ever), so contention is not a concern.
type inMemoryTx struct {
	mu sync.Mutex
}

func NewInMemoryTx() StoreTx {
	return &inMemoryTx{}
}

func (t *inMemoryTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}

// sqlTx runs the unit inside a database transaction carried through context,
// so the user and assignment stores join it transparently. A failed
// assignment insert rolls the user insert back, leaving no orphaned patients.
type sqlTx struct {
	db *sql.DB
}

func NewSQLTx(db *sql.DB) StoreTx {
	return &sqlTx{db: db}
}

func (t *sqlTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin pairing tx: %w", err)
	}

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit pairing tx: %w", err)
	}
	return nil
}
