package mappa

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/syssam/mappa/dialect"
	"github.com/syssam/mappa/driver"
	"github.com/syssam/mappa/intercept"
	"github.com/syssam/mappa/value"
)

type txState uint8

const (
	txActive txState = iota
	txCommitted
	txRolledBack
)

// Tx runs mapper operations inside one database transaction. A mutex
// serializes operations, so a transaction may be shared across
// goroutines but statements execute one at a time.
type Tx struct {
	m  *Mapper
	tx *driver.Tx

	mu    sync.Mutex
	state txState
}

// Begin starts a transaction with default options.
func (m *Mapper) Begin(ctx context.Context) (*Tx, error) {
	return m.BeginTx(ctx, nil)
}

// BeginTx starts a transaction with the given options.
func (m *Mapper) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	tx, err := m.drv.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{m: m, tx: tx}, nil
}

// WithinTx runs fn in a transaction, committing on nil and rolling back
// on error or panic.
func (m *Mapper) WithinTx(ctx context.Context, fn func(*Tx) error) (err error) {
	tx, err := m.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				err = fmt.Errorf("%w; rollback: %w", err, rerr)
			}
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Commit commits the transaction. The handle is unusable afterwards.
func (t *Tx) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != txActive {
		return ErrTxDone
	}
	t.state = txCommitted
	return t.tx.Commit()
}

// Rollback aborts the transaction. The handle is unusable afterwards.
func (t *Tx) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != txActive {
		return ErrTxDone
	}
	t.state = txRolledBack
	return t.tx.Rollback()
}

// Close rolls back when the transaction is still active, for use with
// defer alongside an explicit Commit.
func (t *Tx) Close() error {
	t.mu.Lock()
	active := t.state == txActive
	t.mu.Unlock()
	if active {
		return t.Rollback()
	}
	return nil
}

func (t *Tx) dialect() dialect.Dialect { return t.m.d }

func (t *Tx) settings() *settings { return &t.m.set }

func (t *Tx) execute(ctx context.Context, ec *intercept.ExecContext) (*value.Rows, driver.Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != txActive {
		return nil, driver.Result{}, ErrTxDone
	}
	return t.m.run(ctx, t.tx.Conn, ec)
}

var _ Executor = (*Tx)(nil)
