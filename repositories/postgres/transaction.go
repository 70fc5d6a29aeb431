package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/voyagecm/policy-api/repositories"
	"go.uber.org/zap"
)

// unitOfWorkKey carries the open transaction through the evaluation context
type unitOfWorkKey struct{}

// TransactionManager runs each policy evaluation as one unit of work: the
// locked reads and the single ALLOW mutation either all land or none do.
type TransactionManager struct {
	db     *DB
	logger *zap.Logger
}

// NewTransactionManager creates a new transaction manager
func NewTransactionManager(db *DB, logger *zap.Logger) repositories.TransactionManager {
	return &TransactionManager{db: db, logger: logger}
}

// Begin opens a transaction for one evaluation
func (tm *TransactionManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	sqlTx, err := tm.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin evaluation transaction: %w", err)
	}
	tm.logger.Debug("evaluation unit of work started")
	return &Transaction{tx: sqlTx, ctx: ctx, logger: tm.logger}, nil
}

// InTransaction runs fn inside one unit of work. The transaction is stored
// in the derived context so repository calls made through fn pick it up via
// GetExecutor; fn returning an error rolls everything back.
func (tm *TransactionManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	tx, err := tm.Begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(context.WithValue(ctx, unitOfWorkKey{}, tx), tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			tm.logger.Error("rollback of evaluation unit of work failed",
				zap.Error(rbErr),
				zap.NamedError("evaluation_error", err),
			)
		}
		return err
	}

	return tx.Commit()
}

// Transaction is one evaluation's unit of work over a *sql.Tx
type Transaction struct {
	tx     *sql.Tx
	ctx    context.Context
	logger *zap.Logger
}

// Commit makes the evaluation's mutation durable
func (t *Transaction) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit evaluation unit of work: %w", err)
	}
	t.logger.Debug("evaluation unit of work committed")
	return nil
}

// Rollback discards the evaluation's reads and writes. Calling it after the
// transaction already finished is a no-op, so deferred rollbacks are safe.
func (t *Transaction) Rollback() error {
	switch err := t.tx.Rollback(); {
	case err == nil:
		t.logger.Debug("evaluation unit of work rolled back")
		return nil
	case errors.Is(err, sql.ErrTxDone):
		return nil
	default:
		return fmt.Errorf("rollback evaluation unit of work: %w", err)
	}
}

// Context returns the context the unit of work was opened with
func (t *Transaction) Context() context.Context {
	return t.ctx
}

// Executor is the query surface shared by *sql.DB and *sql.Tx
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// GetExecutor returns the open unit of work when the context carries one,
// otherwise the plain connection. Repositories route every query through it
// so the same method works inside and outside an evaluation.
func GetExecutor(ctx context.Context, db *DB) Executor {
	if tx, ok := ctx.Value(unitOfWorkKey{}).(*Transaction); ok {
		return tx.tx
	}
	return db.DB
}
