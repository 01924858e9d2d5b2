package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
)

// Querier is what repositories need from a connection. Both *pgxpool.Pool and pgx.Tx satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UnitOfWork runs fn inside one transaction: commit when fn returns nil, rollback otherwise.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(q Querier) error) error
}

type txBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

var _ UnitOfWork = (*TxManager)(nil)

type TxManager struct {
	db      txBeginner
	options pgx.TxOptions
}

// NewTxManager wraps a pool (or anything that can begin a pgx transaction).
// Transactions run with read committed isolation.
func NewTxManager(db txBeginner) *TxManager {
	return &TxManager{
		db: db,
		options: pgx.TxOptions{
			IsoLevel: pgx.ReadCommitted,
		},
	}
}

func (m *TxManager) Do(ctx context.Context, fn func(q Querier) error) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "db.unitofwork")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tx, err := m.db.BeginTx(ctx, m.options)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				log.Errorf("rollback after panic: %s", rollbackErr)
			}
			panic(p)
		}

		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				err = fmt.Errorf("rollback tx: %w: %w", rollbackErr, err)
			}
			return
		}

		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("commit tx: %w", commitErr)
		}
	}()

	return fn(tx)
}
