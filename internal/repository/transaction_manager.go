package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"quiz-pipeline/internal/domain"
	"quiz-pipeline/internal/logger"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// contextKey는 context value의 key 타입
type contextKey string

const (
	// TransactionContextKey 트랜잭션을 저장하는 context key
	TransactionContextKey contextKey = "tx"
)

// GetExecutor context에서 트랜잭션을 가져오거나 기본 DB를 반환하는 헬퍼 함수
func GetExecutor(ctx context.Context, db DBTX) DBTX {
	if tx := ctx.Value(TransactionContextKey); tx != nil {
		if sqlxTx, ok := tx.(*sqlx.Tx); ok {
			return sqlxTx
		}
	}
	return db
}

// TransactionManagerAdapter runs read-committed transactions on a dedicated connection.
type TransactionManagerAdapter struct {
	db *sqlx.DB
}

func NewTransactionManagerAdapter(db *sqlx.DB) domain.TransactionManager {
	return &TransactionManagerAdapter{db: db}
}

// WithTransaction waits at most opts.MaxWait for a pooled connection and
// aborts the transaction once opts.Timeout elapses. Waiting too long for a
// connection is reported as a TransientDBError.
func (tma *TransactionManagerAdapter) WithTransaction(ctx context.Context, opts domain.TxOptions, fn func(ctx context.Context) error) error {
	waitCtx, cancelWait := ctx, context.CancelFunc(func() {})
	if opts.MaxWait > 0 {
		waitCtx, cancelWait = context.WithTimeout(ctx, opts.MaxWait)
	}
	conn, err := tma.db.Connx(waitCtx)
	cancelWait()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return &domain.TransientDBError{Op: "acquire connection", Cause: err}
		}
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close()

	txCtx, cancelTx := ctx, context.CancelFunc(func() {})
	if opts.Timeout > 0 {
		txCtx, cancelTx = context.WithTimeout(ctx, opts.Timeout)
	}
	defer cancelTx()

	tx, err := conn.BeginTxx(txCtx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return wrapDBError("begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				logger.Get().Error("failed to rollback transaction after panic", zap.Error(rollbackErr))
			}
			panic(p) // 원래 패닉을 다시 발생
		}
	}()

	if err := fn(context.WithValue(txCtx, TransactionContextKey, tx)); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			return fmt.Errorf("failed to rollback transaction: %v (original error: %w)", rollbackErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return wrapDBError("commit transaction", err)
	}
	return nil
}
