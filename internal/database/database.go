package database

import (
	"context"
	"fmt"
	"time"

	"quiz-pipeline/internal/logger"

	"github.com/jmoiron/sqlx"
	_ "github.com/sijms/go-ora/v2" // Oracle driver
	"go.uber.org/zap"
)

// PoolConfig sizes the connection pool. The attempt transaction waits on it for at most tx_max_wait.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func NewSQLXOracleDB(ctx context.Context, dsn string, pool PoolConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("oracle", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open Oracle database: %w", err)
	}

	if pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping Oracle database: %w", err)
	}

	logger.Get().Info("Successfully connected to Oracle database",
		zap.Int("max_open_conns", pool.MaxOpenConns))
	return db, nil
}
