package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-attendance/internal/config"
	"github.com/sanosuguru/go-event-attendance/internal/pkg/logger"
)

// NewConnection はPostgreSQLへ接続し、プールを設定する
// 接続できない間は cfg.ConnectRetries 回まで間隔を倍にしながら再試行する
func NewConnection(ctx context.Context, cfg *config.DatabaseConfig) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)
	wait := 500 * time.Millisecond
	for attempt := 0; ; attempt++ {
		db, err = sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
		if err == nil {
			break
		}
		if attempt >= cfg.ConnectRetries {
			return nil, fmt.Errorf("データベース接続に失敗しました: %w", err)
		}
		logger.Warn("データベース接続を再試行します",
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("データベース接続を中断しました: %w", ctx.Err())
		case <-time.After(wait):
		}
		wait *= 2
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}
