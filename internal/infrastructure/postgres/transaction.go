package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-event-attendance/internal/domain/transaction"
)

// PostgreSQL の SQLSTATE
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// TxWrapper は sqlx.Tx を transaction.Tx インターフェースでラップする
type TxWrapper struct {
	*sqlx.Tx
}

// Commit はトランザクションをコミットする
func (t *TxWrapper) Commit() error {
	return t.Tx.Commit()
}

// Rollback はトランザクションをロールバックする
// コミット済みの場合の sql.ErrTxDone は無視する
func (t *TxWrapper) Rollback() error {
	if err := t.Tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

// TxManager は sqlx.DB を使用したトランザクションマネージャー
type TxManager struct {
	db *sqlx.DB
}

// NewTxManager は新しい TxManager を作成する
func NewTxManager(db *sqlx.DB) *TxManager {
	return &TxManager{db: db}
}

// Begin は新しいトランザクションを開始する
func (m *TxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &TxWrapper{Tx: tx}, nil
}

// UnwrapTx は transaction.Tx から sqlx.Tx を取り出す
// リポジトリ実装で使用する
func UnwrapTx(tx transaction.Tx) *sqlx.Tx {
	if wrapper, ok := tx.(*TxWrapper); ok && wrapper != nil {
		return wrapper.Tx
	}
	return nil
}

// queryer は tx があればトランザクションを、なければプールを返す
func queryer(db *sqlx.DB, tx transaction.Tx) sqlx.ExtContext {
	if t := UnwrapTx(tx); t != nil {
		return t
	}
	return db
}

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pqCode(err) == codeUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pqCode(err) == codeForeignKeyViolation
}

var _ transaction.Manager = (*TxManager)(nil)
