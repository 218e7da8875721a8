package transaction

import (
	"context"
	"fmt"
)

// Tx はトランザクションを表す
// ドメイン層が sqlx に依存しないための抽象化
type Tx interface {
	Commit() error
	// Rollback はコミット後に呼ばれても無害であること
	Rollback() error
}

// Manager はトランザクションを開始する
type Manager interface {
	Begin(ctx context.Context) (Tx, error)
}

// Run は fn をひとつのトランザクション内で実行する
// fn がエラーを返せばロールバックし、そのエラーをそのまま返す
func Run(ctx context.Context, m Manager, fn func(tx Tx) error) error {
	tx, err := m.Begin(ctx)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}
	return nil
}
