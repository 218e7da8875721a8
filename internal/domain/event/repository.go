package event

import (
	"context"

	"github.com/sanosuguru/go-event-attendance/internal/domain/transaction"
)

// Repository はイベントリポジトリのインターフェース
type Repository interface {
	// Create は新しいイベントを作成する
	Create(ctx context.Context, event *Event) error

	// GetByID はIDからイベントを取得する
	GetByID(ctx context.Context, id int64) (*Event, error)

	// GetByIDForUpdate はトランザクション内で行ロックを取ってイベントを取得する
	GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id int64) (*Event, error)

	// List はイベント一覧をID順で取得する
	List(ctx context.Context, offset, limit int) ([]*Event, error)

	// Update はイベントを更新する
	Update(ctx context.Context, event *Event) error

	// Delete はイベントを削除する（参加登録はカスケード削除）
	Delete(ctx context.Context, id int64) error

	// Count はイベント総数を返す
	Count(ctx context.Context) (int, error)
}
