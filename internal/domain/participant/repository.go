package participant

import (
	"context"

	"github.com/sanosuguru/go-event-attendance/internal/domain/transaction"
)

// Repository は参加者リポジトリのインターフェース
type Repository interface {
	// Create は新しい参加者を作成する（メール重複時は ErrEmailAlreadyExists）
	Create(ctx context.Context, p *Participant) error

	// GetByID はIDから参加者を取得する（tx が nil ならプールを使う）
	GetByID(ctx context.Context, tx transaction.Tx, id int64) (*Participant, error)

	// GetByEmail はメールアドレスから参加者を取得する
	GetByEmail(ctx context.Context, email string) (*Participant, error)

	// List は参加者一覧をID順で取得する
	List(ctx context.Context, offset, limit int) ([]*Participant, error)

	// Update は参加者を更新する（メール重複時は ErrEmailAlreadyExists）
	Update(ctx context.Context, p *Participant) error

	// Delete は参加者を削除する（参加登録はカスケード削除）
	Delete(ctx context.Context, id int64) error

	// Count は参加者総数を返す
	Count(ctx context.Context) (int, error)
}
