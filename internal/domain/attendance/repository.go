package attendance

import (
	"context"

	"github.com/sanosuguru/go-event-attendance/internal/domain/transaction"
)

// Repository は参加登録リポジトリのインターフェース
// tx が nil の場合はコネクションプールで実行する
type Repository interface {
	// Create は参加登録を作成する（一意制約違反時は ErrAlreadyRegistered）
	Create(ctx context.Context, tx transaction.Tx, a *Attendance) error

	// GetByID はIDから参加登録を取得する
	GetByID(ctx context.Context, id int64) (*Attendance, error)

	// GetByEventAndParticipant は組から参加登録を取得する
	GetByEventAndParticipant(ctx context.Context, tx transaction.Tx, eventID, participantID int64) (*Attendance, error)

	// CountByEvent はイベントの登録数を返す
	CountByEvent(ctx context.Context, tx transaction.Tx, eventID int64) (int, error)

	// Delete は参加登録を削除する
	Delete(ctx context.Context, tx transaction.Tx, id int64) error

	// ListDetailsByEvent はイベントの参加登録を結合済みで取得する
	ListDetailsByEvent(ctx context.Context, eventID int64) ([]*Detail, error)

	// ListDetailsByParticipant は参加者の参加登録を結合済みで取得する
	ListDetailsByParticipant(ctx context.Context, participantID int64) ([]*Detail, error)

	// Count は参加登録総数を返す
	Count(ctx context.Context) (int, error)
}
