package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-event-attendance/internal/domain/participant"
	"github.com/sanosuguru/go-event-attendance/internal/domain/transaction"
)

const participantColumns = `id, name, email, phone, created_at, updated_at`

type participantRow struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Phone     *string   `db:"phone"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *participantRow) toEntity() *participant.Participant {
	var phone string
	if r.Phone != nil {
		phone = *r.Phone
	}
	return &participant.Participant{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Phone:     phone,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// ParticipantRepository は参加者リポジトリのPostgreSQL実装
type ParticipantRepository struct {
	db *sqlx.DB
}

// NewParticipantRepository はParticipantRepositoryを作成する
func NewParticipantRepository(db *sqlx.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// Create は新しい参加者を作成する
func (r *ParticipantRepository) Create(ctx context.Context, p *participant.Participant) error {
	query := `
		INSERT INTO participants (name, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		p.Name, p.Email, nullableString(p.Phone), p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return participant.ErrEmailAlreadyExists
		}
		return fmt.Errorf("参加者作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDから参加者を取得する
// トランザクション内の参照は tx のコネクションで行う
func (r *ParticipantRepository) GetByID(ctx context.Context, tx transaction.Tx, id int64) (*participant.Participant, error) {
	return r.getOne(ctx, queryer(r.db, tx), `SELECT `+participantColumns+` FROM participants WHERE id = $1`, id)
}

// GetByEmail はメールアドレスから参加者を取得する
func (r *ParticipantRepository) GetByEmail(ctx context.Context, email string) (*participant.Participant, error) {
	return r.getOne(ctx, r.db, `SELECT `+participantColumns+` FROM participants WHERE email = $1`, email)
}

func (r *ParticipantRepository) getOne(ctx context.Context, q sqlx.QueryerContext, query string, arg any) (*participant.Participant, error) {
	var row participantRow
	if err := sqlx.GetContext(ctx, q, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, participant.ErrParticipantNotFound
		}
		return nil, fmt.Errorf("参加者取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// List は参加者一覧をID順で取得する
func (r *ParticipantRepository) List(ctx context.Context, offset, limit int) ([]*participant.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants ORDER BY id LIMIT $1 OFFSET $2`

	var rows []participantRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("参加者一覧取得に失敗しました: %w", err)
	}

	participants := make([]*participant.Participant, len(rows))
	for i := range rows {
		participants[i] = rows[i].toEntity()
	}
	return participants, nil
}

// Update は参加者を更新する
func (r *ParticipantRepository) Update(ctx context.Context, p *participant.Participant) error {
	query := `
		UPDATE participants
		SET name = $1, email = $2, phone = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := r.db.ExecContext(ctx, query,
		p.Name, p.Email, nullableString(p.Phone), p.UpdatedAt, p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return participant.ErrEmailAlreadyExists
		}
		return fmt.Errorf("参加者更新に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return participant.ErrParticipantNotFound
	}
	return nil
}

// Delete は参加者を削除する
func (r *ParticipantRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM participants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("参加者削除に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return participant.ErrParticipantNotFound
	}
	return nil
}

// Count は参加者総数を返す
func (r *ParticipantRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM participants`); err != nil {
		return 0, fmt.Errorf("参加者件数取得に失敗しました: %w", err)
	}
	return count, nil
}

var _ participant.Repository = (*ParticipantRepository)(nil)
