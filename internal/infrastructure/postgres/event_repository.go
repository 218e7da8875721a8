package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-event-attendance/internal/domain/event"
	"github.com/sanosuguru/go-event-attendance/internal/domain/transaction"
)

const eventColumns = `id, name, description, location, event_date, capacity, created_at, updated_at`

// eventRow はDBの行を表す構造体
type eventRow struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	Location    string    `db:"location"`
	EventDate   time.Time `db:"event_date"`
	Capacity    int       `db:"capacity"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// toEntity はeventRowをEventエンティティに変換する
func (r *eventRow) toEntity() *event.Event {
	var desc string
	if r.Description != nil {
		desc = *r.Description
	}
	return &event.Event{
		ID:          r.ID,
		Name:        r.Name,
		Description: desc,
		Location:    r.Location,
		Date:        r.EventDate,
		Capacity:    r.Capacity,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// EventRepository はイベントリポジトリのPostgreSQL実装
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository はEventRepositoryを作成する
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create は新しいイベントを作成する
func (r *EventRepository) Create(ctx context.Context, e *event.Event) error {
	query := `
		INSERT INTO events (name, description, location, event_date, capacity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		e.Name, nullableString(e.Description), e.Location, e.Date, e.Capacity, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("イベント作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDからイベントを取得する
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*event.Event, error) {
	return r.get(ctx, r.db, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
}

// GetByIDForUpdate は行ロック（FOR UPDATE）付きでイベントを取得する
// 同一イベントへの参加登録はこのロックで直列化される
func (r *EventRepository) GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id int64) (*event.Event, error) {
	return r.get(ctx, queryer(r.db, tx), `SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id)
}

func (r *EventRepository) get(ctx context.Context, q sqlx.QueryerContext, query string, id int64) (*event.Event, error) {
	var row eventRow
	if err := sqlx.GetContext(ctx, q, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, fmt.Errorf("イベント取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// List はイベント一覧をID順で取得する
func (r *EventRepository) List(ctx context.Context, offset, limit int) ([]*event.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY id LIMIT $1 OFFSET $2`

	var rows []eventRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("イベント一覧取得に失敗しました: %w", err)
	}

	events := make([]*event.Event, len(rows))
	for i := range rows {
		events[i] = rows[i].toEntity()
	}
	return events, nil
}

// Update はイベントを更新する
func (r *EventRepository) Update(ctx context.Context, e *event.Event) error {
	query := `
		UPDATE events
		SET name = $1, description = $2, location = $3, event_date = $4, capacity = $5, updated_at = $6
		WHERE id = $7
	`
	result, err := r.db.ExecContext(ctx, query,
		e.Name, nullableString(e.Description), e.Location, e.Date, e.Capacity, e.UpdatedAt, e.ID,
	)
	if err != nil {
		return fmt.Errorf("イベント更新に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return event.ErrEventNotFound
	}
	return nil
}

// Delete はイベントを削除する
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("イベント削除に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return event.ErrEventNotFound
	}
	return nil
}

// Count はイベント総数を返す
func (r *EventRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM events`); err != nil {
		return 0, fmt.Errorf("イベント件数取得に失敗しました: %w", err)
	}
	return count, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// インターフェースを満たしているか確認
var _ event.Repository = (*EventRepository)(nil)
