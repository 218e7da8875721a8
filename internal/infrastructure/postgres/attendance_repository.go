package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-event-attendance/internal/domain/attendance"
	"github.com/sanosuguru/go-event-attendance/internal/domain/transaction"
)

const attendanceColumns = `id, event_id, participant_id, registered_at`

const detailQuery = `
	SELECT a.id, a.event_id, e.name AS event_name, a.participant_id,
	       p.name AS participant_name, p.email AS participant_email, a.registered_at
	FROM attendances a
	JOIN events e ON e.id = a.event_id
	JOIN participants p ON p.id = a.participant_id
`

// AttendanceRepository は参加登録リポジトリのPostgreSQL実装
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository はAttendanceRepositoryを作成する
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Create は参加登録を作成する
// (event_id, participant_id) の一意制約違反は ErrAlreadyRegistered に変換する
func (r *AttendanceRepository) Create(ctx context.Context, tx transaction.Tx, a *attendance.Attendance) error {
	query := `
		INSERT INTO attendances (event_id, participant_id, registered_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := queryer(r.db, tx).QueryRowxContext(ctx, query, a.EventID, a.ParticipantID, a.RegisteredAt).Scan(&a.ID)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return attendance.ErrAlreadyRegistered
		case isForeignKeyViolation(err):
			return attendance.ErrReferenceMissing
		}
		return fmt.Errorf("参加登録作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDから参加登録を取得する
func (r *AttendanceRepository) GetByID(ctx context.Context, id int64) (*attendance.Attendance, error) {
	var a attendance.Attendance
	err := r.db.QueryRowxContext(ctx,
		`SELECT `+attendanceColumns+` FROM attendances WHERE id = $1`, id,
	).Scan(&a.ID, &a.EventID, &a.ParticipantID, &a.RegisteredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, attendance.ErrAttendanceNotFound
		}
		return nil, fmt.Errorf("参加登録取得に失敗しました: %w", err)
	}
	return &a, nil
}

// GetByEventAndParticipant は組から参加登録を取得する
func (r *AttendanceRepository) GetByEventAndParticipant(ctx context.Context, tx transaction.Tx, eventID, participantID int64) (*attendance.Attendance, error) {
	var a attendance.Attendance
	err := queryer(r.db, tx).QueryRowxContext(ctx,
		`SELECT `+attendanceColumns+` FROM attendances WHERE event_id = $1 AND participant_id = $2`,
		eventID, participantID,
	).Scan(&a.ID, &a.EventID, &a.ParticipantID, &a.RegisteredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, attendance.ErrAttendanceNotFound
		}
		return nil, fmt.Errorf("参加登録取得に失敗しました: %w", err)
	}
	return &a, nil
}

// CountByEvent はイベントの登録数を返す
func (r *AttendanceRepository) CountByEvent(ctx context.Context, tx transaction.Tx, eventID int64) (int, error) {
	var count int
	if err := sqlx.GetContext(ctx, queryer(r.db, tx), &count,
		`SELECT COUNT(*) FROM attendances WHERE event_id = $1`, eventID,
	); err != nil {
		return 0, fmt.Errorf("登録数取得に失敗しました: %w", err)
	}
	return count, nil
}

// Delete は参加登録を削除する
func (r *AttendanceRepository) Delete(ctx context.Context, tx transaction.Tx, id int64) error {
	result, err := queryer(r.db, tx).ExecContext(ctx, `DELETE FROM attendances WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("参加登録削除に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// ListDetailsByEvent はイベントの参加登録を登録順で取得する
func (r *AttendanceRepository) ListDetailsByEvent(ctx context.Context, eventID int64) ([]*attendance.Detail, error) {
	return r.listDetails(ctx, detailQuery+` WHERE a.event_id = $1 ORDER BY a.registered_at, a.id`, eventID)
}

// ListDetailsByParticipant は参加者の参加登録を登録順で取得する
func (r *AttendanceRepository) ListDetailsByParticipant(ctx context.Context, participantID int64) ([]*attendance.Detail, error) {
	return r.listDetails(ctx, detailQuery+` WHERE a.participant_id = $1 ORDER BY a.registered_at, a.id`, participantID)
}

func (r *AttendanceRepository) listDetails(ctx context.Context, query string, id int64) ([]*attendance.Detail, error) {
	rows, err := r.db.QueryxContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("参加登録一覧取得に失敗しました: %w", err)
	}
	defer rows.Close()

	details := make([]*attendance.Detail, 0)
	for rows.Next() {
		var d attendance.Detail
		if err := rows.Scan(&d.ID, &d.EventID, &d.EventName, &d.ParticipantID,
			&d.ParticipantName, &d.ParticipantEmail, &d.RegisteredAt); err != nil {
			return nil, fmt.Errorf("参加登録の読み取りに失敗しました: %w", err)
		}
		details = append(details, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("参加登録一覧取得に失敗しました: %w", err)
	}
	return details, nil
}

// Count は参加登録総数を返す
func (r *AttendanceRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM attendances`); err != nil {
		return 0, fmt.Errorf("参加登録件数取得に失敗しました: %w", err)
	}
	return count, nil
}

var _ attendance.Repository = (*AttendanceRepository)(nil)
