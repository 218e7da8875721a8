package attendance

import "errors"

// Attendance ドメインのエラー定義
var (
	ErrAttendanceNotFound = errors.New("attendance not found")
	// ErrAlreadyRegistered は一意制約違反（同一イベント・同一参加者）
	ErrAlreadyRegistered = errors.New("participant is already registered for this event")
	// ErrReferenceMissing は外部キー違反（イベントまたは参加者が存在しない）
	ErrReferenceMissing = errors.New("referenced event or participant does not exist")
)
