package attendance

import "time"

// Attendance はイベントと参加者を結ぶ参加登録を表す
// (EventID, ParticipantID) の組は一意
type Attendance struct {
	ID            int64
	EventID       int64
	ParticipantID int64
	RegisteredAt  time.Time
}

// NewAttendance は新しい参加登録を作成する
func NewAttendance(eventID, participantID int64) *Attendance {
	return &Attendance{
		EventID:       eventID,
		ParticipantID: participantID,
		RegisteredAt:  time.Now(),
	}
}

// Detail はイベント名・参加者情報を結合した参加登録
type Detail struct {
	ID               int64     `json:"id"`
	EventID          int64     `json:"event_id"`
	EventName        string    `json:"event_name"`
	ParticipantID    int64     `json:"participant_id"`
	ParticipantName  string    `json:"participant_name"`
	ParticipantEmail string    `json:"participant_email"`
	RegisteredAt     time.Time `json:"registered_at"`
}
