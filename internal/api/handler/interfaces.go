package handler

import (
	"context"

	"github.com/sanosuguru/go-event-attendance/internal/application"
	"github.com/sanosuguru/go-event-attendance/internal/domain/attendance"
	"github.com/sanosuguru/go-event-attendance/internal/domain/event"
	"github.com/sanosuguru/go-event-attendance/internal/domain/participant"
)

// EventServiceInterface はイベントサービスのインターフェース
type EventServiceInterface interface {
	CreateEvent(ctx context.Context, input application.CreateEventInput) (*event.Event, error)
	GetEvent(ctx context.Context, id int64) (*event.Event, error)
	ListEvents(ctx context.Context, skip, limit int) ([]*event.Event, error)
	UpdateEvent(ctx context.Context, id int64, input application.UpdateEventInput) (*event.Event, error)
	DeleteEvent(ctx context.Context, id int64) error
	GetAvailableCapacity(ctx context.Context, id int64) (int, error)
	GetEventStatistics(ctx context.Context, id int64) (*event.Statistics, error)
}

// ParticipantServiceInterface は参加者サービスのインターフェース
type ParticipantServiceInterface interface {
	CreateParticipant(ctx context.Context, input application.CreateParticipantInput) (*participant.Participant, error)
	GetParticipant(ctx context.Context, id int64) (*participant.Participant, error)
	GetParticipantByEmail(ctx context.Context, email string) (*participant.Participant, error)
	ListParticipants(ctx context.Context, skip, limit int) ([]*participant.Participant, error)
	UpdateParticipant(ctx context.Context, id int64, input application.UpdateParticipantInput) (*participant.Participant, error)
	DeleteParticipant(ctx context.Context, id int64) error
}

// AttendanceServiceInterface は参加登録サービスのインターフェース
type AttendanceServiceInterface interface {
	RegisterAttendance(ctx context.Context, eventID, participantID int64) (*attendance.Attendance, error)
	CancelAttendance(ctx context.Context, id int64) error
	GetAttendance(ctx context.Context, id int64) (*attendance.Attendance, error)
	GetEventAttendances(ctx context.Context, eventID int64) ([]*attendance.Detail, error)
	GetParticipantAttendances(ctx context.Context, participantID int64) ([]*attendance.Detail, error)
}

var (
	_ EventServiceInterface       = (*application.EventService)(nil)
	_ ParticipantServiceInterface = (*application.ParticipantService)(nil)
	_ AttendanceServiceInterface  = (*application.AttendanceService)(nil)
)
