package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/sanosuguru/go-event-attendance/internal/domain/apperr"
	"github.com/sanosuguru/go-event-attendance/internal/domain/attendance"
	"github.com/sanosuguru/go-event-attendance/internal/domain/event"
	"github.com/sanosuguru/go-event-attendance/internal/domain/participant"
	"github.com/sanosuguru/go-event-attendance/internal/domain/transaction"
	"github.com/sanosuguru/go-event-attendance/internal/pkg/metrics"
)

// AttendanceService は参加登録の不変条件（存在・重複・定員）を守る
type AttendanceService struct {
	txManager       transaction.Manager
	eventRepo       event.Repository
	participantRepo participant.Repository
	attendanceRepo  attendance.Repository
	cache           Cache
	ttl             CacheTTL
	metrics         *metrics.Metrics
}

func NewAttendanceService(
	txManager transaction.Manager,
	eventRepo event.Repository,
	participantRepo participant.Repository,
	attendanceRepo attendance.Repository,
	cache Cache,
	ttl CacheTTL,
	m *metrics.Metrics,
) *AttendanceService {
	return &AttendanceService{
		txManager:       txManager,
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		attendanceRepo:  attendanceRepo,
		cache:           cacheOrNoop(cache),
		ttl:             ttl,
		metrics:         m,
	}
}

// RegisterAttendance は参加者をイベントに登録する
//
// チェックは次の順で行い、最初に失敗したものを返す:
//  1. イベントが存在する
//  2. 参加者が存在する
//  3. 同じ組の登録がない
//  4. 登録数が定員未満
//
// イベント行を FOR UPDATE でロックするため、同じイベントへの登録は直列化される
func (s *AttendanceService) RegisterAttendance(ctx context.Context, eventID, participantID int64) (*attendance.Attendance, error) {
	a, err := s.register(ctx, eventID, participantID)
	s.metrics.RecordRegistration(registrationResult(err))
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, eventID, participantID)
	return a, nil
}

func (s *AttendanceService) register(ctx context.Context, eventID, participantID int64) (*attendance.Attendance, error) {
	var a *attendance.Attendance
	err := transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		ev, err := s.eventRepo.GetByIDForUpdate(ctx, tx, eventID)
		if err != nil {
			if errors.Is(err, event.ErrEventNotFound) {
				return eventNotFound(eventID)
			}
			return fmt.Errorf("イベント取得に失敗: %w", err)
		}

		p, err := s.participantRepo.GetByID(ctx, tx, participantID)
		if err != nil {
			if errors.Is(err, participant.ErrParticipantNotFound) {
				return participantNotFound(participantID)
			}
			return fmt.Errorf("参加者取得に失敗: %w", err)
		}

		_, err = s.attendanceRepo.GetByEventAndParticipant(ctx, tx, eventID, participantID)
		switch {
		case err == nil:
			return alreadyRegistered(p, ev)
		case !errors.Is(err, attendance.ErrAttendanceNotFound):
			return fmt.Errorf("重複確認に失敗: %w", err)
		}

		registered, err := s.attendanceRepo.CountByEvent(ctx, tx, eventID)
		if err != nil {
			return fmt.Errorf("登録数取得に失敗: %w", err)
		}
		if registered >= ev.Capacity {
			return apperr.CapacityExceeded("Event %s has reached its maximum capacity (%d participants)", ev.Name, ev.Capacity)
		}

		a = attendance.NewAttendance(eventID, participantID)
		if err := s.attendanceRepo.Create(ctx, tx, a); err != nil {
			switch {
			case errors.Is(err, attendance.ErrAlreadyRegistered):
				return alreadyRegistered(p, ev)
			case errors.Is(err, attendance.ErrReferenceMissing):
				// イベント行はロック中なので、消えたのは参加者
				return participantNotFound(participantID)
			}
			return fmt.Errorf("参加登録作成に失敗: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// CancelAttendance は参加登録を削除し、空いた枠と組を再登録可能にする
func (s *AttendanceService) CancelAttendance(ctx context.Context, id int64) error {
	a, err := s.GetAttendance(ctx, id)
	if err != nil {
		return err
	}
	eventID, participantID := a.EventID, a.ParticipantID

	if err := s.attendanceRepo.Delete(ctx, nil, id); err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendanceNotFound(id)
		}
		return fmt.Errorf("参加登録削除に失敗: %w", err)
	}
	s.metrics.RecordCancellation()

	s.invalidate(ctx, eventID, participantID)
	return nil
}

func (s *AttendanceService) GetAttendance(ctx context.Context, id int64) (*attendance.Attendance, error) {
	a, err := s.attendanceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return nil, attendanceNotFound(id)
		}
		return nil, fmt.Errorf("参加登録取得に失敗: %w", err)
	}
	return a, nil
}

// GetEventAttendances はイベントの参加登録を登録順で返す
func (s *AttendanceService) GetEventAttendances(ctx context.Context, eventID int64) ([]*attendance.Detail, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			return nil, eventNotFound(eventID)
		}
		return nil, fmt.Errorf("イベント取得に失敗: %w", err)
	}

	return readThrough(ctx, s.cache, eventAttendancesKey(eventID), s.ttl.Attendance, func(ctx context.Context) ([]*attendance.Detail, error) {
		details, err := s.attendanceRepo.ListDetailsByEvent(ctx, eventID)
		if err != nil {
			return nil, fmt.Errorf("参加登録一覧取得に失敗: %w", err)
		}
		return details, nil
	})
}

// GetParticipantAttendances は参加者の参加登録を登録順で返す
func (s *AttendanceService) GetParticipantAttendances(ctx context.Context, participantID int64) ([]*attendance.Detail, error) {
	if _, err := s.participantRepo.GetByID(ctx, nil, participantID); err != nil {
		if errors.Is(err, participant.ErrParticipantNotFound) {
			return nil, participantNotFound(participantID)
		}
		return nil, fmt.Errorf("参加者取得に失敗: %w", err)
	}

	return readThrough(ctx, s.cache, participantAttendancesKey(participantID), s.ttl.Attendance, func(ctx context.Context) ([]*attendance.Detail, error) {
		details, err := s.attendanceRepo.ListDetailsByParticipant(ctx, participantID)
		if err != nil {
			return nil, fmt.Errorf("参加登録一覧取得に失敗: %w", err)
		}
		return details, nil
	})
}

// invalidate は参加登録の変更で古くなる3つのキャッシュを消す
func (s *AttendanceService) invalidate(ctx context.Context, eventID, participantID int64) {
	s.cache.Delete(ctx, eventStatsKey(eventID))
	s.cache.Delete(ctx, eventAttendancesKey(eventID))
	s.cache.Delete(ctx, participantAttendancesKey(participantID))
}

func registrationResult(err error) string {
	if err == nil {
		return metrics.RegistrationSuccess
	}
	kind, ok := apperr.KindOf(err)
	if !ok {
		return metrics.RegistrationError
	}
	switch kind {
	case apperr.KindNotFound:
		return metrics.RegistrationNotFound
	case apperr.KindDuplicateRegistration:
		return metrics.RegistrationDuplicate
	case apperr.KindCapacityExceeded:
		return metrics.RegistrationCapacityExceeded
	default:
		return metrics.RegistrationError
	}
}

func alreadyRegistered(p *participant.Participant, ev *event.Event) error {
	return apperr.DuplicateRegistration("Participant %s is already registered for event %s", p.Name, ev.Name)
}

func attendanceNotFound(id int64) error {
	return apperr.NotFound("Attendance %d not found", id)
}
