package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-attendance/internal/domain/apperr"
	"github.com/sanosuguru/go-event-attendance/internal/domain/attendance"
	"github.com/sanosuguru/go-event-attendance/internal/domain/event"
	"github.com/sanosuguru/go-event-attendance/internal/pkg/logger"
)

// 一覧取得のページング
const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

type EventService struct {
	eventRepo      event.Repository
	attendanceRepo attendance.Repository
	cache          Cache
	ttl            CacheTTL
	now            func() time.Time
}

func NewEventService(eventRepo event.Repository, attendanceRepo attendance.Repository, cache Cache, ttl CacheTTL) *EventService {
	return &EventService{
		eventRepo:      eventRepo,
		attendanceRepo: attendanceRepo,
		cache:          cacheOrNoop(cache),
		ttl:            ttl,
		now:            time.Now,
	}
}

type CreateEventInput struct {
	Name        string
	Description string
	Location    string
	Date        time.Time
	Capacity    int
}

func (s *EventService) CreateEvent(ctx context.Context, input CreateEventInput) (*event.Event, error) {
	e := event.NewEvent(input.Name, input.Description, input.Location, input.Date, input.Capacity)
	if err := s.validate(e, true); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("イベント作成に失敗しました: %w", err)
	}

	s.cache.DeleteByPrefix(ctx, eventListPrefix)
	return e, nil
}

func (s *EventService) GetEvent(ctx context.Context, id int64) (*event.Event, error) {
	return readThrough(ctx, s.cache, eventKey(id), s.ttl.Default, func(ctx context.Context) (*event.Event, error) {
		return s.loadEvent(ctx, id)
	})
}

// ListEvents はID順にイベントを返す
// skip は0未満を0に、limit は0以下を100に、1000超を1000に丸める
func (s *EventService) ListEvents(ctx context.Context, skip, limit int) ([]*event.Event, error) {
	skip, limit = normalizePage(skip, limit)
	return readThrough(ctx, s.cache, eventListKey(skip, limit), s.ttl.Default, func(ctx context.Context) ([]*event.Event, error) {
		events, err := s.eventRepo.List(ctx, skip, limit)
		if err != nil {
			return nil, fmt.Errorf("イベント一覧取得に失敗しました: %w", err)
		}
		return events, nil
	})
}

// UpdateEventInput は部分更新の入力。nil の項目は変更しない
type UpdateEventInput struct {
	Name        *string
	Description *string
	Location    *string
	Date        *time.Time
	Capacity    *int
}

func (s *EventService) UpdateEvent(ctx context.Context, id int64, input UpdateEventInput) (*event.Event, error) {
	e, err := s.loadEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	renamed := input.Name != nil && *input.Name != e.Name

	if input.Name != nil {
		e.Name = *input.Name
	}
	if input.Description != nil {
		e.Description = *input.Description
	}
	if input.Location != nil {
		e.Location = *input.Location
	}
	if input.Date != nil {
		e.Date = *input.Date
	}
	if input.Capacity != nil {
		e.Capacity = *input.Capacity
	}
	// 日時は指定されたときだけ再検証する
	if err := s.validate(e, input.Date != nil); err != nil {
		return nil, err
	}

	if input.Capacity != nil {
		registered, err := s.attendanceRepo.CountByEvent(ctx, nil, id)
		if err != nil {
			return nil, fmt.Errorf("登録数取得に失敗しました: %w", err)
		}
		if e.Capacity < registered {
			return nil, apperr.Validation("Capacity %d is below the %d participants already registered", e.Capacity, registered)
		}
	}

	e.Touch()
	if err := s.eventRepo.Update(ctx, e); err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			return nil, eventNotFound(id)
		}
		return nil, fmt.Errorf("イベント更新に失敗しました: %w", err)
	}

	s.invalidateEvent(ctx, id)
	if renamed {
		// 参加登録の詳細にはイベント名が含まれる
		s.invalidateAttendanceViews(ctx, id, s.registeredParticipants(ctx, id))
	}
	return e, nil
}

// DeleteEvent はイベントを削除する。参加登録はストア側でカスケード削除される
func (s *EventService) DeleteEvent(ctx context.Context, id int64) error {
	if _, err := s.loadEvent(ctx, id); err != nil {
		return err
	}
	// カスケードで消える登録の参加者は削除前に控えておき、削除後に無効化する
	participantIDs := s.registeredParticipants(ctx, id)

	if err := s.eventRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			return eventNotFound(id)
		}
		return fmt.Errorf("イベント削除に失敗しました: %w", err)
	}

	s.invalidateEvent(ctx, id)
	s.invalidateAttendanceViews(ctx, id, participantIDs)
	return nil
}

func (s *EventService) GetAvailableCapacity(ctx context.Context, id int64) (int, error) {
	e, err := s.GetEvent(ctx, id)
	if err != nil {
		return 0, err
	}
	registered, err := s.attendanceRepo.CountByEvent(ctx, nil, id)
	if err != nil {
		return 0, fmt.Errorf("登録数取得に失敗しました: %w", err)
	}
	return e.AvailableCapacity(registered), nil
}

// GetEventStatistics は登録人数・残り枠・占有率を返す
func (s *EventService) GetEventStatistics(ctx context.Context, id int64) (*event.Statistics, error) {
	return readThrough(ctx, s.cache, eventStatsKey(id), s.ttl.Statistics, func(ctx context.Context) (*event.Statistics, error) {
		e, err := s.loadEvent(ctx, id)
		if err != nil {
			return nil, err
		}
		registered, err := s.attendanceRepo.CountByEvent(ctx, nil, id)
		if err != nil {
			return nil, fmt.Errorf("登録数取得に失敗しました: %w", err)
		}
		return event.NewStatistics(e, registered), nil
	})
}

// loadEvent はキャッシュを通さずにストアから取得する
func (s *EventService) loadEvent(ctx context.Context, id int64) (*event.Event, error) {
	e, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			return nil, eventNotFound(id)
		}
		return nil, fmt.Errorf("イベント取得に失敗しました: %w", err)
	}
	return e, nil
}

func (s *EventService) validate(e *event.Event, checkDate bool) error {
	if err := e.Validate(); err != nil {
		return apperr.Validation("%s", err.Error())
	}
	if checkDate {
		if err := e.ValidateDate(s.now()); err != nil {
			return apperr.Validation("%s", err.Error())
		}
	}
	return nil
}

func (s *EventService) invalidateEvent(ctx context.Context, id int64) {
	s.cache.Delete(ctx, eventKey(id))
	s.cache.DeleteByPrefix(ctx, eventListPrefix)
	s.cache.Delete(ctx, eventStatsKey(id))
}

// registeredParticipants はイベントに登録済みの参加者IDを返す
// 取得に失敗した場合は nil で、参加者側の一覧はTTLで解消される
func (s *EventService) registeredParticipants(ctx context.Context, id int64) []int64 {
	details, err := s.attendanceRepo.ListDetailsByEvent(ctx, id)
	if err != nil {
		logger.FromContext(ctx).Warn("参加登録一覧の取得に失敗したため参加者側キャッシュを無効化できません",
			zap.Int64("event_id", id), zap.Error(err))
		return nil
	}
	ids := make([]int64, len(details))
	for i, d := range details {
		ids[i] = d.ParticipantID
	}
	return ids
}

// invalidateAttendanceViews はイベントの参加登録一覧と、participantIDs 側の一覧を無効化する
func (s *EventService) invalidateAttendanceViews(ctx context.Context, id int64, participantIDs []int64) {
	s.cache.Delete(ctx, eventAttendancesKey(id))
	for _, pid := range participantIDs {
		s.cache.Delete(ctx, participantAttendancesKey(pid))
	}
}

func eventNotFound(id int64) error {
	return apperr.NotFound("Event %d not found", id)
}

func normalizePage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return skip, limit
}
