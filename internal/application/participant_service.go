package application

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-attendance/internal/domain/apperr"
	"github.com/sanosuguru/go-event-attendance/internal/domain/attendance"
	"github.com/sanosuguru/go-event-attendance/internal/domain/participant"
	"github.com/sanosuguru/go-event-attendance/internal/pkg/logger"
)

type ParticipantService struct {
	participantRepo participant.Repository
	attendanceRepo  attendance.Repository
	cache           Cache
	ttl             CacheTTL
}

func NewParticipantService(participantRepo participant.Repository, attendanceRepo attendance.Repository, cache Cache, ttl CacheTTL) *ParticipantService {
	return &ParticipantService{
		participantRepo: participantRepo,
		attendanceRepo:  attendanceRepo,
		cache:           cacheOrNoop(cache),
		ttl:             ttl,
	}
}

type CreateParticipantInput struct {
	Name  string
	Email string
	Phone string
}

// CreateParticipant は参加者を登録する。メールアドレスは全体で一意
func (s *ParticipantService) CreateParticipant(ctx context.Context, input CreateParticipantInput) (*participant.Participant, error) {
	p := participant.NewParticipant(input.Name, input.Email, input.Phone)
	if err := p.Validate(); err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}

	existing, err := s.findByEmail(ctx, p.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, emailTaken(p.Email)
	}

	if err := s.participantRepo.Create(ctx, p); err != nil {
		// 同時登録で先を越された場合
		if errors.Is(err, participant.ErrEmailAlreadyExists) {
			return nil, emailTaken(p.Email)
		}
		return nil, fmt.Errorf("参加者作成に失敗しました: %w", err)
	}

	s.cache.DeleteByPrefix(ctx, participantListPrefix)
	return p, nil
}

func (s *ParticipantService) GetParticipant(ctx context.Context, id int64) (*participant.Participant, error) {
	return readThrough(ctx, s.cache, participantKey(id), s.ttl.Default, func(ctx context.Context) (*participant.Participant, error) {
		return s.loadParticipant(ctx, id)
	})
}

// GetParticipantByEmail は該当者がいなければ nil, nil を返す
func (s *ParticipantService) GetParticipantByEmail(ctx context.Context, email string) (*participant.Participant, error) {
	return s.findByEmail(ctx, email)
}

func (s *ParticipantService) ListParticipants(ctx context.Context, skip, limit int) ([]*participant.Participant, error) {
	skip, limit = normalizePage(skip, limit)
	return readThrough(ctx, s.cache, participantListKey(skip, limit), s.ttl.Default, func(ctx context.Context) ([]*participant.Participant, error) {
		participants, err := s.participantRepo.List(ctx, skip, limit)
		if err != nil {
			return nil, fmt.Errorf("参加者一覧取得に失敗しました: %w", err)
		}
		return participants, nil
	})
}

// UpdateParticipantInput は部分更新の入力。nil の項目は変更しない
type UpdateParticipantInput struct {
	Name  *string
	Email *string
	Phone *string
}

func (s *ParticipantService) UpdateParticipant(ctx context.Context, id int64, input UpdateParticipantInput) (*participant.Participant, error) {
	p, err := s.loadParticipant(ctx, id)
	if err != nil {
		return nil, err
	}

	// 自分自身の現在のメールアドレスとは衝突しない
	if input.Email != nil && *input.Email != p.Email {
		other, err := s.findByEmail(ctx, *input.Email)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, emailTaken(*input.Email)
		}
	}
	profileChanged := (input.Name != nil && *input.Name != p.Name) ||
		(input.Email != nil && *input.Email != p.Email)

	if input.Name != nil {
		p.Name = *input.Name
	}
	if input.Email != nil {
		p.Email = *input.Email
	}
	if input.Phone != nil {
		p.Phone = *input.Phone
	}
	if err := p.Validate(); err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}

	p.Touch()
	if err := s.participantRepo.Update(ctx, p); err != nil {
		switch {
		case errors.Is(err, participant.ErrParticipantNotFound):
			return nil, participantNotFound(id)
		case errors.Is(err, participant.ErrEmailAlreadyExists):
			return nil, emailTaken(p.Email)
		}
		return nil, fmt.Errorf("参加者更新に失敗しました: %w", err)
	}

	s.invalidateParticipant(ctx, id)
	if profileChanged {
		// 参加登録の詳細には参加者名とメールアドレスが含まれる
		s.invalidateAttendanceViews(ctx, id, s.registeredEvents(ctx, id))
	}
	return p, nil
}

// DeleteParticipant は参加者を削除する。参加登録はストア側でカスケード削除される
func (s *ParticipantService) DeleteParticipant(ctx context.Context, id int64) error {
	if _, err := s.loadParticipant(ctx, id); err != nil {
		return err
	}
	eventIDs := s.registeredEvents(ctx, id)

	if err := s.participantRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, participant.ErrParticipantNotFound) {
			return participantNotFound(id)
		}
		return fmt.Errorf("参加者削除に失敗しました: %w", err)
	}

	s.invalidateParticipant(ctx, id)
	s.invalidateAttendanceViews(ctx, id, eventIDs)
	return nil
}

func (s *ParticipantService) loadParticipant(ctx context.Context, id int64) (*participant.Participant, error) {
	p, err := s.participantRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, participant.ErrParticipantNotFound) {
			return nil, participantNotFound(id)
		}
		return nil, fmt.Errorf("参加者取得に失敗しました: %w", err)
	}
	return p, nil
}

func (s *ParticipantService) findByEmail(ctx context.Context, email string) (*participant.Participant, error) {
	p, err := s.participantRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, participant.ErrParticipantNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("参加者取得に失敗しました: %w", err)
	}
	return p, nil
}

func (s *ParticipantService) invalidateParticipant(ctx context.Context, id int64) {
	s.cache.Delete(ctx, participantKey(id))
	s.cache.DeleteByPrefix(ctx, participantListPrefix)
}

// registeredEvents は参加者が登録しているイベントIDを返す。取得失敗時は nil
func (s *ParticipantService) registeredEvents(ctx context.Context, id int64) []int64 {
	details, err := s.attendanceRepo.ListDetailsByParticipant(ctx, id)
	if err != nil {
		logger.FromContext(ctx).Warn("参加登録一覧の取得に失敗したためイベント側キャッシュを無効化できません",
			zap.Int64("participant_id", id), zap.Error(err))
		return nil
	}
	ids := make([]int64, len(details))
	for i, d := range details {
		ids[i] = d.EventID
	}
	return ids
}

// invalidateAttendanceViews は参加者の参加登録一覧と、eventIDs 側の一覧・統計を無効化する
func (s *ParticipantService) invalidateAttendanceViews(ctx context.Context, id int64, eventIDs []int64) {
	s.cache.Delete(ctx, participantAttendancesKey(id))
	for _, eid := range eventIDs {
		s.cache.Delete(ctx, eventAttendancesKey(eid))
		s.cache.Delete(ctx, eventStatsKey(eid))
	}
}

func participantNotFound(id int64) error {
	return apperr.NotFound("Participant %d not found", id)
}

func emailTaken(email string) error {
	return apperr.AlreadyExists("Email %s is already registered", email)
}
