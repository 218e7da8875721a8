package application

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/sanosuguru/go-event-attendance/internal/domain/attendance"
	"github.com/sanosuguru/go-event-attendance/internal/domain/event"
	"github.com/sanosuguru/go-event-attendance/internal/domain/participant"
	"github.com/sanosuguru/go-event-attendance/internal/domain/transaction"
	redisinfra "github.com/sanosuguru/go-event-attendance/internal/infrastructure/redis"
)

// memStore はテスト用のインメモリストア
// 一意制約（メール、イベント×参加者）とカスケード削除を再現する
type memStore struct {
	mu           sync.Mutex
	nextID       int64
	events       map[int64]event.Event
	participants map[int64]participant.Participant
	attendances  map[int64]attendance.Attendance

	lockMu     sync.Mutex
	eventLocks map[int64]*sync.Mutex
}

func newMemStore() *memStore {
	return &memStore{
		events:       make(map[int64]event.Event),
		participants: make(map[int64]participant.Participant),
		attendances:  make(map[int64]attendance.Attendance),
		eventLocks:   make(map[int64]*sync.Mutex),
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) eventLock(id int64) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	l, ok := s.eventLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.eventLocks[id] = l
	}
	return l
}

// memTx は FOR UPDATE で取った行ロックを終了時に解放する
type memTx struct {
	once    sync.Once
	unlocks []func()
}

func (t *memTx) finish() {
	t.once.Do(func() {
		for _, u := range t.unlocks {
			u()
		}
	})
}

func (t *memTx) Commit() error   { t.finish(); return nil }
func (t *memTx) Rollback() error { t.finish(); return nil }

type memTxManager struct{}

func (memTxManager) Begin(context.Context) (transaction.Tx, error) { return &memTx{}, nil }

// --- event.Repository ---

type memEventRepo struct{ s *memStore }

func (r memEventRepo) Create(_ context.Context, e *event.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e.ID = r.s.id()
	r.s.events[e.ID] = *e
	return nil
}

func (r memEventRepo) GetByID(_ context.Context, id int64) (*event.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, event.ErrEventNotFound
	}
	return &e, nil
}

func (r memEventRepo) GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id int64) (*event.Event, error) {
	e, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	l := r.s.eventLock(id)
	l.Lock()
	if mt, ok := tx.(*memTx); ok {
		mt.unlocks = append(mt.unlocks, l.Unlock)
	} else {
		l.Unlock()
	}
	// ロック取得後の最新値を返す
	return r.GetByID(ctx, e.ID)
}

func (r memEventRepo) List(_ context.Context, offset, limit int) ([]*event.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := make([]int64, 0, len(r.s.events))
	for id := range r.s.events {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*event.Event, 0)
	for i := offset; i < len(ids) && len(out) < limit; i++ {
		e := r.s.events[ids[i]]
		out = append(out, &e)
	}
	return out, nil
}

func (r memEventRepo) Update(_ context.Context, e *event.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[e.ID]; !ok {
		return event.ErrEventNotFound
	}
	r.s.events[e.ID] = *e
	return nil
}

func (r memEventRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[id]; !ok {
		return event.ErrEventNotFound
	}
	delete(r.s.events, id)
	for aid, a := range r.s.attendances {
		if a.EventID == id {
			delete(r.s.attendances, aid)
		}
	}
	return nil
}

func (r memEventRepo) Count(context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.events), nil
}

// --- participant.Repository ---

// hookedEventRepo は削除の直前に beforeDelete を呼ぶ
type hookedEventRepo struct {
	memEventRepo
	beforeDelete func()
}

func (r hookedEventRepo) Delete(ctx context.Context, id int64) error {
	r.beforeDelete()
	return r.memEventRepo.Delete(ctx, id)
}

type memParticipantRepo struct{ s *memStore }

// hookedParticipantRepo は削除の直前に beforeDelete を呼ぶ
type hookedParticipantRepo struct {
	memParticipantRepo
	beforeDelete func()
}

func (r hookedParticipantRepo) Delete(ctx context.Context, id int64) error {
	r.beforeDelete()
	return r.memParticipantRepo.Delete(ctx, id)
}

func (r memParticipantRepo) emailTaken(email string, except int64) bool {
	for id, p := range r.s.participants {
		if id != except && p.Email == email {
			return true
		}
	}
	return false
}

func (r memParticipantRepo) Create(_ context.Context, p *participant.Participant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.emailTaken(p.Email, 0) {
		return participant.ErrEmailAlreadyExists
	}
	p.ID = r.s.id()
	r.s.participants[p.ID] = *p
	return nil
}

func (r memParticipantRepo) GetByID(_ context.Context, _ transaction.Tx, id int64) (*participant.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.participants[id]
	if !ok {
		return nil, participant.ErrParticipantNotFound
	}
	return &p, nil
}

func (r memParticipantRepo) GetByEmail(_ context.Context, email string) (*participant.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.participants {
		if p.Email == email {
			return &p, nil
		}
	}
	return nil, participant.ErrParticipantNotFound
}

func (r memParticipantRepo) List(_ context.Context, offset, limit int) ([]*participant.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := make([]int64, 0, len(r.s.participants))
	for id := range r.s.participants {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*participant.Participant, 0)
	for i := offset; i < len(ids) && len(out) < limit; i++ {
		p := r.s.participants[ids[i]]
		out = append(out, &p)
	}
	return out, nil
}

func (r memParticipantRepo) Update(_ context.Context, p *participant.Participant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.participants[p.ID]; !ok {
		return participant.ErrParticipantNotFound
	}
	if r.emailTaken(p.Email, p.ID) {
		return participant.ErrEmailAlreadyExists
	}
	r.s.participants[p.ID] = *p
	return nil
}

func (r memParticipantRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.participants[id]; !ok {
		return participant.ErrParticipantNotFound
	}
	delete(r.s.participants, id)
	for aid, a := range r.s.attendances {
		if a.ParticipantID == id {
			delete(r.s.attendances, aid)
		}
	}
	return nil
}

func (r memParticipantRepo) Count(context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.participants), nil
}

// --- attendance.Repository ---

type memAttendanceRepo struct{ s *memStore }

func (r memAttendanceRepo) Create(_ context.Context, _ transaction.Tx, a *attendance.Attendance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[a.EventID]; !ok {
		return attendance.ErrReferenceMissing
	}
	if _, ok := r.s.participants[a.ParticipantID]; !ok {
		return attendance.ErrReferenceMissing
	}
	for _, existing := range r.s.attendances {
		if existing.EventID == a.EventID && existing.ParticipantID == a.ParticipantID {
			return attendance.ErrAlreadyRegistered
		}
	}
	a.ID = r.s.id()
	r.s.attendances[a.ID] = *a
	return nil
}

func (r memAttendanceRepo) GetByID(_ context.Context, id int64) (*attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.attendances[id]
	if !ok {
		return nil, attendance.ErrAttendanceNotFound
	}
	return &a, nil
}

func (r memAttendanceRepo) GetByEventAndParticipant(_ context.Context, _ transaction.Tx, eventID, participantID int64) (*attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.attendances {
		if a.EventID == eventID && a.ParticipantID == participantID {
			return &a, nil
		}
	}
	return nil, attendance.ErrAttendanceNotFound
}

func (r memAttendanceRepo) CountByEvent(_ context.Context, _ transaction.Tx, eventID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, a := range r.s.attendances {
		if a.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (r memAttendanceRepo) Delete(_ context.Context, _ transaction.Tx, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.attendances[id]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	delete(r.s.attendances, id)
	return nil
}

func (r memAttendanceRepo) listDetails(match func(attendance.Attendance) bool) []*attendance.Detail {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*attendance.Detail, 0)
	for _, a := range r.s.attendances {
		if !match(a) {
			continue
		}
		e := r.s.events[a.EventID]
		p := r.s.participants[a.ParticipantID]
		out = append(out, &attendance.Detail{
			ID:               a.ID,
			EventID:          a.EventID,
			EventName:        e.Name,
			ParticipantID:    a.ParticipantID,
			ParticipantName:  p.Name,
			ParticipantEmail: p.Email,
			RegisteredAt:     a.RegisteredAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r memAttendanceRepo) ListDetailsByEvent(_ context.Context, eventID int64) ([]*attendance.Detail, error) {
	return r.listDetails(func(a attendance.Attendance) bool { return a.EventID == eventID }), nil
}

func (r memAttendanceRepo) ListDetailsByParticipant(_ context.Context, participantID int64) ([]*attendance.Detail, error) {
	return r.listDetails(func(a attendance.Attendance) bool { return a.ParticipantID == participantID }), nil
}

func (r memAttendanceRepo) Count(context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.attendances), nil
}

// testEnv はインメモリストアと miniredis を使ったサービス一式
type testEnv struct {
	store        *memStore
	mr           *miniredis.Miniredis
	cache        Cache
	events       *EventService
	participants *ParticipantService
	attendances  *AttendanceService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := newMemStore()
	cache := redisinfra.NewCache(client, 300*time.Second)
	ttl := DefaultCacheTTL()
	eventRepo := memEventRepo{store}
	participantRepo := memParticipantRepo{store}
	attendanceRepo := memAttendanceRepo{store}

	return &testEnv{
		store:        store,
		mr:           mr,
		cache:        cache,
		events:       NewEventService(eventRepo, attendanceRepo, cache, ttl),
		participants: NewParticipantService(participantRepo, attendanceRepo, cache, ttl),
		attendances:  NewAttendanceService(memTxManager{}, eventRepo, participantRepo, attendanceRepo, cache, ttl, nil),
	}
}

// mustEvent は未来日時のイベントを作成する
func (env *testEnv) mustEvent(t *testing.T, name string, capacity int) *event.Event {
	t.Helper()
	e, err := env.events.CreateEvent(context.Background(), CreateEventInput{
		Name:     name,
		Location: "Tokyo",
		Date:     time.Now().Add(24 * time.Hour),
		Capacity: capacity,
	})
	if err != nil {
		t.Fatalf("イベント作成に失敗: %v", err)
	}
	return e
}

func (env *testEnv) mustParticipant(t *testing.T, name, email string) *participant.Participant {
	t.Helper()
	p, err := env.participants.CreateParticipant(context.Background(), CreateParticipantInput{
		Name:  name,
		Email: email,
	})
	if err != nil {
		t.Fatalf("参加者作成に失敗: %v", err)
	}
	return p
}

// racyAttendanceRepo は重複確認で常に「未登録」を返し、挿入時の一意制約だけに頼らせる
type racyAttendanceRepo struct {
	memAttendanceRepo
}

func (racyAttendanceRepo) GetByEventAndParticipant(context.Context, transaction.Tx, int64, int64) (*attendance.Attendance, error) {
	return nil, attendance.ErrAttendanceNotFound
}

func newParticipantFixture(t *testing.T, repo participant.Repository, email string) *participant.Participant {
	t.Helper()
	p := participant.NewParticipant("Alice", email, "")
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("参加者作成に失敗: %v", err)
	}
	return p
}

func futureDate() time.Time {
	return time.Now().Add(24 * time.Hour)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
