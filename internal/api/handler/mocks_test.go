package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-event-attendance/internal/application"
	"github.com/sanosuguru/go-event-attendance/internal/domain/attendance"
	"github.com/sanosuguru/go-event-attendance/internal/domain/event"
	"github.com/sanosuguru/go-event-attendance/internal/domain/participant"
)

// MockEventService はEventServiceInterfaceのモック
type MockEventService struct {
	mock.Mock
}

func (m *MockEventService) CreateEvent(ctx context.Context, input application.CreateEventInput) (*event.Event, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventService) GetEvent(ctx context.Context, id int64) (*event.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventService) ListEvents(ctx context.Context, skip, limit int) ([]*event.Event, error) {
	args := m.Called(ctx, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Event), args.Error(1)
}

func (m *MockEventService) UpdateEvent(ctx context.Context, id int64, input application.UpdateEventInput) (*event.Event, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventService) DeleteEvent(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEventService) GetAvailableCapacity(ctx context.Context, id int64) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *MockEventService) GetEventStatistics(ctx context.Context, id int64) (*event.Statistics, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Statistics), args.Error(1)
}

// MockParticipantService はParticipantServiceInterfaceのモック
type MockParticipantService struct {
	mock.Mock
}

func (m *MockParticipantService) CreateParticipant(ctx context.Context, input application.CreateParticipantInput) (*participant.Participant, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*participant.Participant), args.Error(1)
}

func (m *MockParticipantService) GetParticipant(ctx context.Context, id int64) (*participant.Participant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*participant.Participant), args.Error(1)
}

func (m *MockParticipantService) GetParticipantByEmail(ctx context.Context, email string) (*participant.Participant, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*participant.Participant), args.Error(1)
}

func (m *MockParticipantService) ListParticipants(ctx context.Context, skip, limit int) ([]*participant.Participant, error) {
	args := m.Called(ctx, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*participant.Participant), args.Error(1)
}

func (m *MockParticipantService) UpdateParticipant(ctx context.Context, id int64, input application.UpdateParticipantInput) (*participant.Participant, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*participant.Participant), args.Error(1)
}

func (m *MockParticipantService) DeleteParticipant(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAttendanceService はAttendanceServiceInterfaceのモック
type MockAttendanceService struct {
	mock.Mock
}

func (m *MockAttendanceService) RegisterAttendance(ctx context.Context, eventID, participantID int64) (*attendance.Attendance, error) {
	args := m.Called(ctx, eventID, participantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*attendance.Attendance), args.Error(1)
}

func (m *MockAttendanceService) CancelAttendance(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAttendanceService) GetAttendance(ctx context.Context, id int64) (*attendance.Attendance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*attendance.Attendance), args.Error(1)
}

func (m *MockAttendanceService) GetEventAttendances(ctx context.Context, eventID int64) ([]*attendance.Detail, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*attendance.Detail), args.Error(1)
}

func (m *MockAttendanceService) GetParticipantAttendances(ctx context.Context, participantID int64) ([]*attendance.Detail, error) {
	args := m.Called(ctx, participantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*attendance.Detail), args.Error(1)
}

// testServer はモックサービスをルーティングしたEcho
type testServer struct {
	echo         *echo.Echo
	events       *MockEventService
	participants *MockParticipantService
	attendances  *MockAttendanceService
}

func newTestServer() *testServer {
	s := &testServer{
		echo:         NewTestEcho(),
		events:       new(MockEventService),
		participants: new(MockParticipantService),
		attendances:  new(MockAttendanceService),
	}
	RegisterRoutes(s.echo, Handlers{
		Event:       NewEventHandler(s.events),
		Participant: NewParticipantHandler(s.participants),
		Attendance:  NewAttendanceHandler(s.attendances),
		Health:      NewHealthHandler(nil, nil, "test"),
	})
	return s
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}
