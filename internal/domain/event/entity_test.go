package event

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	// Arrange
	date := time.Now().Add(24 * time.Hour)

	// Act
	e := NewEvent("Go Conference", "年次カンファレンス", "Tokyo Big Sight", date, 100)

	// Assert
	assert.Equal(t, "Go Conference", e.Name)
	assert.Equal(t, "年次カンファレンス", e.Description)
	assert.Equal(t, "Tokyo Big Sight", e.Location)
	assert.Equal(t, date, e.Date)
	assert.Equal(t, 100, e.Capacity)
	assert.Zero(t, e.ID)
	assert.NotZero(t, e.CreatedAt)
	assert.Equal(t, e.CreatedAt, e.UpdatedAt)
}

func TestEvent_Validate(t *testing.T) {
	valid := func() *Event {
		return &Event{Name: "Go Conference", Location: "Tokyo", Capacity: 10}
	}

	tests := []struct {
		name        string
		mutate      func(e *Event)
		expectedErr error
	}{
		{name: "有効なイベント", mutate: func(e *Event) {}},
		{name: "名前が短い", mutate: func(e *Event) { e.Name = "Go" }, expectedErr: ErrInvalidName},
		{name: "名前が空白のみ", mutate: func(e *Event) { e.Name = "     " }, expectedErr: ErrInvalidName},
		{name: "名前が長すぎる", mutate: func(e *Event) { e.Name = strings.Repeat("a", 201) }, expectedErr: ErrInvalidName},
		{name: "名前がちょうど200文字", mutate: func(e *Event) { e.Name = strings.Repeat("あ", 200) }},
		{name: "会場が短い", mutate: func(e *Event) { e.Location = "ab" }, expectedErr: ErrInvalidLocation},
		{name: "会場が長すぎる", mutate: func(e *Event) { e.Location = strings.Repeat("a", 301) }, expectedErr: ErrInvalidLocation},
		{name: "定員が0", mutate: func(e *Event) { e.Capacity = 0 }, expectedErr: ErrInvalidCapacity},
		{name: "定員が負", mutate: func(e *Event) { e.Capacity = -1 }, expectedErr: ErrInvalidCapacity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid()
			tt.mutate(e)
			err := e.Validate()
			if tt.expectedErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestEvent_ValidateDate(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.NoError(t, (&Event{Date: now.Add(time.Second)}).ValidateDate(now))
	assert.ErrorIs(t, (&Event{Date: now}).ValidateDate(now), ErrDateNotInFuture)
	assert.ErrorIs(t, (&Event{Date: now.Add(-time.Hour)}).ValidateDate(now), ErrDateNotInFuture)
}

func TestOccupationPercentage(t *testing.T) {
	tests := []struct {
		name       string
		registered int
		capacity   int
		want       float64
	}{
		{name: "空", registered: 0, capacity: 10, want: 0},
		{name: "半分", registered: 5, capacity: 10, want: 50},
		{name: "満員", registered: 10, capacity: 10, want: 100},
		{name: "小数点以下2桁に丸める", registered: 1, capacity: 3, want: 33.33},
		{name: "切り上げ", registered: 2, capacity: 3, want: 66.67},
		{name: "定員0", registered: 0, capacity: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OccupationPercentage(tt.registered, tt.capacity))
		})
	}
}

func TestNewStatistics(t *testing.T) {
	e := &Event{ID: 7, Name: "Go Conference", Capacity: 4}

	stats := NewStatistics(e, 3)

	assert.Equal(t, int64(7), stats.EventID)
	assert.Equal(t, "Go Conference", stats.EventName)
	assert.Equal(t, 4, stats.TotalCapacity)
	assert.Equal(t, 3, stats.RegisteredParticipants)
	assert.Equal(t, 1, stats.AvailableCapacity)
	assert.Equal(t, 75.0, stats.OccupationPercentage)
	assert.Equal(t, stats.TotalCapacity, stats.AvailableCapacity+stats.RegisteredParticipants)
}
