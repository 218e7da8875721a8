package event

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	NameMinLength     = 3
	NameMaxLength     = 200
	LocationMinLength = 3
	LocationMaxLength = 300
)

// Event はイベントエンティティを表す
type Event struct {
	ID          int64
	Name        string
	Description string
	Location    string
	Date        time.Time
	Capacity    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewEvent は新しいイベントを作成する
func NewEvent(name, description, location string, date time.Time, capacity int) *Event {
	now := time.Now()
	return &Event{
		Name:        name,
		Description: description,
		Location:    location,
		Date:        date,
		Capacity:    capacity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate は日時以外の項目を検証する
func (e *Event) Validate() error {
	if !lengthBetween(e.Name, NameMinLength, NameMaxLength) {
		return ErrInvalidName
	}
	if !lengthBetween(e.Location, LocationMinLength, LocationMaxLength) {
		return ErrInvalidLocation
	}
	if e.Capacity <= 0 {
		return ErrInvalidCapacity
	}
	return nil
}

// ValidateDate は開催日時が now より後であることを検証する
func (e *Event) ValidateDate(now time.Time) error {
	if !e.Date.After(now) {
		return ErrDateNotInFuture
	}
	return nil
}

// AvailableCapacity は登録済み人数を差し引いた残り枠を返す
func (e *Event) AvailableCapacity(registered int) int {
	return e.Capacity - registered
}

// Touch は更新日時を現在時刻にする
func (e *Event) Touch() {
	e.UpdatedAt = time.Now()
}

// Statistics はイベントの集計値
type Statistics struct {
	EventID                int64   `json:"event_id"`
	EventName              string  `json:"event_name"`
	TotalCapacity          int     `json:"total_capacity"`
	RegisteredParticipants int     `json:"registered_participants"`
	AvailableCapacity      int     `json:"available_capacity"`
	OccupationPercentage   float64 `json:"occupation_percentage"`
}

// NewStatistics は登録人数から集計値を計算する
func NewStatistics(e *Event, registered int) *Statistics {
	return &Statistics{
		EventID:                e.ID,
		EventName:              e.Name,
		TotalCapacity:          e.Capacity,
		RegisteredParticipants: registered,
		AvailableCapacity:      e.AvailableCapacity(registered),
		OccupationPercentage:   OccupationPercentage(registered, e.Capacity),
	}
}

// OccupationPercentage は占有率（%）を小数点以下2桁に丸めて返す
// capacity が0以下なら0
func OccupationPercentage(registered, capacity int) float64 {
	if capacity <= 0 {
		return 0
	}
	p := float64(registered) / float64(capacity) * 100
	return math.Round(p*100) / 100
}

func lengthBetween(s string, min, max int) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	return n >= min && n <= max
}
