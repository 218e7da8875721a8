package event

import "errors"

// Event ドメインのエラー定義
var (
	ErrEventNotFound   = errors.New("event not found")
	ErrInvalidName     = errors.New("event name must be between 3 and 200 characters")
	ErrInvalidLocation = errors.New("event location must be between 3 and 300 characters")
	ErrInvalidCapacity = errors.New("event capacity must be greater than 0")
	ErrDateNotInFuture = errors.New("event date must be in the future")
)
