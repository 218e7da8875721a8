package participant

import "errors"

// Participant ドメインのエラー定義
var (
	ErrParticipantNotFound = errors.New("participant not found")
	ErrEmailAlreadyExists  = errors.New("participant email already exists")
	ErrInvalidName         = errors.New("participant name must be between 3 and 200 characters")
	ErrInvalidEmail        = errors.New("participant email is not a valid address")
	ErrInvalidPhone        = errors.New("phone must contain between 10 and 15 digits")
)
