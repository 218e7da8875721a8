package participant

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	NameMinLength = 3
	NameMaxLength = 200
)

var (
	phonePattern   = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	phoneSeparator = strings.NewReplacer(" ", "", "-", "")
	validate       = validator.New()
)

// Participant は参加者エンティティを表す
type Participant struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewParticipant は新しい参加者を作成する
func NewParticipant(name, email, phone string) *Participant {
	now := time.Now()
	return &Participant{
		Name:      name,
		Email:     email,
		Phone:     phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate は参加者の検証を行う
func (p *Participant) Validate() error {
	n := utf8.RuneCountInString(strings.TrimSpace(p.Name))
	if n < NameMinLength || n > NameMaxLength {
		return ErrInvalidName
	}
	if !ValidEmail(p.Email) {
		return ErrInvalidEmail
	}
	if p.Phone != "" && !ValidPhone(p.Phone) {
		return ErrInvalidPhone
	}
	return nil
}

// Touch は更新日時を現在時刻にする
func (p *Participant) Touch() {
	p.UpdatedAt = time.Now()
}

// ValidEmail はメールアドレスの形式を検証する
func ValidEmail(email string) bool {
	return email != "" && validate.Var(email, "email") == nil
}

// ValidPhone は空白とハイフンを除いて10〜15桁（先頭 + 可）かを検証する
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phoneSeparator.Replace(phone))
}
