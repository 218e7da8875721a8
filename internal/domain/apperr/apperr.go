// Package apperr は業務エラーの分類を定義する。
// 想定内の業務エラーは Kind と利用者向けメッセージだけを持ち、
// API層で Kind.Status() によってHTTPステータスに変換される。
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind は業務エラーの種別
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindAlreadyExists
	KindCapacityExceeded
	KindDuplicateRegistration
	KindValidation
)

// Status は種別に対応するHTTPステータスを返す
func (k Kind) Status() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindAlreadyExists:
		return http.StatusConflict
	case KindCapacityExceeded:
		return http.StatusBadRequest
	case KindDuplicateRegistration:
		return http.StatusConflict
	case KindValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindAlreadyExists:
		return "already_exists"
	case KindCapacityExceeded:
		return "capacity_exceeded"
	case KindDuplicateRegistration:
		return "duplicate_registration"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Error は業務エラー
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Status はHTTPステータスを返す
func (e *Error) Status() int {
	return e.Kind.Status()
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

func AlreadyExists(format string, args ...any) *Error {
	return newError(KindAlreadyExists, format, args...)
}

func CapacityExceeded(format string, args ...any) *Error {
	return newError(KindCapacityExceeded, format, args...)
}

func DuplicateRegistration(format string, args ...any) *Error {
	return newError(KindDuplicateRegistration, format, args...)
}

func Validation(format string, args ...any) *Error {
	return newError(KindValidation, format, args...)
}

// As はエラーチェーンから業務エラーを取り出す
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf はエラーの種別を返す。業務エラーでなければ false
func KindOf(err error) (Kind, bool) {
	if appErr, ok := As(err); ok {
		return appErr.Kind, true
	}
	return 0, false
}

// Is はエラーが指定種別の業務エラーかを返す
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
