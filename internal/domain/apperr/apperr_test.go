package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_Status(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want int
	}{
		{name: "NotFound", err: NotFound("Event %d not found", 1), want: http.StatusNotFound},
		{name: "AlreadyExists", err: AlreadyExists("dup"), want: http.StatusConflict},
		{name: "CapacityExceeded", err: CapacityExceeded("full"), want: http.StatusBadRequest},
		{name: "DuplicateRegistration", err: DuplicateRegistration("again"), want: http.StatusConflict},
		{name: "Validation", err: Validation("bad"), want: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Status())
			assert.Equal(t, tt.want, tt.err.Kind.Status())
		})
	}
}

func TestKind_UnknownIsInternal(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, Kind(0).Status())
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestError_Message(t *testing.T) {
	err := NotFound("Event %d not found", 42)

	assert.Equal(t, "Event 42 not found", err.Error())
	assert.Equal(t, KindNotFound, err.Kind)
	assert.Equal(t, "not_found", err.Kind.String())
}

func TestKindOf_WrappedError(t *testing.T) {
	wrapped := fmt.Errorf("登録に失敗: %w", CapacityExceeded("full"))

	kind, ok := KindOf(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindCapacityExceeded, kind)
	assert.True(t, Is(wrapped, KindCapacityExceeded))
	assert.False(t, Is(wrapped, KindNotFound))
}

func TestKindOf_PlainError(t *testing.T) {
	_, ok := KindOf(errors.New("connection refused"))
	assert.False(t, ok)

	_, ok = As(nil)
	assert.False(t, ok)
}
