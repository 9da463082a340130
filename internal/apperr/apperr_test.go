package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindMatching(t *testing.T) {
	base := New(KindNotFound, "lessons.get", errors.New("record not found"))
	wrapped := fmt.Errorf("toggle: %w", base)

	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrTransientIO))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindNotFound))
	assert.False(t, Is(nil, KindNotFound))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(New(KindTransientIO, "op", errors.New("conn reset"))))
	assert.False(t, Retryable(New(KindWriteConflict, "op", nil)))
	assert.False(t, Retryable(errors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindNotFound, http.StatusNotFound},
		{KindUnauthenticated, http.StatusUnauthorized},
		{KindForbidden, http.StatusForbidden},
		{KindInvalid, http.StatusBadRequest},
		{KindConflict, http.StatusConflict},
		{KindBusy, http.StatusConflict},
		{KindWriteConflict, http.StatusConflict},
		{KindTransientIO, http.StatusServiceUnavailable},
		{KindUnknown, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.kind.String(), func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatus(New(tc.kind, "op", nil)))
		})
	}
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "lessons.get: not_found: boom", New(KindNotFound, "lessons.get", errors.New("boom")).Error())
	assert.Equal(t, "not_found", ErrNotFound.Error())
	assert.Equal(t, "op: invalid", New(KindInvalid, "op", nil).Error())
}
