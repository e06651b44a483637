package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"masterboxer.com/confessly/cache"
	"masterboxer.com/confessly/gateway"
	"masterboxer.com/confessly/models"
	"masterboxer.com/confessly/services"
)

func TestWriteErrorStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
		body string
	}{
		{"device", services.ErrDeviceRequired, http.StatusBadRequest, "X-Device-ID header is required"},
		{"validation", fmt.Errorf("%w: text is required", models.ErrValidation), http.StatusBadRequest, "text is required"},
		{"forbidden", services.ErrForbidden, http.StatusForbidden, "Unauthorized"},
		{"missing", fmt.Errorf("get: %w", gateway.ErrNotFound), http.StatusNotFound, "Not found"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, "Test", tc.err, cache.Notification{})
			assert.Equal(t, tc.want, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.body)
		})
	}
}

func TestWriteErrorUsesNotificationMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	n := cache.Notification{Level: cache.LevelError, Mutation: "create-comment", Message: "Failed to add comment"}

	writeError(rec, "CreateComment", errors.New("connection refused"), n)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Failed to add comment"}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestDeviceID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(DeviceHeader, "  abc  ")
	assert.Equal(t, "abc", DeviceID(req))
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(nil)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	Health(fakePinger{err: errors.New("down")})(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
