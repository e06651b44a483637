package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"masterboxer.com/confessly/cache"
	"masterboxer.com/confessly/gateway"
	"masterboxer.com/confessly/models"
	"masterboxer.com/confessly/services"
)

const DeviceHeader = "X-Device-ID"

func DeviceID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(DeviceHeader))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response error: %v", err)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrDeviceRequired), errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, gateway.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps service errors to status codes. Failed mutations carry a
// user-facing message which is returned as JSON; everything else goes
// through http.Error.
func writeError(w http.ResponseWriter, op string, err error, n cache.Notification) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s error: %v", op, err)
	}

	if n.Level == cache.LevelError && n.Message != "" {
		writeJSON(w, status, map[string]string{"message": n.Message})
		return
	}

	switch {
	case errors.Is(err, services.ErrDeviceRequired):
		http.Error(w, DeviceHeader+" header is required", status)
	case errors.Is(err, models.ErrValidation):
		http.Error(w, err.Error(), status)
	case status == http.StatusForbidden:
		http.Error(w, "Unauthorized", status)
	case status == http.StatusNotFound:
		http.Error(w, "Not found", status)
	default:
		http.Error(w, "Internal server error", status)
	}
}
