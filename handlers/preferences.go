package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"masterboxer.com/confessly/cache"
	"masterboxer.com/confessly/services"
)

func GetPreferences(svc *services.ConfessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := svc.DevicePreferences(r.Context(), DeviceID(r))
		if err != nil {
			writeError(w, "GetPreferences", err, cache.Notification{})
			return
		}

		writeJSON(w, http.StatusOK, snap)
	}
}

func GetSavedConfessions(svc *services.ConfessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		saved, err := svc.SavedConfessions(r.Context(), DeviceID(r))
		if err != nil {
			writeError(w, "GetSavedConfessions", err, cache.Notification{})
			return
		}

		writeJSON(w, http.StatusOK, saved)
	}
}

func SaveConfession(svc *services.ConfessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		if err := svc.Save(r.Context(), DeviceID(r), id); err != nil {
			writeError(w, "SaveConfession", err, cache.Notification{})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"saved": true, "id": id})
	}
}

func UnsaveConfession(svc *services.ConfessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		if err := svc.Unsave(r.Context(), DeviceID(r), id); err != nil {
			writeError(w, "UnsaveConfession", err, cache.Notification{})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"saved": false, "id": id})
	}
}
