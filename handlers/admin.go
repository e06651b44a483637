package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"masterboxer.com/confessly/auth"
	"masterboxer.com/confessly/services"
)

func AdminLogin(authn *auth.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		token, expires, err := authn.Login(req.Password)
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			http.Error(w, "Incorrect password", http.StatusUnauthorized)
			return
		case errors.Is(err, auth.ErrDisabled):
			http.Error(w, "Admin access is not configured", http.StatusServiceUnavailable)
			return
		case err != nil:
			http.Error(w, "Failed to sign in", http.StatusInternalServerError)
			log.Printf("AdminLogin error: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"token":      token,
			"expires_at": expires,
		})
	}
}

func GetModerationQueue(svc *services.ConfessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.AdminOverview(r.Context())
		if err != nil {
			http.Error(w, "Failed to load confessions", http.StatusInternalServerError)
			log.Printf("GetModerationQueue error: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, view)
	}
}

func AdminDeleteConfession(svc *services.ConfessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		n, err := svc.AdminDeleteConfession(r.Context(), id)
		if err != nil {
			writeError(w, "AdminDeleteConfession", err, n)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": n.Message})
	}
}
