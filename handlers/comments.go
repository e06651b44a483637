package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"masterboxer.com/confessly/auth"
	"masterboxer.com/confessly/models"
	"masterboxer.com/confessly/services"
)

func GetConfessionComments(svc *services.ConfessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		comments, err := svc.ListComments(r.Context(), id)
		if err != nil {
			http.Error(w, "Failed to fetch comments", http.StatusInternalServerError)
			log.Printf("GetConfessionComments error: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, comments)
	}
}

func CreateComment(svc *services.ConfessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		c, n, err := svc.CreateComment(r.Context(), DeviceID(r), models.NewComment{
			ConfessionID: mux.Vars(r)["id"],
			Text:         req.Text,
		})
		if err != nil {
			writeError(w, "CreateComment", err, n)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"message": n.Message,
			"comment": c,
		})
	}
}

// DeleteComment lets the writing device or an admin remove a comment.
func DeleteComment(svc *services.ConfessionService, authn *auth.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		commentID := mux.Vars(r)["commentId"]

		n, err := svc.DeleteComment(r.Context(), DeviceID(r), commentID, authn.IsAdmin(r))
		if err != nil {
			writeError(w, "DeleteComment", err, n)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": n.Message})
	}
}
