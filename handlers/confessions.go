package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"masterboxer.com/confessly/models"
	"masterboxer.com/confessly/services"
	"masterboxer.com/confessly/stats"
)

func GetConfessions(svc *services.ConfessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		list, err := svc.ListConfessions(r.Context(), models.ConfessionQuery{
			SortBy: models.ParseSortOption(q.Get("sort")),
			Mood:   q.Get("mood"),
			Tag:    q.Get("tag"),
			Search: q.Get("q"),
		})
		if err != nil {
			http.Error(w, "Failed to fetch confessions", http.StatusInternalServerError)
			log.Printf("GetConfessions error: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, list)
	}
}

func GetConfession(svc *services.ConfessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		c, err := svc.GetConfession(r.Context(), id)
		if err != nil {
			if services.IsNotFound(err) {
				http.Error(w, "Confession not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Failed to fetch confession", http.StatusInternalServerError)
			log.Printf("GetConfession error: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, c)
	}
}

func CreateConfession(svc *services.ConfessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in models.NewConfession
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		c, n, err := svc.CreateConfession(r.Context(), DeviceID(r), in)
		if err != nil {
			writeError(w, "CreateConfession", err, n)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"message":    n.Message,
			"confession": c,
		})
	}
}

func DeleteConfession(svc *services.ConfessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		n, err := svc.DeleteConfession(r.Context(), DeviceID(r), id)
		if err != nil {
			writeError(w, "DeleteConfession", err, n)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": n.Message})
	}
}

func ToggleLike(svc *services.ConfessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		res, n, err := svc.ToggleLike(r.Context(), DeviceID(r), id)
		if err != nil {
			writeError(w, "ToggleLike", err, n)
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}

func ReportConfession(svc *services.ConfessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		c, n, err := svc.Report(r.Context(), DeviceID(r), id)
		if err != nil {
			writeError(w, "ReportConfession", err, n)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"message":      n.Message,
			"report_count": c.ReportCount,
		})
	}
}

// GetTrending serves the trending list with mood statistics; day
// boundaries follow the tz query parameter.
func GetTrending(svc *services.ConfessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loc := stats.ResolveLocation(r.URL.Query().Get("tz"))

		view, err := svc.Trending(r.Context(), loc)
		if err != nil {
			http.Error(w, "Failed to load trending", http.StatusInternalServerError)
			log.Printf("GetTrending error: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, view)
	}
}
