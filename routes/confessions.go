package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"masterboxer.com/confessly/auth"
	"masterboxer.com/confessly/handlers"
	"masterboxer.com/confessly/ratelimit"
	"masterboxer.com/confessly/services"
)

func CreateConfessionRoutes(svc *services.ConfessionService, authn *auth.Authenticator, limiter *ratelimit.Limiter, router *mux.Router) *mux.Router {
	limited := func(h http.HandlerFunc) http.Handler {
		return limiter.LimitHTTP(handlers.DeviceID, h)
	}

	router.HandleFunc("/confessions", handlers.GetConfessions(svc)).Methods("GET")
	router.Handle("/confessions", limited(handlers.CreateConfession(svc))).Methods("POST")
	router.HandleFunc("/confessions/{id}", handlers.GetConfession(svc)).Methods("GET")
	router.Handle("/confessions/{id}", limited(handlers.DeleteConfession(svc))).Methods("DELETE")
	router.Handle("/confessions/{id}/like", limited(handlers.ToggleLike(svc))).Methods("POST")
	router.Handle("/confessions/{id}/report", limited(handlers.ReportConfession(svc))).Methods("POST")
	router.HandleFunc("/confessions/{id}/comments", handlers.GetConfessionComments(svc)).Methods("GET")
	router.Handle("/confessions/{id}/comments", limited(handlers.CreateComment(svc))).Methods("POST")
	router.Handle("/comments/{commentId}", limited(handlers.DeleteComment(svc, authn))).Methods("DELETE")
	router.HandleFunc("/trending", handlers.GetTrending(svc)).Methods("GET")
	router.HandleFunc("/moods", handlers.GetMoods()).Methods("GET")
	router.HandleFunc("/tags", handlers.GetTags()).Methods("GET")

	return router
}

func CreatePreferenceRoutes(svc *services.ConfessionService, router *mux.Router) *mux.Router {
	router.HandleFunc("/me/preferences", handlers.GetPreferences(svc)).Methods("GET")
	router.HandleFunc("/me/saved", handlers.GetSavedConfessions(svc)).Methods("GET")
	router.HandleFunc("/me/saved/{id}", handlers.SaveConfession(svc)).Methods("PUT")
	router.HandleFunc("/me/saved/{id}", handlers.UnsaveConfession(svc)).Methods("DELETE")

	return router
}
