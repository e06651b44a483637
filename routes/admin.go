package routes

import (
	"github.com/gorilla/mux"
	"masterboxer.com/confessly/auth"
	"masterboxer.com/confessly/handlers"
	"masterboxer.com/confessly/services"
)

func CreateAdminRoutes(svc *services.ConfessionService, authn *auth.Authenticator, router *mux.Router) *mux.Router {
	router.HandleFunc("/admin/login", handlers.AdminLogin(authn)).Methods("POST")

	admin := router.PathPrefix("/admin").Subrouter()
	admin.Use(authn.RequireAdmin)
	admin.HandleFunc("/confessions", handlers.GetModerationQueue(svc)).Methods("GET")
	admin.HandleFunc("/confessions/{id}", handlers.AdminDeleteConfession(svc)).Methods("DELETE")

	return router
}
