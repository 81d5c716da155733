package api

import (
	"donation-matching-service/internal/api/handlers"
	"donation-matching-service/internal/services"
	"net/http"

	"github.com/alexedwards/flow"
	"github.com/sirupsen/logrus"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
func NewRouter(snapshots *services.SnapshotStore, matcher *services.Matcher, logger logrus.FieldLogger) http.Handler {
	mux := flow.New()
	mux.NotFound = handlers.NotFound(logger)
	mux.MethodNotAllowed = handlers.MethodNotAllowed(logger)

	health := &handlers.HealthHandler{Snapshots: snapshots, Logger: logger}
	orgs := &handlers.OrganizationHandler{Snapshots: snapshots, Logger: logger}
	suggestions := &handlers.SuggestionHandler{Matcher: matcher, Logger: logger}

	// requestID runs first so the request log line carries the id.
	mux.Use(requestIDMiddleware)
	mux.Use(loggingMiddleware(logger))

	mux.HandleFunc("/health", health.Health, http.MethodGet)
	mux.HandleFunc("/organizations", orgs.List, http.MethodGet)
	mux.HandleFunc("/organizations/:id", orgs.Get, http.MethodGet)
	mux.HandleFunc("/suggestions", suggestions.Suggest, http.MethodPost)
	mux.HandleFunc("/admin/reload", orgs.Reload, http.MethodPost)

	return mux
}
