package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lexiquest/review-api/internal/api"
	apiMiddleware "github.com/lexiquest/review-api/internal/api/middleware"
)

// setupRouter builds the HTTP routes on top of the application services.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	sessionHandler := api.NewSessionHandler(app.sessions, app.logger)
	itemHandler := api.NewItemHandler(app.sessions, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Post("/sessions", sessionHandler.StartSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", sessionHandler.GetSession)
			r.Delete("/", sessionHandler.ExitSession)
			r.Post("/reveal", sessionHandler.RevealSession)
			r.Post("/grade", sessionHandler.GradeItem)
			r.Get("/summary", sessionHandler.GetSummary)
		})

		r.Get("/items/due", itemHandler.GetDueItems)
		r.Post("/items/{id}/postpone", itemHandler.PostponeItem)
	})

	var pinger api.Pinger
	if app.stores != nil && app.stores.db != nil {
		pinger = app.stores.db
	}
	r.Method(http.MethodGet, "/health", api.NewHealthHandler(pinger, app.logger))

	return r
}
