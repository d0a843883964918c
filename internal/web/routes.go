package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-check/internal/database"
	"github.com/kozaktomas/face-check/internal/match"
	"github.com/kozaktomas/face-check/internal/web/handlers"
)

func (s *Server) setupRoutes(repo database.PersonWriter, det handlers.FaceDetector, style match.Style) {
	personsHandler := handlers.NewPersonsHandler(repo, det)
	presenceHandler := handlers.NewPresenceHandler(repo, det, s.config.Matching.Threshold, style)

	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Person registry
		r.Post("/persons", personsHandler.Register)
		r.Get("/persons", personsHandler.List)
		r.Get("/persons/{uid}", personsHandler.Get)
		r.Delete("/persons/{uid}", personsHandler.Delete)

		// Presence checks
		r.Post("/presence/check", presenceHandler.Check)
		r.Post("/presence/annotate", presenceHandler.Annotate)
		r.Post("/presence/identify", presenceHandler.Identify)
	})
}
