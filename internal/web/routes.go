package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/headshot/internal/output"
	"github.com/kozaktomas/headshot/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	encoder := output.NewWriter(s.config.Output.PhotosDir, s.config.Output.JPEGQuality)
	cropHandler := handlers.NewCropHandler(s.fetcher, s.locator, encoder, handlers.CropOptions{
		MaxDimension:        s.config.Output.MaxDimension,
		AllowPrivateTargets: s.config.Web.AllowPrivateTargets,
	})

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handlers.HealthCheck)
		r.Get("/crop", cropHandler.Crop)
	})
}
