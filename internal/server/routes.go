package server

import (
	"github.com/h9zdev/wiretapper/internal/metrics"
	"github.com/h9zdev/wiretapper/internal/server/handlers"
)

// registerRoutes registers all HTTP routes
func (s *Server) registerRoutes() {
	// Data endpoints
	s.router.Get("/nearby", s.api.Nearby)
	s.router.Get("/searchzz", s.api.Search)
	s.router.Get("/api/geo/towers", s.api.Towers)
	s.router.Get("/api/geo/celltower", s.api.CellTowerClick)
	s.router.Get("/api/status", s.api.Status)

	// Embedded map UI
	s.router.Get("/map-w", handlers.MapPage)

	// Operational endpoints
	s.router.Get("/health", s.health.HealthHandler)
	s.router.Get("/health/live", s.health.LivenessHandler)
	s.router.Get("/health/ready", s.health.ReadinessHandler)
	s.router.Get("/version", handlers.VersionHandler)
	s.router.Get("/metrics", metrics.Handler().ServeHTTP)
}
