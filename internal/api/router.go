package api

import (
	"net/http"

	"homerank/internal/api/handlers"
	"homerank/internal/domain"
	"homerank/internal/ports"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Deps struct {
	Locations      ports.LocationRepository
	NewScorer      func(profile domain.Profile) handlers.Scorer
	Metrics        prometheus.Gatherer
	AllowedOrigins []string
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// Handlers stay unaware of concrete adapters.
func NewRouter(d Deps) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestIDMiddleware(), loggingMiddleware(), corsMiddleware(d.AllowedOrigins))

	locations := &handlers.LocationHandler{Repo: d.Locations}
	scores := &handlers.ScoreHandler{Repo: d.Locations, NewScorer: d.NewScorer}

	r.GET("/health", handlers.Health)
	r.GET("/destinations", locations.ListDestinations)
	r.GET("/origins", locations.ListOrigins)
	r.POST("/scores", scores.Score)

	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Metrics, promhttp.HandlerOpts{})))
	}

	return r
}
