package handlers

import (
	"net/http"

	"homerank/internal/api/dto"
	"homerank/internal/platform/obs"
	"homerank/internal/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// LocationHandler exposes the configured destinations and origins.
type LocationHandler struct {
	Repo ports.LocationRepository
}

func (h *LocationHandler) ListDestinations(c *gin.Context) {
	dests, err := h.Repo.ListDestinations(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Str("req_id", obs.RequestID(c.Request.Context())).Msg("list destinations failed")
		writeError(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.JSON(http.StatusOK, dto.ListDestinationsResponse{Destinations: dests})
}

func (h *LocationHandler) ListOrigins(c *gin.Context) {
	origins, err := h.Repo.ListOrigins(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Str("req_id", obs.RequestID(c.Request.Context())).Msg("list origins failed")
		writeError(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.JSON(http.StatusOK, dto.ListOriginsResponse{Origins: origins})
}
