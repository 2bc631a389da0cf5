package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"homerank/internal/api/dto"
	"homerank/internal/domain"
	"homerank/internal/platform/obs"
	"homerank/internal/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Scorer runs one scoring pass.
type Scorer interface {
	Score(ctx context.Context, destinations []domain.Destination, origins []domain.Origin) (*domain.Report, error)
}

type ScoreHandler struct {
	Repo ports.LocationRepository
	// NewScorer returns a scorer for profile. An empty profile selects the
	// configured default.
	NewScorer func(profile domain.Profile) Scorer
}

// Score ranks origins against destinations taken from the body or, when
// the body leaves them out, from the repository.
func (h *ScoreHandler) Score(c *gin.Context) {
	ctx := c.Request.Context()
	reqID := obs.RequestID(ctx)

	var req dto.ScoreRequest

	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(c, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(c, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	var profile domain.Profile
	if strings.TrimSpace(req.Profile) != "" {
		p, err := domain.ParseProfile(req.Profile)
		if err != nil {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
		profile = p
	}

	dests, origins, err := h.inputs(ctx, req)
	if err != nil {
		var invalid *inputError
		if errors.As(err, &invalid) {
			writeError(c, http.StatusBadRequest, invalid.Error())
			return
		}
		log.Error().Err(err).Str("req_id", reqID).Msg("load locations failed")
		writeError(c, http.StatusInternalServerError, "internal server error")
		return
	}

	report, err := h.NewScorer(profile).Score(ctx, dests, origins)
	if err != nil {
		log.Warn().Err(err).Str("req_id", reqID).Msg("scoring interrupted")
		writeError(c, http.StatusServiceUnavailable, "scoring interrupted")
		return
	}

	if report.NoValidData() {
		writeError(c, http.StatusUnprocessableEntity, "no valid data")
		return
	}

	c.JSON(http.StatusOK, dto.NewScoreResponse(report))
}

// inputError marks a problem with locations sent by the client.
type inputError struct{ err error }

func (e *inputError) Error() string { return e.err.Error() }
func (e *inputError) Unwrap() error { return e.err }

func (h *ScoreHandler) inputs(ctx context.Context, req dto.ScoreRequest) ([]domain.Destination, []domain.Origin, error) {
	var (
		dests   []domain.Destination
		origins []domain.Origin
		err     error
	)

	if len(req.Destinations) > 0 {
		if dests, err = domain.NormalizeDestinations(req.Destinations); err != nil {
			return nil, nil, &inputError{err}
		}
	} else if dests, err = h.Repo.ListDestinations(ctx); err != nil {
		return nil, nil, err
	}

	if len(req.Origins) > 0 {
		if origins, err = domain.NormalizeOrigins(req.Origins); err != nil {
			return nil, nil, &inputError{err}
		}
	} else if origins, err = h.Repo.ListOrigins(ctx); err != nil {
		return nil, nil, err
	}

	return dests, origins, nil
}
