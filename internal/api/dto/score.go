package dto

import "homerank/internal/domain"

// ScoreRequest is the optional body of POST /scores. Lists left empty are
// read from the location repository.
type ScoreRequest struct {
	Profile      string               `json:"profile"`
	Destinations []domain.Destination `json:"destinations"`
	Origins      []domain.Origin      `json:"origins"`
}

type ScoreResponse struct {
	Scores       []domain.OriginScore `json:"scores"`
	Routes       []domain.RouteRecord `json:"routes"`
	Destinations []domain.Destination `json:"destinations"`
	Summary      domain.Summary       `json:"summary"`
}

func NewScoreResponse(r *domain.Report) ScoreResponse {
	return ScoreResponse{
		Scores:       r.Scores,
		Routes:       r.Routes,
		Destinations: r.Destinations,
		Summary:      r.Summary(),
	}
}
