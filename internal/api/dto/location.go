package dto

import "homerank/internal/domain"

type ListDestinationsResponse struct {
	Destinations []domain.Destination `json:"destinations"`
}

type ListOriginsResponse struct {
	Origins []domain.Origin `json:"origins"`
}
