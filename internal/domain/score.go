package domain

// Aggregate travel cost of one origin across all counted destinations.
type OriginScore struct {
	Name        string        `json:"name"`
	Coords      Coordinates   `json:"coords"`
	TotalScore  float64       `json:"total_score"`
	ValidRoutes int           `json:"valid_routes"`
	AvgScore    float64       `json:"avg_score"`
	Routes      []RouteRecord `json:"routes"`
}

// Report is the output of one scoring run.
type Report struct {
	Scores       []OriginScore `json:"scores"`
	Routes       []RouteRecord `json:"routes"`
	Destinations []Destination `json:"destinations"`
	Origins      []Origin      `json:"origins"`
}

// Summary condenses a report. BestOrigin and BestAvgScore describe the
// top-ranked origin; BestTotalScore is the lowest total across all scored
// origins, which may belong to a different origin.
type Summary struct {
	OriginCount      int      `json:"origin_count"`
	DestinationCount int      `json:"destination_count"`
	RouteCount       int      `json:"route_count"`
	BestOrigin       string   `json:"best_origin,omitempty"`
	BestAvgScore     *float64 `json:"best_avg_score,omitempty"`
	BestTotalScore   *float64 `json:"best_score,omitempty"`
}

// NoValidData reports whether the run produced no scored origin.
func (r *Report) NoValidData() bool { return r == nil || len(r.Scores) == 0 }

func (r *Report) Summary() Summary {
	if r == nil {
		return Summary{}
	}

	s := Summary{
		OriginCount:      len(r.Scores),
		DestinationCount: len(r.Destinations),
		RouteCount:       len(r.Routes),
	}
	if len(r.Scores) > 0 {
		s.BestOrigin = r.Scores[0].Name
		s.BestAvgScore = Float(r.Scores[0].AvgScore)

		best := r.Scores[0].TotalScore
		for _, sc := range r.Scores[1:] {
			best = min(best, sc.TotalScore)
		}
		s.BestTotalScore = Float(best)
	}
	return s
}
