package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"homerank/internal/domain"
	"homerank/internal/platform/obs"
)

// renderReport prints the ranking, the per-destination breakdown of the
// best origin and the run summary.
func renderReport(w io.Writer, r *domain.Report, counters *obs.Counters) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "RANK\tORIGIN\tAVG MIN\tTOTAL\tROUTES")
	for i, s := range r.Scores {
		fmt.Fprintf(tw, "%d\t%s\t%.1f\t%.1f\t%d\n", i+1, s.Name, s.AvgScore, s.TotalScore, s.ValidRoutes)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	best := r.Scores[0]
	fmt.Fprintf(w, "\nBest origin: %s (%s)\n", best.Name, best.Coords)

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DESTINATION\tGROUP\tMODE\tTO\tFROM\tROUND TRIP\tTRAFFIC\tWEIGHT\tWEIGHTED")
	for _, rec := range best.Routes {
		traffic := "-"
		if rec.TrafficImpactPercent != nil {
			traffic = fmt.Sprintf("%+.0f%%", *rec.TrafficImpactPercent)
		}
		group := rec.Group
		if group == "" {
			group = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%.1f\t%.1f\t%s\t%.2f\t%.1f\n",
			rec.Destination, group, rec.Profile,
			rec.ToTime, rec.FromTime, rec.TravelTime, traffic, rec.Weight, rec.WeightedTime,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := r.Summary()
	fmt.Fprintf(w, "\n%d origins ranked, %d destinations, %d routes\n", s.OriginCount, s.DestinationCount, s.RouteCount)
	if counters != nil {
		fmt.Fprintf(w, "%d route calls (%d failed), %d cache hits, %d upstream requests\n",
			counters.Get(obs.RouteCalls), counters.Get(obs.RouteFailures),
			counters.Get(obs.CacheHits), counters.Get(obs.UpstreamRequests),
		)
	}
	return nil
}
