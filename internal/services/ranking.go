package services

import (
	"sort"

	"homerank/internal/domain"
)

// rankScores orders scores ascending by average. Equal averages keep their
// input order.
func rankScores(scores []domain.OriginScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].AvgScore < scores[j].AvgScore
	})
}
