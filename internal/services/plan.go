package services

import "homerank/internal/domain"

type destinationGroup struct {
	label   string
	members []int
}

// scoringPlan indexes destinations into groups, in order of first
// appearance, and ungrouped individuals, in input order.
type scoringPlan struct {
	groups      []destinationGroup
	individuals []int
}

func buildPlan(dests []domain.Destination) scoringPlan {
	var plan scoringPlan
	byLabel := make(map[string]int)

	for i, d := range dests {
		if !d.Grouped() {
			plan.individuals = append(plan.individuals, i)
			continue
		}

		gi, ok := byLabel[d.Group]
		if !ok {
			gi = len(plan.groups)
			byLabel[d.Group] = gi
			plan.groups = append(plan.groups, destinationGroup{label: d.Group})
		}
		plan.groups[gi].members = append(plan.groups[gi].members, i)
	}

	return plan
}
