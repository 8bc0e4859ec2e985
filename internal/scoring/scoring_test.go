package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vendoreval/internal/scoring"
)

func uniform(v float64) scoring.Scores {
	return scoring.Scores{
		Experience:              v,
		CaseStudies:             v,
		DomainExperience:        v,
		ApproachAlignment:       v,
		UnderstandingChallenges: v,
		SolutionTailoring:       v,
		StrategyAlignment:       v,
		Methodology:             v,
		InnovativeStrategies:    v,
		StakeholderEngagement:   v,
		ToolsFramework:          v,
		CostStructure:           v,
		CostEffectiveness:       v,
		ROI:                     v,
		References:              v,
		Testimonials:            v,
		Sustainability:          v,
		Deliverables:            v,
	}
}

func TestWeightedBounds(t *testing.T) {
	require.InDelta(t, 100.0, uniform(10).Weighted(), 1e-9)
	require.InDelta(t, 0.0, uniform(0).Weighted(), 1e-9)
}

func TestWeightedMidpoint(t *testing.T) {
	// All weights sum to 100, so a uniform score of 5 lands on exactly half.
	require.InDelta(t, 50.0, uniform(5).Weighted(), 1e-9)
}

func TestDeliverablesWeight(t *testing.T) {
	base := uniform(7)
	withMax := base
	withMax.Deliverables = 10
	withMin := base
	withMin.Deliverables = 0

	// Deliverables carries a fixed 5% weight independent of other scores.
	require.InDelta(t, 5.0, withMax.Weighted()-withMin.Weighted(), 1e-9)
}

func TestSingleCriterionWeights(t *testing.T) {
	cases := []struct {
		name   string
		scores scoring.Scores
		want   float64
	}{
		{"experience", scoring.Scores{Experience: 10}, 10},
		{"caseStudies", scoring.Scores{CaseStudies: 10}, 10},
		{"domainExperience", scoring.Scores{DomainExperience: 10}, 5},
		{"approachAlignment", scoring.Scores{ApproachAlignment: 10}, 7},
		{"understandingChallenges", scoring.Scores{UnderstandingChallenges: 10}, 7},
		{"solutionTailoring", scoring.Scores{SolutionTailoring: 10}, 6},
		{"strategyAlignment", scoring.Scores{StrategyAlignment: 10}, 7},
		{"methodology", scoring.Scores{Methodology: 10}, 6},
		{"innovativeStrategies", scoring.Scores{InnovativeStrategies: 10}, 5},
		{"stakeholderEngagement", scoring.Scores{StakeholderEngagement: 10}, 5},
		{"toolsFramework", scoring.Scores{ToolsFramework: 10}, 3},
		{"costStructure", scoring.Scores{CostStructure: 10}, 6},
		{"costEffectiveness", scoring.Scores{CostEffectiveness: 10}, 5},
		{"roi", scoring.Scores{ROI: 10}, 3},
		{"references", scoring.Scores{References: 10}, 6},
		{"testimonials", scoring.Scores{Testimonials: 10}, 2},
		{"sustainability", scoring.Scores{Sustainability: 10}, 2},
		{"deliverables", scoring.Scores{Deliverables: 10}, 5},
	}

	for _, tc := range cases {
		require.InDelta(t, tc.want, tc.scores.Weighted(), 1e-9, "criterion %s", tc.name)
	}
}
