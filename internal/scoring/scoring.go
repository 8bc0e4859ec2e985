package scoring

// Scores holds the 18 sub-criterion scores of a single evaluation.
// Each score is on a 0-10 scale; the caller validates ranges before use.
type Scores struct {
	Experience              float64 `json:"experienceScore"`
	CaseStudies             float64 `json:"caseStudiesScore"`
	DomainExperience        float64 `json:"domainExperienceScore"`
	ApproachAlignment       float64 `json:"approachAlignmentScore"`
	UnderstandingChallenges float64 `json:"understandingChallengesScore"`
	SolutionTailoring       float64 `json:"solutionTailoringScore"`
	StrategyAlignment       float64 `json:"strategyAlignmentScore"`
	Methodology             float64 `json:"methodologyScore"`
	InnovativeStrategies    float64 `json:"innovativeStrategiesScore"`
	StakeholderEngagement   float64 `json:"stakeholderEngagementScore"`
	ToolsFramework          float64 `json:"toolsFrameworkScore"`
	CostStructure           float64 `json:"costStructureScore"`
	CostEffectiveness       float64 `json:"costEffectivenessScore"`
	ROI                     float64 `json:"roiScore"`
	References              float64 `json:"referencesScore"`
	Testimonials            float64 `json:"testimonialsScore"`
	Sustainability          float64 `json:"sustainabilityScore"`
	Deliverables            float64 `json:"deliverablesScore"`
}

// Weighted computes the overall percentage for a score set.
// The weight table is a compatibility contract with existing reports and
// must not be tuned; category weights sum to 100. The result is a raw
// float in [0,100]; rounding is a presentation concern.
func (s Scores) Weighted() float64 {
	// 1. Relevance and Quality of Experience (25%)
	experience := (s.Experience/10*0.10 +
		s.CaseStudies/10*0.10 +
		s.DomainExperience/10*0.05) * 100

	// 2. Understanding of Project Objectives (20%)
	understanding := (s.ApproachAlignment/10*0.07 +
		s.UnderstandingChallenges/10*0.07 +
		s.SolutionTailoring/10*0.06) * 100

	// 3. Proposed Approach and Methodology (26%)
	methodology := (s.StrategyAlignment/10*0.07 +
		s.Methodology/10*0.06 +
		s.InnovativeStrategies/10*0.05 +
		s.StakeholderEngagement/10*0.05 +
		s.ToolsFramework/10*0.03) * 100

	// 4. Cost and Value for Money (14%)
	cost := (s.CostStructure/10*0.06 +
		s.CostEffectiveness/10*0.05 +
		s.ROI/10*0.03) * 100

	// 5. References and Testimonials (10%)
	references := (s.References/10*0.06 +
		s.Testimonials/10*0.02 +
		s.Sustainability/10*0.02) * 100

	// 6. Deliverable Completeness (5%)
	deliverables := s.Deliverables / 10 * 0.05 * 100

	return experience + understanding + methodology + cost + references + deliverables
}
