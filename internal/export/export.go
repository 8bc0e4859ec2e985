// Package export renders evaluation data into an xlsx workbook.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"vendoreval/db"
)

const sheetName = "Evaluations"

var headers = buildHeaders()

var criteria = []string{
	"Experience", "Case Studies", "Domain Experience",
	"Approach Alignment", "Understanding Challenges", "Solution Tailoring",
	"Strategy Alignment", "Methodology", "Innovative Strategies",
	"Stakeholder Engagement", "Tools Framework",
	"Cost Structure", "Cost Effectiveness", "ROI",
	"References", "Testimonials", "Sustainability", "Deliverables",
}

func buildHeaders() []string {
	h := []string{"Vendor Name", "Evaluator Name", "Evaluator Role", "Domain", "Overall Score"}
	for _, c := range criteria {
		h = append(h, c+" Score", c+" Remarks")
	}
	return append(h, "Final Decision", "RFI Status", "RFI Received Date", "Evaluation Date")
}

// BuildWorkbook lays out one row per evaluation. Vendors without any
// evaluation still get a row so the export covers the whole pipeline.
func BuildWorkbook(vendors []db.VendorWithScore, evaluations map[int64][]db.Evaluation) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", sheetName)

	if err := writeRow(f, 1, toAny(headers)); err != nil {
		return nil, err
	}

	row := 2
	for _, v := range vendors {
		evals := evaluations[v.ID]
		if len(evals) == 0 {
			if err := writeRow(f, row, placeholderRow(&v)); err != nil {
				return nil, err
			}
			row++
			continue
		}
		for i := range evals {
			if err := writeRow(f, row, evaluationRow(&v, &evals[i])); err != nil {
				return nil, err
			}
			row++
		}
	}

	return f, nil
}

func writeRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheetName, cell, &values)
}

func toAny(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func evaluationRow(v *db.VendorWithScore, e *db.Evaluation) []interface{} {
	row := []interface{}{
		v.Name, e.EvaluatorName, e.EvaluatorRole, e.Domain,
		fmt.Sprintf("%.2f", e.OverallScore),
	}
	scores := []float64{
		e.ExperienceScore, e.CaseStudiesScore, e.DomainExperienceScore,
		e.ApproachAlignmentScore, e.UnderstandingChallengesScore, e.SolutionTailoringScore,
		e.StrategyAlignmentScore, e.MethodologyScore, e.InnovativeStrategiesScore,
		e.StakeholderEngagementScore, e.ToolsFrameworkScore,
		e.CostStructureScore, e.CostEffectivenessScore, e.ROIScore,
		e.ReferencesScore, e.TestimonialsScore, e.SustainabilityScore, e.DeliverablesScore,
	}
	remarks := []string{
		e.ExperienceRemark, e.CaseStudiesRemark, e.DomainExperienceRemark,
		e.ApproachAlignmentRemark, e.UnderstandingChallengesRemark, e.SolutionTailoringRemark,
		e.StrategyAlignmentRemark, e.MethodologyRemark, e.InnovativeStrategiesRemark,
		e.StakeholderEngagementRemark, e.ToolsFrameworkRemark,
		e.CostStructureRemark, e.CostEffectivenessRemark, e.ROIRemark,
		e.ReferencesRemark, e.TestimonialsRemark, e.SustainabilityRemark, e.DeliverablesRemark,
	}
	for i := range scores {
		row = append(row, scores[i], remarks[i])
	}
	return append(row,
		decisionOrPending(v.FinalDecision),
		v.RFIStatus,
		formatDate(v.RFIReceivedAt),
		e.CreatedAt.Format("2006-01-02"),
	)
}

func placeholderRow(v *db.VendorWithScore) []interface{} {
	row := []interface{}{v.Name, "No evaluations", "", strings.Join(v.Scopes, ", "), ""}
	for range criteria {
		row = append(row, "", "")
	}
	return append(row,
		decisionOrPending(v.FinalDecision),
		v.RFIStatus,
		formatDate(v.RFIReceivedAt),
		"",
	)
}

func decisionOrPending(decision *string) string {
	if decision == nil {
		return "PENDING"
	}
	return *decision
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
