package db

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Evaluation (Оценка): one per (vendor, evaluator), immutable once
// submitted. Uniqueness is enforced by the store, so a second submission
// surfaces as ErrDuplicateEvaluation.
type Evaluation struct {
	ID           int64   `db:"id" json:"id"`
	VendorID     int64   `db:"vendor_id" json:"vendorId"`
	EvaluatorID  int64   `db:"evaluator_id" json:"evaluatorId"`
	Domain       string  `db:"domain" json:"domain"`
	OverallScore float64 `db:"overall_score" json:"overallScore"`
	Submitted    bool    `db:"submitted" json:"submitted"`

	ExperienceScore              float64 `db:"experience_score" json:"experienceScore"`
	CaseStudiesScore             float64 `db:"case_studies_score" json:"caseStudiesScore"`
	DomainExperienceScore        float64 `db:"domain_experience_score" json:"domainExperienceScore"`
	ApproachAlignmentScore       float64 `db:"approach_alignment_score" json:"approachAlignmentScore"`
	UnderstandingChallengesScore float64 `db:"understanding_challenges_score" json:"understandingChallengesScore"`
	SolutionTailoringScore       float64 `db:"solution_tailoring_score" json:"solutionTailoringScore"`
	StrategyAlignmentScore       float64 `db:"strategy_alignment_score" json:"strategyAlignmentScore"`
	MethodologyScore             float64 `db:"methodology_score" json:"methodologyScore"`
	InnovativeStrategiesScore    float64 `db:"innovative_strategies_score" json:"innovativeStrategiesScore"`
	StakeholderEngagementScore   float64 `db:"stakeholder_engagement_score" json:"stakeholderEngagementScore"`
	ToolsFrameworkScore          float64 `db:"tools_framework_score" json:"toolsFrameworkScore"`
	CostStructureScore           float64 `db:"cost_structure_score" json:"costStructureScore"`
	CostEffectivenessScore       float64 `db:"cost_effectiveness_score" json:"costEffectivenessScore"`
	ROIScore                     float64 `db:"roi_score" json:"roiScore"`
	ReferencesScore              float64 `db:"references_score" json:"referencesScore"`
	TestimonialsScore            float64 `db:"testimonials_score" json:"testimonialsScore"`
	SustainabilityScore          float64 `db:"sustainability_score" json:"sustainabilityScore"`
	DeliverablesScore            float64 `db:"deliverables_score" json:"deliverablesScore"`

	ExperienceRemark              string `db:"experience_remark" json:"experienceRemark"`
	CaseStudiesRemark             string `db:"case_studies_remark" json:"caseStudiesRemark"`
	DomainExperienceRemark        string `db:"domain_experience_remark" json:"domainExperienceRemark"`
	ApproachAlignmentRemark       string `db:"approach_alignment_remark" json:"approachAlignmentRemark"`
	UnderstandingChallengesRemark string `db:"understanding_challenges_remark" json:"understandingChallengesRemark"`
	SolutionTailoringRemark       string `db:"solution_tailoring_remark" json:"solutionTailoringRemark"`
	StrategyAlignmentRemark       string `db:"strategy_alignment_remark" json:"strategyAlignmentRemark"`
	MethodologyRemark             string `db:"methodology_remark" json:"methodologyRemark"`
	InnovativeStrategiesRemark    string `db:"innovative_strategies_remark" json:"innovativeStrategiesRemark"`
	StakeholderEngagementRemark   string `db:"stakeholder_engagement_remark" json:"stakeholderEngagementRemark"`
	ToolsFrameworkRemark          string `db:"tools_framework_remark" json:"toolsFrameworkRemark"`
	CostStructureRemark           string `db:"cost_structure_remark" json:"costStructureRemark"`
	CostEffectivenessRemark       string `db:"cost_effectiveness_remark" json:"costEffectivenessRemark"`
	ROIRemark                     string `db:"roi_remark" json:"roiRemark"`
	ReferencesRemark              string `db:"references_remark" json:"referencesRemark"`
	TestimonialsRemark            string `db:"testimonials_remark" json:"testimonialsRemark"`
	SustainabilityRemark          string `db:"sustainability_remark" json:"sustainabilityRemark"`
	DeliverablesRemark            string `db:"deliverables_remark" json:"deliverablesRemark"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`

	// Joined evaluator identity for list responses.
	EvaluatorName  string `db:"evaluator_name" json:"evaluatorName"`
	EvaluatorEmail string `db:"evaluator_email" json:"evaluatorEmail"`
	EvaluatorRole  string `db:"evaluator_role" json:"evaluatorRole"`
}

// EvaluationDraft (Черновик): at most one per (vendor, evaluator),
// deleted when the real evaluation lands.
type EvaluationDraft struct {
	ID          int64          `db:"id" json:"id"`
	VendorID    int64          `db:"vendor_id" json:"vendorId"`
	EvaluatorID int64          `db:"evaluator_id" json:"evaluatorId"`
	Data        types.JSONText `db:"data" json:"data"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updatedAt"`
}

const evaluationColumns = `
    e.*, ev.name AS evaluator_name, ev.email AS evaluator_email, ev.role AS evaluator_role`

// CreateEvaluation persists a submission and drops the pair's draft in
// the same transaction. A duplicate (vendor, evaluator) pair is reported
// as ErrDuplicateEvaluation; the original row is untouched.
func (s *Storage) CreateEvaluation(ctx context.Context, e *Evaluation) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO evaluations (
            vendor_id, evaluator_id, domain, overall_score, submitted,
            experience_score, case_studies_score, domain_experience_score,
            approach_alignment_score, understanding_challenges_score, solution_tailoring_score,
            strategy_alignment_score, methodology_score, innovative_strategies_score,
            stakeholder_engagement_score, tools_framework_score,
            cost_structure_score, cost_effectiveness_score, roi_score,
            references_score, testimonials_score, sustainability_score, deliverables_score,
            experience_remark, case_studies_remark, domain_experience_remark,
            approach_alignment_remark, understanding_challenges_remark, solution_tailoring_remark,
            strategy_alignment_remark, methodology_remark, innovative_strategies_remark,
            stakeholder_engagement_remark, tools_framework_remark,
            cost_structure_remark, cost_effectiveness_remark, roi_remark,
            references_remark, testimonials_remark, sustainability_remark, deliverables_remark
        ) VALUES (
            $1, $2, $3, $4, TRUE,
            $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22,
            $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34, $35, $36, $37, $38, $39, $40
        )
        RETURNING id, created_at`
	err = tx.QueryRowxContext(ctx, query,
		e.VendorID, e.EvaluatorID, e.Domain, e.OverallScore,
		e.ExperienceScore, e.CaseStudiesScore, e.DomainExperienceScore,
		e.ApproachAlignmentScore, e.UnderstandingChallengesScore, e.SolutionTailoringScore,
		e.StrategyAlignmentScore, e.MethodologyScore, e.InnovativeStrategiesScore,
		e.StakeholderEngagementScore, e.ToolsFrameworkScore,
		e.CostStructureScore, e.CostEffectivenessScore, e.ROIScore,
		e.ReferencesScore, e.TestimonialsScore, e.SustainabilityScore, e.DeliverablesScore,
		e.ExperienceRemark, e.CaseStudiesRemark, e.DomainExperienceRemark,
		e.ApproachAlignmentRemark, e.UnderstandingChallengesRemark, e.SolutionTailoringRemark,
		e.StrategyAlignmentRemark, e.MethodologyRemark, e.InnovativeStrategiesRemark,
		e.StakeholderEngagementRemark, e.ToolsFrameworkRemark,
		e.CostStructureRemark, e.CostEffectivenessRemark, e.ROIRemark,
		e.ReferencesRemark, e.TestimonialsRemark, e.SustainabilityRemark, e.DeliverablesRemark).
		Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEvaluation
		}
		return err
	}
	e.Submitted = true

	_, err = tx.ExecContext(ctx,
		`DELETE FROM evaluation_drafts WHERE vendor_id = $1 AND evaluator_id = $2`,
		e.VendorID, e.EvaluatorID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// GetEvaluations lists evaluations, newest first. evaluatorID = 0 lists
// every evaluator (decision-makers and admins); contributors pass their
// own id.
func (s *Storage) GetEvaluations(ctx context.Context, evaluatorID int64) ([]Evaluation, error) {
	evaluations := []Evaluation{}
	if evaluatorID != 0 {
		query := `
            SELECT ` + evaluationColumns + `
            FROM evaluations e
            JOIN evaluators ev ON ev.id = e.evaluator_id
            WHERE e.evaluator_id = $1
            ORDER BY e.created_at DESC`
		err := s.db.SelectContext(ctx, &evaluations, query, evaluatorID)
		return evaluations, err
	}
	query := `
        SELECT ` + evaluationColumns + `
        FROM evaluations e
        JOIN evaluators ev ON ev.id = e.evaluator_id
        ORDER BY e.created_at DESC`
	err := s.db.SelectContext(ctx, &evaluations, query)
	return evaluations, err
}

// GetEvaluationsForVendor lists a vendor's evaluations, optionally
// restricted to one evaluator (contributors see only their own).
func (s *Storage) GetEvaluationsForVendor(ctx context.Context, vendorID, evaluatorID int64) ([]Evaluation, error) {
	evaluations := []Evaluation{}
	if evaluatorID != 0 {
		query := `
            SELECT ` + evaluationColumns + `
            FROM evaluations e
            JOIN evaluators ev ON ev.id = e.evaluator_id
            WHERE e.vendor_id = $1 AND e.evaluator_id = $2
            ORDER BY e.created_at DESC`
		err := s.db.SelectContext(ctx, &evaluations, query, vendorID, evaluatorID)
		return evaluations, err
	}
	query := `
        SELECT ` + evaluationColumns + `
        FROM evaluations e
        JOIN evaluators ev ON ev.id = e.evaluator_id
        WHERE e.vendor_id = $1
        ORDER BY e.created_at DESC`
	err := s.db.SelectContext(ctx, &evaluations, query, vendorID)
	return evaluations, err
}

// HasSubmittedEvaluation reports whether a submitted evaluation already
// exists for the pair; autosave must never overwrite submitted state.
func (s *Storage) HasSubmittedEvaluation(ctx context.Context, vendorID, evaluatorID int64) (bool, error) {
	var count int
	query := `
        SELECT COUNT(1) FROM evaluations
        WHERE vendor_id = $1 AND evaluator_id = $2 AND submitted = TRUE`
	err := s.db.GetContext(ctx, &count, query, vendorID, evaluatorID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpsertDraft stores the in-progress score set for the pair, replacing
// any previous draft. Repeated calls leave exactly one row.
func (s *Storage) UpsertDraft(ctx context.Context, d *EvaluationDraft) error {
	query := `
        INSERT INTO evaluation_drafts (vendor_id, evaluator_id, data, updated_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (vendor_id, evaluator_id)
            DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
        RETURNING id, updated_at`
	return s.db.QueryRowxContext(ctx, query, d.VendorID, d.EvaluatorID, d.Data).
		Scan(&d.ID, &d.UpdatedAt)
}

func (s *Storage) GetDraft(ctx context.Context, vendorID, evaluatorID int64) (*EvaluationDraft, error) {
	d := &EvaluationDraft{}
	query := `SELECT * FROM evaluation_drafts WHERE vendor_id = $1 AND evaluator_id = $2`
	err := s.db.GetContext(ctx, d, query, vendorID, evaluatorID)
	return d, err
}

func (s *Storage) DeleteDraft(ctx context.Context, vendorID, evaluatorID int64) error {
	query := `DELETE FROM evaluation_drafts WHERE vendor_id = $1 AND evaluator_id = $2`
	_, err := s.db.ExecContext(ctx, query, vendorID, evaluatorID)
	return err
}
