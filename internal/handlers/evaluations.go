package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"vendoreval/db"
	"vendoreval/internal/auth"
	"vendoreval/internal/scoring"
	"vendoreval/models"
)

// scoreField couples a criterion's score with its remark for the
// submission completeness check.
type scoreField struct {
	name   string
	score  *float64
	remark string
}

func submissionFields(req *models.EvaluationSubmission) []scoreField {
	return []scoreField{
		{"experience", req.ExperienceScore, req.ExperienceRemark},
		{"caseStudies", req.CaseStudiesScore, req.CaseStudiesRemark},
		{"domainExperience", req.DomainExperienceScore, req.DomainExperienceRemark},
		{"approachAlignment", req.ApproachAlignmentScore, req.ApproachAlignmentRemark},
		{"understandingChallenges", req.UnderstandingChallengesScore, req.UnderstandingChallengesRemark},
		{"solutionTailoring", req.SolutionTailoringScore, req.SolutionTailoringRemark},
		{"strategyAlignment", req.StrategyAlignmentScore, req.StrategyAlignmentRemark},
		{"methodology", req.MethodologyScore, req.MethodologyRemark},
		{"innovativeStrategies", req.InnovativeStrategiesScore, req.InnovativeStrategiesRemark},
		{"stakeholderEngagement", req.StakeholderEngagementScore, req.StakeholderEngagementRemark},
		{"toolsFramework", req.ToolsFrameworkScore, req.ToolsFrameworkRemark},
		{"costStructure", req.CostStructureScore, req.CostStructureRemark},
		{"costEffectiveness", req.CostEffectivenessScore, req.CostEffectivenessRemark},
		{"roi", req.ROIScore, req.ROIRemark},
		{"references", req.ReferencesScore, req.ReferencesRemark},
		{"testimonials", req.TestimonialsScore, req.TestimonialsRemark},
		{"sustainability", req.SustainabilityScore, req.SustainabilityRemark},
		{"deliverables", req.DeliverablesScore, req.DeliverablesRemark},
	}
}

// validateSubmission enumerates every failing criterion so the caller
// can fix the whole sheet in one pass.
func validateSubmission(req *models.EvaluationSubmission) []string {
	var details []string
	for _, f := range submissionFields(req) {
		switch {
		case f.score == nil:
			details = append(details, f.name+": score is required")
		case *f.score < 0 || *f.score > 10:
			details = append(details, f.name+": score must be between 0 and 10")
		}
		if strings.TrimSpace(f.remark) == "" {
			details = append(details, f.name+": remark is required")
		}
	}
	return details
}

// resolveEvaluator returns the caller's evaluator id, creating the
// record lazily for decision-makers and admins who registered before
// evaluator records existed for their roles.
func (h *Handler) resolveEvaluator(r *http.Request, principal *auth.Principal) (int64, error) {
	if principal.EvaluatorID != 0 {
		return principal.EvaluatorID, nil
	}
	if evaluator, err := h.Store.GetEvaluatorByUserID(r.Context(), principal.UserID); err == nil {
		return evaluator.ID, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	evaluator, err := h.Store.UpsertEvaluatorForUser(r.Context(),
		principal.UserID, principal.Name, principal.Email, principal.Role)
	if err != nil {
		return 0, err
	}
	return evaluator.ID, nil
}

// SubmitEvaluationHandler обрабатывает POST /api/evaluations запрос
func (h *Handler) SubmitEvaluationHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req models.EvaluationSubmission
	if !h.decode(w, r, &req) {
		return
	}
	if details := validateSubmission(&req); len(details) > 0 {
		h.respondErrorDetails(w, http.StatusBadRequest, "Evaluation is incomplete", details)
		return
	}

	vendor, err := h.Store.GetVendor(r.Context(), req.VendorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.respondError(w, http.StatusNotFound, "Vendor not found")
			return
		}
		h.Log.Error("get vendor", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to submit evaluation")
		return
	}

	evaluatorID, err := h.resolveEvaluator(r, principal)
	if err != nil {
		h.Log.Error("resolve evaluator", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to submit evaluation")
		return
	}

	scores := scoring.Scores{
		Experience:              *req.ExperienceScore,
		CaseStudies:             *req.CaseStudiesScore,
		DomainExperience:        *req.DomainExperienceScore,
		ApproachAlignment:       *req.ApproachAlignmentScore,
		UnderstandingChallenges: *req.UnderstandingChallengesScore,
		SolutionTailoring:       *req.SolutionTailoringScore,
		StrategyAlignment:       *req.StrategyAlignmentScore,
		Methodology:             *req.MethodologyScore,
		InnovativeStrategies:    *req.InnovativeStrategiesScore,
		StakeholderEngagement:   *req.StakeholderEngagementScore,
		ToolsFramework:          *req.ToolsFrameworkScore,
		CostStructure:           *req.CostStructureScore,
		CostEffectiveness:       *req.CostEffectivenessScore,
		ROI:                     *req.ROIScore,
		References:              *req.ReferencesScore,
		Testimonials:            *req.TestimonialsScore,
		Sustainability:          *req.SustainabilityScore,
		Deliverables:            *req.DeliverablesScore,
	}

	evaluation := &db.Evaluation{
		VendorID:     req.VendorID,
		EvaluatorID:  evaluatorID,
		Domain:       strings.Join(vendor.Scopes, ", "),
		OverallScore: scores.Weighted(),

		ExperienceScore:              scores.Experience,
		CaseStudiesScore:             scores.CaseStudies,
		DomainExperienceScore:        scores.DomainExperience,
		ApproachAlignmentScore:       scores.ApproachAlignment,
		UnderstandingChallengesScore: scores.UnderstandingChallenges,
		SolutionTailoringScore:       scores.SolutionTailoring,
		StrategyAlignmentScore:       scores.StrategyAlignment,
		MethodologyScore:             scores.Methodology,
		InnovativeStrategiesScore:    scores.InnovativeStrategies,
		StakeholderEngagementScore:   scores.StakeholderEngagement,
		ToolsFrameworkScore:          scores.ToolsFramework,
		CostStructureScore:           scores.CostStructure,
		CostEffectivenessScore:       scores.CostEffectiveness,
		ROIScore:                     scores.ROI,
		ReferencesScore:              scores.References,
		TestimonialsScore:            scores.Testimonials,
		SustainabilityScore:          scores.Sustainability,
		DeliverablesScore:            scores.Deliverables,

		ExperienceRemark:              req.ExperienceRemark,
		CaseStudiesRemark:             req.CaseStudiesRemark,
		DomainExperienceRemark:        req.DomainExperienceRemark,
		ApproachAlignmentRemark:       req.ApproachAlignmentRemark,
		UnderstandingChallengesRemark: req.UnderstandingChallengesRemark,
		SolutionTailoringRemark:       req.SolutionTailoringRemark,
		StrategyAlignmentRemark:       req.StrategyAlignmentRemark,
		MethodologyRemark:             req.MethodologyRemark,
		InnovativeStrategiesRemark:    req.InnovativeStrategiesRemark,
		StakeholderEngagementRemark:   req.StakeholderEngagementRemark,
		ToolsFrameworkRemark:          req.ToolsFrameworkRemark,
		CostStructureRemark:           req.CostStructureRemark,
		CostEffectivenessRemark:       req.CostEffectivenessRemark,
		ROIRemark:                     req.ROIRemark,
		ReferencesRemark:              req.ReferencesRemark,
		TestimonialsRemark:            req.TestimonialsRemark,
		SustainabilityRemark:          req.SustainabilityRemark,
		DeliverablesRemark:            req.DeliverablesRemark,
	}

	if err := h.Store.CreateEvaluation(r.Context(), evaluation); err != nil {
		if errors.Is(err, db.ErrDuplicateEvaluation) {
			h.respondError(w, http.StatusConflict, "Evaluation already submitted for this vendor")
			return
		}
		h.Log.Error("create evaluation", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to submit evaluation")
		return
	}

	h.Log.Info("evaluation submitted",
		"vendorId", req.VendorID, "evaluatorId", evaluatorID, "score", evaluation.OverallScore)
	h.respondJSON(w, http.StatusCreated, evaluation)
}

// GetEvaluationsHandler возвращает список оценок; контрибьютор видит
// только свои
func (h *Handler) GetEvaluationsHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var evaluatorID int64
	if principal.Role == auth.RoleContributor {
		id, err := h.resolveEvaluator(r, principal)
		if err != nil {
			h.Log.Error("resolve evaluator", "error", err)
			h.respondError(w, http.StatusInternalServerError, "Failed to get evaluations")
			return
		}
		evaluatorID = id
	}

	evaluations, err := h.Store.GetEvaluations(r.Context(), evaluatorID)
	if err != nil {
		h.Log.Error("list evaluations", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to get evaluations")
		return
	}

	h.respondJSON(w, http.StatusOK, evaluations)
}

// GetVendorEvaluationsHandler возвращает оценки одного поставщика со сводкой
func (h *Handler) GetVendorEvaluationsHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	vendorID, ok := parseIDParam(r, "vendorId")
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Invalid vendorId")
		return
	}

	vendor, err := h.Store.GetVendor(r.Context(), vendorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.respondError(w, http.StatusNotFound, "Vendor not found")
			return
		}
		h.Log.Error("get vendor", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to get evaluations")
		return
	}

	var evaluatorID int64
	if principal.Role == auth.RoleContributor {
		id, err := h.resolveEvaluator(r, principal)
		if err != nil {
			h.Log.Error("resolve evaluator", "error", err)
			h.respondError(w, http.StatusInternalServerError, "Failed to get evaluations")
			return
		}
		evaluatorID = id
	}

	evaluations, err := h.Store.GetEvaluationsForVendor(r.Context(), vendorID, evaluatorID)
	if err != nil {
		h.Log.Error("list vendor evaluations", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to get evaluations")
		return
	}

	evaluators := make([]string, 0, len(evaluations))
	for _, e := range evaluations {
		evaluators = append(evaluators, e.EvaluatorName)
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"vendor":       vendor,
		"evaluations":  evaluations,
		"averageScore": vendor.AverageScore,
		"evaluators":   evaluators,
	})
}

// AutosaveHandler сохраняет черновик оценки
func (h *Handler) AutosaveHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req models.AutosaveRequest
	if !h.decode(w, r, &req) {
		return
	}

	evaluatorID, err := h.resolveEvaluator(r, principal)
	if err != nil {
		h.Log.Error("resolve evaluator", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to save draft")
		return
	}

	// A submitted evaluation is immutable; its draft slot stays closed.
	submitted, err := h.Store.HasSubmittedEvaluation(r.Context(), req.VendorID, evaluatorID)
	if err != nil {
		h.Log.Error("check submitted", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to save draft")
		return
	}
	if submitted {
		h.respondError(w, http.StatusBadRequest, "Evaluation already submitted for this vendor")
		return
	}

	data, err := json.Marshal(req.Data)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid draft data")
		return
	}

	draft := &db.EvaluationDraft{
		VendorID:    req.VendorID,
		EvaluatorID: evaluatorID,
		Data:        data,
	}
	if err := h.Store.UpsertDraft(r.Context(), draft); err != nil {
		h.Log.Error("upsert draft", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to save draft")
		return
	}

	h.respondJSON(w, http.StatusOK, draft)
}

// GetDraftHandler возвращает черновик пары (поставщик, оценщик)
func (h *Handler) GetDraftHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	vendorID, ok := parseIDParam(r, "vendorId")
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Invalid vendorId")
		return
	}

	evaluatorID, err := h.resolveEvaluator(r, principal)
	if err != nil {
		h.Log.Error("resolve evaluator", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to get draft")
		return
	}

	draft, err := h.Store.GetDraft(r.Context(), vendorID, evaluatorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.respondError(w, http.StatusNotFound, "Draft not found")
			return
		}
		h.Log.Error("get draft", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to get draft")
		return
	}

	h.respondJSON(w, http.StatusOK, draft)
}

// DiscardDraftHandler удаляет черновик пары (поставщик, оценщик)
func (h *Handler) DiscardDraftHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	vendorID, ok := parseIDParam(r, "vendorId")
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Invalid vendorId")
		return
	}

	evaluatorID, err := h.resolveEvaluator(r, principal)
	if err != nil {
		h.Log.Error("resolve evaluator", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to discard draft")
		return
	}

	if err := h.Store.DeleteDraft(r.Context(), vendorID, evaluatorID); err != nil {
		h.Log.Error("delete draft", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to discard draft")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
