package models

import "time"

// Запрос на регистрацию
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,max=100"`
}

// Запрос на вход
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Решение по заявке на регистрацию
type ApprovalRequest struct {
	Status string `json:"status" validate:"required,oneof=APPROVED REJECTED"`
}

type RoleUpdateRequest struct {
	Role string `json:"role" validate:"required,oneof=CONTRIBUTOR DECISION_MAKER ADMIN"`
}

type PermissionsUpdateRequest struct {
	CanAccessChat *bool `json:"canAccessChat" validate:"required"`
	CanExportData *bool `json:"canExportData" validate:"required"`
}

type VendorCreateRequest struct {
	Name     string   `json:"name" validate:"required,max=200"`
	Scopes   []string `json:"scopes" validate:"required,min=1,dive,oneof=Media AI"`
	Contacts []string `json:"contacts" validate:"dive,max=254"`
}

type VendorIntakeUpdateRequest struct {
	RFIReceived *bool  `json:"rfiReceived" validate:"required"`
	RFIStatus   string `json:"rfiStatus" validate:"required,oneof=PENDING RECEIVED IN_PROGRESS COMPLETED"`
}

type VendorRenameRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

type DecisionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=ACCEPTED REJECTED"`
}

type VoteRequest struct {
	Vote string `json:"vote" validate:"required,oneof=ACCEPT REJECT"`
}

// EvaluationSubmission carries the full score sheet. Scores are
// pointers so a missing criterion can be told apart from a zero.
type EvaluationSubmission struct {
	VendorID int64 `json:"vendorId" validate:"required"`

	ExperienceScore              *float64 `json:"experienceScore"`
	CaseStudiesScore             *float64 `json:"caseStudiesScore"`
	DomainExperienceScore        *float64 `json:"domainExperienceScore"`
	ApproachAlignmentScore       *float64 `json:"approachAlignmentScore"`
	UnderstandingChallengesScore *float64 `json:"understandingChallengesScore"`
	SolutionTailoringScore       *float64 `json:"solutionTailoringScore"`
	StrategyAlignmentScore       *float64 `json:"strategyAlignmentScore"`
	MethodologyScore             *float64 `json:"methodologyScore"`
	InnovativeStrategiesScore    *float64 `json:"innovativeStrategiesScore"`
	StakeholderEngagementScore   *float64 `json:"stakeholderEngagementScore"`
	ToolsFrameworkScore          *float64 `json:"toolsFrameworkScore"`
	CostStructureScore           *float64 `json:"costStructureScore"`
	CostEffectivenessScore       *float64 `json:"costEffectivenessScore"`
	ROIScore                     *float64 `json:"roiScore"`
	ReferencesScore              *float64 `json:"referencesScore"`
	TestimonialsScore            *float64 `json:"testimonialsScore"`
	SustainabilityScore          *float64 `json:"sustainabilityScore"`
	DeliverablesScore            *float64 `json:"deliverablesScore"`

	ExperienceRemark              string `json:"experienceRemark"`
	CaseStudiesRemark             string `json:"caseStudiesRemark"`
	DomainExperienceRemark        string `json:"domainExperienceRemark"`
	ApproachAlignmentRemark       string `json:"approachAlignmentRemark"`
	UnderstandingChallengesRemark string `json:"understandingChallengesRemark"`
	SolutionTailoringRemark       string `json:"solutionTailoringRemark"`
	StrategyAlignmentRemark       string `json:"strategyAlignmentRemark"`
	MethodologyRemark             string `json:"methodologyRemark"`
	InnovativeStrategiesRemark    string `json:"innovativeStrategiesRemark"`
	StakeholderEngagementRemark   string `json:"stakeholderEngagementRemark"`
	ToolsFrameworkRemark          string `json:"toolsFrameworkRemark"`
	CostStructureRemark           string `json:"costStructureRemark"`
	CostEffectivenessRemark       string `json:"costEffectivenessRemark"`
	ROIRemark                     string `json:"roiRemark"`
	ReferencesRemark              string `json:"referencesRemark"`
	TestimonialsRemark            string `json:"testimonialsRemark"`
	SustainabilityRemark          string `json:"sustainabilityRemark"`
	DeliverablesRemark            string `json:"deliverablesRemark"`
}

// AutosaveRequest stores the in-progress sheet as-is. Data is kept
// opaque so partially-filled sheets round-trip without validation.
type AutosaveRequest struct {
	VendorID int64                  `json:"vendorId" validate:"required"`
	Data     map[string]interface{} `json:"data" validate:"required"`
}

type ChatMessageRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

type SettingsUpdateRequest struct {
	ChatEnabled           *bool `json:"chatEnabled" validate:"required"`
	DirectDecisionEnabled *bool `json:"directDecisionEnabled" validate:"required"`
	PrintEnabled          *bool `json:"printEnabled" validate:"required"`
	ExportEnabled         *bool `json:"exportEnabled" validate:"required"`
}

// Ответ на успешную аутентификацию
type AuthResponse struct {
	Token string    `json:"token"`
	User  UserInfo  `json:"user"`
	Until time.Time `json:"expiresAt"`
}

type UserInfo struct {
	ID             int64  `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	ApprovalStatus string `json:"approvalStatus"`
	CanAccessChat  bool   `json:"canAccessChat"`
	CanExportData  bool   `json:"canExportData"`
}
