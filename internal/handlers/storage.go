package handlers

import (
	"context"
	"time"

	"vendoreval/db"
)

type StorageInterface interface {
	CreateUserWithEvaluator(ctx context.Context, u *db.User) (*db.Evaluator, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	GetUserByID(ctx context.Context, id int64) (*db.User, error)
	GetEvaluatorByUserID(ctx context.Context, userID int64) (*db.Evaluator, error)
	UpsertEvaluatorForUser(ctx context.Context, userID int64, name, email, role string) (*db.Evaluator, error)

	GetUsers(ctx context.Context) ([]db.User, error)
	GetPendingUsers(ctx context.Context) ([]db.User, error)
	SetUserApproval(ctx context.Context, id int64, status string) (*db.User, error)
	SetUserRole(ctx context.Context, id int64, role string) (*db.User, error)
	SetUserPermissions(ctx context.Context, id int64, canAccessChat, canExportData bool) (*db.User, error)
	DeleteUser(ctx context.Context, id int64) error

	CreateVendor(ctx context.Context, v *db.Vendor) error
	GetVendor(ctx context.Context, id int64) (*db.VendorWithScore, error)
	GetVendors(ctx context.Context, limit, offset int) ([]db.VendorWithScore, error)
	UpdateVendorIntake(ctx context.Context, id int64, received bool, status string) (*db.Vendor, error)
	RenameVendor(ctx context.Context, id int64, name string) (*db.Vendor, error)
	VendorNameTaken(ctx context.Context, name string, excludeID int64) (bool, error)
	SetVendorDecision(ctx context.Context, id int64, decision string) (*db.Vendor, error)
	DeleteVendor(ctx context.Context, id int64) error
	ClearVendorData(ctx context.Context, vendorID int64) (*db.ClearedCounts, error)

	CreateEvaluation(ctx context.Context, e *db.Evaluation) error
	GetEvaluations(ctx context.Context, evaluatorID int64) ([]db.Evaluation, error)
	GetEvaluationsForVendor(ctx context.Context, vendorID, evaluatorID int64) ([]db.Evaluation, error)
	HasSubmittedEvaluation(ctx context.Context, vendorID, evaluatorID int64) (bool, error)
	UpsertDraft(ctx context.Context, d *db.EvaluationDraft) error
	GetDraft(ctx context.Context, vendorID, evaluatorID int64) (*db.EvaluationDraft, error)
	DeleteDraft(ctx context.Context, vendorID, evaluatorID int64) error

	CastVote(ctx context.Context, vendorID, userID int64, vote string) (*db.VoteStats, error)
	ClearVote(ctx context.Context, vendorID, userID int64) (*db.VoteStats, error)
	GetVoteStats(ctx context.Context, vendorID, userID int64) (*db.VoteStats, error)

	CreateChatMessage(ctx context.Context, m *db.ChatMessage) error
	GetChatMessages(ctx context.Context, vendorID int64) ([]db.ChatMessage, error)
	GetChatMessagesAfter(ctx context.Context, vendorID int64, after time.Time) ([]db.ChatMessage, error)
	UnreadNotificationCount(ctx context.Context, userID int64) (int, error)
	MarkNotificationsRead(ctx context.Context, userID, vendorID int64) error

	GetSettings(ctx context.Context) (*db.AdminSettings, error)
	UpdateSettings(ctx context.Context, settings *db.AdminSettings) error
}
