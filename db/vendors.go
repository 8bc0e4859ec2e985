package db

import (
	"context"
	"time"

	"github.com/lib/pq"
)

// RFI intake statuses.
const (
	RFIPending    = "PENDING"
	RFIReceived   = "RECEIVED"
	RFIInProgress = "IN_PROGRESS"
	RFICompleted  = "COMPLETED"
)

// Vendor (Поставщик)
type Vendor struct {
	ID            int64          `db:"id" json:"id"`
	Name          string         `db:"name" json:"name"`
	Scopes        pq.StringArray `db:"scopes" json:"scopes"`
	Contacts      pq.StringArray `db:"contacts" json:"contacts"`
	RFIReceived   bool           `db:"rfi_received" json:"rfiReceived"`
	RFIReceivedAt *time.Time     `db:"rfi_received_at" json:"rfiReceivedAt"`
	RFIStatus     string         `db:"rfi_status" json:"rfiStatus"`
	FinalDecision *string        `db:"final_decision" json:"finalDecision"`
	ChatEnabled   bool           `db:"chat_enabled" json:"chatEnabled"`
	CreatedAt     time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updatedAt"`
}

// VendorWithScore carries the average overall score across the vendor's
// submitted evaluations; nil when nothing has been submitted yet.
type VendorWithScore struct {
	Vendor
	AverageScore *float64 `db:"average_score" json:"averageScore"`
}

func (s *Storage) CreateVendor(ctx context.Context, v *Vendor) error {
	query := `
        INSERT INTO vendors (name, scopes, contacts, rfi_status, chat_enabled)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`
	return s.db.QueryRowxContext(ctx, query,
		v.Name, v.Scopes, v.Contacts, v.RFIStatus, v.ChatEnabled).
		Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
}

func (s *Storage) GetVendor(ctx context.Context, id int64) (*VendorWithScore, error) {
	v := &VendorWithScore{}
	query := `
        SELECT v.*, AVG(e.overall_score) AS average_score
        FROM vendors v
        LEFT JOIN evaluations e ON e.vendor_id = v.id
        WHERE v.id = $1
        GROUP BY v.id`
	err := s.db.GetContext(ctx, v, query, id)
	return v, err
}

func (s *Storage) GetVendors(ctx context.Context, limit, offset int) ([]VendorWithScore, error) {
	query := `
        SELECT v.*, AVG(e.overall_score) AS average_score
        FROM vendors v
        LEFT JOIN evaluations e ON e.vendor_id = v.id
        GROUP BY v.id
        ORDER BY v.name ASC
        LIMIT $1 OFFSET $2`
	vendors := []VendorWithScore{}
	err := s.db.SelectContext(ctx, &vendors, query, limit, offset)
	return vendors, err
}

// UpdateVendorIntake records the arrival of a vendor's RFI response.
func (s *Storage) UpdateVendorIntake(ctx context.Context, id int64, received bool, status string) (*Vendor, error) {
	v := &Vendor{}
	query := `
        UPDATE vendors
        SET rfi_received = $1,
            rfi_received_at = CASE WHEN $1 THEN NOW() ELSE NULL END,
            rfi_status = $2,
            updated_at = NOW()
        WHERE id = $3
        RETURNING *`
	err := s.db.GetContext(ctx, v, query, received, status, id)
	return v, err
}

func (s *Storage) RenameVendor(ctx context.Context, id int64, name string) (*Vendor, error) {
	v := &Vendor{}
	query := `
        UPDATE vendors SET name = $1, updated_at = NOW()
        WHERE id = $2
        RETURNING *`
	err := s.db.GetContext(ctx, v, query, name, id)
	return v, err
}

// VendorNameTaken reports whether another vendor already uses the name.
func (s *Storage) VendorNameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	var count int
	query := `SELECT COUNT(1) FROM vendors WHERE name = $1 AND id <> $2`
	err := s.db.GetContext(ctx, &count, query, name, excludeID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SetVendorDecision records a direct decision by a decision-maker,
// bypassing the vote quorum.
func (s *Storage) SetVendorDecision(ctx context.Context, id int64, decision string) (*Vendor, error) {
	v := &Vendor{}
	query := `
        UPDATE vendors
        SET final_decision = $1, rfi_status = $2, updated_at = NOW()
        WHERE id = $3
        RETURNING *`
	err := s.db.GetContext(ctx, v, query, decision, RFICompleted, id)
	return v, err
}

func (s *Storage) DeleteVendor(ctx context.Context, id int64) error {
	// Dependent rows go through ON DELETE CASCADE.
	query := `DELETE FROM vendors WHERE id=$1`
	_, err := s.db.ExecContext(ctx, query, id)
	return err
}

// ClearedCounts reports what a clear-data call removed.
type ClearedCounts struct {
	Notifications int64 `json:"notifications"`
	Messages      int64 `json:"messages"`
	Votes         int64 `json:"votes"`
	Evaluations   int64 `json:"evaluations"`
	Drafts        int64 `json:"drafts"`
}

// ClearVendorData removes the vendor's chat history, votes, evaluations
// and drafts and resets its decision state in one transaction, so a
// failure leaves everything untouched.
func (s *Storage) ClearVendorData(ctx context.Context, vendorID int64) (*ClearedCounts, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	counts := &ClearedCounts{}

	// Notifications first: they reference messages.
	res, err := tx.ExecContext(ctx, `
        DELETE FROM chat_notifications
        WHERE message_id IN (SELECT id FROM chat_messages WHERE vendor_id = $1)`, vendorID)
	if err != nil {
		return nil, err
	}
	counts.Notifications, _ = res.RowsAffected()

	res, err = tx.ExecContext(ctx, `DELETE FROM chat_messages WHERE vendor_id = $1`, vendorID)
	if err != nil {
		return nil, err
	}
	counts.Messages, _ = res.RowsAffected()

	res, err = tx.ExecContext(ctx, `DELETE FROM vendor_votes WHERE vendor_id = $1`, vendorID)
	if err != nil {
		return nil, err
	}
	counts.Votes, _ = res.RowsAffected()

	res, err = tx.ExecContext(ctx, `DELETE FROM evaluations WHERE vendor_id = $1`, vendorID)
	if err != nil {
		return nil, err
	}
	counts.Evaluations, _ = res.RowsAffected()

	res, err = tx.ExecContext(ctx, `DELETE FROM evaluation_drafts WHERE vendor_id = $1`, vendorID)
	if err != nil {
		return nil, err
	}
	counts.Drafts, _ = res.RowsAffected()

	_, err = tx.ExecContext(ctx, `
        UPDATE vendors
        SET final_decision = NULL,
            rfi_status = $1,
            rfi_received = FALSE,
            rfi_received_at = NULL,
            updated_at = NOW()
        WHERE id = $2`, RFIInProgress, vendorID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return counts, nil
}
