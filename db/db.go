package db

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

// ErrDuplicateEvaluation is returned when a second evaluation is
// submitted for the same (vendor, evaluator) pair.
var ErrDuplicateEvaluation = errors.New("evaluation already exists for this vendor and evaluator")

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// User (Пользователь)
type User struct {
	ID             int64     `db:"id" json:"id"`
	Email          string    `db:"email" json:"email"`
	Password       string    `db:"password" json:"-"`
	Name           string    `db:"name" json:"name"`
	Role           string    `db:"role" json:"role"`
	ApprovalStatus string    `db:"approval_status" json:"approvalStatus"`
	CanAccessChat  bool      `db:"can_access_chat" json:"canAccessChat"`
	CanExportData  bool      `db:"can_export_data" json:"canExportData"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// Evaluator (Оценщик, 1:1 к пользователю)
type Evaluator struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"userId"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// CreateUserWithEvaluator registers an account and its evaluator record
// in one transaction; a partial registration never survives.
func (s *Storage) CreateUserWithEvaluator(ctx context.Context, u *User) (*Evaluator, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	userQuery := `
        INSERT INTO users (email, password, name, role, approval_status, can_access_chat, can_export_data)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at, updated_at`
	err = tx.QueryRowxContext(ctx, userQuery,
		u.Email, u.Password, u.Name, u.Role, u.ApprovalStatus, u.CanAccessChat, u.CanExportData).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}

	e := &Evaluator{UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
	evalQuery := `
        INSERT INTO evaluators (user_id, name, email, role)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`
	err = tx.QueryRowxContext(ctx, evalQuery, e.UserID, e.Name, e.Email, e.Role).
		Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	u := &User{}
	query := `SELECT * FROM users WHERE email=$1`
	err := s.db.GetContext(ctx, u, query, email)
	return u, err
}

func (s *Storage) GetUserByID(ctx context.Context, id int64) (*User, error) {
	u := &User{}
	query := `SELECT * FROM users WHERE id=$1`
	err := s.db.GetContext(ctx, u, query, id)
	return u, err
}

func (s *Storage) GetEvaluatorByUserID(ctx context.Context, userID int64) (*Evaluator, error) {
	e := &Evaluator{}
	query := `SELECT * FROM evaluators WHERE user_id=$1`
	err := s.db.GetContext(ctx, e, query, userID)
	return e, err
}

// UpsertEvaluatorForUser lazily creates the evaluator record for
// decision-makers and admins submitting their first evaluation.
func (s *Storage) UpsertEvaluatorForUser(ctx context.Context, userID int64, name, email, role string) (*Evaluator, error) {
	e := &Evaluator{UserID: userID, Name: name, Email: email, Role: role}
	query := `
        INSERT INTO evaluators (user_id, name, email, role)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (user_id) DO UPDATE SET name = EXCLUDED.name
        RETURNING id, created_at`
	err := s.db.QueryRowxContext(ctx, query, userID, name, email, role).
		Scan(&e.ID, &e.CreatedAt)
	return e, err
}
