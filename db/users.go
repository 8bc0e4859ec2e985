package db

import (
	"context"
	"database/sql"
)

// GetUsers возвращает всех пользователей, новые первыми
func (s *Storage) GetUsers(ctx context.Context) ([]User, error) {
	users := []User{}
	query := `SELECT * FROM users ORDER BY created_at DESC`
	err := s.db.SelectContext(ctx, &users, query)
	return users, err
}

// GetPendingUsers возвращает заявки, ожидающие одобрения
func (s *Storage) GetPendingUsers(ctx context.Context) ([]User, error) {
	users := []User{}
	query := `SELECT * FROM users WHERE approval_status='PENDING' ORDER BY created_at DESC`
	err := s.db.SelectContext(ctx, &users, query)
	return users, err
}

// SetUserApproval переводит заявку в APPROVED или REJECTED
func (s *Storage) SetUserApproval(ctx context.Context, id int64, status string) (*User, error) {
	u := &User{}
	query := `
        UPDATE users SET approval_status=$2, updated_at=NOW()
        WHERE id=$1
        RETURNING *`
	err := s.db.GetContext(ctx, u, query, id, status)
	return u, err
}

// SetUserRole updates the user's role and keeps the evaluator record in
// step, so already-submitted evaluations report the new role.
func (s *Storage) SetUserRole(ctx context.Context, id int64, role string) (*User, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	u := &User{}
	query := `
        UPDATE users SET role=$2, updated_at=NOW()
        WHERE id=$1
        RETURNING *`
	if err := tx.GetContext(ctx, u, query, id, role); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE evaluators SET role=$2 WHERE user_id=$1`, id, role); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return u, nil
}

// SetUserPermissions задаёт флаги доступа к чату и экспорту
func (s *Storage) SetUserPermissions(ctx context.Context, id int64, canAccessChat, canExportData bool) (*User, error) {
	u := &User{}
	query := `
        UPDATE users SET can_access_chat=$2, can_export_data=$3, updated_at=NOW()
        WHERE id=$1
        RETURNING *`
	err := s.db.GetContext(ctx, u, query, id, canAccessChat, canExportData)
	return u, err
}

// DeleteUser удаляет пользователя; зависимые записи снимает каскад
func (s *Storage) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
