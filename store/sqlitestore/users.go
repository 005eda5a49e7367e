package sqlitestore

import (
	"context"
	"time"

	"inventory-server/models"
	"inventory-server/store"
)

const userColumns = "id, name, email, password_hash, role, created_at, updated_at"

func scanUser(row scanner) (models.User, error) {
	var (
		u                models.User
		created, updated string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &created, &updated)
	if err != nil {
		return u, err
	}
	if u.CreatedAt, err = parseTime(created); err != nil {
		return u, err
	}
	u.UpdatedAt, err = parseTime(updated)
	return u, err
}

// RegisterUser decides the role inside the INSERT, so the emptiness check
// and the write happen under the same write lock.
func (s *Store) RegisterUser(ctx context.Context, u *models.User) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		SELECT ?, ?, ?, ?, CASE WHEN EXISTS (SELECT 1 FROM users) THEN ? ELSE ? END, ?, ?
		RETURNING role`,
		u.ID, u.Name, u.Email, u.PasswordHash, models.RoleStaff, models.RoleAdmin,
		formatTime(u.CreatedAt), formatTime(u.UpdatedAt)).Scan(&u.Role)
	return translate(err)
}

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
	return u, translate(err)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email))
	return u, translate(err)
}

func (s *Store) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?",
		passwordHash, formatTime(time.Now()), userID)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (s *Store) CreatePasswordReset(ctx context.Context, r models.PasswordReset) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO password_resets (token_hash, user_id, expires_at, used) VALUES (?, ?, ?, 0)",
		r.TokenHash, r.UserID, formatTime(r.ExpiresAt))
	return translate(err)
}

func (s *Store) ConsumePasswordReset(ctx context.Context, tokenHash string, now time.Time) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback() //nolint:errcheck

	var userID string
	err = tx.QueryRowContext(ctx, `
		SELECT user_id FROM password_resets
		WHERE token_hash = ? AND used = 0 AND expires_at > ?`,
		tokenHash, formatTime(now)).Scan(&userID)
	if err != nil {
		return "", translate(err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE password_resets SET used = 1 WHERE token_hash = ?", tokenHash); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return userID, nil
}

var _ store.Users = (*Store)(nil)
