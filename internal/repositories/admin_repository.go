package repositories

import (
	"context"
	"strings"

	intdb "caravan/internal/db"
	"caravan/internal/domain/models"
)

type AdminRepository struct {
	DB intdb.Querier
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GetByEmail fetches an admin account by email.
func (r AdminRepository) GetByEmail(ctx context.Context, email string) (models.AdminUser, error) {
	q, err := querier(r.DB)
	if err != nil {
		return models.AdminUser{}, err
	}
	var u models.AdminUser
	err = q.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, created_at
		FROM admin_users WHERE email=? LIMIT 1`, normalizeEmail(email),
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return models.AdminUser{}, notFound("usuario", err)
	}
	return u, nil
}

// Create inserts an admin account with an already hashed password.
func (r AdminRepository) Create(ctx context.Context, u models.AdminUser) (int64, error) {
	q, err := querier(r.DB)
	if err != nil {
		return 0, err
	}
	res, err := q.ExecContext(ctx, `INSERT INTO admin_users (name, email, password_hash) VALUES (?,?,?)`,
		strings.TrimSpace(u.Name), normalizeEmail(u.Email), u.PasswordHash)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// IsAllowed reports whether the email is on the admin allow-list.
func (r AdminRepository) IsAllowed(ctx context.Context, email string) (bool, error) {
	q, err := querier(r.DB)
	if err != nil {
		return false, err
	}
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM admin_emails WHERE email=?`, normalizeEmail(email)).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Allow adds an email to the allow-list; re-adding is a no-op.
func (r AdminRepository) Allow(ctx context.Context, email string) error {
	q, err := querier(r.DB)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `INSERT IGNORE INTO admin_emails (email) VALUES (?)`, normalizeEmail(email))
	return err
}

// Revoke removes an email from the allow-list.
func (r AdminRepository) Revoke(ctx context.Context, email string) error {
	q, err := querier(r.DB)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `DELETE FROM admin_emails WHERE email=?`, normalizeEmail(email))
	return err
}

// ListAllowed returns the allow-listed emails.
func (r AdminRepository) ListAllowed(ctx context.Context) ([]string, error) {
	q, err := querier(r.DB)
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, `SELECT email FROM admin_emails ORDER BY email ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return out, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
