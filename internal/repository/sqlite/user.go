package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/evtimahovich/talentflow/internal/models"
)

func (r *Repo) CreateUser(ctx context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("user is nil")
	}

	_, err := r.conn.Exec(ctx,
		`INSERT INTO users (id, name, email, role, company_id, avatar, password_hash, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, string(u.Role), nullable(u.CompanyID), nullable(u.Avatar), u.PasswordHash, now())
	return err
}

func (r *Repo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.scanUser(r.conn.QueryRow(ctx,
		`SELECT id, name, email, role, company_id, avatar, password_hash FROM users WHERE id = ?`, id))
}

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.scanUser(r.conn.QueryRow(ctx,
		`SELECT id, name, email, role, company_id, avatar, password_hash FROM users WHERE email = ?`, email))
}

func (r *Repo) UpdateUser(ctx context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("user is nil")
	}

	_, err := r.conn.Exec(ctx,
		`UPDATE users SET name = ?, email = ?, role = ?, company_id = ?, avatar = ?, password_hash = ?, updated = ? WHERE id = ?`,
		u.Name, u.Email, string(u.Role), nullable(u.CompanyID), nullable(u.Avatar), u.PasswordHash, now(), u.ID)
	return err
}

func (r *Repo) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var role string
	var companyID, avatar, hash sql.NullString
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &companyID, &avatar, &hash); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	u.Role = models.Role(role)
	u.CompanyID = companyID.String
	u.Avatar = avatar.String
	u.PasswordHash = hash.String
	return &u, nil
}

// nullable maps an empty string to NULL so optional columns stay NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
