package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"yamdb/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const userColumns = `id, username, email, role, bio, first_name, last_name, is_superuser, is_staff, is_active`

func scanUser(row *sql.Row) (*models.User, error) {
	var (
		u         models.User
		bio       sql.NullString
		firstName sql.NullString
		lastName  sql.NullString
	)
	if err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.Role, &bio, &firstName, &lastName,
		&u.IsSuperuser, &u.IsStaff, &u.IsActive,
	); err != nil {
		return nil, err
	}
	u.Bio = nullable(bio)
	u.FirstName = nullable(firstName)
	u.LastName = nullable(lastName)
	return &u, nil
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func (r *Repo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	row := r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get by username: %w", err)
	}
	return u, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get by id: %w", err)
	}
	return u, nil
}
