package repo

import (
	"context"
	"database/sql"
	"fmt"

	"pulseboard/internal/domain"
)

type NewUser struct {
	Username string
	Password string
	Email    string
	FullName string
}

// CreateUser inserts a user and seeds their default dashboard, in one
// transaction.
func (r Repo) CreateUser(ctx context.Context, u NewUser) (domain.User, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.User{}, err
	}
	defer tx.Rollback()

	createdAt := now()
	res, err := tx.ExecContext(ctx, `INSERT INTO users(username,password,email,full_name,created_at) VALUES (?,?,?,?,?)`,
		u.Username, u.Password, u.Email, u.FullName, createdAt)
	if err != nil {
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.User{}, err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO dashboards(user_id,name,is_default,created_at) VALUES (?,?,1,?)`,
		id, "Main Dashboard", createdAt); err != nil {
		return domain.User{}, fmt.Errorf("seed default dashboard: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.User{}, err
	}
	return domain.User{
		ID:        id,
		Username:  u.Username,
		Password:  u.Password,
		Email:     u.Email,
		FullName:  u.FullName,
		CreatedAt: createdAt,
	}, nil
}

func scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.Password, &u.Email, &u.FullName, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	return u, err
}

func (r Repo) GetUser(ctx context.Context, id int64) (domain.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		`SELECT id,username,password,email,full_name,created_at FROM users WHERE id=?`, id))
}

func (r Repo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		`SELECT id,username,password,email,full_name,created_at FROM users WHERE username=?`, username))
}
