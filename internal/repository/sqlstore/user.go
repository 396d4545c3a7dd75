package sqlstore

import (
	"context"
	"fmt"

	"github.com/sakif/mediaplay-sync/internal/apperror"
	"github.com/sakif/mediaplay-sync/internal/model"
)

const userColumns = `id, email, name, password_hash, created_at, updated_at`

func scanUser(s scanner) (*model.User, error) {
	var u model.User
	if err := s.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts user and fills in ID and timestamps. An email that is
// already registered yields apperror.ErrConflict, including when another
// signup for the same email commits first.
func (x *queries) CreateUser(ctx context.Context, user *model.User) error {
	now := x.timestamp()

	err := x.queryRow(ctx,
		`INSERT INTO users (email, name, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?) RETURNING id`,
		user.Email, user.Name, user.PasswordHash, now, now,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Email)
		}
		return fmt.Errorf("sqlstore: inserting user: %w", err)
	}

	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (x *queries) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	u, err := scanUser(x.queryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return nil, notFoundOr(err, "user", id, "getting user by id")
	}
	return u, nil
}

// GetUserByEmail matches the stored email exactly (case-sensitive).
func (x *queries) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(x.queryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		return nil, notFoundOr(err, "user", email, "getting user by email")
	}
	return u, nil
}

func (x *queries) DeleteUser(ctx context.Context, id int64) error {
	res, err := x.exec(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlstore: deleting user %d: %w", id, err)
	}
	return expectOneRow(res, "user", id)
}
