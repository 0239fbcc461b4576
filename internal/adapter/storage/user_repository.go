package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/artisan-market/internal/core/domain"
	"github.com/rl1809/artisan-market/internal/port"
)

const userColumns = `user_id, username, password_hash, role, full_name, email, phone, created_at`

func scanUser(row rowScanner) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.FullName, &u.Email, &u.Phone, &u.CreatedAt)
	return u, err
}

func (s *SQLStore) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	user.CreatedAt = s.stamp(user.CreatedAt)
	id, err := s.dialect.InsertID(ctx, s.db, s.dialect.Rebind(`
		INSERT INTO users (username, password_hash, role, full_name, email, phone, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`), "user_id",
		user.Username, user.PasswordHash, string(user.Role), user.FullName,
		user.Email, user.Phone, user.CreatedAt,
	)
	if err != nil {
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	user.ID = id
	return user, nil
}

func (s *SQLStore) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return s.getUser(ctx, `username = ?`, username)
}

func (s *SQLStore) GetUserByID(ctx context.Context, userID int64) (domain.User, error) {
	return s.getUser(ctx, `user_id = ?`, userID)
}

func (s *SQLStore) getUser(ctx context.Context, where string, arg any) (domain.User, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.Rebind(`
		SELECT `+userColumns+` FROM users WHERE `+where), arg)

	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, port.ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("query user: %w", err)
	}
	return user, nil
}

func (s *SQLStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users ORDER BY created_at DESC, user_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
