package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/coffeematch/internal/models"
)

const userColumns = "id, name, email, location, bio"

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Location, &u.Bio)
	return u, err
}

func (s *Store) CreateUser(ctx context.Context, in models.RegisterInput) (models.User, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return models.User{}, invalid(err.Error())
	}
	var user models.User
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := s.queryRow(ctx, tx, "SELECT count(*) FROM users WHERE lower(email) = lower(?)", in.Email).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if exists > 0 {
			return invalid("Email already registered")
		}

		id, err := s.insert(ctx, tx,
			"INSERT INTO users (name, email, location, bio) VALUES (?, ?, ?, ?)",
			in.Name, in.Email, in.Location, in.Bio)
		if err != nil {
			if isUniqueViolation(err) {
				return invalid("Email already registered")
			}
			return fmt.Errorf("failed to insert user: %w", err)
		}
		user = models.User{ID: id, Name: in.Name, Email: in.Email, Location: in.Location, Bio: in.Bio}
		return nil
	})
	return user, err
}

func (s *Store) getUser(ctx context.Context, q querier, id int64) (models.User, error) {
	u, err := scanUser(s.queryRow(ctx, q, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, notFound("User not found")
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (models.User, error) {
	return s.getUser(ctx, s.db, id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	email = strings.TrimSpace(email)
	u, err := scanUser(s.queryRow(ctx, s.db, "SELECT "+userColumns+" FROM users WHERE lower(email) = lower(?)", email))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, notFound("User not found")
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.query(ctx, s.db, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) UpdateUser(ctx context.Context, id int64, in models.ProfileUpdate) (models.User, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return models.User{}, invalid(err.Error())
	}
	res, err := s.exec(ctx, s.db,
		"UPDATE users SET name = ?, bio = ?, location = ? WHERE id = ?",
		in.Name, in.Bio, in.Location, id)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to update user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.User{}, notFound("User not found")
	}
	return s.GetUser(ctx, id)
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "users", "User", id)
}
