package sqlstore

import (
	"context"
	"errors"

	"github.com/example/room-booking/internal/persistence"
)

type userRepository struct {
	q execer
}

func (r userRepository) GetUser(ctx context.Context, email string) (persistence.User, error) {
	var u persistence.User
	err := r.q.QueryRowContext(ctx,
		`SELECT email, name, role FROM users WHERE email = ?`, email,
	).Scan(&u.Email, &u.Name, &u.Role)
	if err != nil {
		return persistence.User{}, mapError(err)
	}
	return u, nil
}

func (r userRepository) ListUsers(ctx context.Context) ([]persistence.User, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT email, name, role FROM users ORDER BY email`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var users []persistence.User
	for rows.Next() {
		var u persistence.User
		if err := rows.Scan(&u.Email, &u.Name, &u.Role); err != nil {
			return nil, mapError(err)
		}
		users = append(users, u)
	}
	return users, mapError(rows.Err())
}

func (r userRepository) UpsertUser(ctx context.Context, user persistence.User) error {
	_, err := r.GetUser(ctx, user.Email)
	switch {
	case err == nil:
		_, err = r.q.ExecContext(ctx,
			`UPDATE users SET name = ?, role = ? WHERE email = ?`,
			user.Name, user.Role, user.Email,
		)
	case errors.Is(err, persistence.ErrNotFound):
		_, err = r.q.ExecContext(ctx,
			`INSERT INTO users (email, name, role) VALUES (?, ?, ?)`,
			user.Email, user.Name, user.Role,
		)
	}
	return mapError(err)
}
