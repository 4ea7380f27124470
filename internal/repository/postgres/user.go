package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/sakif/users-api/internal/apperror"
	"github.com/sakif/users-api/internal/model"
	"github.com/sakif/users-api/internal/repository"
)

// birthday is read back as text so the API sees the same "YYYY-MM-DD" string
// it wrote.
const userColumns = `id, first_name, last_name, email, password, birthday::text, created_at, updated_at`

// List returns every user ordered by id, without the password column.
func (db *DB) List(ctx context.Context) ([]model.User, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, first_name, last_name, email, birthday::text, created_at, updated_at
		 FROM users
		 ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Birthday,
			&u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterating users: %w", err)
	}
	return users, nil
}

// GetByID retrieves a single user, password included.
func (db *DB) GetByID(ctx context.Context, id string) (*model.User, error) {
	key, ok := repository.ParseID(id)
	if !ok {
		return nil, apperror.NotFound("User", id)
	}

	u, err := scanOne(db.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("User", id)
		}
		return nil, fmt.Errorf("postgres: getting user %s: %w", id, err)
	}
	return u, nil
}

// GetByEmail looks a user up by the exact (case-sensitive) email.
func (db *DB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanOne(db.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &apperror.AppError{Err: apperror.ErrNotFound, Message: "no user with this email"}
		}
		return nil, fmt.Errorf("postgres: getting user by email: %w", err)
	}
	return u, nil
}

// Create inserts user and fills in ID and timestamps from the RETURNING row.
func (db *DB) Create(ctx context.Context, user *model.User) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO users (first_name, last_name, email, password, birthday)
		 VALUES ($1, $2, $3, $4, $5::text::date)
		 RETURNING id, created_at, updated_at`,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Password,
		user.Birthday,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: creating user: %w", mapError(err))
	}
	return nil
}

// Update writes every mutable column of user and bumps updated_at.
func (db *DB) Update(ctx context.Context, user *model.User) error {
	err := db.pool.QueryRow(ctx,
		`UPDATE users
		 SET first_name = $1, last_name = $2, email = $3, password = $4,
		     birthday = $5::text::date, updated_at = NOW()
		 WHERE id = $6
		 RETURNING updated_at`,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Password,
		user.Birthday,
		user.ID,
	).Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NotFound("User", fmt.Sprint(user.ID))
		}
		return fmt.Errorf("postgres: updating user %d: %w", user.ID, mapError(err))
	}
	return nil
}

// Delete removes a user permanently.
func (db *DB) Delete(ctx context.Context, id int64) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: deleting user %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("User", fmt.Sprint(id))
	}
	return nil
}

func scanOne(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Password, &u.Birthday,
		&u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}
