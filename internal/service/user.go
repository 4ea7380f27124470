// Package service contains the business logic layer of the application.
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// UserService takes a repository.UserRepository (interface), NOT a concrete
// store, so the same rules run on SQLite, Postgres or an in-memory fake.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/users-api/internal/apperror"
	"github.com/sakif/users-api/internal/model"
	"github.com/sakif/users-api/internal/repository"
)

// MsgEmailExists is returned for both the pre-check and a unique-constraint
// rejection from the store.
const MsgEmailExists = "User with this email already exists"

// UserService handles business logic for user records.
type UserService struct {
	repo   repository.UserRepository
	logger *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(repo repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger,
	}
}

// List returns all users ordered by id, passwords omitted.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing users: %w", err)
	}

	for i := range users {
		users[i] = users[i].WithoutPassword()
	}
	return users, nil
}

// GetByID returns one user with the password omitted.
// Returns apperror.ErrNotFound if the user doesn't exist.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	public := user.WithoutPassword()
	return &public, nil
}

// Create inserts a validated payload. The returned record includes the
// password as stored.
//
// The email pre-check is best effort: two concurrent creates can both pass
// it, and the loser is then rejected by the store's unique constraint with
// the same conflict error.
func (s *UserService) Create(ctx context.Context, in model.UserInput) (*model.User, error) {
	email := model.Value(in.Email)

	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}

	user := &model.User{
		FirstName: model.Value(in.FirstName),
		LastName:  model.Value(in.LastName),
		Email:     email,
		Password:  model.Value(in.Password),
		Birthday:  model.Value(in.Birthday),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.Conflict("email", MsgEmailExists)
		}
		s.logger.Error("failed to create user",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user created", slog.Int64("id", user.ID))
	return user, nil
}

// Update fetches the record, merges the payload into it and saves it.
//
// Merge rule: a non-empty field replaces the stored value; an absent or empty
// field keeps it. A field therefore cannot be cleared through this method.
func (s *UserService) Update(ctx context.Context, id string, in model.UserInput) (*model.User, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if email := model.Value(in.Email); email != "" && email != user.Email {
		if err := s.ensureEmailFree(ctx, email); err != nil {
			return nil, err
		}
	}

	user.FirstName = pick(in.FirstName, user.FirstName)
	user.LastName = pick(in.LastName, user.LastName)
	user.Email = pick(in.Email, user.Email)
	user.Password = pick(in.Password, user.Password)
	user.Birthday = pick(in.Birthday, user.Birthday)

	if err := s.repo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, apperror.ErrConflict):
			return nil, apperror.Conflict("email", MsgEmailExists)
		case errors.Is(err, apperror.ErrNotFound):
			return nil, apperror.NotFound("User", id)
		}
		s.logger.Error("failed to update user",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating user: %w", err)
	}

	s.logger.Info("user updated", slog.Int64("id", user.ID))
	return user, nil
}

// Delete removes the user permanently.
func (s *UserService) Delete(ctx context.Context, id string) error {
	user, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.NotFound("User", id)
		}
		s.logger.Error("failed to delete user",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting user: %w", err)
	}

	s.logger.Info("user deleted", slog.Int64("id", user.ID))
	return nil
}

// find loads the full record. Not-found is returned untouched and is not
// logged; it is a normal outcome.
func (s *UserService) find(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("User", id)
		}
		s.logger.Error("failed to get user",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return user, nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return apperror.Conflict("email", MsgEmailExists)
	case errors.Is(err, apperror.ErrNotFound):
		return nil
	default:
		s.logger.Error("failed to check email",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("checking email: %w", err)
	}
}

func pick(next *string, current string) string {
	if v := model.Value(next); v != "" {
		return v
	}
	return current
}
