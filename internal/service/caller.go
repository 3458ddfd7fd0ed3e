// Package service implements the product lifecycle, moderation, engagement
// and notification operations.
package service

import (
	"context"
	"errors"
	"log/slog"

	"launchpad/internal/middleware"
	"launchpad/internal/models"

	"gorm.io/gorm"
)

// Caller is the authenticated user on whose behalf an operation runs. A nil
// *Caller is an anonymous request.
type Caller struct {
	UserID  string
	Name    string
	Email   string
	Image   string
	IsAdmin bool
}

// CallerFromUser builds a Caller from a stored user; nil stays nil.
func CallerFromUser(u *models.User) *Caller {
	if u == nil {
		return nil
	}
	return &Caller{UserID: u.ID, Name: u.Name, Email: u.Email, Image: u.Image, IsAdmin: u.IsAdmin}
}

func requireCaller(caller *Caller) error {
	if caller == nil || caller.UserID == "" {
		return models.NewUnauthenticatedError("You must be signed in")
	}
	return nil
}

func requireAdmin(caller *Caller) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	if !caller.IsAdmin {
		return models.NewUnauthorizedError("Administrator access required")
	}
	return nil
}

// persistence converts a repository error into an AppError. AppErrors pass
// through untouched; record-not-found becomes NOT_FOUND for resource/id and
// anything else is logged and reported as INTERNAL_ERROR.
func persistence(ctx context.Context, op string, err error, resource string, id interface{}) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) && resource != "" {
		return models.NewNotFoundError(resource, id)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.NewConflictError("A record with the same unique value already exists")
	}
	middleware.Logger.ErrorContext(ctx, "persistence failure", slog.String("op", op), slog.String("error", err.Error()))
	return models.NewInternalError(err)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
