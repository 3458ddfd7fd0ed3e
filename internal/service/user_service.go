package service

import (
	"context"

	"launchpad/internal/middleware"
	"launchpad/internal/models"
	"launchpad/internal/repository"
)

// UserService keeps local user rows in step with the identity provider and
// manages the admin flag.
type UserService struct {
	store repository.Store
}

func NewUserService(store repository.Store) *UserService {
	return &UserService{store: store}
}

// ResolveIdentity upserts the token's profile and returns the stored user,
// including its admin flag.
func (s *UserService) ResolveIdentity(ctx context.Context, id middleware.Identity) (*models.User, error) {
	users := s.store.Users()
	if err := users.Upsert(ctx, &models.User{
		ID:    id.Subject,
		Name:  id.Name,
		Email: id.Email,
		Image: id.Picture,
	}); err != nil {
		return nil, persistence(ctx, "users.upsert", err, "", nil)
	}
	user, err := users.GetByID(ctx, id.Subject)
	if err != nil {
		return nil, persistence(ctx, "users.get", err, "User", id.Subject)
	}
	return user, nil
}

// SetAdmin grants or revokes admin rights for the user with the given ID or e-mail.
func (s *UserService) SetAdmin(ctx context.Context, idOrEmail string, admin bool) (*models.User, error) {
	users := s.store.Users()
	user, err := users.GetByID(ctx, idOrEmail)
	if isNotFound(err) {
		user, err = users.GetByEmail(ctx, idOrEmail)
	}
	if err != nil {
		return nil, persistence(ctx, "users.lookup", err, "User", idOrEmail)
	}
	if _, err := users.SetAdmin(ctx, user.ID, admin); err != nil {
		return nil, persistence(ctx, "users.set_admin", err, "", nil)
	}
	user.IsAdmin = admin
	return user, nil
}

func (s *UserService) ListAdmins(ctx context.Context) ([]models.User, error) {
	admins, err := s.store.Users().ListAdmins(ctx)
	if err != nil {
		return nil, persistence(ctx, "users.list_admins", err, "", nil)
	}
	return admins, nil
}
