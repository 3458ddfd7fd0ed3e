package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"launchpad/internal/cache"
	"launchpad/internal/mailer"
	"launchpad/internal/middleware"
	"launchpad/internal/models"
	"launchpad/internal/observability"
	"launchpad/internal/repository"
)

// ModerationService lets administrators review submitted products.
type ModerationService struct {
	store         repository.Store
	notifications *NotificationService
	mail          mailer.Mailer
	publicURL     string
}

// NewModerationService returns a ModerationService. mail may be nil.
func NewModerationService(store repository.Store, notifications *NotificationService, mail mailer.Mailer, publicURL string) *ModerationService {
	if mail == nil {
		mail = mailer.Noop{}
	}
	return &ModerationService{
		store:         store,
		notifications: notifications,
		mail:          mail,
		publicURL:     strings.TrimRight(publicURL, "/"),
	}
}

// GetPendingProducts lists products awaiting review with categories and images.
func (s *ModerationService) GetPendingProducts(ctx context.Context, caller *Caller) ([]models.Product, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	products, err := s.store.Products().ListByStatus(ctx, models.ProductStatusPending)
	if err != nil {
		return nil, persistence(ctx, "moderation.pending", err, "", nil)
	}
	return products, nil
}

// ActivateProduct publishes a PENDING product and notifies its owner. It
// returns the product as it was before activation.
func (s *ModerationService) ActivateProduct(ctx context.Context, caller *Caller, id string) (*models.Product, error) {
	return s.decide(ctx, caller, id, models.ProductStatusActive, "")
}

// RejectProduct turns down a PENDING product and tells the owner why.
func (s *ModerationService) RejectProduct(ctx context.Context, caller *Caller, id, reason string) (*models.Product, error) {
	reason = strings.TrimSpace(reason)
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if reason == "" {
		return nil, models.NewValidationError("A rejection reason is required")
	}
	return s.decide(ctx, caller, id, models.ProductStatusRejected, reason)
}

func (s *ModerationService) decide(ctx context.Context, caller *Caller, id string, to models.ProductStatus, reason string) (before *models.Product, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ModerationService", "decide")
	defer func() { observability.EndSpan(span, err) }()

	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	var note *models.Notification
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		product, err := tx.Products().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if product.Status != models.ProductStatusPending {
			return models.NewConflictError(fmt.Sprintf("Product is %s; only PENDING products can be moderated", product.Status))
		}
		if err := tx.Products().SetStatus(ctx, id, to); err != nil {
			return err
		}

		note = &models.Notification{
			UserID:    product.UserID,
			ProductID: product.ID,
		}
		if to == models.ProductStatusActive {
			note.Type = models.NotificationActivated
			note.Body = activatedBody(product.Name)
			note.ProfilePicture = product.Logo
		} else {
			note.Type = models.NotificationRejected
			note.Body = rejectedBody(product.Name, reason)
		}
		if err := s.notifications.emit(ctx, tx, note); err != nil {
			return err
		}

		before = product
		return nil
	})
	if err != nil {
		return nil, persistence(ctx, "moderation.decide", err, "Product", id)
	}

	observability.ModerationDecisions.WithLabelValues(strings.ToLower(string(to))).Inc()
	cache.InvalidateActiveProducts(ctx)
	s.notifications.Deliver(ctx, note)
	s.sendDecisionMail(ctx, before, to == models.ProductStatusActive, reason)

	return before, nil
}

func (s *ModerationService) sendDecisionMail(ctx context.Context, product *models.Product, approved bool, reason string) {
	owner, err := s.store.Users().GetByID(ctx, product.UserID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "moderation mail skipped: owner lookup failed",
			slog.String("product_id", product.ID), slog.String("error", err.Error()))
		return
	}

	d := mailer.Decision{
		To:          owner.Email,
		OwnerName:   owner.Name,
		ProductName: product.Name,
		Approved:    approved,
		Reason:      reason,
	}
	if approved && s.publicURL != "" {
		d.ProductURL = s.publicURL + "/product/" + product.Slug
	}

	if err := s.mail.SendModerationDecision(ctx, d); err != nil {
		middleware.Logger.WarnContext(ctx, "moderation mail failed",
			slog.String("product_id", product.ID), slog.String("error", err.Error()))
	}
}

// GetStats returns dashboard counters.
func (s *ModerationService) GetStats(ctx context.Context, caller *Caller) (*models.AdminStats, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	var (
		stats models.AdminStats
		err   error
	)
	if stats.Users, err = s.store.Users().Count(ctx); err != nil {
		return nil, persistence(ctx, "stats.users", err, "", nil)
	}
	products := s.store.Products()
	if stats.ActiveProducts, err = products.CountByStatus(ctx, models.ProductStatusActive); err != nil {
		return nil, persistence(ctx, "stats.active", err, "", nil)
	}
	if stats.PendingProducts, err = products.CountByStatus(ctx, models.ProductStatusPending); err != nil {
		return nil, persistence(ctx, "stats.pending", err, "", nil)
	}
	if stats.RejectedProducts, err = products.CountByStatus(ctx, models.ProductStatusRejected); err != nil {
		return nil, persistence(ctx, "stats.rejected", err, "", nil)
	}
	if stats.Upvotes, err = s.store.Upvotes().Count(ctx); err != nil {
		return nil, persistence(ctx, "stats.upvotes", err, "", nil)
	}
	return &stats, nil
}
