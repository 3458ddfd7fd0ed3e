package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"launchpad/internal/cache"
	"launchpad/internal/models"
	"launchpad/internal/observability"
	"launchpad/internal/repository"
)

const maxCommentLength = 10000

// EngagementService serves the public feed and handles comments and upvotes.
type EngagementService struct {
	store         repository.Store
	notifications *NotificationService
}

func NewEngagementService(store repository.Store, notifications *NotificationService) *EngagementService {
	return &EngagementService{store: store, notifications: notifications}
}

// GetActiveProducts returns the public directory feed.
func (s *EngagementService) GetActiveProducts(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	err := cache.Aside(ctx, cache.ActiveProductsKey, &products, cache.ActiveProductsTTL, func() error {
		found, err := s.store.Products().ListFeed(ctx)
		if err != nil {
			return err
		}
		products = found
		return nil
	})
	if err != nil {
		return nil, persistence(ctx, "feed.list", err, "", nil)
	}
	return products, nil
}

// CommentOnProduct adds a comment signed with the caller's current avatar and
// notifies the owner unless the caller is the owner.
func (s *EngagementService) CommentOnProduct(ctx context.Context, caller *Caller, productID, body string) (comment *models.Comment, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "EngagementService", "CommentOnProduct")
	defer func() { observability.EndSpan(span, err) }()

	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, models.NewValidationError("Comment body is required")
	}
	if utf8.RuneCountInString(body) > maxCommentLength {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	var note *models.Notification
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		product, err := tx.Products().GetByID(ctx, productID)
		if err != nil {
			return err
		}

		comment = &models.Comment{
			ProductID:      product.ID,
			UserID:         caller.UserID,
			Body:           body,
			ProfilePicture: caller.Image,
		}
		if err := tx.Comments().Create(ctx, comment); err != nil {
			return err
		}

		if product.OwnedBy(caller.UserID) {
			return nil
		}
		note = &models.Notification{
			UserID:         product.UserID,
			Body:           commentBody(product.Name),
			Type:           models.NotificationComment,
			ProfilePicture: caller.Image,
			ProductID:      product.ID,
		}
		return s.notifications.emit(ctx, tx, note)
	})
	if err != nil {
		return nil, persistence(ctx, "comments.create", err, "Product", productID)
	}

	cache.InvalidateActiveProducts(ctx)
	s.notifications.Deliver(ctx, note)
	return comment, nil
}

// DeleteComment removes a comment. The author, the product owner and
// administrators may delete it.
func (s *EngagementService) DeleteComment(ctx context.Context, caller *Caller, commentID string) (deleted *models.Comment, err error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		comment, err := tx.Comments().GetByID(ctx, commentID)
		if err != nil {
			return err
		}

		allowed := caller.IsAdmin || comment.UserID == caller.UserID
		if !allowed {
			product, err := tx.Products().GetByID(ctx, comment.ProductID)
			if err != nil && !isNotFound(err) {
				return err
			}
			allowed = product != nil && product.OwnedBy(caller.UserID)
		}
		if !allowed {
			return models.NewUnauthorizedError("You can only delete your own comments")
		}

		if err := tx.Comments().Delete(ctx, commentID); err != nil {
			return err
		}
		deleted = comment
		return nil
	})
	if err != nil {
		return nil, persistence(ctx, "comments.delete", err, "Comment", commentID)
	}

	cache.InvalidateActiveProducts(ctx)
	return deleted, nil
}

// UpvoteProduct toggles the caller's upvote. A new upvote notifies the owner
// unless the caller is the owner. An insert that loses a race against an
// identical concurrent insert counts as "already upvoted".
func (s *EngagementService) UpvoteProduct(ctx context.Context, caller *Caller, productID string) (result *models.UpvoteResult, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "EngagementService", "UpvoteProduct")
	defer func() { observability.EndSpan(span, err) }()

	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	var (
		note   *models.Notification
		action string
	)
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		product, err := tx.Products().GetByID(ctx, productID)
		if err != nil {
			return err
		}

		upvotes := tx.Upvotes()
		existing, err := upvotes.Find(ctx, productID, caller.UserID)
		switch {
		case err == nil:
			if err := upvotes.Delete(ctx, existing.ID); err != nil {
				return err
			}
			result = &models.UpvoteResult{Upvoted: false}
			action = "removed"
		case isNotFound(err):
			inserted, err := upvotes.Insert(ctx, &models.Upvote{ProductID: productID, UserID: caller.UserID})
			if err != nil {
				return err
			}
			result = &models.UpvoteResult{Upvoted: true}
			action = "added"
			if !inserted {
				action = "conflict"
				break
			}
			if !product.OwnedBy(caller.UserID) {
				note = &models.Notification{
					UserID:         product.UserID,
					Body:           upvoteBody,
					Type:           models.NotificationUpvote,
					ProfilePicture: caller.Image,
					ProductID:      product.ID,
				}
				if err := s.notifications.emit(ctx, tx, note); err != nil {
					return err
				}
			}
		default:
			return err
		}

		result.Count, err = upvotes.CountByProduct(ctx, productID)
		return err
	})
	if err != nil {
		return nil, persistence(ctx, "upvotes.toggle", err, "Product", productID)
	}

	observability.UpvoteToggles.WithLabelValues(action).Inc()
	cache.InvalidateActiveProducts(ctx)
	s.notifications.Deliver(ctx, note)
	return result, nil
}
