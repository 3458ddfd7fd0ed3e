package service

import (
	"context"
	"fmt"
	"log/slog"

	"launchpad/internal/middleware"
	"launchpad/internal/models"
	"launchpad/internal/observability"
	"launchpad/internal/repository"
)

const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 100
)

// Publisher pushes stored notifications to realtime subscribers.
type Publisher interface {
	PublishNotification(ctx context.Context, n *models.Notification) error
}

// NotificationService stores feed entries and serves the recipient's feed.
type NotificationService struct {
	store     repository.Store
	publisher Publisher
}

func NewNotificationService(store repository.Store, publisher Publisher) *NotificationService {
	return &NotificationService{store: store, publisher: publisher}
}

// ListNotificationsInput filters a feed page.
type ListNotificationsInput struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}

func activatedBody(productName string) string {
	return fmt.Sprintf("Your product %s has been activated.", productName)
}

func rejectedBody(productName, reason string) string {
	return fmt.Sprintf("Your product \"%s\" has been rejected. Reason: %s", productName, reason)
}

func commentBody(productName string) string {
	return fmt.Sprintf("Commented on your product \"%s\"", productName)
}

const upvoteBody = "Upvoted your product"

// emit writes n through repos, normally the transaction of the triggering
// mutation. Delivery happens later through Deliver, once that commits.
func (s *NotificationService) emit(ctx context.Context, repos repository.Store, n *models.Notification) error {
	if err := repos.Notifications().Create(ctx, n); err != nil {
		return err
	}
	observability.NotificationsEmitted.WithLabelValues(string(n.Type)).Inc()
	return nil
}

// Deliver publishes committed notifications. Failures are logged; the feed
// row is already durable and the client will see it on the next fetch.
func (s *NotificationService) Deliver(ctx context.Context, notes ...*models.Notification) {
	if s == nil || s.publisher == nil {
		return
	}
	for _, n := range notes {
		if n == nil {
			continue
		}
		if err := s.publisher.PublishNotification(ctx, n); err != nil {
			middleware.Logger.WarnContext(ctx, "notification publish failed",
				slog.String("notification_id", n.ID),
				slog.String("user_id", n.UserID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// List returns the caller's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, caller *Caller, in ListNotificationsInput) ([]models.Notification, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	limit := in.Limit
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}
	offset := in.Offset
	if offset < 0 {
		offset = 0
	}

	notes, err := s.store.Notifications().ListByUser(ctx, caller.UserID, in.UnreadOnly, limit, offset)
	if err != nil {
		return nil, persistence(ctx, "notifications.list", err, "", nil)
	}
	return notes, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, caller *Caller) (int64, error) {
	if err := requireCaller(caller); err != nil {
		return 0, err
	}
	n, err := s.store.Notifications().CountUnread(ctx, caller.UserID)
	if err != nil {
		return 0, persistence(ctx, "notifications.unread_count", err, "", nil)
	}
	return n, nil
}

// MarkRead acknowledges one notification. Notifications addressed to someone
// else are reported as not found.
func (s *NotificationService) MarkRead(ctx context.Context, caller *Caller, id string) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	rows, err := s.store.Notifications().MarkRead(ctx, id, caller.UserID)
	if err != nil {
		return persistence(ctx, "notifications.mark_read", err, "", nil)
	}
	if rows == 0 {
		return models.NewNotFoundError("Notification", id)
	}
	return nil
}

// MarkAllRead acknowledges every unread notification and returns how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, caller *Caller) (int64, error) {
	if err := requireCaller(caller); err != nil {
		return 0, err
	}
	rows, err := s.store.Notifications().MarkAllRead(ctx, caller.UserID)
	if err != nil {
		return 0, persistence(ctx, "notifications.mark_all_read", err, "", nil)
	}
	return rows, nil
}
