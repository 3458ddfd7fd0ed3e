package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationType identifies the event that produced a notification.
type NotificationType string

const (
	NotificationActivated NotificationType = "ACTIVATED"
	NotificationRejected  NotificationType = "REJECTED"
	NotificationComment   NotificationType = "COMMENT"
	NotificationUpvote    NotificationType = "UPVOTE"
)

// NotificationStatus tracks whether the recipient has seen a notification.
type NotificationStatus string

const (
	NotificationUnread NotificationStatus = "UNREAD"
	NotificationRead   NotificationStatus = "READ"
)

// Notification is an append-only feed entry; only Status changes after insert.
// ProductID is kept without a foreign key so the feed survives product deletion.
type Notification struct {
	ID             string             `gorm:"primaryKey;size:36" json:"id"`
	UserID         string             `gorm:"not null;size:64;index:idx_notification_user_status" json:"user_id"`
	Body           string             `gorm:"not null" json:"body"`
	Type           NotificationType   `gorm:"type:varchar(16);not null" json:"type"`
	Status         NotificationStatus `gorm:"type:varchar(16);not null;default:UNREAD;index:idx_notification_user_status" json:"status"`
	ProfilePicture string             `json:"profile_picture"`
	ProductID      string             `gorm:"size:36;index" json:"product_id"`
	CreatedAt      time.Time          `json:"created_at"`
}

func (n *Notification) BeforeCreate(_ *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Status == "" {
		n.Status = NotificationUnread
	}
	return nil
}

// AdminStats are the dashboard counters.
type AdminStats struct {
	Users            int64 `json:"users"`
	ActiveProducts   int64 `json:"active_products"`
	PendingProducts  int64 `json:"pending_products"`
	RejectedProducts int64 `json:"rejected_products"`
	Upvotes          int64 `json:"upvotes"`
}
