package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Upvote records a user's upvote on a product.
// The combination of ProductID and UserID must be unique.
type Upvote struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	ProductID string    `gorm:"not null;size:36;uniqueIndex:idx_upvote_product_user" json:"product_id"`
	UserID    string    `gorm:"not null;size:64;uniqueIndex:idx_upvote_product_user" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *Upvote) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// UpvoteResult is the state after an upvote toggle.
type UpvoteResult struct {
	Upvoted bool  `json:"upvoted"`
	Count   int64 `json:"count"`
}
