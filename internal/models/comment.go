package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is a remark on a product. ProfilePicture snapshots the author's
// avatar at the time of writing and is not refreshed afterwards.
type Comment struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	ProductID      string    `gorm:"not null;index;size:36" json:"product_id"`
	UserID         string    `gorm:"not null;index;size:64" json:"user_id"`
	Body           string    `gorm:"not null" json:"body"`
	ProfilePicture string    `json:"profile_picture"`
	User           *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func (c *Comment) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
