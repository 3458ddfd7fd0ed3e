package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductStatus is the moderation state of a product.
type ProductStatus string

const (
	ProductStatusPending  ProductStatus = "PENDING"
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusRejected ProductStatus = "REJECTED"
)

// Product is a submitted launch. Only ACTIVE products are publicly listed.
type Product struct {
	ID          string        `gorm:"primaryKey;size:36" json:"id"`
	Name        string        `gorm:"not null" json:"name"`
	Slug        string        `gorm:"uniqueIndex;not null" json:"slug"`
	Headline    string        `json:"headline"`
	Description string        `json:"description"`
	Logo        string        `json:"logo"`
	ReleaseDate string        `json:"release_date"`
	Website     string        `json:"website"`
	Twitter     string        `json:"twitter"`
	Discord     string        `json:"discord"`
	Status      ProductStatus `gorm:"type:varchar(16);not null;default:PENDING;index" json:"status"`
	Rank        int           `gorm:"not null;default:0" json:"rank"`
	UserID      string        `gorm:"not null;index;size:64" json:"user_id"`
	User        *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	Images     []Image    `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"images"`
	Categories []Category `gorm:"many2many:product_categories" json:"categories"`
	Comments   []Comment  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	Upvotes    []Upvote   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"upvotes,omitempty"`
}

func (p *Product) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = ProductStatusPending
	}
	return nil
}

// OwnedBy reports whether userID is the product owner.
func (p *Product) OwnedBy(userID string) bool {
	return userID != "" && p.UserID == userID
}

// Image is a gallery picture owned by a product.
type Image struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	URL       string `gorm:"not null" json:"url"`
	ProductID string `gorm:"not null;index;size:36" json:"product_id"`
}

func (i *Image) BeforeCreate(_ *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// Category is matched by exact, case-sensitive name.
type Category struct {
	ID       string    `gorm:"primaryKey;size:36" json:"id"`
	Name     string    `gorm:"uniqueIndex;not null" json:"name"`
	Products []Product `gorm:"many2many:product_categories" json:"-"`
}

func (c *Category) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
