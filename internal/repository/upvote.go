package repository

import (
	"context"

	"launchpad/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpvoteRepository defines persistence operations for upvotes.
type UpvoteRepository interface {
	Find(ctx context.Context, productID, userID string) (*models.Upvote, error)
	Insert(ctx context.Context, upvote *models.Upvote) (bool, error)
	Delete(ctx context.Context, id string) error
	CountByProduct(ctx context.Context, productID string) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type upvoteRepository struct {
	db *gorm.DB
}

func NewUpvoteRepository(db *gorm.DB) UpvoteRepository {
	return &upvoteRepository{db: db}
}

func (r *upvoteRepository) Find(ctx context.Context, productID, userID string) (*models.Upvote, error) {
	var upvote models.Upvote
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND user_id = ?", productID, userID).
		First(&upvote).Error
	if err != nil {
		return nil, err
	}
	return &upvote, nil
}

// Insert adds the upvote unless (product_id, user_id) already exists. It
// reports whether a row was written.
func (r *upvoteRepository) Insert(ctx context.Context, upvote *models.Upvote) (bool, error) {
	result := r.db.WithContext(ctx).Omit("User").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(upvote)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *upvoteRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Upvote{}, "id = ?", id).Error
}

func (r *upvoteRepository) CountByProduct(ctx context.Context, productID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Upvote{}).Where("product_id = ?", productID).Count(&n).Error
	return n, err
}

func (r *upvoteRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Upvote{}).Count(&n).Error
	return n, err
}
