package repository

import (
	"context"

	"launchpad/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	ConnectOrCreate(ctx context.Context, names []string) ([]models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// ConnectOrCreate returns one category per name, creating the missing ones.
// Names are matched exactly; concurrent creators of the same name converge on
// a single row through the unique index.
func (r *categoryRepository) ConnectOrCreate(ctx context.Context, names []string) ([]models.Category, error) {
	if len(names) == 0 {
		return []models.Category{}, nil
	}

	rows := make([]models.Category, 0, len(names))
	for _, n := range names {
		rows = append(rows, models.Category{Name: n})
	}

	db := r.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&rows).Error; err != nil {
		return nil, err
	}

	var cats []models.Category
	if err := db.Where("name IN ?", names).Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	err := r.db.WithContext(ctx).Order("name asc").Find(&cats).Error
	return cats, err
}
