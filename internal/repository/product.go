package repository

import (
	"context"

	"launchpad/internal/models"

	"gorm.io/gorm"
)

// ProductRepository defines persistence operations for products and the
// rows they own (images, category links).
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string, status models.ProductStatus) (*models.Product, error)
	ListByOwner(ctx context.Context, userID string) ([]models.Product, error)
	ListByStatus(ctx context.Context, status models.ProductStatus) ([]models.Product, error)
	ListFeed(ctx context.Context) ([]models.Product, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	SetStatus(ctx context.Context, id string, status models.ProductStatus) error
	ReplaceImages(ctx context.Context, productID string, urls []string) error
	ReplaceCategories(ctx context.Context, product *models.Product, categories []models.Category) error
	Delete(ctx context.Context, id string) error
	CountByOwner(ctx context.Context, userID string) (int64, error)
	CountByStatus(ctx context.Context, status models.ProductStatus) (int64, error)
	SlugTaken(ctx context.Context, slug, excludeID string) (bool, error)
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create inserts product with its images and links its categories, which
// must already exist.
func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit("Categories.*").Create(product).Error
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Categories").
		Preload("Images").
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) GetBySlug(ctx context.Context, slug string, status models.ProductStatus) (*models.Product, error) {
	var product models.Product
	err := r.withDetails(r.db.WithContext(ctx)).
		Where("slug = ? AND status = ?", slug, status).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) ListByOwner(ctx context.Context, userID string) ([]models.Product, error) {
	products := []models.Product{}
	err := r.db.WithContext(ctx).
		Preload("Categories").
		Preload("Images").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}

func (r *productRepository) ListByStatus(ctx context.Context, status models.ProductStatus) ([]models.Product, error) {
	products := []models.Product{}
	err := r.db.WithContext(ctx).
		Preload("Categories").
		Preload("Images").
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}

// ListFeed returns every ACTIVE product with its engagement, highest rank first.
func (r *productRepository) ListFeed(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	err := r.withDetails(r.db.WithContext(ctx)).
		Where("status = ?", models.ProductStatusActive).
		Order("rank DESC").
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}

func (r *productRepository) withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Categories").
		Preload("Images").
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Comments.User").
		Preload("Upvotes").
		Preload("Upvotes.User")
}

func (r *productRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(fields).Error
}

func (r *productRepository) SetStatus(ctx context.Context, id string, status models.ProductStatus) error {
	return r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("status", status).Error
}

// ReplaceImages deletes every image of the product and inserts urls in order.
func (r *productRepository) ReplaceImages(ctx context.Context, productID string, urls []string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("product_id = ?", productID).Delete(&models.Image{}).Error; err != nil {
		return err
	}
	if len(urls) == 0 {
		return nil
	}
	images := make([]models.Image, 0, len(urls))
	for _, u := range urls {
		images = append(images, models.Image{URL: u, ProductID: productID})
	}
	return db.Create(&images).Error
}

func (r *productRepository) ReplaceCategories(ctx context.Context, product *models.Product, categories []models.Category) error {
	return r.db.WithContext(ctx).Model(product).Omit("Categories.*").Association("Categories").Replace(categories)
}

// Delete removes the product and everything hanging off it. Callers run it in
// a transaction.
func (r *productRepository) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("product_id = ?", id).Delete(&models.Image{}).Error; err != nil {
		return err
	}
	if err := db.Exec("DELETE FROM product_categories WHERE product_id = ?", id).Error; err != nil {
		return err
	}
	if err := db.Where("product_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	if err := db.Where("product_id = ?", id).Delete(&models.Upvote{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.Product{}, "id = ?", id).Error
}

func (r *productRepository) CountByOwner(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *productRepository) CountByStatus(ctx context.Context, status models.ProductStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Where("status = ?", status).Count(&n).Error
	return n, err
}

// SlugTaken reports whether another product already uses slug.
func (r *productRepository) SlugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&models.Product{}).Where("slug = ?", slug)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
