package service

import (
	"context"
	"fmt"
	"strings"

	"launchpad/internal/cache"
	"launchpad/internal/featureflags"
	"launchpad/internal/models"
	"launchpad/internal/observability"
	"launchpad/internal/repository"
	"launchpad/internal/validation"
)

// FeatureGate answers per-user feature flag checks.
type FeatureGate interface {
	Enabled(name string, userID string) bool
}

// ProductInput is the owner-editable part of a product.
// A nil Categories slice on update keeps the current categories.
type ProductInput struct {
	Name        string   `json:"name" validate:"required,max=30"`
	Slug        string   `json:"slug" validate:"omitempty,slug"`
	Headline    string   `json:"headline"`
	Description string   `json:"description"`
	Logo        string   `json:"logo"`
	ReleaseDate string   `json:"release_date"`
	Website     string   `json:"website" validate:"omitempty,url"`
	Twitter     string   `json:"twitter"`
	Discord     string   `json:"discord"`
	Images      []string `json:"images" validate:"dive,required"`
	Categories  []string `json:"categories" validate:"max=3"`
}

// normalize trims the input. An empty slug is derived from the name when
// deriveSlug is set and left empty otherwise.
func (in *ProductInput) normalize(deriveSlug bool) {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.TrimSpace(in.Slug)
	if in.Slug == "" && deriveSlug {
		in.Slug = validation.Slugify(in.Name)
	}
	if in.Categories != nil {
		in.Categories = validation.NormalizeCategories(in.Categories)
	}
}

// fields lists the columns an update writes. An empty slug keeps the stored one.
func (in *ProductInput) fields() map[string]interface{} {
	f := map[string]interface{}{
		"name":         in.Name,
		"headline":     in.Headline,
		"description":  in.Description,
		"logo":         in.Logo,
		"release_date": in.ReleaseDate,
		"website":      in.Website,
		"twitter":      in.Twitter,
		"discord":      in.Discord,
		"status":       models.ProductStatusPending,
	}
	if in.Slug != "" {
		f["slug"] = in.Slug
	}
	return f
}

// ProductService manages products on behalf of their owners.
type ProductService struct {
	store     repository.Store
	flags     FeatureGate
	freeLimit int
}

// NewProductService returns a ProductService. freeLimit caps products per
// owner while the free_tier_limit flag is on; zero disables the cap.
func NewProductService(store repository.Store, flags FeatureGate, freeLimit int) *ProductService {
	return &ProductService{store: store, flags: flags, freeLimit: freeLimit}
}

func validateProductInput(in *ProductInput, creating bool) error {
	in.normalize(creating)
	if err := validation.Struct(in); err != nil {
		return models.NewValidationError(err.Error())
	}
	if creating && in.Slug == "" {
		return models.NewValidationError("slug is required")
	}
	return nil
}

func (s *ProductService) freeTierApplies(caller *Caller) bool {
	return s.freeLimit > 0 && !caller.IsAdmin && s.flags != nil &&
		s.flags.Enabled(featureflags.FreeTierLimit, caller.UserID)
}

// CreateProduct stores a new PENDING product owned by caller, with its
// categories (connect-or-create) and images, in one transaction.
func (s *ProductService) CreateProduct(ctx context.Context, caller *Caller, in ProductInput) (product *models.Product, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ProductService", "CreateProduct")
	defer func() { observability.EndSpan(span, err) }()

	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if err := validateProductInput(&in, true); err != nil {
		return nil, err
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if s.freeTierApplies(caller) {
			owned, err := tx.Products().CountByOwner(ctx, caller.UserID)
			if err != nil {
				return err
			}
			if owned >= int64(s.freeLimit) {
				return models.NewValidationError(fmt.Sprintf("The free plan allows up to %d products", s.freeLimit))
			}
		}

		taken, err := tx.Products().SlugTaken(ctx, in.Slug, "")
		if err != nil {
			return err
		}
		if taken {
			return models.NewConflictError(fmt.Sprintf("Slug %q is already taken", in.Slug))
		}

		categories, err := tx.Categories().ConnectOrCreate(ctx, in.Categories)
		if err != nil {
			return err
		}

		images := make([]models.Image, 0, len(in.Images))
		for _, u := range in.Images {
			images = append(images, models.Image{URL: u})
		}

		product = &models.Product{
			Name:        in.Name,
			Slug:        in.Slug,
			Headline:    in.Headline,
			Description: in.Description,
			Logo:        in.Logo,
			ReleaseDate: in.ReleaseDate,
			Website:     in.Website,
			Twitter:     in.Twitter,
			Discord:     in.Discord,
			Status:      models.ProductStatusPending,
			Rank:        0,
			UserID:      caller.UserID,
			Images:      images,
			Categories:  categories,
		}
		return tx.Products().Create(ctx, product)
	})
	if err != nil {
		return nil, persistence(ctx, "products.create", err, "", nil)
	}

	if len(in.Categories) > 0 {
		cache.InvalidateCategories(ctx)
	}
	return product, nil
}

// UpdateProduct rewrites the owner's product, replaces its images (and its
// categories when given) and sends it back to review. It returns the product
// as it was before the update.
func (s *ProductService) UpdateProduct(ctx context.Context, caller *Caller, productID string, in ProductInput) (before *models.Product, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ProductService", "UpdateProduct")
	defer func() { observability.EndSpan(span, err) }()

	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if err := validateProductInput(&in, false); err != nil {
		return nil, err
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		products := tx.Products()

		current, err := products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if !current.OwnedBy(caller.UserID) {
			return models.NewUnauthorizedError("You can only edit your own products")
		}

		if in.Slug != "" {
			taken, err := products.SlugTaken(ctx, in.Slug, productID)
			if err != nil {
				return err
			}
			if taken {
				return models.NewConflictError(fmt.Sprintf("Slug %q is already taken", in.Slug))
			}
		}

		if err := products.Update(ctx, productID, in.fields()); err != nil {
			return err
		}
		if err := products.ReplaceImages(ctx, productID, in.Images); err != nil {
			return err
		}
		if in.Categories != nil {
			categories, err := tx.Categories().ConnectOrCreate(ctx, in.Categories)
			if err != nil {
				return err
			}
			if err := products.ReplaceCategories(ctx, &models.Product{ID: productID}, categories); err != nil {
				return err
			}
		}

		before = current
		return nil
	})
	if err != nil {
		return nil, persistence(ctx, "products.update", err, "Product", productID)
	}

	cache.InvalidateActiveProducts(ctx)
	if len(in.Categories) > 0 {
		cache.InvalidateCategories(ctx)
	}
	return before, nil
}

// GetOwnerProducts lists the caller's products, newest first. Anonymous
// callers get an empty list.
func (s *ProductService) GetOwnerProducts(ctx context.Context, caller *Caller) ([]models.Product, error) {
	if caller == nil || caller.UserID == "" {
		return []models.Product{}, nil
	}
	products, err := s.store.Products().ListByOwner(ctx, caller.UserID)
	if err != nil {
		return nil, persistence(ctx, "products.list_by_owner", err, "", nil)
	}
	return products, nil
}

// GetProductByID returns the product with its categories and images.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.store.Products().GetByID(ctx, id)
	if err != nil {
		return nil, persistence(ctx, "products.get", err, "Product", id)
	}
	return product, nil
}

// GetProductBySlug returns an ACTIVE product page with comments and upvotes.
func (s *ProductService) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	product, err := s.store.Products().GetBySlug(ctx, slug, models.ProductStatusActive)
	if err != nil {
		return nil, persistence(ctx, "products.get_by_slug", err, "Product", slug)
	}
	return product, nil
}

// ListCategories returns every known category by name.
func (s *ProductService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	err := cache.Aside(ctx, cache.CategoriesKey, &categories, cache.CategoriesTTL, func() error {
		found, err := s.store.Categories().List(ctx)
		if err != nil {
			return err
		}
		categories = found
		return nil
	})
	if err != nil {
		return nil, persistence(ctx, "categories.list", err, "", nil)
	}
	return categories, nil
}

// DeleteProduct removes the caller's product together with its images,
// category links, comments and upvotes. A missing product and a product owned
// by someone else are reported the same way.
func (s *ProductService) DeleteProduct(ctx context.Context, caller *Caller, id string) (deleted *models.Product, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ProductService", "DeleteProduct")
	defer func() { observability.EndSpan(span, err) }()

	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		product, err := tx.Products().GetByID(ctx, id)
		if err != nil && !isNotFound(err) {
			return err
		}
		if product == nil || !product.OwnedBy(caller.UserID) {
			return models.NewUnauthorizedError("Product not found or you do not own it")
		}
		if err := tx.Products().Delete(ctx, id); err != nil {
			return err
		}
		deleted = product
		return nil
	})
	if err != nil {
		return nil, persistence(ctx, "products.delete", err, "", nil)
	}

	cache.InvalidateActiveProducts(ctx)
	return deleted, nil
}
