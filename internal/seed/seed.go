package seed

import (
	"context"
	"fmt"
	"log/slog"

	"launchpad/internal/middleware"
	"launchpad/internal/models"

	"gorm.io/gorm"
)

// Categories are the directory's stock categories.
var Categories = []string{
	"AI", "Developer Tools", "Productivity", "Design", "Marketing",
	"Finance", "Health", "Education", "Open Source", "No-Code",
}

// Options controls how much data Seed writes.
type Options struct {
	Users                 int
	Products              int
	MaxCommentsPerProduct int
	MaxUpvotesPerProduct  int
	AdminEmail            string
	Clean                 bool
	Seed                  int64
}

// DefaultOptions is a small but lively directory.
func DefaultOptions() Options {
	return Options{Users: 20, Products: 40, MaxCommentsPerProduct: 5, MaxUpvotesPerProduct: 12}
}

// Summary reports what Seed wrote.
type Summary struct {
	Users      int
	Products   int
	Comments   int
	Upvotes    int
	Categories int
}

// Seed writes demo users, categories, products in every status, comments and
// upvotes in one transaction.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (*Summary, error) {
	if opts.Users < 1 {
		return nil, fmt.Errorf("seed needs at least one user, got %d", opts.Users)
	}
	f := NewFactory(opts.Seed)
	sum := &Summary{}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if opts.Clean {
			if err := Clean(tx); err != nil {
				return err
			}
		}

		users := make([]*models.User, 0, opts.Users+1)
		for i := 0; i < opts.Users; i++ {
			users = append(users, f.User())
		}
		if opts.AdminEmail != "" {
			users = append(users, f.User(func(u *models.User) {
				u.Name = "Launchpad Admin"
				u.Email = opts.AdminEmail
				u.IsAdmin = true
			}))
		}
		if err := tx.Create(&users).Error; err != nil {
			return fmt.Errorf("create users: %w", err)
		}
		sum.Users = len(users)

		categories := make([]models.Category, 0, len(Categories))
		for _, name := range Categories {
			c := models.Category{Name: name}
			if err := tx.Where(models.Category{Name: name}).FirstOrCreate(&c).Error; err != nil {
				return fmt.Errorf("create category %q: %w", name, err)
			}
			categories = append(categories, c)
		}
		sum.Categories = len(categories)

		for i := 0; i < opts.Products; i++ {
			owner := users[f.fake.Number(0, len(users)-1)]
			p := f.Product(owner, statusFor(i))
			p.Categories = Pick(f, categories, f.fake.Number(1, 3))
			if err := tx.Omit("Categories.*").Create(p).Error; err != nil {
				return fmt.Errorf("create product: %w", err)
			}
			sum.Products++

			if p.Status != models.ProductStatusActive {
				continue
			}
			for _, author := range Pick(f, users, f.fake.Number(0, opts.MaxCommentsPerProduct)) {
				if err := tx.Omit("User").Create(f.Comment(p, author)).Error; err != nil {
					return fmt.Errorf("create comment: %w", err)
				}
				sum.Comments++
			}
			for _, voter := range Pick(f, users, f.fake.Number(0, opts.MaxUpvotesPerProduct)) {
				if err := tx.Omit("User").Create(&models.Upvote{ProductID: p.ID, UserID: voter.ID}).Error; err != nil {
					return fmt.Errorf("create upvote: %w", err)
				}
				sum.Upvotes++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "database seeded",
		slog.Int("users", sum.Users),
		slog.Int("products", sum.Products),
		slog.Int("comments", sum.Comments),
		slog.Int("upvotes", sum.Upvotes),
	)
	return sum, nil
}

// statusFor spreads products over the lifecycle: mostly live, some waiting
// for review, a few turned down.
func statusFor(i int) models.ProductStatus {
	switch i % 10 {
	case 7, 8:
		return models.ProductStatusPending
	case 9:
		return models.ProductStatusRejected
	default:
		return models.ProductStatusActive
	}
}

// Clean removes every row written by Seed, children first.
func Clean(db *gorm.DB) error {
	all := db.Session(&gorm.Session{AllowGlobalUpdate: true})
	if err := all.Exec("DELETE FROM product_categories").Error; err != nil {
		return fmt.Errorf("clean product_categories: %w", err)
	}
	for _, m := range []interface{}{
		&models.Notification{}, &models.Upvote{}, &models.Comment{}, &models.Image{},
		&models.Product{}, &models.Category{}, &models.User{},
	} {
		if err := all.Delete(m).Error; err != nil {
			return fmt.Errorf("clean %T: %w", m, err)
		}
	}
	return nil
}
