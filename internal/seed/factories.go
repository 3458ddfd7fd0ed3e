// Package seed fills a database with demo launches for development and tests.
package seed

import (
	"fmt"
	"strings"
	"time"

	"launchpad/internal/models"
	"launchpad/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
)

// Factory builds domain entities from a seeded faker. Nothing is persisted
// here; Seed decides what to write.
type Factory struct {
	fake *gofakeit.Faker
	now  time.Time
	n    int
}

// NewFactory returns a Factory. The same seed yields the same data; zero
// picks a random seed.
func NewFactory(seed int64) *Factory {
	return &Factory{fake: gofakeit.New(seed), now: time.Now()}
}

func (f *Factory) next() int {
	f.n++
	return f.n
}

// User builds a user whose ID looks like an identity-provider subject.
func (f *Factory) User(overrides ...func(*models.User)) *models.User {
	seq := f.next()
	u := &models.User{
		ID:    fmt.Sprintf("seed|%s", f.fake.UUID()),
		Name:  f.fake.Name(),
		Email: fmt.Sprintf("%s.%d@%s", strings.ToLower(f.fake.Username()), seq, "launchpad.local"),
		Image: fmt.Sprintf("https://i.pravatar.cc/150?u=%d", seq),
	}
	for _, o := range overrides {
		o(u)
	}
	return u
}

// Product builds a product for owner with a unique slug and a few screenshots.
func (f *Factory) Product(owner *models.User, status models.ProductStatus, overrides ...func(*models.Product)) *models.Product {
	seq := f.next()
	name := truncate(f.fake.AppName(), validation.MaxProductNameLength)
	slug := fmt.Sprintf("%s-%d", validation.Slugify(name), seq)

	images := make([]models.Image, f.fake.Number(1, 3))
	for i := range images {
		images[i] = models.Image{URL: fmt.Sprintf("https://picsum.photos/seed/%s-%d/1200/800", slug, i)}
	}

	created := f.fake.DateRange(f.now.AddDate(0, -3, 0), f.now)
	p := &models.Product{
		Name:        name,
		Slug:        slug,
		Headline:    truncate(f.fake.HackerPhrase(), 80),
		Description: f.fake.Paragraph(1, 3, 12, " "),
		Logo:        fmt.Sprintf("https://picsum.photos/seed/%s-logo/256/256", slug),
		ReleaseDate: created.Format("2006-01-02"),
		Website:     f.fake.URL(),
		Twitter:     "https://x.com/" + strings.ToLower(f.fake.Username()),
		Status:      status,
		UserID:      owner.ID,
		Images:      images,
		CreatedAt:   created,
	}
	if status == models.ProductStatusActive {
		p.Rank = f.fake.Number(0, 100)
	}
	for _, o := range overrides {
		o(p)
	}
	return p
}

// Comment builds a comment signed with the author's avatar.
func (f *Factory) Comment(product *models.Product, author *models.User) *models.Comment {
	return &models.Comment{
		ProductID:      product.ID,
		UserID:         author.ID,
		Body:           f.fake.Sentence(f.fake.Number(4, 16)),
		ProfilePicture: author.Image,
	}
}

// Pick returns up to n distinct items of from, in random order.
func Pick[T any](f *Factory, from []T, n int) []T {
	idx := make([]int, len(from))
	for i := range idx {
		idx[i] = i
	}
	f.fake.ShuffleInts(idx)
	if n > len(idx) {
		n = len(idx)
	}
	out := make([]T, 0, n)
	for _, i := range idx[:n] {
		out = append(out, from[i])
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return strings.TrimSpace(string(r[:n]))
}
