package service

import (
	"context"
	"sync"
	"testing"

	"launchpad/internal/database"
	"launchpad/internal/mailer"
	"launchpad/internal/models"
	"launchpad/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

type publisherStub struct {
	mu   sync.Mutex
	sent []*models.Notification
}

func (p *publisherStub) PublishNotification(_ context.Context, n *models.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, n)
	return nil
}

type mailerStub struct {
	decisions []mailer.Decision
}

func (m *mailerStub) SendModerationDecision(_ context.Context, d mailer.Decision) error {
	m.decisions = append(m.decisions, d)
	return nil
}

type flagsStub map[string]bool

func (f flagsStub) Enabled(name string, _ string) bool { return f[name] }

type fixture struct {
	db            *gorm.DB
	store         repository.Store
	publisher     *publisherStub
	mail          *mailerStub
	products      *ProductService
	moderation    *ModerationService
	engagement    *EngagementService
	notifications *NotificationService
	users         *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	store := repository.NewStore(db)
	pub := &publisherStub{}
	mail := &mailerStub{}
	notes := NewNotificationService(store, pub)
	return &fixture{
		db:            db,
		store:         store,
		publisher:     pub,
		mail:          mail,
		products:      NewProductService(store, nil, 0),
		moderation:    NewModerationService(store, notes, mail, "https://launchpad.test"),
		engagement:    NewEngagementService(store, notes),
		notifications: notes,
		users:         NewUserService(store),
	}
}

// user stores a user row and returns a caller for it.
func (f *fixture) user(t *testing.T, id string, admin bool) *Caller {
	t.Helper()
	u := &models.User{ID: id, Name: "User " + id, Email: id + "@example.com", Image: "https://img.test/" + id + ".png", IsAdmin: admin}
	require.NoError(t, f.db.Create(u).Error)
	return CallerFromUser(u)
}

func (f *fixture) product(t *testing.T, owner *Caller, name string, images ...string) *models.Product {
	t.Helper()
	p, err := f.products.CreateProduct(context.Background(), owner, ProductInput{
		Name:   name,
		Logo:   "https://img.test/" + name + "-logo.png",
		Images: images,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) setStatus(t *testing.T, id string, status models.ProductStatus) {
	t.Helper()
	require.NoError(t, f.db.Model(&models.Product{}).Where("id = ?", id).Update("status", status).Error)
}

func (f *fixture) notificationsFor(t *testing.T, userID string) []models.Notification {
	t.Helper()
	var notes []models.Notification
	require.NoError(t, f.db.Where("user_id = ?", userID).Order("created_at asc").Find(&notes).Error)
	return notes
}

func (f *fixture) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := f.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, models.ErrorCode(err), "unexpected error: %v", err)
}

func imageURLs(p *models.Product) []string {
	urls := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		urls = append(urls, img.URL)
	}
	return urls
}
