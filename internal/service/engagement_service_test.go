package service

import (
	"context"
	"strings"
	"testing"

	"launchpad/internal/cache"
	"launchpad/internal/models"
	"launchpad/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// staleUpvoteStore reports every upvote as missing, which reproduces the
// window where two toggles both see "absent" and race to insert.
type staleUpvoteStore struct {
	repository.Store
}

func (s staleUpvoteStore) Upvotes() repository.UpvoteRepository {
	return staleUpvotes{s.Store.Upvotes()}
}

func (s staleUpvoteStore) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.Store.Transaction(ctx, func(tx repository.Store) error {
		return fn(staleUpvoteStore{tx})
	})
}

type staleUpvotes struct {
	repository.UpvoteRepository
}

func (staleUpvotes) Find(context.Context, string, string) (*models.Upvote, error) {
	return nil, gorm.ErrRecordNotFound
}

func TestEngagementService_CommentOnProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", false)
	other := f.user(t, "b", false)
	p := f.product(t, owner, "Rocket")

	c, err := f.engagement.CommentOnProduct(ctx, other, p.ID, "  Great launch!  ")
	require.NoError(t, err)
	assert.Equal(t, "b", c.UserID)
	assert.Equal(t, "Great launch!", c.Body)
	assert.Equal(t, other.Image, c.ProfilePicture)

	notes := f.notificationsFor(t, "owner")
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationComment, notes[0].Type)
	assert.Equal(t, `Commented on your product "Rocket"`, notes[0].Body)
	assert.Equal(t, other.Image, notes[0].ProfilePicture)
	require.Len(t, f.publisher.sent, 1)

	_, err = f.engagement.CommentOnProduct(ctx, owner, p.ID, "Thanks!")
	require.NoError(t, err)
	assert.Len(t, f.notificationsFor(t, "owner"), 1, "owners are not notified about their own comments")
	assert.Equal(t, int64(2), f.count(t, &models.Comment{}, "product_id = ?", p.ID))
}

func TestEngagementService_CommentOnProduct_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", false)
	p := f.product(t, owner, "Rocket")

	_, err := f.engagement.CommentOnProduct(ctx, nil, p.ID, "hi")
	assertCode(t, err, models.CodeUnauthenticated)

	_, err = f.engagement.CommentOnProduct(ctx, owner, p.ID, " \n ")
	assertCode(t, err, models.CodeValidation)

	_, err = f.engagement.CommentOnProduct(ctx, owner, p.ID, strings.Repeat("x", maxCommentLength+1))
	assertCode(t, err, models.CodeValidation)

	_, err = f.engagement.CommentOnProduct(ctx, owner, "missing", "hi")
	assertCode(t, err, models.CodeNotFound)

	assert.Zero(t, f.count(t, &models.Comment{}, ""))
}

func TestEngagementService_DeleteComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", false)
	author := f.user(t, "author", false)
	stranger := f.user(t, "stranger", false)
	admin := f.user(t, "admin", true)
	p := f.product(t, owner, "Rocket")

	comment := func() *models.Comment {
		c, err := f.engagement.CommentOnProduct(ctx, author, p.ID, "hello")
		require.NoError(t, err)
		return c
	}

	c := comment()
	_, err := f.engagement.DeleteComment(ctx, stranger, c.ID)
	assertCode(t, err, models.CodeUnauthorized)

	for _, caller := range []*Caller{author, owner, admin} {
		c := comment()
		deleted, err := f.engagement.DeleteComment(ctx, caller, c.ID)
		require.NoError(t, err, caller.UserID)
		assert.Equal(t, c.ID, deleted.ID)
	}

	_, err = f.engagement.DeleteComment(ctx, author, "missing")
	assertCode(t, err, models.CodeNotFound)
	assert.Equal(t, int64(1), f.count(t, &models.Comment{}, ""))
}

func TestEngagementService_UpvoteProduct_Toggle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", false)
	voter := f.user(t, "voter", false)
	p := f.product(t, owner, "Rocket")

	res, err := f.engagement.UpvoteProduct(ctx, voter, p.ID)
	require.NoError(t, err)
	assert.Equal(t, &models.UpvoteResult{Upvoted: true, Count: 1}, res)

	notes := f.notificationsFor(t, "owner")
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationUpvote, notes[0].Type)
	assert.Equal(t, "Upvoted your product", notes[0].Body)

	res, err = f.engagement.UpvoteProduct(ctx, voter, p.ID)
	require.NoError(t, err)
	assert.Equal(t, &models.UpvoteResult{Upvoted: false, Count: 0}, res)
	assert.Zero(t, f.count(t, &models.Upvote{}, ""))
	assert.Len(t, f.notificationsFor(t, "owner"), 1, "removing an upvote emits nothing")
}

func TestEngagementService_UpvoteProduct_OwnUpvoteIsSilent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", false)
	p := f.product(t, owner, "Rocket")

	res, err := f.engagement.UpvoteProduct(ctx, owner, p.ID)
	require.NoError(t, err)
	assert.True(t, res.Upvoted)
	assert.Empty(t, f.notificationsFor(t, "owner"))
	assert.Empty(t, f.publisher.sent)
}

func TestEngagementService_UpvoteProduct_LostRaceIsAlreadyUpvoted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", false)
	voter := f.user(t, "voter", false)
	p := f.product(t, owner, "Rocket")

	racing := NewEngagementService(staleUpvoteStore{f.store}, f.notifications)

	first, err := racing.UpvoteProduct(ctx, voter, p.ID)
	require.NoError(t, err)
	second, err := racing.UpvoteProduct(ctx, voter, p.ID)
	require.NoError(t, err)

	assert.Equal(t, &models.UpvoteResult{Upvoted: true, Count: 1}, first)
	assert.Equal(t, &models.UpvoteResult{Upvoted: true, Count: 1}, second)
	assert.Equal(t, int64(1), f.count(t, &models.Upvote{}, "product_id = ? AND user_id = ?", p.ID, "voter"))
	assert.Len(t, f.notificationsFor(t, "owner"), 1)
}

func TestEngagementService_UpvoteProduct_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	voter := f.user(t, "voter", false)

	_, err := f.engagement.UpvoteProduct(ctx, nil, "whatever")
	assertCode(t, err, models.CodeUnauthenticated)

	_, err = f.engagement.UpvoteProduct(ctx, voter, "missing")
	assertCode(t, err, models.CodeNotFound)
}

func TestEngagementService_GetActiveProducts(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", false)
	voter := f.user(t, "voter", false)

	low := f.product(t, owner, "Low", "low.png")
	high := f.product(t, owner, "High")
	f.product(t, owner, "Pending")
	f.setStatus(t, low.ID, models.ProductStatusActive)
	f.setStatus(t, high.ID, models.ProductStatusActive)
	require.NoError(t, f.db.Model(&models.Product{}).Where("id = ?", high.ID).Update("rank", 5).Error)

	feed, err := f.engagement.GetActiveProducts(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, high.ID, feed[0].ID)
	assert.Equal(t, low.ID, feed[1].ID)
	assert.Equal(t, []string{"low.png"}, imageURLs(&feed[1]))
	assert.True(t, mr.Exists(cache.ActiveProductsKey))

	_, err = f.engagement.UpvoteProduct(ctx, voter, low.ID)
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.ActiveProductsKey), "mutations drop the cached feed")

	feed, err = f.engagement.GetActiveProducts(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Len(t, feed[1].Upvotes, 1)
}
