package service

import (
	"context"
	"testing"

	"launchpad/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModerationService_ActivateProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", false)
	admin := f.user(t, "admin", true)
	p := f.product(t, owner, "Rocket")

	before, err := f.moderation.ActivateProduct(ctx, admin, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusPending, before.Status)

	got, err := f.products.GetProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusActive, got.Status)

	notes := f.notificationsFor(t, "owner")
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationActivated, notes[0].Type)
	assert.Equal(t, "Your product Rocket has been activated.", notes[0].Body)
	assert.Equal(t, p.Logo, notes[0].ProfilePicture)
	assert.Equal(t, p.ID, notes[0].ProductID)
	assert.Equal(t, models.NotificationUnread, notes[0].Status)

	require.Len(t, f.publisher.sent, 1)
	assert.Equal(t, notes[0].ID, f.publisher.sent[0].ID)

	require.Len(t, f.mail.decisions, 1)
	d := f.mail.decisions[0]
	assert.True(t, d.Approved)
	assert.Equal(t, "owner@example.com", d.To)
	assert.Equal(t, "https://launchpad.test/product/rocket", d.ProductURL)
}

func TestModerationService_RejectProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", false)
	admin := f.user(t, "admin", true)
	p := f.product(t, owner, "Rocket")

	_, err := f.moderation.RejectProduct(ctx, admin, p.ID, "   ")
	assertCode(t, err, models.CodeValidation)

	_, err = f.moderation.RejectProduct(ctx, admin, p.ID, "Broken link")
	require.NoError(t, err)

	got, err := f.products.GetProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusRejected, got.Status)

	notes := f.notificationsFor(t, "owner")
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationRejected, notes[0].Type)
	assert.Equal(t, `Your product "Rocket" has been rejected. Reason: Broken link`, notes[0].Body)

	require.Len(t, f.mail.decisions, 1)
	assert.False(t, f.mail.decisions[0].Approved)
	assert.Equal(t, "Broken link", f.mail.decisions[0].Reason)
	assert.Empty(t, f.mail.decisions[0].ProductURL)
}

func TestModerationService_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", false)
	admin := f.user(t, "admin", true)
	p := f.product(t, owner, "Rocket")

	_, err := f.moderation.ActivateProduct(ctx, nil, p.ID)
	assertCode(t, err, models.CodeUnauthenticated)

	_, err = f.moderation.ActivateProduct(ctx, owner, p.ID)
	assertCode(t, err, models.CodeUnauthorized)

	_, err = f.moderation.RejectProduct(ctx, owner, p.ID, "nope")
	assertCode(t, err, models.CodeUnauthorized)

	_, err = f.moderation.GetPendingProducts(ctx, owner)
	assertCode(t, err, models.CodeUnauthorized)

	_, err = f.moderation.ActivateProduct(ctx, admin, "missing")
	assertCode(t, err, models.CodeNotFound)

	_, err = f.moderation.ActivateProduct(ctx, admin, p.ID)
	require.NoError(t, err)
	_, err = f.moderation.ActivateProduct(ctx, admin, p.ID)
	assertCode(t, err, models.CodeConflict)

	assert.Len(t, f.notificationsFor(t, "owner"), 1, "failed decisions emit nothing")
}

func TestModerationService_GetPendingProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", false)
	admin := f.user(t, "admin", true)

	p1 := f.product(t, owner, "One", "a.png")
	p2 := f.product(t, owner, "Two")
	f.setStatus(t, p2.ID, models.ProductStatusActive)

	pending, err := f.moderation.GetPendingProducts(ctx, admin)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, p1.ID, pending[0].ID)
	assert.Equal(t, []string{"a.png"}, imageURLs(&pending[0]))
}

func TestModerationService_GetStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", false)
	admin := f.user(t, "admin", true)

	p1 := f.product(t, owner, "One")
	p2 := f.product(t, owner, "Two")
	f.product(t, owner, "Three")
	f.setStatus(t, p1.ID, models.ProductStatusActive)
	f.setStatus(t, p2.ID, models.ProductStatusRejected)
	_, err := f.engagement.UpvoteProduct(ctx, admin, p1.ID)
	require.NoError(t, err)

	_, err = f.moderation.GetStats(ctx, owner)
	assertCode(t, err, models.CodeUnauthorized)

	stats, err := f.moderation.GetStats(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, models.AdminStats{
		Users:            2,
		ActiveProducts:   1,
		PendingProducts:  1,
		RejectedProducts: 1,
		Upvotes:          1,
	}, *stats)
}
