package service

import (
	"context"
	"testing"

	"launchpad/internal/middleware"
	"launchpad/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_ResolveIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.users.ResolveIdentity(ctx, middleware.Identity{Subject: "sub-1", Name: "Ada", Email: "ada@example.com", Picture: "a.png"})
	require.NoError(t, err)
	assert.Equal(t, "sub-1", u.ID)
	assert.False(t, u.IsAdmin)

	_, err = f.users.SetAdmin(ctx, "ada@example.com", true)
	require.NoError(t, err)

	u, err = f.users.ResolveIdentity(ctx, middleware.Identity{Subject: "sub-1", Name: "Ada L.", Email: "ada@example.com", Picture: "b.png"})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", u.Name)
	assert.Equal(t, "b.png", u.Image)
	assert.True(t, u.IsAdmin, "profile refresh keeps the admin flag")
}

func TestUserService_SetAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "u1", false)
	f.user(t, "u2", false)

	u, err := f.users.SetAdmin(ctx, "u1", true)
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)

	admins, err := f.users.ListAdmins(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "u1", admins[0].ID)

	_, err = f.users.SetAdmin(ctx, "u1", false)
	require.NoError(t, err)
	admins, err = f.users.ListAdmins(ctx)
	require.NoError(t, err)
	assert.Empty(t, admins)

	_, err = f.users.SetAdmin(ctx, "nobody@example.com", true)
	assertCode(t, err, models.CodeNotFound)
}
