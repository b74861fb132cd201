package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/shareit/internal/core/domain"
)

func TestUserLifecycle(t *testing.T) {
	f := newFixture(t, CommentPolicyApproved)
	ctx := context.Background()

	alice, err := f.users.CreateUser(ctx, domain.User{Name: "alice", Email: "alice@test.local"})
	require.NoError(t, err)
	bob, err := f.users.CreateUser(ctx, domain.User{Name: "bob", Email: "bob@test.local"})
	require.NoError(t, err)

	_, err = f.users.CreateUser(ctx, domain.User{Name: "alice2", Email: "alice@test.local"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	email := "alice@test.local"
	_, err = f.users.UpdateUser(ctx, bob.ID, domain.UserPatch{Email: &email})
	assert.ErrorIs(t, err, domain.ErrConflict)

	name := "Alice"
	updated, err := f.users.UpdateUser(ctx, alice.ID, domain.UserPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.Name)
	assert.Equal(t, "alice@test.local", updated.Email)

	require.NoError(t, f.users.DeleteUser(ctx, alice.ID))
	_, err = f.users.GetUser(ctx, alice.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.users.DeleteUser(ctx, alice.ID), domain.ErrNotFound)
}
