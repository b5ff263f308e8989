package repository_test

import (
	"context"
	"testing"

	infraRepo "quickcart/internal/infra/repository"
	"quickcart/internal/kvstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionKV_LoginLogout(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	repo := infraRepo.NewSessionKVRepository(store)

	s, err := repo.Find(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, s.LoggedIn)
	assert.Equal(t, "Guest", s.DisplayName())

	require.NoError(t, repo.MarkLoggedIn(ctx, "s1", "Alice", "alice@example.com"))

	raw, err := store.Get(ctx, "session:s1:isLoggedIn")
	require.NoError(t, err)
	assert.Equal(t, "true", raw)

	s, err = repo.Find(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, s.LoggedIn)
	assert.Equal(t, "Alice", s.DisplayName())
	assert.Equal(t, "alice@example.com", s.Email)

	require.NoError(t, repo.Forget(ctx, "s1"))
	s, err = repo.Find(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, s.LoggedIn)
	assert.Equal(t, "", s.Username)
	assert.Equal(t, "", s.Email)
}

// "true"以外のフラグはログイン扱いしない
func TestSessionKV_FlagMustBeTrue(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	require.NoError(t, store.Set(ctx, "session:s1:isLoggedIn", "yes"))

	s, err := infraRepo.NewSessionKVRepository(store).Find(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, s.LoggedIn)
}
