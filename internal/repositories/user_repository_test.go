package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gopher0727/GroupChat/internal/models"
)

func TestUserRepository_CreateGet(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()
	seedUser(t, s, "alice")

	got, err := s.Repos().Users.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Display alice", got.DisplayName)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.True(t, got.JoinedAt.Equal(epoch))

	t.Run("duplicate username conflicts", func(t *testing.T) {
		err := s.Repos().Users.Create(ctx, &models.User{Username: "alice", DisplayName: "x", EmailAddress: "x@y.z", PasswordHash: "h", JoinedAt: epoch})
		assert.ErrorIs(t, err, models.ErrConflict)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := s.Repos().Users.Get(ctx, "nobody")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestUserRepository_Cache(t *testing.T) {
	s, mr := setupStore(t)
	ctx := context.Background()
	seedUser(t, s, "alice")

	_, err := s.Repos().Users.Get(ctx, "alice")
	require.NoError(t, err)
	require.True(t, mr.Exists(userCacheKey("alice")), "read should populate the cache")

	t.Run("cached copy keeps the password hash", func(t *testing.T) {
		got, err := s.Repos().Users.Get(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "hash", got.PasswordHash)
	})

	t.Run("updates invalidate", func(t *testing.T) {
		require.NoError(t, s.Repos().Users.UpdateColumn(ctx, "alice", "display_name", "Alice"))
		assert.False(t, mr.Exists(userCacheKey("alice")))

		got, err := s.Repos().Users.Get(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "Alice", got.DisplayName)
	})

	t.Run("reads inside a transaction bypass the cache", func(t *testing.T) {
		mr.Del(userCacheKey("alice"))
		err := s.Transaction(ctx, func(r Repos) error {
			_, err := r.Users.Get(ctx, "alice")
			return err
		})
		require.NoError(t, err)
		assert.False(t, mr.Exists(userCacheKey("alice")))
	})

	t.Run("writes inside a transaction invalidate after commit", func(t *testing.T) {
		_, err := s.Repos().Users.Get(ctx, "alice")
		require.NoError(t, err)
		require.True(t, mr.Exists(userCacheKey("alice")))

		err = s.Transaction(ctx, func(r Repos) error {
			return r.Users.UpdateColumn(ctx, "alice", "is_authenticated", true)
		})
		require.NoError(t, err)
		assert.False(t, mr.Exists(userCacheKey("alice")))
	})
}

func TestUserRepository_Missing(t *testing.T) {
	s, _ := setupStore(t)
	seedUser(t, s, "alice")
	seedUser(t, s, "bob")

	missing, err := s.Repos().Users.Missing(context.Background(), []string{"carol", "alice", "dave", "bob"})
	require.NoError(t, err)
	assert.Equal(t, []string{"carol", "dave"}, missing)
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()
	seedUser(t, s, "alice")
	seedUser(t, s, "bob")
	g := seedGroup(t, s, "Study", "alice", "bob")
	require.NoError(t, s.Repos().Messages.Create(ctx, &models.Message{MessageID: 1, Content: "hi", SenderUsername: "alice", GroupID: g.GroupID, SentAt: epoch}))
	require.NoError(t, s.Repos().Invites.Create(ctx, &models.InviteRequest{ReceiverUsername: "bob", SenderUsername: "alice", GroupID: g.GroupID, Status: models.InviteRejected, RequestedAt: epoch}))

	require.NoError(t, s.Repos().Users.Delete(ctx, "alice"))

	n, err := s.Repos().Messages.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = s.Repos().Invites.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	members, err := s.Repos().Memberships.CountMembers(ctx, g.GroupID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, members)

	assert.ErrorIs(t, s.Repos().Users.Delete(ctx, "alice"), models.ErrNotFound)
}
