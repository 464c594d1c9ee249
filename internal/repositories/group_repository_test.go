package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gopher0727/GroupChat/internal/models"
)

func TestGroupRepository(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()
	seedUser(t, s, "alice")
	seedUser(t, s, "bob")
	study := seedGroup(t, s, "Study", "alice", "bob")
	chess := seedGroup(t, s, "Chess", "alice")
	repo := s.Repos().Groups

	assert.Greater(t, chess.GroupID, study.GroupID)

	t.Run("list for user ordered by id", func(t *testing.T) {
		groups, err := repo.ListForUser(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, groups, 2)
		assert.Equal(t, "Study", groups[0].GroupName)
		assert.Equal(t, "Chess", groups[1].GroupName)
	})

	t.Run("rename", func(t *testing.T) {
		require.NoError(t, repo.UpdateName(ctx, study.GroupID, "Study Hall"))
		g, err := repo.Get(ctx, study.GroupID)
		require.NoError(t, err)
		assert.Equal(t, "Study Hall", g.GroupName)
		assert.ErrorIs(t, repo.UpdateName(ctx, 999, "x"), models.ErrNotFound)
	})

	t.Run("member counts", func(t *testing.T) {
		require.NoError(t, s.Repos().Users.UpdateColumn(ctx, "bob", "is_authenticated", true))
		members, err := s.Repos().Memberships.CountMembers(ctx, study.GroupID)
		require.NoError(t, err)
		online, err := s.Repos().Memberships.CountOnline(ctx, study.GroupID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, members)
		assert.EqualValues(t, 1, online)

		details, err := s.Repos().Memberships.Members(ctx, study.GroupID)
		require.NoError(t, err)
		require.Len(t, details, 2)
		assert.Equal(t, "alice", details[0].Username)
		assert.True(t, details[1].IsAuthenticated)
	})

	t.Run("orphans are deleted", func(t *testing.T) {
		require.NoError(t, s.Repos().Memberships.Delete(ctx, "alice", chess.GroupID))
		deleted, err := repo.DeleteOrphans(ctx, []uint{study.GroupID, chess.GroupID})
		require.NoError(t, err)
		assert.Equal(t, []uint{chess.GroupID}, deleted)

		ok, err := repo.Exists(ctx, chess.GroupID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("delete cascades", func(t *testing.T) {
		require.NoError(t, s.Repos().Messages.Create(ctx, &models.Message{MessageID: 1, Content: "hi", SenderUsername: "alice", GroupID: study.GroupID, SentAt: epoch}))
		require.NoError(t, repo.Delete(ctx, study.GroupID))

		n, err := s.Repos().Messages.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
		ok, err := s.Repos().Memberships.Exists(ctx, "bob", study.GroupID)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.ErrorIs(t, repo.Delete(ctx, study.GroupID), models.ErrNotFound)
	})
}

func TestMembershipRepository_Duplicate(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()
	seedUser(t, s, "alice")
	g := seedGroup(t, s, "Study", "alice")

	err := s.Repos().Memberships.Create(ctx, &models.Membership{Username: "alice", GroupID: g.GroupID})
	assert.ErrorIs(t, err, models.ErrConflict)
	assert.ErrorIs(t, s.Repos().Memberships.Delete(ctx, "bob", g.GroupID), models.ErrNotFound)
}
