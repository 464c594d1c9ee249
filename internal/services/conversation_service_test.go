package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gopher0727/GroupChat/internal/models"
)

func TestListGroupsForUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.mustUser(t, "alice")
	env.mustUser(t, "bob")
	study := env.mustGroup(t, "alice", "Study", "bob")
	quiet := env.mustGroup(t, "alice", "Quiet")
	env.mustGroup(t, "bob", "Elsewhere")

	_, err := env.messages.CreateMessage(ctx, "first", "alice", study.GroupID)
	require.NoError(t, err)
	_, err = env.messages.CreateMessage(ctx, "second", "bob", study.GroupID)
	require.NoError(t, err)

	previews, err := env.convs.ListGroupsForUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, previews, 2)

	got := previews[0]
	assert.Equal(t, study.GroupID, got.GroupID)
	assert.Equal(t, "Study", got.GroupName)
	assert.True(t, got.HasMessages)
	require.NotNil(t, got.LastSenderDisplayName)
	assert.Equal(t, "Bob", *got.LastSenderDisplayName)
	assert.Equal(t, "second", *got.LastMessageContent)
	require.NotNil(t, got.LastMessageDate)

	empty := previews[1]
	assert.Equal(t, quiet.GroupID, empty.GroupID)
	assert.False(t, empty.HasMessages)
	assert.Nil(t, empty.LastSenderDisplayName)
	assert.Nil(t, empty.LastMessageContent)
	assert.Nil(t, empty.LastMessageDate)

	_, err = env.convs.ListGroupsForUser(ctx, "ghost")
	assert.ErrorIs(t, err, models.ErrNotFound)

	env.mustUser(t, "carol")
	none, err := env.convs.ListGroupsForUser(ctx, "carol")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListMessagesPage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.mustUser(t, "alice")
	g := env.mustGroup(t, "alice", "Study")
	other := env.mustGroup(t, "alice", "Other")

	var ids []int64
	for _, text := range []string{"one", "two", "three", "four", "five"} {
		msg, err := env.messages.CreateMessage(ctx, text, "alice", g.GroupID)
		require.NoError(t, err)
		ids = append(ids, msg.MessageID)
	}
	foreign, err := env.messages.CreateMessage(ctx, "elsewhere", "alice", other.GroupID)
	require.NoError(t, err)

	page, err := env.convs.ListMessagesPage(ctx, g.GroupID, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "one", page[0].Content)

	page, err = env.convs.ListMessagesPage(ctx, g.GroupID, page[1].MessageID, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[2], page[0].MessageID)
	assert.Equal(t, ids[3], page[1].MessageID)

	page, err = env.convs.ListMessagesPage(ctx, g.GroupID, ids[4], 2)
	require.NoError(t, err)
	assert.Empty(t, page)
	assert.NotNil(t, page)

	t.Run("default and capped limits", func(t *testing.T) {
		page, err := env.convs.ListMessagesPage(ctx, g.GroupID, 0, 0)
		require.NoError(t, err)
		assert.Len(t, page, 5)
		page, err = env.convs.ListMessagesPage(ctx, g.GroupID, 0, 1000)
		require.NoError(t, err)
		assert.Len(t, page, 5)
	})

	t.Run("cursor from another group", func(t *testing.T) {
		_, err := env.convs.ListMessagesPage(ctx, g.GroupID, foreign.MessageID, 2)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("unknown group", func(t *testing.T) {
		_, err := env.convs.ListMessagesPage(ctx, 999, 0, 2)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestLatestMessageForGroup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.mustUser(t, "alice")
	g := env.mustGroup(t, "alice", "Study")

	_, err := env.convs.LatestMessageForGroup(ctx, g.GroupID)
	assert.ErrorIs(t, err, models.ErrNotFound, "empty group has no latest message")

	msgs, err := env.convs.ListMessagesForGroup(ctx, g.GroupID)
	require.NoError(t, err)
	assert.NotNil(t, msgs)
	assert.Empty(t, msgs, "empty list, not an error")

	_, err = env.messages.CreateMessage(ctx, "hello", "alice", g.GroupID)
	require.NoError(t, err)
	last, err := env.messages.CreateMessage(ctx, "again", "alice", g.GroupID)
	require.NoError(t, err)

	latest, err := env.convs.LatestMessageForGroup(ctx, g.GroupID)
	require.NoError(t, err)
	assert.Equal(t, last.MessageID, latest.MessageID)
	assert.Equal(t, "Alice", latest.SenderDisplayName)

	_, err = env.convs.LatestMessageForGroup(ctx, 999)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = env.convs.ListMessagesForGroup(ctx, 999)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestGroupCountsAndSummary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, u := range []string{"alice", "bob", "carol"} {
		env.mustUser(t, u)
	}
	g := env.mustGroup(t, "alice", "Study", "bob", "carol")

	_, err := env.auth.SignIn(ctx, "bob", strongPassword)
	require.NoError(t, err)

	members, err := env.convs.GroupMemberCount(ctx, g.GroupID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, members)

	online, err := env.convs.GroupOnlineCount(ctx, g.GroupID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, online)

	details, err := env.convs.GroupMemberDetails(ctx, g.GroupID)
	require.NoError(t, err)
	require.Len(t, details, 3)
	assert.Equal(t, []string{"alice", "bob", "carol"}, []string{details[0].Username, details[1].Username, details[2].Username})
	assert.True(t, details[1].IsAuthenticated)
	assert.Equal(t, "Carol", details[2].DisplayName)

	summary, err := env.convs.GroupSummary(ctx, g.GroupID)
	require.NoError(t, err)
	assert.Equal(t, "Study", summary.GroupName)
	assert.EqualValues(t, 3, summary.MemberCount)
	assert.EqualValues(t, 1, summary.OnlineCount)
	assert.True(t, summary.CreatedAt.Equal(g.CreatedAt))

	for _, err := range []error{
		func() error { _, err := env.convs.GroupMemberCount(ctx, 999); return err }(),
		func() error { _, err := env.convs.GroupOnlineCount(ctx, 999); return err }(),
		func() error { _, err := env.convs.GroupMemberDetails(ctx, 999); return err }(),
		func() error { _, err := env.convs.GroupSummary(ctx, 999); return err }(),
	} {
		assert.ErrorIs(t, err, models.ErrNotFound)
	}
}

func TestStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.mustUser(t, "alice")
	env.mustUser(t, "bob")
	g := env.mustGroup(t, "alice", "Study", "bob")
	_, err := env.messages.CreateMessage(ctx, "hi", "bob", g.GroupID)
	require.NoError(t, err)

	stats, err := env.convs.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{Users: 2, Groups: 1, Messages: 1, Invites: 1}, *stats)
}
