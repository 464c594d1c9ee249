package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgconn"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Gopher0727/GroupChat/internal/models"
	"github.com/Gopher0727/GroupChat/internal/storage"
)

var epoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func setupStore(t *testing.T) (*GormStore, *miniredis.Miniredis) {
	t.Helper()
	db, err := storage.InitMemorySQLite(t.Name())
	require.NoError(t, err)
	require.NoError(t, storage.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewStore(db, client, WithCacheTTL(time.Minute)), mr
}

func seedUser(t *testing.T, s *GormStore, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username:     username,
		DisplayName:  "Display " + username,
		EmailAddress: username + "@example.com",
		PasswordHash: "hash",
		JoinedAt:     epoch,
		IsActive:     true,
	}
	require.NoError(t, s.Repos().Users.Create(context.Background(), u))
	return u
}

func seedGroup(t *testing.T, s *GormStore, name string, members ...string) *models.Group {
	t.Helper()
	ctx := context.Background()
	g := &models.Group{GroupName: name, CreatedAt: epoch}
	require.NoError(t, s.Repos().Groups.Create(ctx, g))
	for _, m := range members {
		require.NoError(t, s.Repos().Memberships.Create(ctx, &models.Membership{Username: m, GroupID: g.GroupID}))
	}
	return g
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil, "user"))
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound, "user"), models.ErrNotFound)
	assert.ErrorIs(t, translate(gorm.ErrDuplicatedKey, "user"), models.ErrConflict)
	assert.ErrorIs(t, translate(gorm.ErrForeignKeyViolated, "membership"), models.ErrNotFound)
	assert.ErrorIs(t, translate(fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40001"}), "transaction"), models.ErrConflict)

	t.Run("model errors pass through", func(t *testing.T) {
		err := models.Forbiddenf("nope")
		assert.Same(t, err, translate(err, "user"))
	})

	t.Run("unknown errors are wrapped", func(t *testing.T) {
		boom := errors.New("boom")
		err := translate(boom, "group")
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, models.ErrConflict)
	})
}

func TestParseIsolation(t *testing.T) {
	level, err := ParseIsolation("serializable")
	require.NoError(t, err)
	assert.Equal(t, sql.LevelSerializable, level)

	level, err = ParseIsolation("")
	require.NoError(t, err)
	assert.Equal(t, sql.LevelDefault, level)

	_, err = ParseIsolation("chaos")
	assert.Error(t, err)
}

func TestTransactionRollsBack(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()
	seedUser(t, s, "alice")

	err := s.Transaction(ctx, func(r Repos) error {
		g := &models.Group{GroupName: "Doomed", CreatedAt: epoch}
		if err := r.Groups.Create(ctx, g); err != nil {
			return err
		}
		// 重复成员关系触发回滚
		if err := r.Memberships.Create(ctx, &models.Membership{Username: "alice", GroupID: g.GroupID}); err != nil {
			return err
		}
		return r.Memberships.Create(ctx, &models.Membership{Username: "alice", GroupID: g.GroupID})
	})
	assert.ErrorIs(t, err, models.ErrConflict)

	n, err := s.Repos().Groups.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
