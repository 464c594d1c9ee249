package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/Gopher0727/GroupChat/internal/models"
	"github.com/Gopher0727/GroupChat/internal/repositories"
	"github.com/Gopher0727/GroupChat/internal/storage"
	"github.com/Gopher0727/GroupChat/middleware/jwt"
	"github.com/Gopher0727/GroupChat/utils/snowflake"
)

const strongPassword = "Correct-Horse9"

// testClock advances one second on every read so that successive writes get
// distinct timestamps.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type testEnv struct {
	store    *repositories.GormStore
	redis    *miniredis.Miniredis
	clock    *testClock
	users    *UserService
	groups   *GroupService
	messages *MessageService
	invites  *InviteService
	convs    *ConversationService
	auth     *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := storage.InitMemorySQLite(name)
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

	store := repositories.NewStore(db, client)
	clock := &testClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	opts := []Option{WithClock(clock.Now)}

	ids, err := snowflake.NewGenerator(1)
	require.NoError(t, err)

	return &testEnv{
		store:    store,
		redis:    mr,
		clock:    clock,
		users:    NewUserService(store, opts...),
		groups:   NewGroupService(store, opts...),
		messages: NewMessageService(store, ids, opts...),
		invites:  NewInviteService(store, opts...),
		convs:    NewConversationService(store, opts...),
		auth:     NewAuthService(store, jwt.NewTokenManager("test-secret", 1, 1), opts...),
	}
}

func (e *testEnv) mustUser(t *testing.T, username string) *models.User {
	t.Helper()
	u, err := e.users.CreateUser(context.Background(), username, strings.ToUpper(username[:1])+username[1:], username+"@example.com", strongPassword)
	require.NoError(t, err)
	return u
}

// mustGroup creates a group owned by creator whose invitees have all accepted.
func (e *testEnv) mustGroup(t *testing.T, creator, name string, members ...string) *models.Group {
	t.Helper()
	ctx := context.Background()
	if len(members) == 0 {
		g, err := e.groups.CreateGroup(ctx, name)
		require.NoError(t, err)
		require.NoError(t, e.groups.CreateMembership(ctx, creator, g.GroupID))
		return g
	}
	g, invites, err := e.invites.CreateGroupWithInvites(ctx, creator, name, members)
	require.NoError(t, err)
	for _, inv := range invites {
		_, err := e.invites.AcceptInvite(ctx, inv.RequestID, inv.ReceiverUsername)
		require.NoError(t, err)
	}
	return g
}
