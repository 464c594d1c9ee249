package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const defaultUserCacheTTL = time.Hour

// Repos 一组绑定到同一个连接（或同一个事务）的仓储
type Repos struct {
	Users       *UserRepository
	Groups      *GroupRepository
	Memberships *MembershipRepository
	Messages    *MessageRepository
	Invites     *InviteRepository
}

// Store is the entity store used by the services.
type Store interface {
	// Repos returns repositories bound to the plain connection.
	Repos() Repos
	// Transaction runs fn in one database transaction. Only the repositories
	// passed to fn may be used inside it.
	Transaction(ctx context.Context, fn func(Repos) error) error
}

type GormStore struct {
	db       *gorm.DB
	redis    *redis.Client
	cacheTTL time.Duration
	txOpts   *sql.TxOptions
}

type Option func(*GormStore)

// WithCacheTTL 设置用户缓存过期时间
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *GormStore) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithIsolation sets the isolation level used by Transaction.
func WithIsolation(level sql.IsolationLevel) Option {
	return func(s *GormStore) {
		if level == sql.LevelDefault {
			s.txOpts = nil
			return
		}
		s.txOpts = &sql.TxOptions{Isolation: level}
	}
}

// ParseIsolation converts a config value such as "serializable" into a level.
func ParseIsolation(name string) (sql.IsolationLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default":
		return sql.LevelDefault, nil
	case "serializable":
		return sql.LevelSerializable, nil
	case "repeatable_read":
		return sql.LevelRepeatableRead, nil
	case "read_committed":
		return sql.LevelReadCommitted, nil
	}
	return sql.LevelDefault, fmt.Errorf("unknown isolation level %q", name)
}

// NewStore 创建 Store，cache 为 nil 时不使用缓存
func NewStore(db *gorm.DB, cache *redis.Client, opts ...Option) *GormStore {
	s := &GormStore{db: db, redis: cache, cacheTTL: defaultUserCacheTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *GormStore) Repos() Repos {
	return s.bind(s.db, nil)
}

// Transaction 在一个事务中执行 fn；提交后再清理事务中改动过的用户缓存
func (s *GormStore) Transaction(ctx context.Context, fn func(Repos) error) error {
	var dirty dirtyUsers
	txFn := func(tx *gorm.DB) error {
		return fn(s.bind(tx, &dirty))
	}

	var err error
	if s.txOpts != nil {
		err = s.db.WithContext(ctx).Transaction(txFn, s.txOpts)
	} else {
		err = s.db.WithContext(ctx).Transaction(txFn)
	}
	if err != nil {
		return translate(err, "transaction")
	}

	if s.redis != nil {
		if keys := dirty.keys(); len(keys) > 0 {
			s.redis.Del(ctx, keys...)
		}
	}
	return nil
}

func (s *GormStore) bind(db *gorm.DB, dirty *dirtyUsers) Repos {
	return Repos{
		Users:       &UserRepository{db: db, redis: s.redis, ttl: s.cacheTTL, dirty: dirty},
		Groups:      &GroupRepository{db: db},
		Memberships: &MembershipRepository{db: db},
		Messages:    &MessageRepository{db: db},
		Invites:     &InviteRepository{db: db},
	}
}

// dirtyUsers collects cache keys touched inside a transaction.
type dirtyUsers struct {
	mu   sync.Mutex
	list []string
}

func (d *dirtyUsers) add(key string) {
	d.mu.Lock()
	d.list = append(d.list, key)
	d.mu.Unlock()
}

func (d *dirtyUsers) keys() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.list
}
