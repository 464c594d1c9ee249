package repositories

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Gopher0727/GroupChat/internal/models"
)

const userCacheKeyPrefix = "user:info:" // Redis String, 值是 cachedUser JSON

// UserRepository 用户仓储。事务外的读取走 Redis 缓存，写入一律清除缓存
type UserRepository struct {
	db    *gorm.DB
	redis *redis.Client
	ttl   time.Duration
	dirty *dirtyUsers // 非 nil 表示处于事务中
}

// cachedUser mirrors models.User including the password hash, which the
// model hides from JSON.
type cachedUser struct {
	Username        string    `json:"username"`
	DisplayName     string    `json:"display_name"`
	EmailAddress    string    `json:"email_address"`
	PasswordHash    string    `json:"password_hash"`
	JoinedAt        time.Time `json:"joined_at"`
	IsAuthenticated bool      `json:"is_authenticated"`
	IsActive        bool      `json:"is_active"`
	IsAnonymous     bool      `json:"is_anonymous"`
}

func toCached(u *models.User) cachedUser {
	return cachedUser{
		Username:        u.Username,
		DisplayName:     u.DisplayName,
		EmailAddress:    u.EmailAddress,
		PasswordHash:    u.PasswordHash,
		JoinedAt:        u.JoinedAt,
		IsAuthenticated: u.IsAuthenticated,
		IsActive:        u.IsActive,
		IsAnonymous:     u.IsAnonymous,
	}
}

func (c cachedUser) user() *models.User {
	return &models.User{
		Username:        c.Username,
		DisplayName:     c.DisplayName,
		EmailAddress:    c.EmailAddress,
		PasswordHash:    c.PasswordHash,
		JoinedAt:        c.JoinedAt,
		IsAuthenticated: c.IsAuthenticated,
		IsActive:        c.IsActive,
		IsAnonymous:     c.IsAnonymous,
	}
}

func userCacheKey(username string) string {
	return userCacheKeyPrefix + username
}

func (r *UserRepository) cacheable() bool {
	return r.redis != nil && r.dirty == nil
}

func (r *UserRepository) invalidate(ctx context.Context, username string) {
	if r.redis == nil {
		return
	}
	key := userCacheKey(username)
	if r.dirty != nil {
		r.dirty.add(key)
	}
	r.redis.Del(ctx, key)
}

// Create 创建用户
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return translate(err, "user")
	}
	r.invalidate(ctx, user.Username)
	return nil
}

// Get 根据用户名获取用户 (带缓存)
func (r *UserRepository) Get(ctx context.Context, username string) (*models.User, error) {
	// 尝试从 Redis 获取
	if r.cacheable() {
		val, err := r.redis.Get(ctx, userCacheKey(username)).Bytes()
		if err == nil {
			var cached cachedUser
			if json.Unmarshal(val, &cached) == nil {
				return cached.user(), nil
			}
		}
	}

	// 从数据库获取
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err, "user")
	}

	// 回填 Redis
	if r.cacheable() {
		if data, err := json.Marshal(toCached(&user)); err == nil {
			r.redis.Set(ctx, userCacheKey(username), data, r.ttl)
		}
	}
	return &user, nil
}

// Exists 检查用户名是否存在
func (r *UserRepository) Exists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, translate(err, "user")
}

// Missing returns the usernames from names that have no user row, in input order.
func (r *UserRepository) Missing(ctx context.Context, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var found []string
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("username IN ?", names).
		Pluck("username", &found).Error
	if err != nil {
		return nil, translate(err, "user")
	}

	seen := make(map[string]struct{}, len(found))
	for _, name := range found {
		seen[name] = struct{}{}
	}
	var missing []string
	for _, name := range names {
		if _, ok := seen[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

// UpdateColumn 更新单个字段 (同时清除缓存)
func (r *UserRepository) UpdateColumn(ctx context.Context, username, column string, value any) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Update(column, value)
	if res.Error != nil {
		return translate(res.Error, "user")
	}
	r.invalidate(ctx, username)
	if res.RowsAffected == 0 {
		return models.NotFoundf("user %q not found", username)
	}
	return nil
}

// Delete 删除用户及其成员关系、消息和邀请 (同时清除缓存)
func (r *UserRepository) Delete(ctx context.Context, username string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("sender_username = ? OR receiver_username = ?", username, username).
		Delete(&models.InviteRequest{}).Error; err != nil {
		return translate(err, "invite request")
	}
	if err := db.Where("sender_username = ?", username).Delete(&models.Message{}).Error; err != nil {
		return translate(err, "message")
	}
	if err := db.Where("username = ?", username).Delete(&models.Membership{}).Error; err != nil {
		return translate(err, "membership")
	}

	res := db.Where("username = ?", username).Delete(&models.User{})
	if res.Error != nil {
		return translate(res.Error, "user")
	}
	r.invalidate(ctx, username)
	if res.RowsAffected == 0 {
		return models.NotFoundf("user %q not found", username)
	}
	return nil
}

// Count 用户总数
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, translate(err, "user")
}
