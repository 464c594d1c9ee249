package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/Gopher0727/GroupChat/internal/models"
)

type GroupRepository struct {
	db *gorm.DB
}

// Create 创建群组，GroupID 由数据库分配
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	return translate(r.db.WithContext(ctx).Create(group).Error, "group")
}

// Get 根据 ID 获取群组
func (r *GroupRepository) Get(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).First(&group, id).Error; err != nil {
		return nil, translate(err, "group")
	}
	return &group, nil
}

// Exists 检查群组是否存在
func (r *GroupRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Group{}).Where("group_id = ?", id).Count(&count).Error
	return count > 0, translate(err, "group")
}

// UpdateName 修改群名
func (r *GroupRepository) UpdateName(ctx context.Context, id uint, name string) error {
	res := r.db.WithContext(ctx).Model(&models.Group{}).Where("group_id = ?", id).Update("group_name", name)
	if res.Error != nil {
		return translate(res.Error, "group")
	}
	if res.RowsAffected == 0 {
		return models.NotFoundf("group %d not found", id)
	}
	return nil
}

// Delete 删除群组及其消息、邀请和成员关系
func (r *GroupRepository) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("group_id = ?", id).Delete(&models.InviteRequest{}).Error; err != nil {
		return translate(err, "invite request")
	}
	if err := db.Where("group_id = ?", id).Delete(&models.Message{}).Error; err != nil {
		return translate(err, "message")
	}
	if err := db.Where("group_id = ?", id).Delete(&models.Membership{}).Error; err != nil {
		return translate(err, "membership")
	}

	res := db.Where("group_id = ?", id).Delete(&models.Group{})
	if res.Error != nil {
		return translate(res.Error, "group")
	}
	if res.RowsAffected == 0 {
		return models.NotFoundf("group %d not found", id)
	}
	return nil
}

// DeleteOrphans removes the groups among ids that have no members left and
// returns the ids it deleted.
func (r *GroupRepository) DeleteOrphans(ctx context.Context, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var orphans []uint
	err := r.db.WithContext(ctx).Model(&models.Group{}).
		Where("group_id IN ?", ids).
		Where("NOT EXISTS (SELECT 1 FROM memberships m WHERE m.group_id = \"groups\".group_id)").
		Order("group_id").
		Pluck("group_id", &orphans).Error
	if err != nil {
		return nil, translate(err, "group")
	}
	for _, id := range orphans {
		if err := r.Delete(ctx, id); err != nil {
			return nil, err
		}
	}
	return orphans, nil
}

// ListForUser 按 group_id 升序返回用户所在的群组
func (r *GroupRepository) ListForUser(ctx context.Context, username string) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.WithContext(ctx).
		Joins("JOIN memberships ON memberships.group_id = \"groups\".group_id").
		Where("memberships.username = ?", username).
		Order("\"groups\".group_id").
		Find(&groups).Error
	return groups, translate(err, "group")
}

// Count 群组总数
func (r *GroupRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Group{}).Count(&count).Error
	return count, translate(err, "group")
}
