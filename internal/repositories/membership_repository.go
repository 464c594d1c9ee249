package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/Gopher0727/GroupChat/internal/models"
)

type MembershipRepository struct {
	db *gorm.DB
}

// Create 插入成员关系，重复插入返回 Conflict
func (r *MembershipRepository) Create(ctx context.Context, m *models.Membership) error {
	return translate(r.db.WithContext(ctx).Create(m).Error, "membership")
}

// Exists 检查用户是否是群成员，利用联合主键索引
func (r *MembershipRepository) Exists(ctx context.Context, username string, groupID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Membership{}).
		Where("username = ? AND group_id = ?", username, groupID).
		Count(&count).Error
	return count > 0, translate(err, "membership")
}

// Delete 删除成员关系
func (r *MembershipRepository) Delete(ctx context.Context, username string, groupID uint) error {
	res := r.db.WithContext(ctx).
		Where("username = ? AND group_id = ?", username, groupID).
		Delete(&models.Membership{})
	if res.Error != nil {
		return translate(res.Error, "membership")
	}
	if res.RowsAffected == 0 {
		return models.NotFoundf("%s is not a member of group %d", username, groupID)
	}
	return nil
}

// GroupIDs 返回用户所在群组的 ID
func (r *MembershipRepository) GroupIDs(ctx context.Context, username string) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Membership{}).
		Where("username = ?", username).
		Order("group_id").
		Pluck("group_id", &ids).Error
	return ids, translate(err, "membership")
}

// CountMembers 群成员数
func (r *MembershipRepository) CountMembers(ctx context.Context, groupID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Membership{}).Where("group_id = ?", groupID).Count(&count).Error
	return count, translate(err, "membership")
}

// CountOnline 群内 is_authenticated 的成员数
func (r *MembershipRepository) CountOnline(ctx context.Context, groupID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Membership{}).
		Joins("JOIN users ON users.username = memberships.username").
		Where("memberships.group_id = ? AND users.is_authenticated = ?", groupID, true).
		Count(&count).Error
	return count, translate(err, "membership")
}

// Members 按用户名排序的成员详情
func (r *MembershipRepository) Members(ctx context.Context, groupID uint) ([]models.MemberDetail, error) {
	var members []models.MemberDetail
	err := r.db.WithContext(ctx).Model(&models.Membership{}).
		Select("users.username, users.display_name, users.is_authenticated").
		Joins("JOIN users ON users.username = memberships.username").
		Where("memberships.group_id = ?", groupID).
		Order("users.username").
		Scan(&members).Error
	return members, translate(err, "membership")
}
