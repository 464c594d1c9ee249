package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/Gopher0727/GroupChat/internal/models"
)

const inviteViewColumns = "invite_requests.request_id, invite_requests.receiver_username, " +
	"invite_requests.sender_username, invite_requests.group_id, invite_requests.status, " +
	"invite_requests.requested_at, \"groups\".group_name"

type InviteRepository struct {
	db *gorm.DB
}

// Create 插入邀请
func (r *InviteRepository) Create(ctx context.Context, invite *models.InviteRequest) error {
	return translate(r.db.WithContext(ctx).Create(invite).Error, "invite request")
}

// Get 根据 ID 获取邀请
func (r *InviteRepository) Get(ctx context.Context, id uint) (*models.InviteRequest, error) {
	var invite models.InviteRequest
	if err := r.db.WithContext(ctx).First(&invite, id).Error; err != nil {
		return nil, translate(err, "invite request")
	}
	return &invite, nil
}

// Transition moves the invite from one status to another. The update is
// conditional on the current status, so of two racing callers only one sees
// affected rows; the loser gets Conflict.
func (r *InviteRepository) Transition(ctx context.Context, id uint, from, to models.InviteStatus) error {
	res := r.db.WithContext(ctx).Model(&models.InviteRequest{}).
		Where("request_id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return translate(res.Error, "invite request")
	}
	if res.RowsAffected == 0 {
		return models.Conflictf("invite request %d is no longer %s", id, from)
	}
	return nil
}

// Delete 删除邀请
func (r *InviteRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Where("request_id = ?", id).Delete(&models.InviteRequest{})
	if res.Error != nil {
		return translate(res.Error, "invite request")
	}
	if res.RowsAffected == 0 {
		return models.NotFoundf("invite request %d not found", id)
	}
	return nil
}

// DeletePending deletes the invite only while it is still pending.
func (r *InviteRepository) DeletePending(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Where("request_id = ? AND status = ?", id, models.InvitePending).
		Delete(&models.InviteRequest{})
	if res.Error != nil {
		return translate(res.Error, "invite request")
	}
	if res.RowsAffected == 0 {
		return models.Conflictf("invite request %d is no longer pending", id)
	}
	return nil
}

// HasPending 是否已有待处理的 (receiver, group) 邀请
func (r *InviteRepository) HasPending(ctx context.Context, receiver string, groupID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.InviteRequest{}).
		Where("receiver_username = ? AND group_id = ? AND status = ?", receiver, groupID, models.InvitePending).
		Count(&count).Error
	return count > 0, translate(err, "invite request")
}

func (r *InviteRepository) list(ctx context.Context, column, username string) ([]models.InviteView, error) {
	var invites []models.InviteView
	err := r.db.WithContext(ctx).Model(&models.InviteRequest{}).
		Select(inviteViewColumns).
		Joins("JOIN \"groups\" ON \"groups\".group_id = invite_requests.group_id").
		Where("invite_requests."+column+" = ?", username).
		Order("invite_requests.requested_at DESC, invite_requests.request_id DESC").
		Scan(&invites).Error
	return invites, translate(err, "invite request")
}

// ListReceived 用户收到的邀请，最新的在前
func (r *InviteRepository) ListReceived(ctx context.Context, username string) ([]models.InviteView, error) {
	return r.list(ctx, "receiver_username", username)
}

// ListSent 用户发出的邀请，最新的在前
func (r *InviteRepository) ListSent(ctx context.Context, username string) ([]models.InviteView, error) {
	return r.list(ctx, "sender_username", username)
}

// CountPending 用户待处理的邀请数
func (r *InviteRepository) CountPending(ctx context.Context, receiver string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.InviteRequest{}).
		Where("receiver_username = ? AND status = ?", receiver, models.InvitePending).
		Count(&count).Error
	return count, translate(err, "invite request")
}

// Count 邀请总数
func (r *InviteRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.InviteRequest{}).Count(&count).Error
	return count, translate(err, "invite request")
}
