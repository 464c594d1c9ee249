package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/Gopher0727/GroupChat/internal/models"
)

const messageViewColumns = "messages.message_id, messages.content, messages.sender_username, " +
	"messages.group_id, messages.sent_at, users.display_name AS sender_display_name"

type MessageRepository struct {
	db *gorm.DB
}

// views 消息连同发送者显示名
func (r *MessageRepository) views(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Message{}).
		Select(messageViewColumns).
		Joins("JOIN users ON users.username = messages.sender_username")
}

// Create 插入消息，MessageID 由调用方生成
func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	return translate(r.db.WithContext(ctx).Create(msg).Error, "message")
}

// Get 根据 ID 获取消息
func (r *MessageRepository) Get(ctx context.Context, id int64) (*models.Message, error) {
	var msg models.Message
	if err := r.db.WithContext(ctx).Where("message_id = ?", id).First(&msg).Error; err != nil {
		return nil, translate(err, "message")
	}
	return &msg, nil
}

// UpdateContent 修改消息内容
func (r *MessageRepository) UpdateContent(ctx context.Context, id int64, content string) error {
	res := r.db.WithContext(ctx).Model(&models.Message{}).Where("message_id = ?", id).Update("content", content)
	if res.Error != nil {
		return translate(res.Error, "message")
	}
	if res.RowsAffected == 0 {
		return models.NotFoundf("message %d not found", id)
	}
	return nil
}

// Delete 删除消息
func (r *MessageRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("message_id = ?", id).Delete(&models.Message{})
	if res.Error != nil {
		return translate(res.Error, "message")
	}
	if res.RowsAffected == 0 {
		return models.NotFoundf("message %d not found", id)
	}
	return nil
}

// History 群内全部消息，按 (sent_at, message_id) 升序
func (r *MessageRepository) History(ctx context.Context, groupID uint) ([]models.MessageView, error) {
	var msgs []models.MessageView
	err := r.views(ctx).
		Where("messages.group_id = ?", groupID).
		Order("messages.sent_at ASC, messages.message_id ASC").
		Scan(&msgs).Error
	return msgs, translate(err, "message")
}

// Page returns up to limit messages that sort after the cursor message. A nil
// cursor starts from the oldest message.
func (r *MessageRepository) Page(ctx context.Context, groupID uint, after *models.Message, limit int) ([]models.MessageView, error) {
	q := r.views(ctx).Where("messages.group_id = ?", groupID)
	if after != nil {
		q = q.Where("(messages.sent_at > ? OR (messages.sent_at = ? AND messages.message_id > ?))",
			after.SentAt, after.SentAt, after.MessageID)
	}
	var msgs []models.MessageView
	err := q.Order("messages.sent_at ASC, messages.message_id ASC").
		Limit(limit).
		Scan(&msgs).Error
	return msgs, translate(err, "message")
}

// Latest 群内最新的一条消息；没有消息时返回 NotFound
func (r *MessageRepository) Latest(ctx context.Context, groupID uint) (*models.MessageView, error) {
	var msgs []models.MessageView
	err := r.views(ctx).
		Where("messages.group_id = ?", groupID).
		Order("messages.sent_at DESC, messages.message_id DESC").
		Limit(1).
		Scan(&msgs).Error
	if err != nil {
		return nil, translate(err, "message")
	}
	if len(msgs) == 0 {
		return nil, models.NotFoundf("group %d has no messages", groupID)
	}
	return &msgs[0], nil
}

// Count 消息总数
func (r *MessageRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).Count(&count).Error
	return count, translate(err, "message")
}
