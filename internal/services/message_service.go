package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/Gopher0727/GroupChat/internal/metrics"
	"github.com/Gopher0727/GroupChat/internal/models"
	"github.com/Gopher0727/GroupChat/internal/repositories"
	logger "github.com/Gopher0727/GroupChat/middleware/log"
)

// IDGenerator issues strictly increasing message ids.
type IDGenerator interface {
	NextID() int64
}

type MessageService struct {
	base
	ids IDGenerator
}

func NewMessageService(store repositories.Store, ids IDGenerator, opts ...Option) *MessageService {
	return &MessageService{base: newBase(store, opts), ids: ids}
}

// SendMessageRequest 发送消息请求
type SendMessageRequest struct {
	Content string `json:"message_content" binding:"required"`
}

func validateContent(content string) error {
	if utf8.RuneCountInString(content) > models.MaxMessageLength {
		return models.Validationf("message text is too long")
	}
	if strings.TrimSpace(content) == "" {
		return models.Validationf("message text is empty")
	}
	return nil
}

// CreateMessage 发送消息
// 实现逻辑：校验长度；在同一事务中确认发送者与群组存在、发送者是群成员，再插入消息。任何失败都不会留下消息
func (s *MessageService) CreateMessage(ctx context.Context, content, sender string, groupID uint) (*models.Message, error) {
	if err := validateContent(content); err != nil {
		return nil, err
	}
	if sender == "" {
		return nil, models.Validationf("sender is required")
	}

	var msg *models.Message
	err := s.store.Transaction(ctx, func(r repositories.Repos) error {
		if err := requireUser(ctx, r, sender); err != nil {
			return err
		}
		if err := requireGroup(ctx, r, groupID); err != nil {
			return err
		}
		member, err := r.Memberships.Exists(ctx, sender, groupID)
		if err != nil {
			return err
		}
		if !member {
			return models.Forbiddenf("%s is not a member of group %d", sender, groupID)
		}

		msg = &models.Message{
			MessageID:      s.ids.NextID(),
			Content:        content,
			SenderUsername: sender,
			GroupID:        groupID,
			SentAt:         s.timestamp(),
		}
		return r.Messages.Create(ctx, msg)
	})
	if err != nil {
		return nil, s.logFailure(ctx, "create message", err)
	}

	metrics.MessageSent()
	s.log.DebugContext(ctx, "message stored", logger.MessageID(msg.MessageID), logger.GroupID(groupID))
	return msg, nil
}

func (s *MessageService) GetMessage(ctx context.Context, id int64) (*models.Message, error) {
	msg, err := s.store.Repos().Messages.Get(ctx, id)
	return msg, s.logFailure(ctx, "get message", err)
}

// UpdateMessageContent 修改消息内容，规则与发送时相同；内容未变视为冲突
func (s *MessageService) UpdateMessageContent(ctx context.Context, id int64, content string) error {
	if err := validateContent(content); err != nil {
		return err
	}
	err := s.store.Transaction(ctx, func(r repositories.Repos) error {
		msg, err := r.Messages.Get(ctx, id)
		if err != nil {
			return err
		}
		if msg.Content == content {
			return models.Conflictf("message text has not changed")
		}
		return r.Messages.UpdateContent(ctx, id, content)
	})
	return s.logFailure(ctx, "update message", err)
}

func (s *MessageService) DeleteMessage(ctx context.Context, id int64) error {
	err := s.store.Repos().Messages.Delete(ctx, id)
	return s.logFailure(ctx, "delete message", err)
}
