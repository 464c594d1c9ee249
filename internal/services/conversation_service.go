package services

import (
	"context"
	"errors"

	"github.com/Gopher0727/GroupChat/internal/models"
	"github.com/Gopher0727/GroupChat/internal/repositories"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// ConversationService 只读的会话视图
type ConversationService struct {
	base
}

func NewConversationService(store repositories.Store, opts ...Option) *ConversationService {
	return &ConversationService{base: newBase(store, opts)}
}

// ListGroupsForUser 用户所在的每个群组一项，附带最新消息预览，按 group_id 升序
func (s *ConversationService) ListGroupsForUser(ctx context.Context, username string) ([]models.GroupPreview, error) {
	r := s.store.Repos()
	if err := requireUser(ctx, r, username); err != nil {
		return nil, err
	}
	groups, err := r.Groups.ListForUser(ctx, username)
	if err != nil {
		return nil, s.logFailure(ctx, "list groups", err)
	}

	previews := make([]models.GroupPreview, 0, len(groups))
	for _, g := range groups {
		preview := models.GroupPreview{GroupID: g.GroupID, GroupName: g.GroupName}
		latest, err := r.Messages.Latest(ctx, g.GroupID)
		switch {
		case errors.Is(err, models.ErrNotFound):
		case err != nil:
			return nil, s.logFailure(ctx, "latest message", err)
		default:
			preview.HasMessages = true
			preview.LastSenderDisplayName = &latest.SenderDisplayName
			preview.LastMessageContent = &latest.Content
			preview.LastMessageDate = &latest.SentAt
		}
		previews = append(previews, preview)
	}
	return previews, nil
}

// ListMessagesForGroup 群内全部消息，最早的在前
func (s *ConversationService) ListMessagesForGroup(ctx context.Context, groupID uint) ([]models.MessageView, error) {
	r := s.store.Repos()
	if err := requireGroup(ctx, r, groupID); err != nil {
		return nil, err
	}
	msgs, err := r.Messages.History(ctx, groupID)
	if err != nil {
		return nil, s.logFailure(ctx, "list messages", err)
	}
	if msgs == nil {
		msgs = []models.MessageView{}
	}
	return msgs, nil
}

// ListMessagesPage returns the messages that follow afterID in history order.
// afterID 0 starts at the oldest message; limit defaults to DefaultPageSize
// and is capped at MaxPageSize.
func (s *ConversationService) ListMessagesPage(ctx context.Context, groupID uint, afterID int64, limit int) ([]models.MessageView, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	r := s.store.Repos()
	if err := requireGroup(ctx, r, groupID); err != nil {
		return nil, err
	}
	var cursor *models.Message
	if afterID != 0 {
		msg, err := r.Messages.Get(ctx, afterID)
		if err != nil {
			return nil, err
		}
		if msg.GroupID != groupID {
			return nil, models.NotFoundf("message %d not found in group %d", afterID, groupID)
		}
		cursor = msg
	}

	msgs, err := r.Messages.Page(ctx, groupID, cursor, limit)
	if err != nil {
		return nil, s.logFailure(ctx, "page messages", err)
	}
	if msgs == nil {
		msgs = []models.MessageView{}
	}
	return msgs, nil
}

// LatestMessageForGroup 群内最新消息；群里没有消息时返回 NotFound
func (s *ConversationService) LatestMessageForGroup(ctx context.Context, groupID uint) (*models.MessageView, error) {
	r := s.store.Repos()
	if err := requireGroup(ctx, r, groupID); err != nil {
		return nil, err
	}
	msg, err := r.Messages.Latest(ctx, groupID)
	return msg, s.logFailure(ctx, "latest message", err)
}

func (s *ConversationService) GroupMemberCount(ctx context.Context, groupID uint) (int64, error) {
	r := s.store.Repos()
	if err := requireGroup(ctx, r, groupID); err != nil {
		return 0, err
	}
	n, err := r.Memberships.CountMembers(ctx, groupID)
	return n, s.logFailure(ctx, "count members", err)
}

// GroupOnlineCount counts members whose is_authenticated flag is set. This is
// login state, not live presence.
func (s *ConversationService) GroupOnlineCount(ctx context.Context, groupID uint) (int64, error) {
	r := s.store.Repos()
	if err := requireGroup(ctx, r, groupID); err != nil {
		return 0, err
	}
	n, err := r.Memberships.CountOnline(ctx, groupID)
	return n, s.logFailure(ctx, "count online", err)
}

// GroupMemberDetails 成员列表，按用户名排序
func (s *ConversationService) GroupMemberDetails(ctx context.Context, groupID uint) ([]models.MemberDetail, error) {
	r := s.store.Repos()
	if err := requireGroup(ctx, r, groupID); err != nil {
		return nil, err
	}
	members, err := r.Memberships.Members(ctx, groupID)
	if err != nil {
		return nil, s.logFailure(ctx, "member details", err)
	}
	if members == nil {
		members = []models.MemberDetail{}
	}
	return members, nil
}

func (s *ConversationService) GroupSummary(ctx context.Context, groupID uint) (*models.GroupSummary, error) {
	r := s.store.Repos()
	group, err := r.Groups.Get(ctx, groupID)
	if err != nil {
		return nil, s.logFailure(ctx, "group summary", err)
	}
	members, err := r.Memberships.CountMembers(ctx, groupID)
	if err != nil {
		return nil, s.logFailure(ctx, "group summary", err)
	}
	online, err := r.Memberships.CountOnline(ctx, groupID)
	if err != nil {
		return nil, s.logFailure(ctx, "group summary", err)
	}
	return &models.GroupSummary{
		GroupID:     group.GroupID,
		GroupName:   group.GroupName,
		CreatedAt:   group.CreatedAt,
		MemberCount: members,
		OnlineCount: online,
	}, nil
}

func (s *ConversationService) IsMember(ctx context.Context, username string, groupID uint) (bool, error) {
	ok, err := s.store.Repos().Memberships.Exists(ctx, username, groupID)
	return ok, s.logFailure(ctx, "is member", err)
}

// Stats 全站计数
func (s *ConversationService) Stats(ctx context.Context) (*models.Stats, error) {
	r := s.store.Repos()
	var (
		stats models.Stats
		err   error
	)
	if stats.Users, err = r.Users.Count(ctx); err != nil {
		return nil, s.logFailure(ctx, "stats", err)
	}
	if stats.Groups, err = r.Groups.Count(ctx); err != nil {
		return nil, s.logFailure(ctx, "stats", err)
	}
	if stats.Messages, err = r.Messages.Count(ctx); err != nil {
		return nil, s.logFailure(ctx, "stats", err)
	}
	if stats.Invites, err = r.Invites.Count(ctx); err != nil {
		return nil, s.logFailure(ctx, "stats", err)
	}
	return &stats, nil
}
