package services

import (
	"context"
	"strings"

	"github.com/Gopher0727/GroupChat/internal/metrics"
	"github.com/Gopher0727/GroupChat/internal/models"
	"github.com/Gopher0727/GroupChat/internal/repositories"
	logger "github.com/Gopher0727/GroupChat/middleware/log"
)

// InviteService owns the invite request state machine and the ways a user
// enters or leaves a group.
//
//	pending -> accepted   (receiver accepts; membership created in the same transaction)
//	pending -> rejected   (receiver rejects)
//	pending -> (deleted)  (sender cancels)
//
// accepted and rejected are terminal.
type InviteService struct {
	base
}

func NewInviteService(store repositories.Store, opts ...Option) *InviteService {
	return &InviteService{base: newBase(store, opts)}
}

// CreateInviteRequest 邀请用户入群
type CreateInviteRequest struct {
	ReceiverUsername string `json:"receiver_username" binding:"required"`
}

// CreateGroupRequest 创建群组并邀请成员
type CreateGroupRequest struct {
	GroupName string   `json:"group_name" binding:"required"`
	Invitees  []string `json:"invitees"`
}

// UpdateInviteStatusRequest 直接修改邀请状态
type UpdateInviteStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateInvite 创建邀请
// 实现逻辑：发送者、接收者、群组必须存在；发送者必须是群成员；接收者不能已在群内或已有待处理邀请
func (s *InviteService) CreateInvite(ctx context.Context, receiver, sender string, groupID uint) (*models.InviteRequest, error) {
	if receiver == "" || sender == "" {
		return nil, models.Validationf("receiver and sender are required")
	}
	if receiver == sender {
		return nil, models.Validationf("you cannot invite yourself")
	}

	invite := &models.InviteRequest{
		ReceiverUsername: receiver,
		SenderUsername:   sender,
		GroupID:          groupID,
		Status:           models.InvitePending,
		RequestedAt:      s.timestamp(),
	}
	err := s.store.Transaction(ctx, func(r repositories.Repos) error {
		if err := requireUser(ctx, r, sender); err != nil {
			return err
		}
		if err := requireUser(ctx, r, receiver); err != nil {
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
			return models.Forbiddenf("only members of group %d can invite", groupID)
		}
		if member, err = r.Memberships.Exists(ctx, receiver, groupID); err != nil {
			return err
		} else if member {
			return models.Conflictf("%s is already a member of group %d", receiver, groupID)
		}
		pending, err := r.Invites.HasPending(ctx, receiver, groupID)
		if err != nil {
			return err
		}
		if pending {
			return models.Conflictf("%s already has a pending invite to group %d", receiver, groupID)
		}
		return r.Invites.Create(ctx, invite)
	})
	if err != nil {
		return nil, s.logFailure(ctx, "create invite", err)
	}

	metrics.InviteTransition(metrics.TransitionCreated)
	s.log.InfoContext(ctx, "invite created",
		logger.RequestID(invite.RequestID), logger.Actor(sender), logger.Username(receiver), logger.GroupID(groupID))
	return invite, nil
}

// CreateGroupWithInvites 创建群组，创建者自动入群，并给每个受邀者发送待处理邀请，全部在一个事务中完成
func (s *InviteService) CreateGroupWithInvites(ctx context.Context, creator, name string, invitees []string) (*models.Group, []models.InviteRequest, error) {
	if creator == "" {
		return nil, nil, models.Validationf("creator is required")
	}
	if err := validateGroupName(name); err != nil {
		return nil, nil, err
	}
	invitees = dedupe(invitees)
	if len(invitees) == 0 {
		return nil, nil, models.Validationf("invite at least one user")
	}
	for _, invitee := range invitees {
		if invitee == creator {
			return nil, nil, models.Validationf("you cannot invite yourself")
		}
	}

	now := s.timestamp()
	group := &models.Group{GroupName: name, CreatedAt: now}
	invites := make([]models.InviteRequest, 0, len(invitees))

	err := s.store.Transaction(ctx, func(r repositories.Repos) error {
		if err := requireUser(ctx, r, creator); err != nil {
			return err
		}
		missing, err := r.Users.Missing(ctx, invitees)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return models.NotFoundf("users not found: %s", strings.Join(missing, ", "))
		}

		if err := r.Groups.Create(ctx, group); err != nil {
			return err
		}
		if err := r.Memberships.Create(ctx, &models.Membership{Username: creator, GroupID: group.GroupID}); err != nil {
			return err
		}
		for _, receiver := range invitees {
			invite := models.InviteRequest{
				ReceiverUsername: receiver,
				SenderUsername:   creator,
				GroupID:          group.GroupID,
				Status:           models.InvitePending,
				RequestedAt:      now,
			}
			if err := r.Invites.Create(ctx, &invite); err != nil {
				return err
			}
			invites = append(invites, invite)
		}
		return nil
	})
	if err != nil {
		return nil, nil, s.logFailure(ctx, "create group with invites", err)
	}

	for range invites {
		metrics.InviteTransition(metrics.TransitionCreated)
	}
	s.log.InfoContext(ctx, "group created with invites",
		logger.GroupID(group.GroupID), logger.Actor(creator), logger.Count(len(invites)))
	return group, invites, nil
}

func (s *InviteService) GetInvite(ctx context.Context, requestID uint) (*models.InviteRequest, error) {
	invite, err := s.store.Repos().Invites.Get(ctx, requestID)
	return invite, s.logFailure(ctx, "get invite", err)
}

// accept 把邀请置为 accepted 并创建成员关系；任何一步失败整个事务回滚
func accept(ctx context.Context, r repositories.Repos, invite *models.InviteRequest) error {
	if err := r.Invites.Transition(ctx, invite.RequestID, models.InvitePending, models.InviteAccepted); err != nil {
		return err
	}
	member, err := r.Memberships.Exists(ctx, invite.ReceiverUsername, invite.GroupID)
	if err != nil {
		return err
	}
	if member {
		return models.Conflictf("%s is already a member of group %d", invite.ReceiverUsername, invite.GroupID)
	}
	if err := r.Memberships.Create(ctx, &models.Membership{Username: invite.ReceiverUsername, GroupID: invite.GroupID}); err != nil {
		return err
	}
	invite.Status = models.InviteAccepted
	return nil
}

// resolve loads the invite and checks that actor may act on it as receiver
// (or as sender when asSender is set) and that it is still pending.
func resolve(ctx context.Context, r repositories.Repos, requestID uint, actor string, asSender bool) (*models.InviteRequest, error) {
	invite, err := r.Invites.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	owner := invite.ReceiverUsername
	if asSender {
		owner = invite.SenderUsername
	}
	if owner != actor {
		return nil, models.Forbiddenf("invite request %d does not belong to %s", requestID, actor)
	}
	if invite.Status != models.InvitePending {
		return nil, models.Conflictf("invite request %d is already %s", requestID, invite.Status)
	}
	return invite, nil
}

// AcceptInvite 接收者接受邀请
func (s *InviteService) AcceptInvite(ctx context.Context, requestID uint, actor string) (*models.InviteRequest, error) {
	var invite *models.InviteRequest
	err := s.store.Transaction(ctx, func(r repositories.Repos) error {
		var err error
		if invite, err = resolve(ctx, r, requestID, actor, false); err != nil {
			return err
		}
		return accept(ctx, r, invite)
	})
	if err != nil {
		return nil, s.logFailure(ctx, "accept invite", err)
	}

	metrics.InviteTransition(metrics.TransitionAccepted)
	s.log.InfoContext(ctx, "invite accepted",
		logger.RequestID(requestID), logger.Actor(actor), logger.GroupID(invite.GroupID))
	return invite, nil
}

// RejectInvite 接收者拒绝邀请
func (s *InviteService) RejectInvite(ctx context.Context, requestID uint, actor string) (*models.InviteRequest, error) {
	var invite *models.InviteRequest
	err := s.store.Transaction(ctx, func(r repositories.Repos) error {
		var err error
		if invite, err = resolve(ctx, r, requestID, actor, false); err != nil {
			return err
		}
		if err := r.Invites.Transition(ctx, requestID, models.InvitePending, models.InviteRejected); err != nil {
			return err
		}
		invite.Status = models.InviteRejected
		return nil
	})
	if err != nil {
		return nil, s.logFailure(ctx, "reject invite", err)
	}

	metrics.InviteTransition(metrics.TransitionRejected)
	s.log.InfoContext(ctx, "invite rejected", logger.RequestID(requestID), logger.Actor(actor))
	return invite, nil
}

// CancelInvite 发送者撤回尚未处理的邀请，直接删除记录
func (s *InviteService) CancelInvite(ctx context.Context, requestID uint, actor string) error {
	err := s.store.Transaction(ctx, func(r repositories.Repos) error {
		if _, err := resolve(ctx, r, requestID, actor, true); err != nil {
			return err
		}
		return r.Invites.DeletePending(ctx, requestID)
	})
	if err != nil {
		return s.logFailure(ctx, "cancel invite", err)
	}

	metrics.InviteTransition(metrics.TransitionCancelled)
	s.log.InfoContext(ctx, "invite cancelled", logger.RequestID(requestID), logger.Actor(actor))
	return nil
}

// UpdateInviteStatus sets the status without an acting user. It follows the
// same state machine; moving to accepted also creates the membership.
func (s *InviteService) UpdateInviteStatus(ctx context.Context, requestID uint, status models.InviteStatus) error {
	if !status.Valid() {
		return models.Validationf("invalid invite status %q", status)
	}
	err := s.store.Transaction(ctx, func(r repositories.Repos) error {
		invite, err := r.Invites.Get(ctx, requestID)
		if err != nil {
			return err
		}
		if invite.Status == status {
			return models.Conflictf("invite request %d is already %s", requestID, status)
		}
		if !models.CanTransition(invite.Status, status) {
			return models.Conflictf("invite request %d cannot move from %s to %s", requestID, invite.Status, status)
		}
		if status == models.InviteAccepted {
			return accept(ctx, r, invite)
		}
		return r.Invites.Transition(ctx, requestID, invite.Status, status)
	})
	if err != nil {
		return s.logFailure(ctx, "update invite status", err)
	}

	metrics.InviteTransition(string(status))
	s.log.InfoContext(ctx, "invite status updated", logger.RequestID(requestID), logger.Status(string(status)))
	return nil
}

func (s *InviteService) DeleteInvite(ctx context.Context, requestID uint) error {
	err := s.store.Repos().Invites.Delete(ctx, requestID)
	return s.logFailure(ctx, "delete invite", err)
}

// LeaveGroup 用户退出群组；最后一个成员退出时删除群组
func (s *InviteService) LeaveGroup(ctx context.Context, username string, groupID uint) error {
	err := s.store.Transaction(ctx, func(r repositories.Repos) error {
		if err := requireGroup(ctx, r, groupID); err != nil {
			return err
		}
		member, err := r.Memberships.Exists(ctx, username, groupID)
		if err != nil {
			return err
		}
		if !member {
			return models.Forbiddenf("%s is not a member of group %d", username, groupID)
		}
		if err := r.Memberships.Delete(ctx, username, groupID); err != nil {
			return err
		}
		return s.removeOrphans(ctx, r, []uint{groupID})
	})
	if err != nil {
		return s.logFailure(ctx, "leave group", err)
	}

	s.log.InfoContext(ctx, "member left", logger.Username(username), logger.GroupID(groupID))
	return nil
}

// ListReceivedInvites 用户收到的邀请（含群名），最新的在前
func (s *InviteService) ListReceivedInvites(ctx context.Context, username string) ([]models.InviteView, error) {
	r := s.store.Repos()
	if err := requireUser(ctx, r, username); err != nil {
		return nil, err
	}
	invites, err := r.Invites.ListReceived(ctx, username)
	return invites, s.logFailure(ctx, "list received invites", err)
}

// ListSentInvites 用户发出的邀请（含群名），最新的在前
func (s *InviteService) ListSentInvites(ctx context.Context, username string) ([]models.InviteView, error) {
	r := s.store.Repos()
	if err := requireUser(ctx, r, username); err != nil {
		return nil, err
	}
	invites, err := r.Invites.ListSent(ctx, username)
	return invites, s.logFailure(ctx, "list sent invites", err)
}

func (s *InviteService) PendingInviteCount(ctx context.Context, username string) (int64, error) {
	r := s.store.Repos()
	if err := requireUser(ctx, r, username); err != nil {
		return 0, err
	}
	n, err := r.Invites.CountPending(ctx, username)
	return n, s.logFailure(ctx, "count pending invites", err)
}

// dedupe trims names, drops blanks and keeps first occurrences in order.
func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
