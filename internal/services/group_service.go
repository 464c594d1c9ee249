package services

import (
	"context"

	"github.com/Gopher0727/GroupChat/internal/models"
	"github.com/Gopher0727/GroupChat/internal/repositories"
	"github.com/Gopher0727/GroupChat/internal/utils"
	logger "github.com/Gopher0727/GroupChat/middleware/log"
)

type GroupService struct {
	base
}

func NewGroupService(store repositories.Store, opts ...Option) *GroupService {
	return &GroupService{base: newBase(store, opts)}
}

// RenameGroupRequest 修改群名
type RenameGroupRequest struct {
	GroupName string `json:"group_name" binding:"required"`
}

// MembershipRequest 添加成员
type MembershipRequest struct {
	Username string `json:"username" binding:"required"`
}

func validateGroupName(name string) error {
	if !utils.ValidateGroupName(name) {
		return models.Validationf("group name must be 1-%d letters, digits or spaces", utils.MaxNameLength)
	}
	return nil
}

// CreateGroup 创建一个没有成员的群组
func (s *GroupService) CreateGroup(ctx context.Context, name string) (*models.Group, error) {
	if err := validateGroupName(name); err != nil {
		return nil, err
	}
	group := &models.Group{GroupName: name, CreatedAt: s.timestamp()}
	if err := s.store.Repos().Groups.Create(ctx, group); err != nil {
		return nil, s.logFailure(ctx, "create group", err)
	}
	s.log.InfoContext(ctx, "group created", logger.GroupID(group.GroupID))
	return group, nil
}

func (s *GroupService) GetGroup(ctx context.Context, groupID uint) (*models.Group, error) {
	group, err := s.store.Repos().Groups.Get(ctx, groupID)
	return group, s.logFailure(ctx, "get group", err)
}

// UpdateGroupName 修改群名，新旧相同视为冲突
func (s *GroupService) UpdateGroupName(ctx context.Context, groupID uint, name string) error {
	if err := validateGroupName(name); err != nil {
		return err
	}
	err := s.store.Transaction(ctx, func(r repositories.Repos) error {
		group, err := r.Groups.Get(ctx, groupID)
		if err != nil {
			return err
		}
		if group.GroupName == name {
			return models.Conflictf("group name has not changed")
		}
		return r.Groups.UpdateName(ctx, groupID, name)
	})
	return s.logFailure(ctx, "rename group", err)
}

// DeleteGroup 删除群组及其成员关系、消息与邀请
func (s *GroupService) DeleteGroup(ctx context.Context, groupID uint) error {
	err := s.store.Transaction(ctx, func(r repositories.Repos) error {
		return r.Groups.Delete(ctx, groupID)
	})
	if err != nil {
		return s.logFailure(ctx, "delete group", err)
	}
	s.log.InfoContext(ctx, "group deleted", logger.GroupID(groupID))
	return nil
}

// CreateMembership 直接添加成员；正常入群走邀请流程
func (s *GroupService) CreateMembership(ctx context.Context, username string, groupID uint) error {
	if username == "" || groupID == 0 {
		return models.Validationf("username and group id are required")
	}
	err := s.store.Transaction(ctx, func(r repositories.Repos) error {
		if err := requireUser(ctx, r, username); err != nil {
			return err
		}
		if err := requireGroup(ctx, r, groupID); err != nil {
			return err
		}
		member, err := r.Memberships.Exists(ctx, username, groupID)
		if err != nil {
			return err
		}
		if member {
			return models.Conflictf("%s is already a member of group %d", username, groupID)
		}
		return r.Memberships.Create(ctx, &models.Membership{Username: username, GroupID: groupID})
	})
	if err != nil {
		return s.logFailure(ctx, "create membership", err)
	}
	s.log.InfoContext(ctx, "member added", logger.Username(username), logger.GroupID(groupID))
	return nil
}

// DeleteMembership 删除成员关系；群组因此变空时一并删除
func (s *GroupService) DeleteMembership(ctx context.Context, username string, groupID uint) error {
	err := s.store.Transaction(ctx, func(r repositories.Repos) error {
		if err := r.Memberships.Delete(ctx, username, groupID); err != nil {
			return err
		}
		return s.removeOrphans(ctx, r, []uint{groupID})
	})
	if err != nil {
		return s.logFailure(ctx, "delete membership", err)
	}
	s.log.InfoContext(ctx, "member removed", logger.Username(username), logger.GroupID(groupID))
	return nil
}
