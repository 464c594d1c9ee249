package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/Gopher0727/GroupChat/internal/models"
	"github.com/Gopher0727/GroupChat/internal/repositories"
	"github.com/Gopher0727/GroupChat/internal/utils"
	logger "github.com/Gopher0727/GroupChat/middleware/log"
)

type UserService struct {
	base
}

func NewUserService(store repositories.Store, opts ...Option) *UserService {
	return &UserService{base: newBase(store, opts)}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username     string `json:"username" binding:"required"`
	DisplayName  string `json:"display_name" binding:"required"`
	EmailAddress string `json:"email_address" binding:"required"`
	Password     string `json:"password" binding:"required"`
}

// UpdateFieldRequest 修改单个字段
type UpdateFieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// CreateUser 注册新用户
// 实现逻辑：校验全部字段（密码策略的所有问题一并返回），哈希密码，在事务中检查重名后插入
func (s *UserService) CreateUser(ctx context.Context, username, displayName, email, password string) (*models.User, error) {
	if username == "" || displayName == "" || email == "" || password == "" {
		return nil, models.Validationf("username, display name, email address and password are required")
	}
	if !utils.ValidateUserName(username) {
		return nil, models.Validationf("username must be 1-50 letters, digits or underscores")
	}
	if !utils.ValidateDisplayName(displayName) {
		return nil, models.Validationf("display name must be at most %d characters", utils.MaxNameLength)
	}
	if !utils.ValidateEmail(email) {
		return nil, models.Validationf("invalid email address")
	}
	if reasons := utils.ValidatePassword(password); len(reasons) > 0 {
		return nil, models.Validationf("%s", strings.Join(reasons, "; "))
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, s.logFailure(ctx, "hash password", err)
	}
	user := &models.User{
		Username:     username,
		DisplayName:  displayName,
		EmailAddress: email,
		PasswordHash: hash,
		JoinedAt:     s.timestamp(),
		IsActive:     true,
	}

	err = s.store.Transaction(ctx, func(r repositories.Repos) error {
		exists, err := r.Users.Exists(ctx, username)
		if err != nil {
			return err
		}
		if exists {
			return models.Conflictf("username %q is already taken", username)
		}
		return r.Users.Create(ctx, user)
	})
	if err != nil {
		return nil, s.logFailure(ctx, "create user", err)
	}

	s.log.InfoContext(ctx, "user created", logger.Username(username))
	return user, nil
}

// GetUser 根据用户名获取用户
func (s *UserService) GetUser(ctx context.Context, username string) (*models.User, error) {
	if username == "" {
		return nil, models.Validationf("username is required")
	}
	user, err := s.store.Repos().Users.Get(ctx, username)
	return user, s.logFailure(ctx, "get user", err)
}

// UpdateUserField 修改用户的一个可变字段
// 实现逻辑：username / joined_at / is_anonymous 不可修改；新值与旧值相同视为冲突；密码按注册时的策略校验并重新哈希
func (s *UserService) UpdateUserField(ctx context.Context, username string, field models.UserField, value string) error {
	switch field {
	case models.FieldUsername, models.FieldJoinedAt, models.FieldIsAnonymous:
		return models.Validationf("%s cannot be changed", field)
	case models.FieldDisplayName, models.FieldEmailAddress, models.FieldPassword,
		models.FieldIsAuthenticated, models.FieldIsActive:
	default:
		return models.Validationf("unknown user field %q", field)
	}
	if value == "" {
		return models.Validationf("%s must not be empty", field)
	}

	var newValue any
	switch field {
	case models.FieldDisplayName:
		if !utils.ValidateDisplayName(value) {
			return models.Validationf("display name must be at most %d characters", utils.MaxNameLength)
		}
		newValue = value
	case models.FieldEmailAddress:
		if !utils.ValidateEmail(value) {
			return models.Validationf("invalid email address")
		}
		newValue = value
	case models.FieldPassword:
		if reasons := utils.ValidatePassword(value); len(reasons) > 0 {
			return models.Validationf("%s", strings.Join(reasons, "; "))
		}
	case models.FieldIsAuthenticated, models.FieldIsActive:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return models.Validationf("%s must be true or false", field)
		}
		newValue = b
	}

	err := s.store.Transaction(ctx, func(r repositories.Repos) error {
		user, err := r.Users.Get(ctx, username)
		if err != nil {
			return err
		}

		switch field {
		case models.FieldDisplayName:
			if user.DisplayName == value {
				return models.Conflictf("display name has not changed")
			}
		case models.FieldEmailAddress:
			if user.EmailAddress == value {
				return models.Conflictf("email address has not changed")
			}
		case models.FieldPassword:
			if utils.CheckPassword(user.PasswordHash, value) {
				return models.Conflictf("password has not changed")
			}
			hash, err := utils.HashPassword(value)
			if err != nil {
				return err
			}
			newValue = hash
		case models.FieldIsAuthenticated:
			if user.IsAuthenticated == newValue.(bool) {
				return models.Conflictf("is_authenticated has not changed")
			}
		case models.FieldIsActive:
			if user.IsActive == newValue.(bool) {
				return models.Conflictf("is_active has not changed")
			}
		}
		return r.Users.UpdateColumn(ctx, username, field.Column(), newValue)
	})
	if err != nil {
		return s.logFailure(ctx, "update user", err)
	}

	s.log.InfoContext(ctx, "user updated", logger.Username(username), logger.Field(string(field)))
	return nil
}

// DeleteUser 删除用户，级联删除成员关系、消息与邀请；因此变空的群组一并删除
func (s *UserService) DeleteUser(ctx context.Context, username string) error {
	if username == "" {
		return models.Validationf("username is required")
	}
	err := s.store.Transaction(ctx, func(r repositories.Repos) error {
		groupIDs, err := r.Memberships.GroupIDs(ctx, username)
		if err != nil {
			return err
		}
		if err := r.Users.Delete(ctx, username); err != nil {
			return err
		}
		return s.removeOrphans(ctx, r, groupIDs)
	})
	if err != nil {
		return s.logFailure(ctx, "delete user", err)
	}

	s.log.InfoContext(ctx, "user deleted", logger.Username(username))
	return nil
}
