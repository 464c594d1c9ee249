package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Gopher0727/GroupChat/internal/models"
	"github.com/Gopher0727/GroupChat/internal/repositories"
	"github.com/Gopher0727/GroupChat/internal/utils"
	"github.com/Gopher0727/GroupChat/middleware/jwt"
	logger "github.com/Gopher0727/GroupChat/middleware/log"
)

// ErrUnauthenticated is returned when a token does not resolve to a signed-in user.
var ErrUnauthenticated = errors.New("unauthenticated")

// AuthService 登录态适配：签发令牌，把令牌解析为用户名
type AuthService struct {
	base
	tokens *jwt.TokenManager
}

func NewAuthService(store repositories.Store, tokens *jwt.TokenManager, opts ...Option) *AuthService {
	return &AuthService{base: newBase(store, opts), tokens: tokens}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

var errBadCredentials = models.Validationf("invalid username or password")

// SignIn 校验密码，设置 is_authenticated 并签发令牌
func (s *AuthService) SignIn(ctx context.Context, username, password string) (*LoginResponse, error) {
	r := s.store.Repos()
	user, err := r.Users.Get(ctx, username)
	if errors.Is(err, models.ErrNotFound) {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, s.logFailure(ctx, "sign in", err)
	}
	if !user.IsActive || !utils.CheckPassword(user.PasswordHash, password) {
		s.log.WarnContext(ctx, "sign in rejected", logger.Username(username))
		return nil, errBadCredentials
	}

	if !user.IsAuthenticated {
		if err := r.Users.UpdateColumn(ctx, username, models.FieldIsAuthenticated.Column(), true); err != nil {
			return nil, s.logFailure(ctx, "sign in", err)
		}
		user.IsAuthenticated = true
	}

	token, err := s.tokens.GenerateToken(user.Username, user.DisplayName)
	if err != nil {
		return nil, s.logFailure(ctx, "generate token", err)
	}
	s.log.InfoContext(ctx, "signed in", logger.Username(username))
	return &LoginResponse{Token: token, User: user}, nil
}

// SignOut clears the is_authenticated flag, which also invalidates every
// token issued to the user.
func (s *AuthService) SignOut(ctx context.Context, username string) error {
	err := s.store.Repos().Users.UpdateColumn(ctx, username, models.FieldIsAuthenticated.Column(), false)
	if err != nil {
		return s.logFailure(ctx, "sign out", err)
	}
	s.log.InfoContext(ctx, "signed out", logger.Username(username))
	return nil
}

// ResolvePrincipal maps a token to the username of a signed-in, active user.
func (s *AuthService) ResolvePrincipal(ctx context.Context, token string) (string, error) {
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		s.log.DebugContext(ctx, "token rejected", zap.Error(err))
		return "", ErrUnauthenticated
	}
	user, err := s.store.Repos().Users.Get(ctx, claims.Username())
	if errors.Is(err, models.ErrNotFound) {
		return "", ErrUnauthenticated
	}
	if err != nil {
		return "", s.logFailure(ctx, "resolve principal", err)
	}
	if !user.IsActive || !user.IsAuthenticated {
		return "", ErrUnauthenticated
	}
	return user.Username, nil
}

// Refresh 在刷新窗口内为仍处于登录状态的用户换发令牌
func (s *AuthService) Refresh(ctx context.Context, token string) (string, error) {
	fresh, err := s.tokens.RefreshToken(token)
	if err != nil {
		return "", ErrUnauthenticated
	}
	if _, err := s.ResolvePrincipal(ctx, fresh); err != nil {
		return "", err
	}
	return fresh, nil
}
