package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/GroupChat/internal/models"
	"github.com/Gopher0727/GroupChat/internal/services"
	logger "github.com/Gopher0727/GroupChat/middleware/log"
)

type UserHandler struct {
	UserService *services.UserService
	log         *logger.Logger
}

func NewUserHandler(userService *services.UserService, log *logger.Logger) *UserHandler {
	return &UserHandler{UserService: userService, log: log}
}

// Register 注册新用户，无需登录
func (h *UserHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "username, display_name, email_address and password are required")
		return
	}

	user, err := h.UserService.CreateUser(c.Request.Context(), req.Username, req.DisplayName, req.EmailAddress, req.Password)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	username, ok := currentUser(c)
	if !ok {
		return
	}
	h.respondUser(c, username)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	h.respondUser(c, c.Param("username"))
}

func (h *UserHandler) respondUser(c *gin.Context, username string) {
	user, err := h.UserService.GetUser(c.Request.Context(), username)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile 修改当前用户的一个字段
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	username, ok := currentUser(c)
	if !ok {
		return
	}

	var req services.UpdateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "field is required")
		return
	}

	err := h.UserService.UpdateUserField(c.Request.Context(), username, models.UserField(req.Field), req.Value)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	h.respondUser(c, username)
}

// DeleteAccount 注销当前用户
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	username, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.UserService.DeleteUser(c.Request.Context(), username); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
