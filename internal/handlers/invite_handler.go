package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/GroupChat/internal/models"
	"github.com/Gopher0727/GroupChat/internal/services"
	logger "github.com/Gopher0727/GroupChat/middleware/log"
)

type InviteHandler struct {
	InviteService *services.InviteService
	log           *logger.Logger
}

func NewInviteHandler(invites *services.InviteService, log *logger.Logger) *InviteHandler {
	return &InviteHandler{InviteService: invites, log: log}
}

// CreateInvite 当前用户邀请他人加入 group_id
func (h *InviteHandler) CreateInvite(c *gin.Context) {
	username, ok := currentUser(c)
	if !ok {
		return
	}
	groupID, ok := uintParam(c, "group_id")
	if !ok {
		return
	}

	var req services.CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "receiver_username is required")
		return
	}

	invite, err := h.InviteService.CreateInvite(c.Request.Context(), req.ReceiverUsername, username, groupID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, invite)
}

func (h *InviteHandler) Accept(c *gin.Context) {
	h.respond(c, h.InviteService.AcceptInvite)
}

func (h *InviteHandler) Reject(c *gin.Context) {
	h.respond(c, h.InviteService.RejectInvite)
}

func (h *InviteHandler) respond(c *gin.Context, act func(context.Context, uint, string) (*models.InviteRequest, error)) {
	username, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "request_id")
	if !ok {
		return
	}
	invite, err := act(c.Request.Context(), id, username)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, invite)
}

// Cancel 发送者撤回仍待处理的邀请
func (h *InviteHandler) Cancel(c *gin.Context) {
	username, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "request_id")
	if !ok {
		return
	}
	if err := h.InviteService.CancelInvite(c.Request.Context(), id, username); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *InviteHandler) ListReceived(c *gin.Context) {
	username, ok := currentUser(c)
	if !ok {
		return
	}
	invites, err := h.InviteService.ListReceivedInvites(c.Request.Context(), username)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, invites)
}

func (h *InviteHandler) ListSent(c *gin.Context) {
	username, ok := currentUser(c)
	if !ok {
		return
	}
	invites, err := h.InviteService.ListSentInvites(c.Request.Context(), username)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, invites)
}

// PendingCount 待处理的收到邀请数
func (h *InviteHandler) PendingCount(c *gin.Context) {
	username, ok := currentUser(c)
	if !ok {
		return
	}
	n, err := h.InviteService.PendingInviteCount(c.Request.Context(), username)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": n})
}
