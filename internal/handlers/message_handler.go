package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/GroupChat/internal/models"
	"github.com/Gopher0727/GroupChat/internal/services"
	logger "github.com/Gopher0727/GroupChat/middleware/log"
)

type MessageHandler struct {
	MessageService *services.MessageService
	groups         *GroupHandler
	log            *logger.Logger
}

func NewMessageHandler(messages *services.MessageService, groups *GroupHandler, log *logger.Logger) *MessageHandler {
	return &MessageHandler{MessageService: messages, groups: groups, log: log}
}

// SendMessage 在群内发送消息；成员校验由 MessageService 完成
func (h *MessageHandler) SendMessage(c *gin.Context) {
	username, ok := currentUser(c)
	if !ok {
		return
	}
	groupID, ok := uintParam(c, "group_id")
	if !ok {
		return
	}

	var req services.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "message text is empty")
		return
	}

	msg, err := h.MessageService.CreateMessage(c.Request.Context(), req.Content, username, groupID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// ListMessages 按发送顺序分页；after 为上一页最后一条消息的 ID
func (h *MessageHandler) ListMessages(c *gin.Context) {
	_, groupID, ok := h.groups.member(c)
	if !ok {
		return
	}

	var afterID int64
	if v := c.Query("after"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id < 0 {
			badRequest(c, "invalid after")
			return
		}
		afterID = id
	}
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(c, "invalid limit")
			return
		}
		limit = n
	}

	msgs, err := h.groups.ConversationService.ListMessagesPage(c.Request.Context(), groupID, afterID, limit)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func (h *MessageHandler) LatestMessage(c *gin.Context) {
	_, groupID, ok := h.groups.member(c)
	if !ok {
		return
	}
	msg, err := h.groups.ConversationService.LatestMessageForGroup(c.Request.Context(), groupID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

// own 取出消息并确认当前用户是发送者
func (h *MessageHandler) own(c *gin.Context) (int64, bool) {
	username, ok := currentUser(c)
	if !ok {
		return 0, false
	}
	id, ok := int64Param(c, "message_id")
	if !ok {
		return 0, false
	}
	msg, err := h.MessageService.GetMessage(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return 0, false
	}
	if msg.SenderUsername != username {
		writeError(c, h.log, models.Forbiddenf("only the sender may change message %d", id))
		return 0, false
	}
	return id, true
}

func (h *MessageHandler) EditMessage(c *gin.Context) {
	id, ok := h.own(c)
	if !ok {
		return
	}

	var req services.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "message text is empty")
		return
	}
	if err := h.MessageService.UpdateMessageContent(c.Request.Context(), id, req.Content); err != nil {
		writeError(c, h.log, err)
		return
	}
	msg, err := h.MessageService.GetMessage(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	id, ok := h.own(c)
	if !ok {
		return
	}
	if err := h.MessageService.DeleteMessage(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
