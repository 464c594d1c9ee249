package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/GroupChat/internal/models"
	"github.com/Gopher0727/GroupChat/internal/services"
	logger "github.com/Gopher0727/GroupChat/middleware/log"
)

type GroupHandler struct {
	GroupService        *services.GroupService
	InviteService       *services.InviteService
	ConversationService *services.ConversationService
	log                 *logger.Logger
}

func NewGroupHandler(groups *services.GroupService, invites *services.InviteService, convs *services.ConversationService, log *logger.Logger) *GroupHandler {
	return &GroupHandler{
		GroupService:        groups,
		InviteService:       invites,
		ConversationService: convs,
		log:                 log,
	}
}

// member 解析 group_id 并确认当前用户是群成员：群不存在 404，非成员 403
func (h *GroupHandler) member(c *gin.Context) (string, uint, bool) {
	username, ok := currentUser(c)
	if !ok {
		return "", 0, false
	}
	groupID, ok := uintParam(c, "group_id")
	if !ok {
		return "", 0, false
	}
	if _, err := h.GroupService.GetGroup(c.Request.Context(), groupID); err != nil {
		writeError(c, h.log, err)
		return "", 0, false
	}
	isMember, err := h.ConversationService.IsMember(c.Request.Context(), username, groupID)
	if err != nil {
		writeError(c, h.log, err)
		return "", 0, false
	}
	if !isMember {
		writeError(c, h.log, models.Forbiddenf("%s is not a member of group %d", username, groupID))
		return "", 0, false
	}
	return username, groupID, true
}

// CreateGroup 创建群组，创建者自动入群，并给每个受邀人发出待处理邀请
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	username, ok := currentUser(c)
	if !ok {
		return
	}

	var req services.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "group_name is required")
		return
	}

	group, invites, err := h.InviteService.CreateGroupWithInvites(c.Request.Context(), username, req.GroupName, req.Invitees)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"group": group, "invites": invites})
}

// ListMyGroups 当前用户的群组列表，附带最新消息预览
func (h *GroupHandler) ListMyGroups(c *gin.Context) {
	username, ok := currentUser(c)
	if !ok {
		return
	}
	previews, err := h.ConversationService.ListGroupsForUser(c.Request.Context(), username)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, previews)
}

func (h *GroupHandler) GetGroup(c *gin.Context) {
	_, groupID, ok := h.member(c)
	if !ok {
		return
	}
	summary, err := h.ConversationService.GroupSummary(c.Request.Context(), groupID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *GroupHandler) RenameGroup(c *gin.Context) {
	_, groupID, ok := h.member(c)
	if !ok {
		return
	}

	var req services.RenameGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "group_name is required")
		return
	}
	if err := h.GroupService.UpdateGroupName(c.Request.Context(), groupID, req.GroupName); err != nil {
		writeError(c, h.log, err)
		return
	}
	group, err := h.GroupService.GetGroup(c.Request.Context(), groupID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (h *GroupHandler) ListMembers(c *gin.Context) {
	_, groupID, ok := h.member(c)
	if !ok {
		return
	}
	members, err := h.ConversationService.GroupMemberDetails(c.Request.Context(), groupID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

// Leave 当前用户退出群组，最后一人退出时群组被删除
func (h *GroupHandler) Leave(c *gin.Context) {
	username, ok := currentUser(c)
	if !ok {
		return
	}
	groupID, ok := uintParam(c, "group_id")
	if !ok {
		return
	}
	if err := h.InviteService.LeaveGroup(c.Request.Context(), username, groupID); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stats 全站计数
func (h *GroupHandler) Stats(c *gin.Context) {
	stats, err := h.ConversationService.Stats(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
