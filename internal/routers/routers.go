package routers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Gopher0727/GroupChat/internal/handlers"
	"github.com/Gopher0727/GroupChat/internal/middlewares"
	"github.com/Gopher0727/GroupChat/internal/services"
	"github.com/Gopher0727/GroupChat/internal/utils"
	logger "github.com/Gopher0727/GroupChat/middleware/log"
)

// Dependencies 路由需要的处理器与中间件依赖
type Dependencies struct {
	Auth     *services.AuthService
	Pool     *utils.WorkerPool // nil 时请求同步处理
	Log      *logger.Logger
	Users    *handlers.UserHandler
	Sessions *handlers.AuthHandler
	Groups   *handlers.GroupHandler
	Messages *handlers.MessageHandler
	Invites  *handlers.InviteHandler
}

// SetupRoutes 设置所有路由
func SetupRoutes(r *gin.Engine, deps Dependencies) {
	r.Use(middlewares.Recovery(deps.Log), middlewares.RequestLogger(deps.Log), middlewares.Metrics())

	// 健康检查与指标不进入协程池
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1", middlewares.AsyncMiddleware(deps.Pool))
	auth := middlewares.AuthMiddleware(deps.Auth)

	api.POST("/users", deps.Users.Register)
	api.POST("/auth/login", deps.Sessions.Login)
	api.POST("/auth/refresh", deps.Sessions.Refresh)
	api.POST("/auth/logout", auth, deps.Sessions.Logout)

	RegisterUserRoutes(api.Group("", auth), deps.Users, deps.Groups, deps.Invites)
	RegisterGroupRoutes(api.Group("/groups", auth), deps.Groups, deps.Messages, deps.Invites)
	RegisterMessageRoutes(api.Group("/messages", auth), deps.Messages)
	RegisterInviteRoutes(api.Group("/invites", auth), deps.Invites)
	api.GET("/stats", deps.Groups.Stats)
}

// RegisterUserRoutes 当前用户及其会话、邀请
func RegisterUserRoutes(g *gin.RouterGroup, users *handlers.UserHandler, groups *handlers.GroupHandler, invites *handlers.InviteHandler) {
	g.GET("/users/:username", users.GetUser)

	me := g.Group("/me")
	{
		me.GET("", users.GetProfile)
		me.PATCH("", users.UpdateProfile)
		me.DELETE("", users.DeleteAccount)
		me.GET("/groups", groups.ListMyGroups)
		me.GET("/invites/received", invites.ListReceived)
		me.GET("/invites/sent", invites.ListSent)
		me.GET("/invites/pending_count", invites.PendingCount)
	}
}

func RegisterGroupRoutes(g *gin.RouterGroup, groups *handlers.GroupHandler, messages *handlers.MessageHandler, invites *handlers.InviteHandler) {
	g.POST("", groups.CreateGroup)
	g.GET("/:group_id", groups.GetGroup)
	g.PATCH("/:group_id", groups.RenameGroup)

	// 成员
	g.GET("/:group_id/members", groups.ListMembers)
	g.DELETE("/:group_id/members/me", groups.Leave)
	g.POST("/:group_id/invites", invites.CreateInvite)

	// 消息
	g.POST("/:group_id/messages", messages.SendMessage)
	g.GET("/:group_id/messages", messages.ListMessages)
	g.GET("/:group_id/messages/latest", messages.LatestMessage)
}

func RegisterMessageRoutes(g *gin.RouterGroup, messages *handlers.MessageHandler) {
	g.PATCH("/:message_id", messages.EditMessage)
	g.DELETE("/:message_id", messages.DeleteMessage)
}

func RegisterInviteRoutes(g *gin.RouterGroup, invites *handlers.InviteHandler) {
	g.POST("/:request_id/accept", invites.Accept)
	g.POST("/:request_id/reject", invites.Reject)
	g.DELETE("/:request_id", invites.Cancel)
}
