package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Gopher0727/GroupChat/config"
	"github.com/Gopher0727/GroupChat/internal/handlers"
	"github.com/Gopher0727/GroupChat/internal/repositories"
	"github.com/Gopher0727/GroupChat/internal/routers"
	"github.com/Gopher0727/GroupChat/internal/services"
	"github.com/Gopher0727/GroupChat/internal/storage"
	"github.com/Gopher0727/GroupChat/internal/utils"
	"github.com/Gopher0727/GroupChat/middleware/jwt"
	logger "github.com/Gopher0727/GroupChat/middleware/log"
	"github.com/Gopher0727/GroupChat/utils/snowflake"
)

func main() {
	configPath := flag.String("config", "./config.toml", "path to the TOML config file")
	flag.Parse()

	// .env 可选，用于本地开发注入 CHAT_ 环境变量
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("读取 .env 失败: %v", err)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("配置初始化失败: %v", err)
	}

	zl, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}
	defer zl.Close()

	db, err := storage.Open(&cfg.Database)
	if err != nil {
		zl.Fatal("数据库初始化失败", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}

	redisClient, err := storage.InitRedis(&cfg.Redis)
	if err != nil {
		zl.Fatal("redis 初始化失败", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	isolation, err := repositories.ParseIsolation(cfg.Database.Isolation)
	if err != nil {
		zl.Fatal("无效的事务隔离级别", zap.Error(err))
	}
	store := repositories.NewStore(db, redisClient,
		repositories.WithIsolation(isolation),
		repositories.WithCacheTTL(cfg.Redis.CacheTTL),
	)

	ids, err := snowflake.NewGenerator(cfg.Snowflake.WorkerID)
	if err != nil {
		zl.Fatal("snowflake 初始化失败", zap.Error(err))
	}
	tokens := jwt.NewTokenManager(cfg.JWT.Secret, cfg.JWT.ExpireHours, cfg.JWT.RefreshHours)

	// 初始化服务层
	opts := []services.Option{services.WithLogger(zl)}
	userService := services.NewUserService(store, opts...)
	groupService := services.NewGroupService(store, opts...)
	messageService := services.NewMessageService(store, ids, opts...)
	inviteService := services.NewInviteService(store, opts...)
	convService := services.NewConversationService(store, opts...)
	authService := services.NewAuthService(store, tokens, opts...)

	// 请求处理协程池
	var pool *utils.WorkerPool
	if cfg.WorkerPool.Size > 0 {
		pool = utils.NewWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize, zl)
		pool.Start()
		defer pool.Stop()
	}

	groupHandler := handlers.NewGroupHandler(groupService, inviteService, convService, zl)

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	routers.SetupRoutes(r, routers.Dependencies{
		Auth:     authService,
		Pool:     pool,
		Log:      zl,
		Users:    handlers.NewUserHandler(userService, zl),
		Sessions: handlers.NewAuthHandler(authService, zl),
		Groups:   groupHandler,
		Messages: handlers.NewMessageHandler(messageService, groupHandler, zl),
		Invites:  handlers.NewInviteHandler(inviteService, zl),
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		zl.Info("正在启动服务器", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error("启动服务器失败", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("关闭服务器失败", zap.Error(err))
	}
	zl.Info("服务器已退出")
}
