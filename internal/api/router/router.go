package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"research-approval/backend/config"
	"research-approval/backend/internal/api/handler"
	"research-approval/backend/internal/api/middleware"
	"research-approval/backend/pkg/jwt"
	"research-approval/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时跳过 Token 黑名单与限流
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	var (
		checker middleware.TokenChecker
		limiter middleware.RateLimiter
	)
	if rdb != nil {
		checker, limiter = rdb, rdb
	}
	writeLimit := middleware.RateLimit(limiter, cfg.Server.RateLimit, time.Minute)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger, "/health"))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		if db != nil {
			if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "redis": rdb != nil})
	})

	student := middleware.RoleAuth(jwt.RoleStudent)
	admin := middleware.RoleAuth(jwt.RoleAdmin)
	reviewer := middleware.RoleAuth(jwt.RoleAdviser, jwt.RolePanel)
	staff := middleware.RoleAuth(jwt.RoleAdviser, jwt.RolePanel, jwt.RoleAdmin)

	// ── API v1（全部需要认证） ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr, checker))
	{
		v1.POST("/auth/revoke", h.Auth.Revoke)

		// 小组与进度
		groups := v1.Group("/groups")
		{
			groups.POST("", student, writeLimit, h.Group.Create)
			groups.GET("/mine", student, h.Group.GetMine)
			groups.GET("", staff, h.Group.List)
			groups.GET("/:id", h.Group.Get)
			groups.GET("/:id/progress", h.Group.Progress)
			groups.GET("/:id/chapters/:chapter/access", h.Group.ChapterAccess)

			// 提交（组长）
			groups.POST("/:id/titles", student, writeLimit, h.Submission.CreateTitle)
			groups.PUT("/:id/chapters/:chapter", student, writeLimit, h.Submission.SubmitChapter)
			groups.GET("/:id/submissions", h.Submission.ListByGroup)

			// 讨论区
			groups.GET("/:id/discussion/status", h.Discussion.Status)
			groups.POST("/:id/discussion", writeLimit, h.Discussion.Open)
		}

		// 提交详情与评审
		submissions := v1.Group("/submissions")
		{
			submissions.GET("/:id", h.Submission.Get)
			submissions.GET("/:id/reviews", h.Submission.ListReviews)
			submissions.PUT("/:id/review", reviewer, writeLimit, h.Submission.RecordReview)
			submissions.POST("/:id/reject", admin, writeLimit, h.Submission.Reject)
			submissions.GET("/:id/assignments", staff, h.Assignment.List)
			submissions.POST("/:id/assignments", admin, writeLimit, h.Assignment.Assign)
		}

		v1.DELETE("/assignments/:id", admin, h.Assignment.Deactivate)

		// 讨论区
		threads := v1.Group("/threads")
		{
			threads.GET("/:id", h.Discussion.GetThread)
			threads.GET("/:id/messages", h.Discussion.ListMessages)
			threads.POST("/:id/messages", writeLimit, h.Discussion.PostMessage)
			threads.POST("/:id/participants", admin, h.Discussion.AddParticipant)
		}

		// 通知
		notifications := v1.Group("/notifications")
		{
			notifications.GET("", h.Notification.List)
			notifications.PUT("/:id/read", h.Notification.MarkRead)
		}

		// 导出
		export := v1.Group("/export")
		{
			export.GET("/progress", admin, h.Export.ExportProgress)
		}
	}

	return r
}
