package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akhan280/doy-backend/config"
	"github.com/akhan280/doy-backend/internal/api/handler"
	"github.com/akhan280/doy-backend/internal/api/middleware"
	"github.com/akhan280/doy-backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(1 << 20)) // 1MB（ICS 导入走 URL 拉取，不受此限制）

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 用户模块
		users := v1.Group("/users")
		{
			users.GET("/:id", h.User.GetUser)
			users.PUT("/:id", h.User.UpdateUser)
			users.GET("/:id/preferences", h.User.GetPreferences)
			users.PUT("/:id/preferences", h.User.UpdatePreferences)

			// 联系人模块
			users.POST("/:id/contacts", h.Contact.CreateContact)
			users.GET("/:id/contacts", h.Contact.ListContacts)
			users.PUT("/:id/contacts/:contactID", h.Contact.UpdateContact)
			users.DELETE("/:id/contacts/:contactID", h.Contact.DeleteContact)
			users.POST("/:id/contacts/import", h.Contact.ImportContacts)
		}

		// 对话代理（每次调用都会打一次大模型，限速保护）
		v1.POST("/agent", middleware.RateLimit(rdb, 20, time.Minute), h.Agent.HandleMessage)

		// 提醒批次手动触发
		v1.POST("/reminders/trigger", h.Reminder.Trigger)
	}

	return r
}
