package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"staffhub/internal/core/auth"
	"staffhub/internal/domain"
	"staffhub/internal/transport/http/handler"
	mdw "staffhub/internal/transport/http/middleware"
)

type Deps struct {
	Log    *zap.Logger
	JWTer  *auth.JWTer
	Admins domain.AdminRepository // 会话校验要回查管理员
	Admin  *handler.AdminHandler
	Users  *handler.UserHandler

	CORSOrigins []string // 空则放开全部
}

func NewAPIEngine(d Deps) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(10*time.Second),
		ginzap.RecoveryWithZap(d.Log, true),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
	)
	r.Use(corsMiddleware(d.CORSOrigins))

	// 健康检查 / 指标
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	authed := mdw.AuthAdmin(d.JWTer, d.Admins)

	// 管理员账号
	admin := api.Group("/admin")
	{
		admin.POST("/register", d.Admin.Register)
		admin.POST("/login", d.Admin.Login)
		admin.POST("/forgot-password", d.Admin.ForgotPassword)
		admin.GET("/verify-reset-token/:token", d.Admin.VerifyResetToken)
		admin.POST("/reset-password", d.Admin.ResetPassword)

		admin.POST("/logout", authed, d.Admin.Logout)
		admin.GET("/me", authed, d.Admin.Me)
	}

	// 员工花名册（除头像读取外全部要登录）
	users := api.Group("/users")
	users.GET("/:id/profile-picture", d.Users.GetProfilePicture)
	{
		authedUsers := users.Group("", authed)
		authedUsers.GET("", d.Users.List)
		authedUsers.GET("/search", d.Users.Search)
		authedUsers.GET("/deleted", d.Users.ListDeleted)
		authedUsers.POST("/add", d.Users.Create)
		authedUsers.GET("/:id", d.Users.Get)
		authedUsers.PUT("/:id", d.Users.Update)
		authedUsers.DELETE("/:id", d.Users.Delete)
		authedUsers.POST("/:id/restore", d.Users.Restore)
		authedUsers.POST("/:id/profile-picture", d.Users.UploadProfilePicture)
	}

	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return cors.Default()
	}
	cfg := cors.DefaultConfig()
	cfg.AllowOrigins = origins
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", mdw.HeaderRequestID)
	return cors.New(cfg)
}
