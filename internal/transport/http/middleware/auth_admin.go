package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"staffhub/internal/core/auth"
	"staffhub/internal/domain"
	"staffhub/internal/service"
	resp "staffhub/internal/transport/http/response"
)

const (
	ctxKeyAdmin   = "admin"
	ctxKeyAdminID = "adminId"
)

// AuthAdmin 会话门卫：Bearer 令牌 → JWT 校验 → 管理员还在库里才放行。
// 解析出的管理员挂到 context 供下游取用
func AuthAdmin(j *auth.JWTer, admins domain.AdminRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			resp.Abort(c, service.ErrUnauthenticated)
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			resp.Abort(c, service.ErrInvalidToken)
			return
		}
		admin, err := admins.FindByID(c.Request.Context(), claims.AdminID)
		if err != nil || admin == nil {
			// 令牌签发后账号没了也按无效令牌处理
			resp.Abort(c, service.ErrInvalidToken)
			return
		}
		c.Set(ctxKeyAdmin, admin)
		c.Set(ctxKeyAdminID, admin.ID)
		c.Next()
	}
}

// AdminFrom 下游 handler 取当前管理员
func AdminFrom(c *gin.Context) (*domain.Admin, bool) {
	v, ok := c.Get(ctxKeyAdmin)
	if !ok {
		return nil, false
	}
	a, ok := v.(*domain.Admin)
	return a, ok
}
