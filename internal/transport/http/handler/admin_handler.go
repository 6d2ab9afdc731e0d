package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"staffhub/internal/service"
	"staffhub/internal/transport/http/middleware"
	resp "staffhub/internal/transport/http/response"
)

type AdminHandler struct {
	svc *service.AdminService
}

func NewAdminHandler(svc *service.AdminService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

type registerIn struct {
	Name     string `json:"name" binding:"required,max=30"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func (h *AdminHandler) Register(c *gin.Context) {
	var in registerIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.FromError(c, service.Validation(err.Error()))
		return
	}
	a, tok, err := h.svc.Register(c.Request.Context(), in.Name, in.Email, in.Password)
	if err != nil {
		resp.FromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp.OK(gin.H{"admin": adminView(a), "token": tok}))
}

type loginIn struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AdminHandler) Login(c *gin.Context) {
	var in loginIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.FromError(c, service.Validation(err.Error()))
		return
	}
	a, tok, err := h.svc.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		resp.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(gin.H{"admin": adminView(a), "token": tok}))
}

// Logout 无状态令牌没有服务端可吊销的东西，客户端丢弃即可
func (h *AdminHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, resp.OK(gin.H{"msg": "logged out"}))
}

func (h *AdminHandler) Me(c *gin.Context) {
	a, ok := middleware.AdminFrom(c)
	if !ok {
		resp.FromError(c, service.ErrUnauthenticated)
		return
	}
	c.JSON(http.StatusOK, resp.OK(adminView(a)))
}

type forgotIn struct {
	Email string `json:"email" binding:"required"`
}

func (h *AdminHandler) ForgotPassword(c *gin.Context) {
	var in forgotIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.FromError(c, service.Validation(err.Error()))
		return
	}
	sent, err := h.svc.ForgotPassword(c.Request.Context(), in.Email)
	if err != nil {
		resp.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(gin.H{"emailSent": sent}))
}

func (h *AdminHandler) VerifyResetToken(c *gin.Context) {
	if err := h.svc.VerifyResetToken(c.Request.Context(), c.Param("token")); err != nil {
		resp.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(gin.H{"valid": true}))
}

type resetIn struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

func (h *AdminHandler) ResetPassword(c *gin.Context) {
	var in resetIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.FromError(c, service.Validation(err.Error()))
		return
	}
	if err := h.svc.ResetPassword(c.Request.Context(), in.Token, in.NewPassword); err != nil {
		resp.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(gin.H{"msg": "password reset"}))
}
