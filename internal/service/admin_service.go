package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"staffhub/internal/core/auth"
	"staffhub/internal/domain"
	"staffhub/internal/repo"
	"staffhub/pkg/utils"
)

type AdminServiceOpts struct {
	ResetTTL    time.Duration // 重置令牌有效期，默认 1h
	FrontendURL string        // 重置链接落地页前缀
}

type AdminService struct {
	admins domain.AdminRepository
	jwter  *auth.JWTer
	mailer Mailer
	log    *zap.Logger
	opts   AdminServiceOpts

	now func() time.Time
}

func NewAdminService(admins domain.AdminRepository, jwter *auth.JWTer, mailer Mailer, log *zap.Logger, opts AdminServiceOpts) *AdminService {
	if opts.ResetTTL <= 0 {
		opts.ResetTTL = time.Hour
	}
	return &AdminService{
		admins: admins,
		jwter:  jwter,
		mailer: mailer,
		log:    log,
		opts:   opts,
		now:    time.Now,
	}
}

func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return false
	}
	return strings.Contains(parts[1], ".")
}

// Register 注册即登录，返回会话令牌
func (s *AdminService) Register(ctx context.Context, name, email, password string) (*domain.Admin, string, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	switch {
	case name == "" || len(name) > 30:
		return nil, "", Validation("name is required (max 30 chars)")
	case !isValidEmail(email):
		return nil, "", Validation("a valid email is required")
	case len(password) < 8:
		return nil, "", Validation("password must be at least 8 characters")
	}

	// 先查一次只为了快速报错，真正的防线是唯一索引
	if existing, err := s.admins.FindByEmail(ctx, email); err != nil {
		return nil, "", Internal("lookup admin failed", err)
	} else if existing != nil {
		return nil, "", Conflict("admin already exists")
	}

	a := &domain.Admin{
		ID:           utils.NewID(),
		Name:         name,
		Email:        email,
		PasswordHash: utils.HashPassword(password),
	}
	if err := s.admins.Create(ctx, a); err != nil {
		if repo.IsDupKey(err) {
			return nil, "", Conflict("admin already exists")
		}
		return nil, "", Internal("create admin failed", err)
	}

	tok, err := s.jwter.Issue(a.ID)
	if err != nil {
		return nil, "", Internal("issue token failed", err)
	}
	s.log.Info("admin registered", zap.String("admin_id", a.ID))
	return a, tok, nil
}

// Login 查无此人与密码不符返回同一错误，防枚举
func (s *AdminService) Login(ctx context.Context, email, password string) (*domain.Admin, string, error) {
	a, err := s.admins.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, "", Internal("lookup admin failed", err)
	}
	if a == nil || !utils.CheckPassword(password, a.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}
	tok, err := s.jwter.Issue(a.ID)
	if err != nil {
		return nil, "", Internal("issue token failed", err)
	}
	return a, tok, nil
}

func (s *AdminService) GetByID(ctx context.Context, id string) (*domain.Admin, error) {
	a, err := s.admins.FindByID(ctx, id)
	if err != nil {
		return nil, Internal("lookup admin failed", err)
	}
	if a == nil {
		return nil, NotFound("admin not found")
	}
	return a, nil
}

// ForgotPassword 落库新令牌（旧令牌随之作废）并投递重置邮件。
// 返回投递是否成功；投递失败不算操作失败
func (s *AdminService) ForgotPassword(ctx context.Context, email string) (bool, error) {
	a, err := s.admins.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return false, Internal("lookup admin failed", err)
	}
	if a == nil {
		return false, NotFound("admin not found")
	}

	token := utils.NewResetToken()
	expires := s.now().Add(s.opts.ResetTTL)
	a.ResetToken = token
	a.ResetTokenExpiresAt = &expires
	if err := s.admins.Update(ctx, a); err != nil {
		return false, Internal("store reset token failed", err)
	}

	resetURL := strings.TrimRight(s.opts.FrontendURL, "/") + "/reset-password/" + token
	if err := s.mailer.SendPasswordReset(ctx, a.Email, a.Name, resetURL); err != nil {
		s.log.Warn("reset mail delivery failed", zap.String("admin_id", a.ID), zap.Error(err))
		return false, nil
	}
	return true, nil
}

// VerifyResetToken 纯校验，不落库
func (s *AdminService) VerifyResetToken(ctx context.Context, token string) error {
	_, err := s.adminForResetToken(ctx, token)
	return err
}

// ResetPassword 换哈希并清掉令牌，单次有效
func (s *AdminService) ResetPassword(ctx context.Context, token, newPassword string) error {
	a, err := s.adminForResetToken(ctx, token)
	if err != nil {
		return err
	}
	if len(newPassword) < 8 {
		return Validation("password must be at least 8 characters")
	}

	a.PasswordHash = utils.HashPassword(newPassword)
	a.ResetToken = ""
	a.ResetTokenExpiresAt = nil
	if err := s.admins.Update(ctx, a); err != nil {
		return Internal("update password failed", err)
	}
	s.log.Info("admin password reset", zap.String("admin_id", a.ID))
	return nil
}

func (s *AdminService) adminForResetToken(ctx context.Context, token string) (*domain.Admin, error) {
	if token == "" {
		return nil, ErrInvalidOrExpiredToken
	}
	a, err := s.admins.FindByResetToken(ctx, token)
	if err != nil {
		return nil, Internal("lookup reset token failed", err)
	}
	if a == nil || a.ResetTokenExpiresAt == nil || s.now().After(*a.ResetTokenExpiresAt) {
		return nil, ErrInvalidOrExpiredToken
	}
	return a, nil
}
