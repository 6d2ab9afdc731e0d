package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"staffhub/internal/domain"
	"staffhub/internal/repo"
	"staffhub/pkg/utils"
)

const (
	// MaxProfilePictureBytes 头像上限 5MB
	MaxProfilePictureBytes = 5 << 20

	// 工号随机生成，撞唯一索引就换一个再试
	employeeIDAttempts = 5
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type UserServiceOpts struct {
	TempPasswordLen int // 初始密码长度，默认 8
}

type UserService struct {
	users  domain.UserRepository
	store  ObjectStore
	mailer Mailer
	log    *zap.Logger
	opts   UserServiceOpts
}

func NewUserService(users domain.UserRepository, store ObjectStore, mailer Mailer, log *zap.Logger, opts UserServiceOpts) *UserService {
	if opts.TempPasswordLen <= 0 {
		opts.TempPasswordLen = 8
	}
	return &UserService{users: users, store: store, mailer: mailer, log: log, opts: opts}
}

type CreateUserInput struct {
	Name        string
	Email       string
	DOB         time.Time
	DOJ         time.Time
	Type        string
	Project     []string
	Address     string
	PhoneNumber string
}

func (in *CreateUserInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	switch {
	case in.Name == "" || len(in.Name) > 30:
		return Validation("name is required (max 30 chars)")
	case !isValidEmail(in.Email):
		return Validation("a valid email is required")
	case in.DOB.IsZero():
		return Validation("dob is required")
	case in.DOJ.IsZero():
		return Validation("doj is required")
	case len(in.Project) == 0:
		return Validation("at least one project is required")
	case strings.TrimSpace(in.Address) == "":
		return Validation("address is required")
	case strings.TrimSpace(in.PhoneNumber) == "":
		return Validation("phoneNumber is required")
	}
	return nil
}

// Create 生成工号与一次性初始密码；密码只在本次返回值里出现。
// 欢迎邮件尽力投递，失败不影响创建，以 emailSent 报告
func (s *UserService) Create(ctx context.Context, adminID string, in CreateUserInput) (*domain.User, string, bool, error) {
	if err := in.validate(); err != nil {
		return nil, "", false, err
	}

	if existing, err := s.users.FindByEmail(ctx, in.Email); err != nil {
		return nil, "", false, Internal("lookup user failed", err)
	} else if existing != nil {
		return nil, "", false, Conflict("user already exists")
	}

	rawPassword := utils.NewTempPassword(s.opts.TempPasswordLen)
	u := &domain.User{
		ID:             utils.NewID(),
		Name:           in.Name,
		Email:          in.Email,
		PasswordHash:   utils.HashPassword(rawPassword),
		DOB:            in.DOB,
		DOJ:            in.DOJ,
		Type:           in.Type,
		UserManager:    adminID,
		Project:        in.Project,
		Address:        in.Address,
		PhoneNumber:    in.PhoneNumber,
		ProfilePicture: domain.DefaultProfilePicture,
	}

	var created bool
	for i := 0; i < employeeIDAttempts && !created; i++ {
		u.UserID = utils.NewEmployeeID()
		err := s.users.Create(ctx, u)
		switch {
		case err == nil:
			created = true
		case repo.IsDupKey(err):
			// 可能是邮箱也可能是工号，邮箱重复直接报冲突
			if dup, derr := s.users.FindByEmail(ctx, in.Email); derr == nil && dup != nil {
				return nil, "", false, Conflict("user already exists")
			}
		default:
			return nil, "", false, Internal("create user failed", err)
		}
	}
	if !created {
		return nil, "", false, Internal("employee id generation exhausted", nil)
	}

	emailSent := true
	if err := s.mailer.SendUserCredentials(ctx, u.Email, u.Name, rawPassword); err != nil {
		s.log.Warn("credentials mail delivery failed",
			zap.String("user_id", u.UserID), zap.Error(err))
		emailSent = false
	}

	s.log.Info("user created", zap.String("user_id", u.UserID), zap.String("manager", adminID))
	return u, rawPassword, emailSent, nil
}

func (s *UserService) List(ctx context.Context, includeDeleted bool) ([]domain.User, error) {
	us, err := s.users.List(ctx, includeDeleted)
	if err != nil {
		return nil, Internal("list users failed", err)
	}
	return us, nil
}

func (s *UserService) ListDeleted(ctx context.Context) ([]domain.User, error) {
	us, err := s.users.ListDeleted(ctx)
	if err != nil {
		return nil, Internal("list deleted users failed", err)
	}
	return us, nil
}

func (s *UserService) Search(ctx context.Context, q domain.UserQuery) ([]domain.User, error) {
	switch q.SortBy {
	case "", "name", "email", "createdAt":
	default:
		return nil, Validation("sortBy must be one of name, email, createdAt")
	}
	us, err := s.users.Search(ctx, q)
	if err != nil {
		return nil, Internal("search users failed", err)
	}
	return us, nil
}

func (s *UserService) GetByUserID(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.users.FindByUserID(ctx, userID, false)
	if err != nil {
		return nil, Internal("lookup user failed", err)
	}
	if u == nil {
		return nil, NotFound("user not found")
	}
	return u, nil
}

// Update 部分更新，nil 字段不动；邮箱变更重走唯一性检查
func (s *UserService) Update(ctx context.Context, userID string, patch domain.UserPatch) (*domain.User, error) {
	u, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		if !isValidEmail(email) {
			return nil, Validation("a valid email is required")
		}
		if email != u.Email {
			if taken, terr := s.users.FindByEmail(ctx, email); terr != nil {
				return nil, Internal("lookup user failed", terr)
			} else if taken != nil {
				return nil, Conflict("email already in use")
			}
			u.Email = email
		}
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" || len(name) > 30 {
			return nil, Validation("name is required (max 30 chars)")
		}
		u.Name = name
	}
	if patch.DOB != nil {
		u.DOB = *patch.DOB
	}
	if patch.DOJ != nil {
		u.DOJ = *patch.DOJ
	}
	if patch.Type != nil {
		u.Type = *patch.Type
	}
	if patch.Project != nil {
		if len(*patch.Project) == 0 {
			return nil, Validation("at least one project is required")
		}
		u.Project = *patch.Project
	}
	if patch.Address != nil {
		u.Address = *patch.Address
	}
	if patch.PhoneNumber != nil {
		u.PhoneNumber = *patch.PhoneNumber
	}

	if err := s.users.Update(ctx, u); err != nil {
		if repo.IsDupKey(err) {
			return nil, Conflict("email already in use")
		}
		return nil, Internal("update user failed", err)
	}
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, userID string) error {
	ok, err := s.users.SoftDelete(ctx, userID)
	if err != nil {
		return Internal("delete user failed", err)
	}
	if !ok {
		return NotFound("user not found")
	}
	s.log.Info("user soft-deleted", zap.String("user_id", userID))
	return nil
}

func (s *UserService) Restore(ctx context.Context, userID string) error {
	ok, err := s.users.Restore(ctx, userID)
	if err != nil {
		return Internal("restore user failed", err)
	}
	if !ok {
		return NotFound("user not found")
	}
	s.log.Info("user restored", zap.String("user_id", userID))
	return nil
}

// UploadProfilePicture 字节进对象存储，库里只留 URL；
// 旧图尽力删除，删不掉只记日志
func (s *UserService) UploadProfilePicture(ctx context.Context, userID, contentType string, size int64, body io.Reader) (string, error) {
	ext, ok := allowedImageTypes[strings.ToLower(contentType)]
	if !ok {
		return "", Validation("only image uploads are allowed (jpeg, png, gif, webp)")
	}
	if size <= 0 || size > MaxProfilePictureBytes {
		return "", Validation("image must be between 1 byte and 5MB")
	}

	u, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return "", err
	}

	key := profilePictureKey(ext)
	url, err := s.store.Put(ctx, key, contentType, body, size)
	if err != nil {
		return "", Upstream("store image failed", err)
	}

	old := u.ProfilePicture
	u.ProfilePicture = url
	if err := s.users.Update(ctx, u); err != nil {
		return "", Internal("update user failed", err)
	}

	if old != "" && old != domain.DefaultProfilePicture {
		if derr := s.store.Delete(ctx, old); derr != nil {
			s.log.Warn("old profile picture cleanup failed",
				zap.String("user_id", userID), zap.Error(derr))
		}
	}
	return url, nil
}

// ProfilePicture 公开读，用于 302 跳转
func (s *UserService) ProfilePicture(ctx context.Context, userID string) (string, error) {
	u, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	if u.ProfilePicture == "" {
		return "", NotFound("no profile picture")
	}
	return u.ProfilePicture, nil
}

func profilePictureKey(ext string) string {
	d := time.Now()
	return path.Join("avatars",
		fmt.Sprintf("%d/%d/%d", d.Year(), d.Month(), d.Day()),
		uuid.NewString()+ext)
}
