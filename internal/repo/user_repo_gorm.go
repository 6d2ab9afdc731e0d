package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"staffhub/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

// IsDupKey 唯一键冲突判定。TranslateError 开着的话走 ErrDuplicatedKey，
// 驱动差异兜底用报文子串
func IsDupKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "duplicate key")
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepo) FindByUserID(ctx context.Context, userID string, includeDeleted bool) (*domain.User, error) {
	q := r.db.WithContext(ctx)
	if includeDeleted {
		q = q.Unscoped()
	}
	var u domain.User
	err := q.First(&u, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	// 邮箱唯一性横跨软删记录，查找始终 Unscoped
	var u domain.User
	err := r.db.WithContext(ctx).Unscoped().First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (r *UserRepo) List(ctx context.Context, includeDeleted bool) ([]domain.User, error) {
	q := r.db.WithContext(ctx).Model(&domain.User{})
	if includeDeleted {
		q = q.Unscoped()
	}
	var users []domain.User
	err := q.Order("created_at DESC").Find(&users).Error
	return users, err
}

func (r *UserRepo) ListDeleted(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).Unscoped().
		Where("deleted_at IS NOT NULL").
		Order("created_at DESC").
		Find(&users).Error
	return users, err
}

func (r *UserRepo) Search(ctx context.Context, in domain.UserQuery) ([]domain.User, error) {
	q := r.db.WithContext(ctx).Model(&domain.User{})
	if in.IncludeDeleted {
		q = q.Unscoped()
	}
	if s := strings.TrimSpace(in.Term); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where(
			"LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(user_id) LIKE ? OR LOWER(type) LIKE ?",
			like, like, like, like,
		)
	}
	if in.Type != "" {
		q = q.Where("type = ?", in.Type)
	}

	col := "created_at"
	switch in.SortBy {
	case "name":
		col = "name"
	case "email":
		col = "email"
	}
	dir := " ASC"
	if in.SortDesc {
		dir = " DESC"
	}

	var users []domain.User
	err := q.Order(col + dir).Find(&users).Error
	return users, err
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *UserRepo) SoftDelete(ctx context.Context, userID string) (bool, error) {
	// 默认作用域只删未删记录；已软删的视作不存在
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.User{})
	return res.RowsAffected > 0, res.Error
}

func (r *UserRepo) Restore(ctx context.Context, userID string) (bool, error) {
	res := r.db.WithContext(ctx).Unscoped().Model(&domain.User{}).
		Where("user_id = ? AND deleted_at IS NOT NULL", userID).
		Update("deleted_at", nil)
	return res.RowsAffected > 0, res.Error
}
