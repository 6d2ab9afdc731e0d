package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// DefaultProfilePicture 未上传头像时的占位图
const DefaultProfilePicture = "https://r2.fivemanage.com/CJAMKGHJCaMRCeitL1kKd/default-avatar.png"

// User 雇员档案，与登录用的 Admin 账号是两回事
type User struct {
	ID           string `gorm:"primaryKey;size:36" json:"id"`
	UserID       string `gorm:"uniqueIndex;size:16;not null" json:"userId"` // EM-〇〇〇〇〇〇
	Name         string `gorm:"size:30;not null" json:"name"`
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string `gorm:"size:100;not null" json:"-"`

	DOB         time.Time `json:"dob"`
	DOJ         time.Time `json:"doj"`
	Type        string    `gorm:"size:32" json:"type"` // full-time/part-time/contract/intern
	UserManager string    `gorm:"size:36;not null" json:"userManager"`
	Project     []string  `gorm:"serializer:json;not null" json:"project"`
	Address     string    `gorm:"size:255;not null" json:"address"`
	PhoneNumber string    `gorm:"size:32;not null" json:"phoneNumber"`

	ProfilePicture string `gorm:"size:512" json:"profilePicture"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

func (u *User) IsDeleted() bool { return u.DeletedAt.Valid }

// UserPatch 部分更新：nil 字段不动
type UserPatch struct {
	Name        *string
	Email       *string
	DOB         *time.Time
	DOJ         *time.Time
	Type        *string
	Project     *[]string
	Address     *string
	PhoneNumber *string
}

// UserQuery 列表/搜索参数
type UserQuery struct {
	Term           string // name/email/user_id/type 子串，OR，大小写不敏感
	Type           string // 精确命中
	IncludeDeleted bool
	SortBy         string // name | email | createdAt（默认）
	SortDesc       bool
}

// UserRepository 按对外工号（EM-…）寻址，内部主键只做存储
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByUserID(ctx context.Context, userID string, includeDeleted bool) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, includeDeleted bool) ([]User, error)
	ListDeleted(ctx context.Context) ([]User, error)
	Search(ctx context.Context, q UserQuery) ([]User, error)
	Update(ctx context.Context, u *User) error
	SoftDelete(ctx context.Context, userID string) (bool, error)
	Restore(ctx context.Context, userID string) (bool, error)
}
