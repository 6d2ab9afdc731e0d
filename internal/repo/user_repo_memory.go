package repo

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"staffhub/internal/domain"
)

// MemoryUserRepo 纯内存实现，语义对齐 gorm 版（软删、唯一键、排序）
type MemoryUserRepo struct {
	mu    sync.RWMutex
	users map[string]*domain.User // internal id -> record
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: make(map[string]*domain.User)}
}

func (r *MemoryUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.users {
		// 唯一性横跨软删记录
		if e.Email == u.Email || e.UserID == u.UserID {
			return ErrDuplicate
		}
	}
	cp := cloneUser(u)
	r.users[u.ID] = cp
	return nil
}

func (r *MemoryUserRepo) FindByUserID(_ context.Context, userID string, includeDeleted bool) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.UserID == userID {
			if u.DeletedAt.Valid && !includeDeleted {
				return nil, nil
			}
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepo) List(_ context.Context, includeDeleted bool) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.User
	for _, u := range r.users {
		if u.DeletedAt.Valid && !includeDeleted {
			continue
		}
		out = append(out, *cloneUser(u))
	}
	sortUsers(out, "createdAt", true)
	return out, nil
}

func (r *MemoryUserRepo) ListDeleted(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.User
	for _, u := range r.users {
		if u.DeletedAt.Valid {
			out = append(out, *cloneUser(u))
		}
	}
	sortUsers(out, "createdAt", true)
	return out, nil
}

func (r *MemoryUserRepo) Search(_ context.Context, q domain.UserQuery) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	term := strings.ToLower(strings.TrimSpace(q.Term))
	var out []domain.User
	for _, u := range r.users {
		if u.DeletedAt.Valid && !q.IncludeDeleted {
			continue
		}
		if q.Type != "" && u.Type != q.Type {
			continue
		}
		if term != "" && !matchesTerm(u, term) {
			continue
		}
		out = append(out, *cloneUser(u))
	}
	sortUsers(out, q.SortBy, q.SortDesc)
	return out, nil
}

func (r *MemoryUserRepo) Update(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return errors.New("user not found")
	}
	for id, e := range r.users {
		if id != u.ID && e.Email == u.Email {
			return ErrDuplicate
		}
	}
	r.users[u.ID] = cloneUser(u)
	return nil
}

func (r *MemoryUserRepo) SoftDelete(_ context.Context, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.UserID == userID && !u.DeletedAt.Valid {
			u.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryUserRepo) Restore(_ context.Context, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.UserID == userID && u.DeletedAt.Valid {
			u.DeletedAt = gorm.DeletedAt{}
			return true, nil
		}
	}
	return false, nil
}

func matchesTerm(u *domain.User, term string) bool {
	return strings.Contains(strings.ToLower(u.Name), term) ||
		strings.Contains(strings.ToLower(u.Email), term) ||
		strings.Contains(strings.ToLower(u.UserID), term) ||
		strings.Contains(strings.ToLower(u.Type), term)
}

func sortUsers(us []domain.User, by string, desc bool) {
	sort.SliceStable(us, func(i, j int) bool {
		var less bool
		switch by {
		case "name":
			less = us[i].Name < us[j].Name
		case "email":
			less = us[i].Email < us[j].Email
		default:
			less = us[i].CreatedAt.Before(us[j].CreatedAt)
		}
		if desc {
			return !less
		}
		return less
	})
}

func cloneUser(u *domain.User) *domain.User {
	cp := *u
	cp.Project = append([]string(nil), u.Project...)
	return &cp
}
