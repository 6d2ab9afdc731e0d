package repo

import (
	"context"
	"errors"
	"sync"

	"staffhub/internal/domain"
)

// ErrDuplicate 内存实现对唯一键冲突的表达，IsDupKey 能识别
var ErrDuplicate = errors.New("duplicate key")

// MemoryAdminRepo 纯内存实现，开发和测试用
type MemoryAdminRepo struct {
	mu     sync.RWMutex
	byID   map[string]*domain.Admin
	byMail map[string]string // email -> id
}

func NewMemoryAdminRepo() *MemoryAdminRepo {
	return &MemoryAdminRepo{
		byID:   make(map[string]*domain.Admin),
		byMail: make(map[string]string),
	}
}

func (r *MemoryAdminRepo) Create(_ context.Context, a *domain.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byMail[a.Email]; ok {
		return ErrDuplicate
	}
	cp := *a
	r.byID[a.ID] = &cp
	r.byMail[a.Email] = a.ID
	return nil
}

func (r *MemoryAdminRepo) FindByID(_ context.Context, id string) (*domain.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *MemoryAdminRepo) FindByEmail(_ context.Context, email string) (*domain.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byMail[email]
	if !ok {
		return nil, nil
	}
	cp := *r.byID[id]
	return &cp, nil
}

func (r *MemoryAdminRepo) FindByResetToken(_ context.Context, token string) (*domain.Admin, error) {
	if token == "" {
		return nil, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.byID {
		if a.ResetToken == token {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemoryAdminRepo) Update(_ context.Context, a *domain.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.byID[a.ID]
	if !ok {
		return errors.New("admin not found")
	}
	if old.Email != a.Email {
		if _, taken := r.byMail[a.Email]; taken {
			return ErrDuplicate
		}
		delete(r.byMail, old.Email)
		r.byMail[a.Email] = a.ID
	}
	cp := *a
	r.byID[a.ID] = &cp
	return nil
}
