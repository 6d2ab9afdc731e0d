package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"staffhub/internal/domain"
)

type sentMail struct {
	Kind     string // "credentials" | "reset"
	To       string
	Name     string
	Password string
	ResetURL string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (m *fakeMailer) SendUserCredentials(_ context.Context, email, name, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp down")
	}
	m.sent = append(m.sent, sentMail{Kind: "credentials", To: email, Name: name, Password: password})
	return nil
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, email, name, resetURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp down")
	}
	m.sent = append(m.sent, sentMail{Kind: "reset", To: email, Name: name, ResetURL: resetURL})
	return nil
}

func (m *fakeMailer) last() *sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return nil
	}
	s := m.sent[len(m.sent)-1]
	return &s
}

type fakeObjectStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	putErr    error
	deleteErr error
	putCount  int
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (s *fakeObjectStore) Put(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putCount++
	if s.putErr != nil {
		return "", s.putErr
	}
	b, _ := io.ReadAll(body)
	url := "https://cdn.test/" + key
	s.objects[url] = b
	return url, nil
}

func (s *fakeObjectStore) Delete(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.objects, url)
	s.deleted = append(s.deleted, url)
	return nil
}

// dupOnCreateRepo 前 n 次 Create 假装撞了唯一索引，用来验证工号重试
type dupOnCreateRepo struct {
	domain.UserRepository
	remaining int
}

func (r *dupOnCreateRepo) Create(ctx context.Context, u *domain.User) error {
	if r.remaining > 0 {
		r.remaining--
		return fmt.Errorf("duplicate key value violates unique constraint %q", "users_user_id_key")
	}
	return r.UserRepository.Create(ctx, u)
}
