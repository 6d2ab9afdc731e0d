package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"staffhub/internal/core/auth"
	"staffhub/internal/domain"
	"staffhub/internal/repo"
	"staffhub/internal/service"
	"staffhub/internal/transport/http/handler"
)

type stubMailer struct {
	lastResetURL string
	lastPassword string
}

func (m *stubMailer) SendUserCredentials(_ context.Context, _, _, password string) error {
	m.lastPassword = password
	return nil
}

func (m *stubMailer) SendPasswordReset(_ context.Context, _, _, resetURL string) error {
	m.lastResetURL = resetURL
	return nil
}

type stubStore struct {
	objects map[string][]byte
}

func (s *stubStore) Put(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	url := "https://cdn.test/" + key
	s.objects[url] = b
	return url, nil
}

func (s *stubStore) Delete(_ context.Context, url string) error {
	delete(s.objects, url)
	return nil
}

type testEnv struct {
	r      *gin.Engine
	mailer *stubMailer
	store  *stubStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := zap.NewNop()
	jwter := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "staffhub-test", TTL: time.Hour}
	admins := repo.NewMemoryAdminRepo()
	users := repo.NewMemoryUserRepo()
	mailer := &stubMailer{}
	store := &stubStore{objects: map[string][]byte{}}

	adminSvc := service.NewAdminService(admins, jwter, mailer, log, service.AdminServiceOpts{
		ResetTTL:    time.Hour,
		FrontendURL: "https://app.example",
	})
	userSvc := service.NewUserService(users, store, mailer, log, service.UserServiceOpts{
		TempPasswordLen: 8,
	})

	r := NewAPIEngine(Deps{
		Log:    log,
		JWTer:  jwter,
		Admins: admins,
		Admin:  handler.NewAdminHandler(adminSvc),
		Users:  handler.NewUserHandler(userSvc, nil),
	})
	return &testEnv{r: r, mailer: mailer, store: store}
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (e *testEnv) registerAdmin(t *testing.T) string {
	t.Helper()
	w, env := e.do(t, http.MethodPost, "/api/admin/register", "", gin.H{
		"name": "Alice", "email": "alice@x.com", "password": "pw12345678",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func (e *testEnv) addUser(t *testing.T, token, name, email string) (userID, password string) {
	t.Helper()
	w, env := e.do(t, http.MethodPost, "/api/users/add", token, gin.H{
		"name":        name,
		"email":       email,
		"dob":         "1992-05-01",
		"doj":         "2024-01-15",
		"type":        "developer",
		"project":     []string{"atlas"},
		"address":     "12 Main St",
		"phoneNumber": "+15550100",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out struct {
		User struct {
			UserID string `json:"userId"`
		} `json:"user"`
		Credentials struct {
			Password string `json:"password"`
		} `json:"credentials"`
		EmailSent bool `json:"emailSent"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.True(t, out.EmailSent)
	return out.User.UserID, out.Credentials.Password
}

func TestAdminAuthFlow(t *testing.T) {
	e := newTestEnv(t)
	tok := e.registerAdmin(t)

	// 带令牌能取到自己
	w, env := e.do(t, http.MethodGet, "/api/admin/me", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "alice@x.com", me.Email)

	// 不带令牌 401
	w, _ = e.do(t, http.MethodGet, "/api/admin/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 重复注册 409
	w, _ = e.do(t, http.MethodPost, "/api/admin/register", "", gin.H{
		"name": "Alice2", "email": "alice@x.com", "password": "pw12345678",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 登录失败对密码不对和账号不存在给同一个文案
	w, env = e.do(t, http.MethodPost, "/api/admin/login", "", gin.H{
		"email": "alice@x.com", "password": "wrong-pass",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	wrongPwMsg := env.Msg
	w, env = e.do(t, http.MethodPost, "/api/admin/login", "", gin.H{
		"email": "nobody@x.com", "password": "wrong-pass",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, wrongPwMsg, env.Msg)

	w, _ = e.do(t, http.MethodPost, "/api/admin/logout", tok, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPasswordResetFlow(t *testing.T) {
	e := newTestEnv(t)
	e.registerAdmin(t)

	w, env := e.do(t, http.MethodPost, "/api/admin/forgot-password", "", gin.H{"email": "alice@x.com"})
	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		EmailSent bool `json:"emailSent"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.True(t, out.EmailSent)

	require.Contains(t, e.mailer.lastResetURL, "/reset-password/")
	token := e.mailer.lastResetURL[strings.LastIndex(e.mailer.lastResetURL, "/")+1:]
	require.NotEmpty(t, token)

	w, _ = e.do(t, http.MethodGet, "/api/admin/verify-reset-token/"+token, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = e.do(t, http.MethodPost, "/api/admin/reset-password", "", gin.H{
		"token": token, "newPassword": "brand-new-pw",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// 旧密码失效，新密码可登录，令牌一次性
	w, _ = e.do(t, http.MethodPost, "/api/admin/login", "", gin.H{"email": "alice@x.com", "password": "pw12345678"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = e.do(t, http.MethodPost, "/api/admin/login", "", gin.H{"email": "alice@x.com", "password": "brand-new-pw"})
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = e.do(t, http.MethodGet, "/api/admin/verify-reset-token/"+token, "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 未知邮箱 404
	w, _ = e.do(t, http.MethodPost, "/api/admin/forgot-password", "", gin.H{"email": "nobody@x.com"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserLifecycleFlow(t *testing.T) {
	e := newTestEnv(t)
	tok := e.registerAdmin(t)

	// 员工路由全部要登录
	w, _ := e.do(t, http.MethodGet, "/api/users", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	userID, pw := e.addUser(t, tok, "Bob Martin", "bob@x.com")
	assert.Regexp(t, regexp.MustCompile(`^EM-\d{6}$`), userID)
	assert.Len(t, pw, 8)

	// 列表 + 单查
	w, env := e.do(t, http.MethodGet, "/api/users", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, 1, list.Count)

	w, env = e.do(t, http.MethodGet, "/api/users/"+userID, tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Name      string `json:"name"`
		IsDeleted bool   `json:"isDeleted"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "Bob Martin", got.Name)
	assert.False(t, got.IsDeleted)

	// 搜索命中姓名
	w, env = e.do(t, http.MethodGet, "/api/users/search?search=martin", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, 1, list.Count)

	// 非白名单排序字段 400
	w, _ = e.do(t, http.MethodGet, "/api/users/search?sortBy=password_hash", tok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 部分更新
	w, env = e.do(t, http.MethodPut, "/api/users/"+userID, tok, gin.H{"type": "manager"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated struct {
		Type  string `json:"type"`
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "manager", updated.Type)
	assert.Equal(t, "bob@x.com", updated.Email)

	// 软删 → 默认视图消失 → 回收站可见 → 恢复
	w, _ = e.do(t, http.MethodDelete, "/api/users/"+userID, tok, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = e.do(t, http.MethodGet, "/api/users/"+userID, tok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = e.do(t, http.MethodGet, "/api/users/deleted", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, 1, list.Count)

	w, env = e.do(t, http.MethodGet, "/api/users?includeDeleted=true", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, 1, list.Count)

	// 删除期间邮箱仍占用
	w, _ = e.do(t, http.MethodPost, "/api/users/add", tok, gin.H{
		"name": "Bob Clone", "email": "bob@x.com",
		"dob": "1990-01-01", "doj": "2024-02-01",
		"project": []string{"atlas"}, "address": "1 St", "phoneNumber": "+15550101",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = e.do(t, http.MethodPost, "/api/users/"+userID+"/restore", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = e.do(t, http.MethodGet, "/api/users/"+userID, tok, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func multipartPNG(t *testing.T, field string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename="avatar.png"`, field))
	h.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestProfilePictureFlow(t *testing.T) {
	e := newTestEnv(t)
	tok := e.registerAdmin(t)
	userID, _ := e.addUser(t, tok, "Bob Martin", "bob@x.com")

	// 头像读取是公开端点，未上传时 302 到占位图
	req := httptest.NewRequest(http.MethodGet, "/api/users/"+userID+"/profile-picture", nil)
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, domain.DefaultProfilePicture, w.Header().Get("Location"))

	// 上传要登录
	body, ct := multipartPNG(t, "profilePicture", []byte("png-bytes"))
	req = httptest.NewRequest(http.MethodPost, "/api/users/"+userID+"/profile-picture", body)
	req.Header.Set("Content-Type", ct)
	w = httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	body, ct = multipartPNG(t, "profilePicture", []byte("png-bytes"))
	req = httptest.NewRequest(http.MethodPost, "/api/users/"+userID+"/profile-picture", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+tok)
	w = httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var out struct {
		ProfilePicture string `json:"profilePicture"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.True(t, strings.HasPrefix(out.ProfilePicture, "https://cdn.test/"))
	assert.Equal(t, []byte("png-bytes"), e.store.objects[out.ProfilePicture])

	// 读取改跳到新链接
	req = httptest.NewRequest(http.MethodGet, "/api/users/"+userID+"/profile-picture", nil)
	w = httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, out.ProfilePicture, w.Header().Get("Location"))

	// 非图片类型拒收
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="profilePicture"; filename="cv.pdf"`)
	h.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, _ = part.Write([]byte("%PDF"))
	require.NoError(t, mw.Close())
	req = httptest.NewRequest(http.MethodPost, "/api/users/"+userID+"/profile-picture", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+tok)
	w = httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
