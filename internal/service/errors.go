package service

import (
	"errors"
	"net/http"
)

// Kind 服务层错误分类，HTTP 边界按此映射状态码
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindInvalidCredentials
	KindUnauthenticated
	KindInvalidToken
	KindInvalidOrExpiredToken
	KindUpstream
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error // 可选的底层原因，不对外
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "service error"
}

func (e *Error) Unwrap() error { return e.Err }

func NewError(kind Kind, msg string) *Error { return &Error{Kind: kind, Msg: msg} }

func Validation(msg string) error { return &Error{Kind: KindValidation, Msg: msg} }
func Conflict(msg string) error   { return &Error{Kind: KindConflict, Msg: msg} }
func NotFound(msg string) error   { return &Error{Kind: KindNotFound, Msg: msg} }
func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}
func Upstream(msg string, err error) error {
	return &Error{Kind: KindUpstream, Msg: msg, Err: err}
}

// ErrInvalidCredentials 登录失败固定文案，查无此人与密码不符不可区分
var ErrInvalidCredentials = NewError(KindInvalidCredentials, "invalid credentials")

var (
	ErrUnauthenticated       = NewError(KindUnauthenticated, "authentication required")
	ErrInvalidToken          = NewError(KindInvalidToken, "invalid token")
	ErrInvalidOrExpiredToken = NewError(KindInvalidOrExpiredToken, "invalid or expired token")
)

// KindOf 未分类错误一律按 Internal 处理
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// HTTPStatus 分类到状态码：400 校验/冲突、401 鉴权、404 查无、500 其余
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindConflict, KindInvalidCredentials, KindInvalidOrExpiredToken:
		return http.StatusBadRequest
	case KindUnauthenticated, KindInvalidToken:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
