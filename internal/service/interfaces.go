package service

import (
	"context"
	"io"
)

// Mailer 事务邮件出口。发送失败不阻断主流程，由调用方降级
type Mailer interface {
	SendUserCredentials(ctx context.Context, email, name, password string) error
	SendPasswordReset(ctx context.Context, email, name, resetURL string) error
}

// ObjectStore 头像字节的外部存储，只回存引用 URL
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	// Delete 按之前 Put 返回的 URL 删除
	Delete(ctx context.Context, url string) error
}
