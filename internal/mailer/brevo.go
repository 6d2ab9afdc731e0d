// Package mailer 通过 Brevo 事务邮件 REST 接口投递凭证/重置邮件。
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.brevo.com"

type Brevo struct {
	apiKey      string
	senderName  string
	senderEmail string
	baseURL     string
	httpc       *http.Client
	log         *zap.Logger
}

func NewBrevo(apiKey, senderName, senderEmail string, log *zap.Logger) *Brevo {
	return &Brevo{
		apiKey:      apiKey,
		senderName:  senderName,
		senderEmail: senderEmail,
		baseURL:     defaultBaseURL,
		httpc:       &http.Client{Timeout: 10 * time.Second},
		log:         log,
	}
}

// WithBaseURL 测试用
func (b *Brevo) WithBaseURL(u string) *Brevo {
	b.baseURL = u
	return b
}

type party struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type sendRequest struct {
	Sender      party   `json:"sender"`
	To          []party `json:"to"`
	Subject     string  `json:"subject"`
	HTMLContent string  `json:"htmlContent"`
}

func (b *Brevo) SendUserCredentials(ctx context.Context, email, name, password string) error {
	html := fmt.Sprintf(`
<div style="font-family:Arial,sans-serif;max-width:600px;margin:auto;">
  <h2>Welcome</h2>
  <p>Hello %s,</p>
  <p>Your account has been created successfully.</p>
  <div style="background:#f5f5f5;padding:15px;border-radius:5px;">
    <p><strong>Email:</strong> %s</p>
    <p><strong>Password:</strong> %s</p>
  </div>
  <p style="color:red;"><strong>Please change your password after first login.</strong></p>
</div>`, orDefault(name, "User"), email, password)

	return b.send(ctx, email, name, "Your Account Credentials", html)
}

func (b *Brevo) SendPasswordReset(ctx context.Context, email, name, resetURL string) error {
	html := fmt.Sprintf(`
<div style="font-family:Arial,sans-serif;max-width:600px;margin:auto;">
  <h2>Password Reset</h2>
  <p>Hello %s,</p>
  <p>Click below to reset your password:</p>
  <a href="%s"
     style="display:inline-block;background:#007bff;color:#fff;padding:12px 24px;border-radius:5px;text-decoration:none;">
     Reset Password
  </a>
  <p>This link expires in 1 hour.</p>
  <p>If you did not request this, ignore this email.</p>
</div>`, orDefault(name, "Admin"), resetURL)

	return b.send(ctx, email, name, "Password Reset - Admin", html)
}

func (b *Brevo) send(ctx context.Context, email, name, subject, html string) error {
	payload, err := json.Marshal(sendRequest{
		Sender:      party{Name: b.senderName, Email: b.senderEmail},
		To:          []party{{Name: name, Email: email}},
		Subject:     subject,
		HTMLContent: html,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		b.baseURL+"/v3/smtp/email", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", b.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := b.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("brevo: status %d: %s", resp.StatusCode, body)
	}
	b.log.Debug("mail accepted", zap.String("to", email), zap.String("subject", subject))
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
