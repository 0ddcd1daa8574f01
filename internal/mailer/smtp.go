package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"net/url"
	"time"

	"userapi/internal/config"
	"userapi/internal/domain/model"

	"go.uber.org/zap"
)

// パスワードリセット案内の本文。
var passwordResetTmpl = template.Must(template.New("password_reset").Parse(`
<html>
<body>
  <p>{{.Name}} さん</p>
  <p>パスワード再設定のリクエストを受け付けました。心当たりがない場合はこのメールを無視してください。</p>
  <p><a href="{{.Link}}">パスワードを再設定する</a></p>
  <p>このリンクは1時間有効です。</p>
</body>
</html>
`))

// 管理者作成アカウント向けの初期パスワード設定案内。
var adminSetPasswordTmpl = template.Must(template.New("admin_set_password").Parse(`
<html>
<body>
  <p>{{.Name}} さん</p>
  <p>アカウントが作成されました。下のリンクからパスワードを設定するとログインできるようになります。</p>
  <p><a href="{{.Link}}">パスワードを設定する</a></p>
  <p>このリンクは1時間有効です。</p>
</body>
</html>
`))

type smtpMailer struct {
	cfg    config.Config
	logger *zap.Logger
}

// SMTP実装。
func NewSMTPMailer(cfg config.Config, logger *zap.Logger) Mailer {
	return &smtpMailer{cfg: cfg, logger: logger}
}

func (m *smtpMailer) SendPasswordReset(ctx context.Context, toEmail string, signedToken string, displayName string) error {
	link := m.resetLink("/reset-password", signedToken)

	body, err := renderTemplate(passwordResetTmpl, displayName, link)
	if err != nil {
		return err
	}

	return m.send(ctx, toEmail, "パスワード再設定のご案内", body)
}

func (m *smtpMailer) SendAdminPasswordSet(ctx context.Context, user *model.User, signedToken string) error {
	link := m.resetLink("/set-password", signedToken)

	body, err := renderTemplate(adminSetPasswordTmpl, user.Name, link)
	if err != nil {
		return err
	}

	return m.send(ctx, user.Email, "パスワード設定のご案内", body)
}

// フロントの画面URLにトークンをクエリで渡す。
func (m *smtpMailer) resetLink(path string, signedToken string) string {
	return m.cfg.FEURL + path + "?token=" + url.QueryEscape(signedToken)
}

func renderTemplate(tmpl *template.Template, name string, link string) (string, error) {
	data := struct {
		Name string
		Link string
	}{Name: name, Link: link}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func (m *smtpMailer) send(ctx context.Context, to string, subject string, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", m.cfg.MailFrom)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)

	var auth smtp.Auth
	if m.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUsername, m.cfg.SMTPPassword, m.cfg.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.MailFrom, []string{to}, msg.Bytes()); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	// 宛先だけ残す。トークンはログに出さない。
	m.logger.Info("mail sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
