package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/akhan280/doy-backend/config"
)

// Mailer SMTP 告警邮件客户端
// 仅用于短信发送失败时通知运维，不承载业务邮件
type Mailer struct {
	host      string
	port      int
	from      string
	operators []string
	auth      smtp.Auth
	logger    *zap.Logger
}

// NewMailer 创建 SMTP 客户端
// 未配置用户名时按匿名 SMTP 处理（本地 relay 场景）
func NewMailer(cfg *config.MailConfig, logger *zap.Logger) *Mailer {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.SMTPHost)
	}
	return &Mailer{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		from:      cfg.From,
		operators: cfg.Operators,
		auth:      auth,
		logger:    logger,
	}
}

// SendAlert 向运维收件人发送 HTML 告警邮件
func (m *Mailer) SendAlert(subject, htmlBody string) error {
	if len(m.operators) == 0 {
		m.logger.Warn("未配置运维收件人，告警邮件被丢弃", zap.String("subject", subject))
		return nil
	}

	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		m.from, strings.Join(m.operators, ", "), subject, htmlBody,
	)

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	if err := smtp.SendMail(addr, m.auth, m.from, m.operators, []byte(msg)); err != nil {
		return fmt.Errorf("发送告警邮件失败: %w", err)
	}

	m.logger.Info("告警邮件已发送",
		zap.String("subject", subject),
		zap.Strings("to", m.operators),
	)
	return nil
}
