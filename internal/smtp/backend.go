// internal/smtp/backend.go
// SMTP Backend 介面實作 - 為每個連線建立 Session

package smtp

import (
	"log/slog"

	gosmtp "github.com/emersion/go-smtp"

	"contact-relay/internal/config"
)

// Backend 實作 smtp.Backend 介面
// 負責處理 SMTP 連線並建立 Session
type Backend struct {
	cfg    *config.Config // 應用程式設定
	inbox  *Inbox         // 收到的郵件
	logger *slog.Logger
}

// NewBackend 建立 SMTP Backend
func NewBackend(cfg *config.Config, inbox *Inbox, logger *slog.Logger) *Backend {
	return &Backend{
		cfg:    cfg,
		inbox:  inbox,
		logger: logger,
	}
}

// NewSession 建立新的 SMTP Session
// 實作 smtp.Backend 介面
func (b *Backend) NewSession(c *gosmtp.Conn) (gosmtp.Session, error) {
	b.logger.Debug("[SMTP] 新連線", "hostname", c.Hostname())

	return NewSession(b.cfg, b.inbox, b.logger, c), nil
}
