// internal/smtp/server.go
// SMTP Server 核心 - 本機開發用收信器

package smtp

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	gosmtp "github.com/emersion/go-smtp"

	"contact-relay/internal/config"
)

// Server SMTP 收信伺服器
// 接收 EMAIL_PROVIDER=smtp 寄出的郵件並寫入 log，不會轉寄
type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	smtpServer *gosmtp.Server
}

// NewServer 建立 SMTP 伺服器
func NewServer(cfg *config.Config, inbox *Inbox, logger *slog.Logger) *Server {
	backend := NewBackend(cfg, inbox, logger)

	smtpServer := gosmtp.NewServer(backend)
	smtpServer.Addr = fmt.Sprintf(":%s", cfg.MailSinkPort)
	smtpServer.Domain = "contact-relay.local"
	smtpServer.ReadTimeout = 30 * time.Second
	smtpServer.WriteTimeout = 30 * time.Second
	smtpServer.MaxMessageBytes = 10 * 1024 * 1024
	smtpServer.MaxRecipients = 50
	smtpServer.AllowInsecureAuth = true // 僅供本機開發使用

	return &Server{
		cfg:        cfg,
		logger:     logger,
		smtpServer: smtpServer,
	}
}

// Start 啟動 SMTP 伺服器（阻塞式）
func (s *Server) Start() error {
	s.logger.Info("[SMTP] 伺服器啟動中...", "port", s.cfg.MailSinkPort, "auth_required", s.cfg.MailSinkUsername != "")

	if err := s.smtpServer.ListenAndServe(); err != nil && !errors.Is(err, gosmtp.ErrServerClosed) {
		return fmt.Errorf("SMTP server error: %w", err)
	}
	return nil
}

// Serve 在指定的 listener 上提供服務（阻塞式）
func (s *Server) Serve(l net.Listener) error {
	return s.smtpServer.Serve(l)
}

// Shutdown 關閉伺服器
func (s *Server) Shutdown() error {
	s.logger.Info("[SMTP] 正在關閉伺服器...")
	return s.smtpServer.Close()
}
