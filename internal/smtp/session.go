// internal/smtp/session.go
// SMTP Session 處理 - 接收郵件並解析 MIME 格式

package smtp

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	gosmtp "github.com/emersion/go-smtp"

	"contact-relay/internal/config"
	"contact-relay/internal/models"
)

var (
	errAuthRequired = &gosmtp.SMTPError{
		Code:         530,
		EnhancedCode: gosmtp.EnhancedCode{5, 7, 0},
		Message:      "Authentication required",
	}
	errUnknownMechanism = &gosmtp.SMTPError{
		Code:         504,
		EnhancedCode: gosmtp.EnhancedCode{5, 7, 4},
		Message:      "Unsupported authentication mechanism",
	}
)

// Session 實作 smtp.Session 與 smtp.AuthSession 介面
// 處理單一 SMTP 連線的郵件接收
type Session struct {
	cfg    *config.Config
	inbox  *Inbox
	logger *slog.Logger
	conn   *gosmtp.Conn

	authenticated bool
	from          string   // 寄件者地址
	to            []string // 收件者地址列表
}

// NewSession 建立新的 Session，conn 可為 nil
func NewSession(cfg *config.Config, inbox *Inbox, logger *slog.Logger, conn *gosmtp.Conn) *Session {
	return &Session{
		cfg:    cfg,
		inbox:  inbox,
		logger: logger,
		conn:   conn,
		to:     make([]string, 0),
	}
}

// authRequired 是否設定了收信帳號密碼
func (s *Session) authRequired() bool {
	return s.cfg.MailSinkUsername != ""
}

// AuthMechanisms 回傳支援的認證機制
func (s *Session) AuthMechanisms() []string {
	if !s.authRequired() {
		return nil
	}
	return []string{sasl.Plain}
}

// Auth 處理 PLAIN 認證
func (s *Session) Auth(mech string) (sasl.Server, error) {
	if mech != sasl.Plain {
		return nil, errUnknownMechanism
	}

	return sasl.NewPlainServer(func(identity, username, password string) error {
		if username != s.cfg.MailSinkUsername || password != s.cfg.MailSinkPassword {
			s.logger.Warn("[SMTP] 認證失敗", "username", username)
			return errors.New("invalid credentials")
		}
		s.authenticated = true
		return nil
	}), nil
}

// Mail 處理 MAIL FROM 指令
func (s *Session) Mail(from string, opts *gosmtp.MailOptions) error {
	if s.authRequired() && !s.authenticated {
		return errAuthRequired
	}

	s.from = cleanEmail(from)
	s.logger.Debug("[SMTP] MAIL FROM", "from", s.from)
	return nil
}

// Rcpt 處理 RCPT TO 指令
func (s *Session) Rcpt(to string, opts *gosmtp.RcptOptions) error {
	to = cleanEmail(to)
	s.logger.Debug("[SMTP] RCPT TO", "to", to)

	s.to = append(s.to, to)
	return nil
}

// Data 處理 DATA 指令，接收郵件內容
func (s *Session) Data(r io.Reader) error {
	buf := new(bytes.Buffer)
	size, err := buf.ReadFrom(r)
	if err != nil {
		s.logger.Error("[SMTP] 讀取郵件資料失敗", "error", err)
		return fmt.Errorf("failed to read mail data: %w", err)
	}

	received, err := parseMailData(buf.Bytes())
	if err != nil {
		s.logger.Error("[SMTP] 解析郵件失敗", "error", err)
		return fmt.Errorf("failed to parse mail: %w", err)
	}

	received.EnvelopeFrom = s.from
	received.EnvelopeTo = append([]string(nil), s.to...)
	received.SizeBytes = size
	if s.conn != nil {
		_, received.TLS = s.conn.TLSConnectionState()
	}
	received.ReceivedAt = time.Now().UTC()

	s.inbox.Add(*received)

	s.logger.Info("[SMTP] 收到郵件",
		"from", received.From,
		"to", received.EnvelopeTo,
		"reply_to", received.ReplyTo,
		"subject", received.Subject,
		"message_id", received.MessageID,
		"size_bytes", size,
		"tls", received.TLS,
	)
	if received.Text != "" {
		s.logger.Debug("[SMTP] 純文字內容", "text", received.Text)
	}
	return nil
}

// parseMailData 解析 MIME 郵件
func parseMailData(raw []byte) (*models.ReceivedMail, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer mr.Close()

	header := mr.Header
	received := &models.ReceivedMail{}

	received.Subject, _ = header.Subject()
	received.MessageID, _ = header.MessageID()
	if addrs, err := header.AddressList("From"); err == nil && len(addrs) > 0 {
		received.From = addrs[0].Address
	}
	if addrs, err := header.AddressList("Reply-To"); err == nil && len(addrs) > 0 {
		received.ReplyTo = addrs[0].Address
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}

		contentType, _, _ := h.ContentType()
		content, err := io.ReadAll(part.Body)
		if err != nil {
			return nil, err
		}

		if strings.HasPrefix(contentType, "text/plain") {
			received.Text = string(content)
		} else if strings.HasPrefix(contentType, "text/html") {
			received.HTML = string(content)
		}
	}

	return received, nil
}

// Reset 重置 Session 狀態
func (s *Session) Reset() {
	s.from = ""
	s.to = make([]string, 0)
}

// Logout 處理 QUIT 指令
func (s *Session) Logout() error {
	return nil
}

// cleanEmail 清理郵件地址（移除角括號）
func cleanEmail(email string) string {
	email = strings.TrimSpace(email)
	email = strings.TrimPrefix(email, "<")
	email = strings.TrimSuffix(email, ">")
	return email
}
