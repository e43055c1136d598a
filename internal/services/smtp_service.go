// internal/services/smtp_service.go
// SMTP 直連郵件發送服務

package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	gosmtp "github.com/emersion/go-smtp"

	"contact-relay/internal/config"
	"contact-relay/internal/models"
)

// SMTPService SMTP 郵件發送服務
// 實作 EmailSender interface
type SMTPService struct {
	cfg *config.Config

	// nil 使用系統憑證
	rootCAs *x509.CertPool
}

// NewSMTPService 建立 SMTP 服務
func NewSMTPService(cfg *config.Config) *SMTPService {
	return &SMTPService{cfg: cfg}
}

// Name 回傳服務名稱
func (s *SMTPService) Name() string {
	return "SMTP"
}

// IsConfigured 檢查 SMTP 主機與帳號密碼是否已設定
func (s *SMTPService) IsConfigured() bool {
	return s.cfg.SMTPHost != "" && s.cfg.SMTPUsername != "" && s.cfg.SMTPPassword != ""
}

// SendMail 發送郵件 (SMTP 直連)
// 回傳的訊息 ID 為本地產生的 Message-Id 標頭
func (s *SMTPService) SendMail(ctx context.Context, envelope *models.Envelope) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	raw, messageID, err := buildMIMEMessage(envelope, time.Now())
	if err != nil {
		return "", fmt.Errorf("failed to build message: %w", err)
	}

	addr := net.JoinHostPort(s.cfg.SMTPHost, strconv.Itoa(s.cfg.SMTPPort))

	if err := s.deliver(addr, envelope.From.Email, envelope.ToAddresses(), raw); err != nil {
		return "", fmt.Errorf("%w: failed to send email via SMTP %s: %v", ErrDelivery, addr, err)
	}

	return messageID, nil
}

// deliver 建立 SMTP 連線並送出郵件
func (s *SMTPService) deliver(addr, from string, to []string, raw []byte) error {
	c, err := s.dial(addr)
	if err != nil {
		return err
	}
	defer c.Close()

	if s.cfg.SMTPUsername != "" {
		if err := c.Auth(sasl.NewPlainClient("", s.cfg.SMTPUsername, s.cfg.SMTPPassword)); err != nil {
			return err
		}
	}

	if err := c.SendMail(from, to, bytes.NewReader(raw)); err != nil {
		return err
	}
	return c.Quit()
}

// dial 依設定建立連線
// 未啟用 implicit TLS 時先以明文連線探測，伺服器支援 STARTTLS 就改用 STARTTLS 重新連線
func (s *SMTPService) dial(addr string) (*gosmtp.Client, error) {
	if s.cfg.SMTPImplicitTLS {
		return gosmtp.DialTLS(addr, s.tlsConfig())
	}

	c, err := gosmtp.Dial(addr)
	if err != nil {
		return nil, err
	}

	ok, err := supportsStartTLS(c)
	if err != nil {
		c.Close()
		return nil, err
	}
	if !ok {
		return c, nil
	}

	_ = c.Quit()
	return gosmtp.DialStartTLS(addr, s.tlsConfig())
}

// supportsStartTLS 送出 EHLO 並檢查是否支援 STARTTLS
func supportsStartTLS(c *gosmtp.Client) (bool, error) {
	if err := c.Hello("localhost"); err != nil {
		return false, err
	}
	ok, _ := c.Extension("STARTTLS")
	return ok, nil
}

func (s *SMTPService) tlsConfig() *tls.Config {
	return &tls.Config{
		ServerName: s.cfg.SMTPHost,
		RootCAs:    s.rootCAs,
	}
}

// buildMIMEMessage 建立 multipart/alternative MIME 郵件
func buildMIMEMessage(envelope *models.Envelope, now time.Time) ([]byte, string, error) {
	var h mail.Header
	h.SetDate(now)
	h.SetAddressList("From", []*mail.Address{toMailAddress(envelope.From)})
	h.SetAddressList("Reply-To", []*mail.Address{toMailAddress(envelope.ReplyTo)})

	to := make([]*mail.Address, len(envelope.To))
	for i, addr := range envelope.To {
		to[i] = toMailAddress(addr)
	}
	h.SetAddressList("To", to)
	h.SetSubject(envelope.Subject)

	if err := h.GenerateMessageID(); err != nil {
		return nil, "", fmt.Errorf("failed to generate message id: %w", err)
	}
	messageID, err := h.MessageID()
	if err != nil {
		return nil, "", fmt.Errorf("failed to read message id: %w", err)
	}

	var buf bytes.Buffer
	mw, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, "", err
	}

	tw, err := mw.CreateInline()
	if err != nil {
		return nil, "", err
	}

	if err := writeInlinePart(tw, "text/plain", envelope.TextBody); err != nil {
		return nil, "", err
	}
	if envelope.HTMLBody != "" {
		if err := writeInlinePart(tw, "text/html", envelope.HTMLBody); err != nil {
			return nil, "", err
		}
	}

	if err := tw.Close(); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), messageID, nil
}

// writeInlinePart 寫入單一內嵌內容
func writeInlinePart(tw *mail.InlineWriter, contentType, body string) error {
	var ih mail.InlineHeader
	ih.SetContentType(contentType, map[string]string{"charset": "utf-8"})
	ih.Set("Content-Transfer-Encoding", "quoted-printable")

	w, err := tw.CreatePart(ih)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, body); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func toMailAddress(addr models.EmailAddress) *mail.Address {
	return &mail.Address{Name: addr.Name, Address: addr.Email}
}
