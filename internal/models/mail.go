// internal/models/mail.go
// 郵件資料模型 - 與服務提供者無關的信封格式

package models

import (
	"fmt"
	"time"
)

// EmailAddress 郵件地址 (含顯示名稱)
type EmailAddress struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// String 以 RFC 5322 格式輸出
func (a EmailAddress) String() string {
	if a.Name == "" {
		return a.Email
	}
	return fmt.Sprintf("%q <%s>", a.Name, a.Email)
}

// Envelope 外寄郵件信封
// 由 ContactComposer 建立，交給 EmailSender 發送
type Envelope struct {
	From     EmailAddress   `json:"from"`
	To       []EmailAddress `json:"to"`
	ReplyTo  EmailAddress   `json:"reply_to"`
	Subject  string         `json:"subject"`
	TextBody string         `json:"text_body"`
	HTMLBody string         `json:"html_body,omitempty"`
}

// ToAddresses 回傳所有收件人地址
func (e *Envelope) ToAddresses() []string {
	addrs := make([]string, 0, len(e.To))
	for _, to := range e.To {
		addrs = append(addrs, to.Email)
	}
	return addrs
}

// ReceivedMail 本機 SMTP 收信器解析後的郵件
type ReceivedMail struct {
	EnvelopeFrom string    `json:"envelope_from"`
	EnvelopeTo   []string  `json:"envelope_to"`
	From         string    `json:"from"`
	ReplyTo      string    `json:"reply_to"`
	Subject      string    `json:"subject"`
	MessageID    string    `json:"message_id"`
	Text         string    `json:"text,omitempty"`
	HTML         string    `json:"html,omitempty"`
	SizeBytes    int64     `json:"size_bytes"`
	TLS          bool      `json:"tls"`
	ReceivedAt   time.Time `json:"received_at"`
}
