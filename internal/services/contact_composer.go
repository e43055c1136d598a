// internal/services/contact_composer.go
// 聯絡表單郵件組裝 - 將表單內容轉為外寄信封

package services

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"contact-relay/internal/config"
	"contact-relay/internal/models"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const (
	noSubject         = "(no subject)"
	receivedAtLayout  = "2006-01-02 15:04:05 UTC"
	htmlTemplateName  = "contact.html.tmpl"
	plainTemplateName = "contact.txt.tmpl"
)

// contactTemplateData 郵件範本資料
type contactTemplateData struct {
	Name        string
	Email       string
	Subject     string
	Message     string
	ReceivedAt  string
	ReferenceID string
}

// ContactComposer 聯絡表單郵件組裝器
type ContactComposer struct {
	cfg  *config.Config
	html *htmltemplate.Template
	text *texttemplate.Template
}

// NewContactComposer 建立郵件組裝器並解析內嵌範本
func NewContactComposer(cfg *config.Config) (*ContactComposer, error) {
	html, err := htmltemplate.ParseFS(templateFS, "templates/"+htmlTemplateName)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html template: %w", err)
	}

	text, err := texttemplate.ParseFS(templateFS, "templates/"+plainTemplateName)
	if err != nil {
		return nil, fmt.Errorf("failed to parse text template: %w", err)
	}

	return &ContactComposer{
		cfg:  cfg,
		html: html,
		text: text,
	}, nil
}

// Compose 由背景工作建立信封
// Reply-To 一律設為送出表單者本人，回信可直接寄回對方
func (c *ContactComposer) Compose(job *models.ContactJob) (*models.Envelope, error) {
	sub := job.Submission

	subject := sub.Subject
	if subject == "" {
		subject = noSubject
	}

	data := contactTemplateData{
		Name:        sub.Name,
		Email:       sub.Email,
		Subject:     subject,
		Message:     sub.Message,
		ReceivedAt:  job.ReceivedAt.UTC().Format(receivedAtLayout),
		ReferenceID: job.ReferenceID,
	}

	var textBuf bytes.Buffer
	if err := c.text.ExecuteTemplate(&textBuf, plainTemplateName, data); err != nil {
		return nil, fmt.Errorf("failed to render text body: %w", err)
	}

	var htmlBuf bytes.Buffer
	if err := c.html.ExecuteTemplate(&htmlBuf, htmlTemplateName, data); err != nil {
		return nil, fmt.Errorf("failed to render html body: %w", err)
	}

	return &models.Envelope{
		From: models.EmailAddress{
			Name:  c.cfg.SenderName,
			Email: c.cfg.SenderAddress(),
		},
		To: []models.EmailAddress{{
			Name:  c.cfg.ReceiverName,
			Email: c.cfg.ReceiverEmail,
		}},
		ReplyTo: models.EmailAddress{
			Name:  sub.Name,
			Email: sub.Email,
		},
		Subject:  c.cfg.MailSubjectPrefix + subject,
		TextBody: textBuf.String(),
		HTMLBody: htmlBuf.String(),
	}, nil
}
