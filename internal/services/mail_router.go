// internal/services/mail_router.go
// 郵件路由服務 - 根據 EMAIL_PROVIDER 選擇對應的郵件服務

package services

import (
	"fmt"

	"contact-relay/internal/config"
)

// SelectSender 根據設定選擇郵件發送服務
// 同一個行程只會使用一種服務，不做備援切換
func SelectSender(cfg *config.Config) (EmailSender, error) {
	switch cfg.EmailProvider {
	case config.ProviderBrevo:
		return NewBrevoService(cfg), nil
	case config.ProviderSendGrid:
		return NewSendGridService(cfg), nil
	case config.ProviderResend:
		return NewResendService(cfg), nil
	case config.ProviderSMTP:
		return NewSMTPService(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.EmailProvider)
	}
}
