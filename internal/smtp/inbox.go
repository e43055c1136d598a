// internal/smtp/inbox.go
// 收信匣 - 保存收信器收到的郵件

package smtp

import (
	"sync"

	"contact-relay/internal/models"
)

// Inbox 記憶體內收信匣
type Inbox struct {
	mu       sync.RWMutex
	messages []models.ReceivedMail
	limit    int
}

// NewInbox 建立收信匣，超過 limit 時丟棄最舊的郵件 (limit <= 0 表示不限制)
func NewInbox(limit int) *Inbox {
	return &Inbox{limit: limit}
}

// Add 新增郵件
func (i *Inbox) Add(mail models.ReceivedMail) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.messages = append(i.messages, mail)
	if i.limit > 0 && len(i.messages) > i.limit {
		i.messages = i.messages[len(i.messages)-i.limit:]
	}
}

// Messages 回傳目前所有郵件的副本
func (i *Inbox) Messages() []models.ReceivedMail {
	i.mu.RLock()
	defer i.mu.RUnlock()

	out := make([]models.ReceivedMail, len(i.messages))
	copy(out, i.messages)
	return out
}
