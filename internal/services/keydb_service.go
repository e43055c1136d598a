// internal/services/keydb_service.go
// KeyDB 投遞結果快取服務

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"contact-relay/internal/config"
	"contact-relay/internal/models"
)

// KeyDBService KeyDB 服務
// 實作 DeliveryRecorder interface
type KeyDBService struct {
	cfg    *config.Config
	client *redis.Client
}

// NewKeyDBService 建立 KeyDB 服務
func NewKeyDBService(cfg *config.Config) (*KeyDBService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.KeyDBURL,
		Password: cfg.KeyDBPassword,
		DB:       0,
	})

	// 測試連接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to KeyDB: %w", err)
	}

	return &KeyDBService{
		cfg:    cfg,
		client: client,
	}, nil
}

// deliveryKey 投遞結果的 key
func deliveryKey(referenceID string) string {
	return fmt.Sprintf("contact:delivery:%s", referenceID)
}

// RecordDelivery 寫入投遞結果
func (s *KeyDBService) RecordDelivery(ctx context.Context, result *models.DeliveryResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal delivery result: %w", err)
	}

	return s.client.Set(ctx, deliveryKey(result.ReferenceID), data, s.cfg.KeyDBStatusTTL).Err()
}

// Close 關閉連接
func (s *KeyDBService) Close() error {
	return s.client.Close()
}
