// internal/services/queue_service.go
// RabbitMQ 隊列服務 - 將聯絡表單工作交給獨立的 worker 行程

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"contact-relay/internal/config"
	"contact-relay/internal/models"
)

// amqpDialer 建立連線與已宣告隊列的 channel
type amqpDialer func() (*amqp.Connection, *amqp.Channel, error)

// QueueService RabbitMQ 隊列服務
// 實作 Dispatcher interface，連線中斷後於下一次 Dispatch 重新連線
type QueueService struct {
	cfg     *config.Config
	logger  *slog.Logger
	dial    amqpDialer
	conn    *amqp.Connection
	channel *amqp.Channel
	closed  bool
	mu      sync.Mutex
}

// NewQueueService 建立隊列服務
func NewQueueService(cfg *config.Config, logger *slog.Logger) (*QueueService, error) {
	s := &QueueService{
		cfg:    cfg,
		logger: logger.With("component", "queue"),
	}
	s.dial = s.dialRabbitMQ

	conn, channel, err := s.dial()
	if err != nil {
		return nil, err
	}
	s.conn, s.channel = conn, channel

	s.logger.Info("RabbitMQ contact queue declared", "queue", cfg.ContactQueueName)
	return s, nil
}

// dialRabbitMQ 連接 RabbitMQ 並宣告隊列
func (s *QueueService) dialRabbitMQ() (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(s.cfg.RabbitMQURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := DeclareContactQueue(channel, s.cfg.ContactQueueName); err != nil {
		channel.Close()
		conn.Close()
		return nil, nil, err
	}

	return conn, channel, nil
}

// activeChannel 回傳可用的 channel，連線已中斷時重新連線
func (s *QueueService) activeChannel() (*amqp.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrDispatcherClosed
	}
	if s.conn != nil && !s.conn.IsClosed() && s.channel != nil && !s.channel.IsClosed() {
		return s.channel, nil
	}

	s.logger.Warn("RabbitMQ connection lost, reconnecting")
	s.release()

	conn, channel, err := s.dial()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrokerUnavailable, err)
	}
	s.conn, s.channel = conn, channel

	s.logger.Info("RabbitMQ reconnected", "queue", s.cfg.ContactQueueName)
	return channel, nil
}

// release 關閉目前的 channel 與連線 (呼叫端需持有鎖)
func (s *QueueService) release() error {
	if s.channel != nil {
		s.channel.Close()
		s.channel = nil
	}
	if s.conn != nil {
		err := s.conn.Close()
		s.conn = nil
		return err
	}
	return nil
}

// DeclareContactQueue 宣告聯絡表單隊列 (API 與 worker 共用)
func DeclareContactQueue(channel *amqp.Channel, name string) error {
	_, err := channel.QueueDeclare(
		name,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare contact queue: %w", err)
	}
	return nil
}

// Mode 回傳派送模式
func (s *QueueService) Mode() string {
	return config.DispatchRabbitMQ
}

// Dispatch 發布聯絡表單工作到隊列
func (s *QueueService) Dispatch(ctx context.Context, job *models.ContactJob) error {
	body, err := EncodeContactJob(job)
	if err != nil {
		return err
	}

	channel, err := s.activeChannel()
	if err != nil {
		return err
	}

	err = channel.PublishWithContext(
		ctx,
		"",                     // exchange
		s.cfg.ContactQueueName, // routing key
		false,                  // mandatory
		false,                  // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    job.ReferenceID,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrokerUnavailable, err)
	}
	return nil
}

// Close 關閉連接
func (s *QueueService) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return s.release()
}

// EncodeContactJob 序列化隊列訊息
func EncodeContactJob(job *models.ContactJob) ([]byte, error) {
	body, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job: %w", err)
	}
	return body, nil
}

// DecodeContactJob 解析隊列訊息
func DecodeContactJob(body []byte) (*models.ContactJob, error) {
	var job models.ContactJob
	if err := json.Unmarshal(body, &job); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	if job.ReferenceID == "" {
		return nil, fmt.Errorf("failed to parse message: missing reference_id")
	}
	return &job, nil
}
