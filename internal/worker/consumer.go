// internal/worker/consumer.go
// RabbitMQ Worker Consumer - 消費聯絡表單工作並投遞郵件

package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"contact-relay/internal/config"
	"contact-relay/internal/services"
)

// Acknowledger 訊息確認介面 (amqp.Delivery 的子集)
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// Consumer RabbitMQ Consumer
type Consumer struct {
	cfg       *config.Config
	processor services.JobProcessor
	logger    *slog.Logger
	conn      *amqp.Connection
	channel   *amqp.Channel

	baseCtx context.Context
	cancel  context.CancelFunc

	isShutdown bool
	activeJobs int
	mu         sync.Mutex
	wg         sync.WaitGroup
}

// NewConsumer 建立 Consumer
func NewConsumer(cfg *config.Config, processor services.JobProcessor, logger *slog.Logger) *Consumer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Consumer{
		cfg:       cfg,
		processor: processor,
		logger:    logger.With("component", "worker"),
		baseCtx:   ctx,
		cancel:    cancel,
	}
}

// Start 啟動 Consumer
func (c *Consumer) Start() error {
	msgs, err := c.connect()
	if err != nil {
		return err
	}

	c.logger.Info("Worker started", "queue", c.cfg.ContactQueueName, "concurrency", c.cfg.WorkerConcurrency)

	concurrency := c.cfg.WorkerConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	for i := 0; i < concurrency; i++ {
		c.wg.Add(1)
		go c.processMessages(msgs)
	}

	return nil
}

// connect 連接 RabbitMQ 並開始消費，任何一步失敗都會釋放已建立的連線
func (c *Consumer) connect() (msgs <-chan amqp.Delivery, err error) {
	conn, err := amqp.Dial(c.cfg.RabbitMQURL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	defer func() {
		if err != nil {
			ch.Close()
			conn.Close()
		}
	}()

	// 宣告隊列
	if err = services.DeclareContactQueue(ch, c.cfg.ContactQueueName); err != nil {
		return nil, err
	}

	// 設定 prefetch
	if err = ch.Qos(c.cfg.WorkerPrefetch, 0, false); err != nil {
		return nil, err
	}

	msgs, err = ch.Consume(
		c.cfg.ContactQueueName,
		"contact-relay-worker",
		false, // auto-ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, err
	}

	c.conn = conn
	c.channel = ch
	return msgs, nil
}

// processMessages 處理訊息
func (c *Consumer) processMessages(msgs <-chan amqp.Delivery) {
	defer c.wg.Done()

	for msg := range msgs {
		if !c.beginJob() {
			msg.Nack(false, true) // 重新排隊
			continue
		}

		c.handleMessage(msg.Body, msg)
		c.endJob()
	}
}

// beginJob 登記進行中的任務，已開始關機時回傳 false
// 檢查與計數在同一個鎖內，GracefulShutdown 看到 0 之後不會再有新任務
func (c *Consumer) beginJob() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isShutdown {
		return false
	}
	c.activeJobs++
	return true
}

// endJob 任務結束
func (c *Consumer) endJob() {
	c.mu.Lock()
	c.activeJobs--
	c.mu.Unlock()
}

// handleMessage 處理單一訊息
// 投遞只嘗試一次，成功或失敗都會 ack，無法解析的訊息直接丟棄
func (c *Consumer) handleMessage(body []byte, ack Acknowledger) {
	job, err := services.DecodeContactJob(body)
	if err != nil {
		c.logger.Error("Dropping malformed contact job", "error", err)
		ack.Nack(false, false)
		return
	}

	c.logger.Debug("Processing contact job", "reference_id", job.ReferenceID)

	result := c.processor.Deliver(c.baseCtx, job)
	if !result.Success {
		c.logger.Warn("Contact job finished without delivery", "reference_id", job.ReferenceID, "error", result.ErrorDetail)
	}

	ack.Ack(false)
}

// GracefulShutdown 優雅關機
func (c *Consumer) GracefulShutdown(timeout time.Duration) {
	c.logger.Info("Initiating graceful shutdown...")
	c.mu.Lock()
	c.isShutdown = true
	c.mu.Unlock()

	// 停止接收新訊息
	if c.channel != nil {
		c.channel.Cancel("contact-relay-worker", false)
	}

	// 等待所有進行中的任務完成
	deadline := time.After(timeout)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

wait:
	for {
		select {
		case <-deadline:
			c.logger.Warn("Shutdown timeout, cancelling in-flight deliveries")
			c.cancel()
			break wait
		case <-ticker.C:
			c.mu.Lock()
			active := c.activeJobs
			c.mu.Unlock()
			if active == 0 {
				break wait
			}
		}
	}

	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
	c.cancel()

	c.logger.Info("Worker shutdown complete")
}
