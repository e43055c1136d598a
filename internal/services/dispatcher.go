// internal/services/dispatcher.go
// 背景派送服務 - 表單回應後才在背景投遞郵件

package services

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"

	"contact-relay/internal/config"
	"contact-relay/internal/models"
)

// Dispatcher 背景派送介面
// Dispatch 只負責排入工作，不等待投遞結果
type Dispatcher interface {
	Dispatch(ctx context.Context, job *models.ContactJob) error
	Mode() string
	Close(ctx context.Context) error
}

// JobProcessor 實際執行投遞的元件 (ContactMailer)
type JobProcessor interface {
	Deliver(ctx context.Context, job *models.ContactJob) models.DeliveryResult
}

// BackgroundDispatcher 行程內 worker pool
type BackgroundDispatcher struct {
	processor JobProcessor
	logger    *slog.Logger
	jobs      chan *models.ContactJob

	// 投遞使用獨立 context，不受 HTTP 請求結束影響
	baseCtx context.Context
	cancel  context.CancelFunc

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewBackgroundDispatcher 建立並啟動行程內 worker pool
func NewBackgroundDispatcher(processor JobProcessor, workers, queueSize int, logger *slog.Logger) *BackgroundDispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &BackgroundDispatcher{
		processor: processor,
		logger:    logger.With("component", "dispatcher"),
		jobs:      make(chan *models.ContactJob, queueSize),
		baseCtx:   ctx,
		cancel:    cancel,
	}

	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.work()
	}

	d.logger.Info("background dispatcher started", "workers", workers, "queue_size", queueSize)
	return d
}

// Mode 回傳派送模式
func (d *BackgroundDispatcher) Mode() string {
	return config.DispatchInProcess
}

// Dispatch 排入背景工作，佇列已滿時立即回傳 ErrQueueFull
func (d *BackgroundDispatcher) Dispatch(ctx context.Context, job *models.ContactJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatcherClosed
	}

	select {
	case d.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// work 處理佇列中的工作
func (d *BackgroundDispatcher) work() {
	defer d.wg.Done()

	for job := range d.jobs {
		d.process(job)
	}
}

// process 執行單一工作，panic 不影響其他 worker
func (d *BackgroundDispatcher) process(job *models.ContactJob) {
	defer func() {
		if rvr := recover(); rvr != nil {
			d.logger.Error("panic while delivering contact job",
				"reference_id", job.ReferenceID,
				"panic", rvr,
				"stack", string(debug.Stack()),
			)
		}
	}()

	d.processor.Deliver(d.baseCtx, job)
}

// Close 停止接收新工作並等待佇列清空
// ctx 逾時後會取消進行中的投遞
func (d *BackgroundDispatcher) Close(ctx context.Context) error {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.jobs)
		d.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		d.logger.Info("background dispatcher drained")
		return nil
	case <-ctx.Done():
		d.cancel()
		d.logger.Warn("background dispatcher shutdown timeout, cancelling in-flight deliveries")
		return ctx.Err()
	}
}
