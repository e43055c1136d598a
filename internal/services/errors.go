// internal/services/errors.go
// 服務層錯誤定義

package services

import "errors"

var (
	// ErrConfiguration 必要的認證或寄件設定缺失
	ErrConfiguration = errors.New("email service is not configured")

	// ErrDelivery 服務提供者或傳輸層發送失敗
	ErrDelivery = errors.New("email delivery failed")

	// ErrMalformedResponse 服務提供者回應格式不正確
	ErrMalformedResponse = errors.New("malformed provider response")

	// ErrUnknownProvider EMAIL_PROVIDER 設定值不支援
	ErrUnknownProvider = errors.New("unknown email provider")

	// ErrQueueFull 背景佇列已滿
	ErrQueueFull = errors.New("dispatch queue is full")

	// ErrBrokerUnavailable 無法連線或發布到 RabbitMQ
	ErrBrokerUnavailable = errors.New("message broker is unavailable")

	// ErrDispatcherClosed 背景派送器已關閉
	ErrDispatcherClosed = errors.New("dispatcher is closed")
)
