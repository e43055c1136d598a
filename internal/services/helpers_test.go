package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"contact-relay/internal/config"
	"contact-relay/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// bufferLogger writes text logs into a buffer safe for concurrent use.
func bufferLogger() (*slog.Logger, *syncBuffer) {
	buf := &syncBuffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func readyConfig() *config.Config {
	return &config.Config{
		EmailProvider:     config.ProviderBrevo,
		SenderEmail:       "relay@example.com",
		SenderName:        "Portfolio Command Center",
		ReceiverEmail:     "owner@example.com",
		ReceiverName:      "Command Center",
		MailSubjectPrefix: "🚀 SECURE TRANSMISSION: ",
		BrevoAPIKey:       "brevo-key",
		DispatchMode:      config.DispatchInProcess,
	}
}

func newTestJob(t *testing.T, sub models.ContactSubmission) *models.ContactJob {
	t.Helper()
	return models.NewContactJob(sub, time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC))
}

func newTestComposer(t *testing.T, cfg *config.Config) *ContactComposer {
	t.Helper()
	composer, err := NewContactComposer(cfg)
	require.NoError(t, err)
	return composer
}

// MockSender EmailSender mock
type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendMail(ctx context.Context, envelope *models.Envelope) (string, error) {
	args := m.Called(ctx, envelope)
	return args.String(0), args.Error(1)
}

func (m *MockSender) Name() string {
	return "Mock Channel"
}

func (m *MockSender) IsConfigured() bool {
	args := m.Called()
	return args.Bool(0)
}

type recordingRecorder struct {
	mu      sync.Mutex
	results []models.DeliveryResult
	err     error
}

func (r *recordingRecorder) RecordDelivery(_ context.Context, result *models.DeliveryResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, *result)
	return r.err
}

func (r *recordingRecorder) Results() []models.DeliveryResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.DeliveryResult(nil), r.results...)
}
