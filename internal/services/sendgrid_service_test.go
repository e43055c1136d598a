package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sendGridPayload struct {
	From    struct{ Email string } `json:"from"`
	ReplyTo struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"reply_to"`
	Subject          string `json:"subject"`
	Personalizations []struct {
		To []struct {
			Email string `json:"email"`
		} `json:"to"`
	} `json:"personalizations"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

func TestSendGridService_SendMail(t *testing.T) {
	t.Parallel()

	var (
		gotPath string
		gotAuth string
		payload sendGridPayload
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)

		w.Header().Set("X-Message-Id", "sg-message-1")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	cfg := readyConfig()
	cfg.SendGridAPIKey = "sg-key"
	cfg.SendGridAPIHost = server.URL

	id, err := NewSendGridService(cfg).SendMail(context.Background(), testEnvelope())
	require.NoError(t, err)

	assert.Equal(t, "sg-message-1", id)
	assert.Equal(t, "/v3/mail/send", gotPath)
	assert.Equal(t, "Bearer sg-key", gotAuth)
	assert.Equal(t, "alice@example.com", payload.ReplyTo.Email)
	assert.Equal(t, "Alice", payload.ReplyTo.Name)
	assert.Equal(t, "relay@example.com", payload.From.Email)
	require.Len(t, payload.Personalizations, 1)
	require.Len(t, payload.Personalizations[0].To, 1)
	assert.Equal(t, "owner@example.com", payload.Personalizations[0].To[0].Email)
	require.Len(t, payload.Content, 2)
	assert.Equal(t, "text/plain", payload.Content[0].Type)
	assert.Equal(t, "text/html", payload.Content[1].Type)
}

func TestSendGridService_SendMailErrors(t *testing.T) {
	t.Parallel()

	t.Run("rejected", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"errors":[{"message":"forbidden"}]}`))
		}))
		defer server.Close()

		cfg := readyConfig()
		cfg.SendGridAPIKey = "sg-key"
		cfg.SendGridAPIHost = server.URL

		_, err := NewSendGridService(cfg).SendMail(context.Background(), testEnvelope())
		assert.ErrorIs(t, err, ErrDelivery)
	})

	t.Run("missing message id", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusAccepted)
		}))
		defer server.Close()

		cfg := readyConfig()
		cfg.SendGridAPIKey = "sg-key"
		cfg.SendGridAPIHost = server.URL

		_, err := NewSendGridService(cfg).SendMail(context.Background(), testEnvelope())
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})
}

func TestBuildSendGridMessage_TextOnly(t *testing.T) {
	t.Parallel()

	envelope := testEnvelope()
	envelope.HTMLBody = ""

	message := buildSendGridMessage(envelope)
	require.Len(t, message.Content, 1)
	assert.Equal(t, "text/plain", message.Content[0].Type)
	assert.Equal(t, "alice@example.com", message.ReplyTo.Address)
}
