package smtp

import (
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"

	"github.com/emersion/go-sasl"
	gosmtp "github.com/emersion/go-smtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contact-relay/internal/config"
	"contact-relay/internal/models"
)

const sampleMessage = "From: \"Relay\" <relay@example.com>\r\n" +
	"To: owner@example.com\r\n" +
	"Reply-To: \"Alice\" <alice@example.com>\r\n" +
	"Subject: Hello sink\r\n" +
	"Message-Id: <abc123@example.com>\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/alternative; boundary=BOUNDARY\r\n" +
	"\r\n" +
	"--BOUNDARY\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"plain text\r\n" +
	"--BOUNDARY\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<p>html</p>\r\n" +
	"--BOUNDARY--\r\n"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseMailData(t *testing.T) {
	t.Parallel()

	received, err := parseMailData([]byte(sampleMessage))
	require.NoError(t, err)

	assert.Equal(t, "Hello sink", received.Subject)
	assert.Equal(t, "abc123@example.com", received.MessageID)
	assert.Equal(t, "relay@example.com", received.From)
	assert.Equal(t, "alice@example.com", received.ReplyTo)
	assert.Equal(t, "plain text", strings.TrimSpace(received.Text))
	assert.Equal(t, "<p>html</p>", strings.TrimSpace(received.HTML))
}

func TestInbox_Limit(t *testing.T) {
	t.Parallel()

	inbox := NewInbox(2)
	inbox.Add(models.ReceivedMail{Subject: "one"})
	inbox.Add(models.ReceivedMail{Subject: "two"})
	inbox.Add(models.ReceivedMail{Subject: "three"})

	messages := inbox.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "two", messages[0].Subject)
	assert.Equal(t, "three", messages[1].Subject)

	// 回傳的是副本
	messages[0].Subject = "changed"
	assert.Equal(t, "two", inbox.Messages()[0].Subject)
}

func TestSession_RequiresAuth(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{MailSinkUsername: "user", MailSinkPassword: "pass"}
	s := NewSession(cfg, NewInbox(0), testLogger(), nil)

	assert.Equal(t, []string{sasl.Plain}, s.AuthMechanisms())
	assert.Equal(t, errAuthRequired, s.Mail("relay@example.com", nil))

	_, err := s.Auth("LOGIN")
	assert.Equal(t, errUnknownMechanism, err)

	server, err := s.Auth(sasl.Plain)
	require.NoError(t, err)
	_, _, err = server.Next([]byte("\x00user\x00wrong"))
	assert.Error(t, err)
	assert.False(t, s.authenticated)

	server, err = s.Auth(sasl.Plain)
	require.NoError(t, err)
	_, done, err := server.Next([]byte("\x00user\x00pass"))
	require.NoError(t, err)
	assert.True(t, done)

	assert.NoError(t, s.Mail("<relay@example.com>", nil))
	assert.Equal(t, "relay@example.com", s.from)
}

func TestSession_OpenSinkAcceptsWithoutAuth(t *testing.T) {
	t.Parallel()

	inbox := NewInbox(0)
	s := NewSession(&config.Config{}, inbox, testLogger(), nil)

	assert.Nil(t, s.AuthMechanisms())
	require.NoError(t, s.Mail("relay@example.com", nil))
	require.NoError(t, s.Rcpt("<owner@example.com>", nil))
	require.NoError(t, s.Data(strings.NewReader(sampleMessage)))

	messages := inbox.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "relay@example.com", messages[0].EnvelopeFrom)
	assert.Equal(t, []string{"owner@example.com"}, messages[0].EnvelopeTo)
	assert.Equal(t, int64(len(sampleMessage)), messages[0].SizeBytes)

	s.Reset()
	assert.Empty(t, s.from)
	assert.Empty(t, s.to)
}

func TestServer_ReceivesOverSMTP(t *testing.T) {
	t.Parallel()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	inbox := NewInbox(5)
	srv := NewServer(&config.Config{}, inbox, testLogger())
	go func() { _ = srv.Serve(l) }()
	defer srv.Shutdown()

	c, err := gosmtp.Dial(l.Addr().String())
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.SendMail("relay@example.com", []string{"owner@example.com"}, strings.NewReader(sampleMessage)))
	require.NoError(t, c.Quit())

	messages := inbox.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "Hello sink", messages[0].Subject)
	assert.False(t, messages[0].TLS)
}
