package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contact-relay/internal/config"
)

func TestSelectSender(t *testing.T) {
	t.Parallel()

	tests := []struct {
		provider string
		want     string
	}{
		{provider: config.ProviderBrevo, want: "Brevo Secure Channel"},
		{provider: config.ProviderSendGrid, want: "SendGrid"},
		{provider: config.ProviderResend, want: "Resend"},
		{provider: config.ProviderSMTP, want: "SMTP"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.provider, func(t *testing.T) {
			t.Parallel()

			cfg := readyConfig()
			cfg.EmailProvider = tt.provider

			sender, err := SelectSender(cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sender.Name())
		})
	}
}

func TestSelectSender_Unknown(t *testing.T) {
	t.Parallel()

	cfg := readyConfig()
	cfg.EmailProvider = "mailchimp"

	sender, err := SelectSender(cfg)
	assert.Nil(t, sender)
	assert.ErrorIs(t, err, ErrUnknownProvider)
}
