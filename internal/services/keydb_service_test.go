package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contact-relay/internal/config"
)

func TestDeliveryKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "contact:delivery:abc-123", deliveryKey("abc-123"))
}

func TestNewKeyDBService_Unreachable(t *testing.T) {
	t.Parallel()

	svc, err := NewKeyDBService(&config.Config{KeyDBURL: "127.0.0.1:1"})
	require.Error(t, err)
	assert.Nil(t, svc)
	assert.Contains(t, err.Error(), "failed to connect to KeyDB")
}
