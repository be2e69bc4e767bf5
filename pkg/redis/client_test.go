package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectRejectsMissingURL(t *testing.T) {
	_, err := connect(Config{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestConnectRejectsBadScheme(t *testing.T) {
	_, err := connect(Config{URL: "http://localhost:6379"})
	assert.Error(t, err)
}

func TestUninitializedClient(t *testing.T) {
	assert.Nil(t, Client())
	assert.Error(t, HealthCheck(context.Background()))
	assert.NoError(t, Close())
}
