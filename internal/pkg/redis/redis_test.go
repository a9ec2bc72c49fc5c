package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectDisabled(t *testing.T) {
	rdb, err := Connect(t.Context(), "  ")
	require.NoError(t, err)
	assert.Nil(t, rdb)
}

func TestConnectBadURL(t *testing.T) {
	_, err := Connect(t.Context(), "http://not-redis")
	assert.ErrorContains(t, err, "invalid redis url")
}
