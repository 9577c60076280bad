package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler()
	require.False(t, h.startTime.IsZero())

	c, w := newHandlerContext(t)
	h.GetSystemInfo(c)

	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)

	info, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Kontor Backend API", info["name"])
	assert.Equal(t, "1.0.0", info["version"])
	assert.NotEmpty(t, info["go_version"])
	assert.NotEmpty(t, info["uptime"])
}

func TestSystemHandler_Ping(t *testing.T) {
	c, w := newHandlerContext(t)
	NewSystemHandler().Ping(c)

	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)

	pong, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "pong", pong["message"])

	_, err := time.Parse(time.RFC3339, pong["timestamp"].(string))
	assert.NoError(t, err, "timestamp is RFC3339")
}
