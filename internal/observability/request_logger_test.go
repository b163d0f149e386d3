package observability

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	metrics := NewMetrics()

	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), metrics))
	app.Get("/ping", func(c *fiber.Ctx) error {
		assert.NotEmpty(t, RequestID(c))
		return c.SendStatus(fiber.StatusNoContent)
	})

	t.Run("Generates request id", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

		logs := observed.TakeAll()
		require.Len(t, logs, 1)
		assert.Equal(t, "request", logs[0].Message)
		fields := logs[0].ContextMap()
		assert.Equal(t, "/ping", fields["path"])
		assert.EqualValues(t, fiber.StatusNoContent, fields["status"])
	})

	t.Run("Preserves incoming request id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/ping", nil)
		req.Header.Set("X-Request-ID", "req-123")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, "req-123", resp.Header.Get("X-Request-ID"))

		logs := observed.TakeAll()
		require.Len(t, logs, 1)
		assert.Equal(t, "req-123", logs[0].ContextMap()["request_id"])
	})

	snap := metrics.Snapshot()
	require.Len(t, snap.Requests, 1)
	assert.Equal(t, "/ping|GET|204", snap.Requests[0].Key)
	assert.Equal(t, int64(2), snap.Requests[0].Count)
}
