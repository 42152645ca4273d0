package http

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aquanet/water-service/internal/observability"
	apperrors "github.com/aquanet/water-service/pkg/util"
)

func TestRequestTimeoutBoundsHandlerContext(t *testing.T) {
	app := fiber.New()
	app.Use(requestTimeoutMiddleware(20 * time.Millisecond))

	var ctxErr error
	app.Get("/slow", func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		select {
		case <-ctx.Done():
		case <-time.After(500 * time.Millisecond):
		}
		ctxErr = ctx.Err()
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/slow", nil), 2000)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.ErrorIs(t, ctxErr, context.DeadlineExceeded)
}

func TestRequestMetricsRecordErrorStatus(t *testing.T) {
	metrics := observability.NewMetrics()
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, 0)
	app.Get("/missing", func(c *fiber.Ctx) error {
		return apperrors.NewNotFound("task", nil)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/missing", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	totals := metrics.RequestTotals()
	assert.Equal(t, int64(1), totals["/missing|GET|404"])
}
