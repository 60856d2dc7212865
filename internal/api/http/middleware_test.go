package http

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/helpdesk-io/helpdesk-service/internal/api/http/handlers"
	"github.com/helpdesk-io/helpdesk-service/internal/observability"
	"github.com/helpdesk-io/helpdesk-service/internal/persistence"
	apperrors "github.com/helpdesk-io/helpdesk-service/pkg/util/errorutil"
)

type errorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newTestApp(t *testing.T) (*fiber.App, *observability.Metrics) {
	t.Helper()
	metrics := observability.NewMetrics()
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, time.Second)
	return app, metrics
}

func decodeError(t *testing.T, body io.Reader) errorEnvelope {
	t.Helper()
	var envelope errorEnvelope
	require.NoError(t, json.NewDecoder(body).Decode(&envelope))
	return envelope
}

func TestErrorMiddlewareRendersDomainErrors(t *testing.T) {
	app, _ := newTestApp(t)
	app.Get("/boom", func(c *fiber.Ctx) error {
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": "t-1"})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	envelope := decodeError(t, resp.Body)
	require.Equal(t, "NOT_FOUND", envelope.Error.Code)
	require.Equal(t, "t-1", envelope.Error.Details["ticket_id"])
}

func TestErrorMiddlewareRendersFiberErrors(t *testing.T) {
	app, _ := newTestApp(t)
	app.Post("/parse", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/parse", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	envelope := decodeError(t, resp.Body)
	require.Equal(t, "BAD_REQUEST", envelope.Error.Code)
	require.Equal(t, "invalid payload", envelope.Error.Message)
}

func TestErrorMiddlewareRecoversPanics(t *testing.T) {
	app, _ := newTestApp(t)
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("boom")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/panic", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	envelope := decodeError(t, resp.Body)
	require.Equal(t, "INTERNAL_ERROR", envelope.Error.Code)
}

func TestRequestMetricsRecorded(t *testing.T) {
	app, metrics := newTestApp(t)
	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, int64(1), metrics.RequestCount("/ok", "GET", fiber.StatusOK))
}

func TestHealthProbesWithoutBackends(t *testing.T) {
	app, _ := newTestApp(t)
	health := handlers.NewHealthHandler("helpdesk-service", "test", &persistence.Postgres{}, &persistence.Redis{})
	app.Get("/health/live", health.Live)
	app.Get("/health/ready", health.Ready)

	resp, err := app.Test(httptest.NewRequest("GET", "/health/live", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/health/ready", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
