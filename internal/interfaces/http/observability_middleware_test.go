package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/stock-ledger/internal/interfaces/http"
)

func TestRequestLoggingMiddleware_NivelSegunStatus(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	app.Use(apphttp.TracingMiddleware("stock-ledger-test"))
	app.Use(apphttp.RequestLoggingMiddleware(zerolog.New(&buf)))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/conflict", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusConflict) })

	cases := []struct {
		path      string
		wantLevel string
		wantCode  float64
	}{
		{"/ok", "info", 200},
		{"/conflict", "warn", 409},
		{"/no-existe", "warn", 404},
	}
	for _, tc := range cases {
		buf.Reset()
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, tc.path, nil), -1)
		require.NoError(t, err)
		resp.Body.Close()

		var line map[string]interface{}
		require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line), tc.path)
		assert.Equal(t, tc.wantLevel, line["level"], tc.path)
		assert.Equal(t, tc.wantCode, line["status"], tc.path)
		assert.Equal(t, tc.path, line["path"])
	}
}
