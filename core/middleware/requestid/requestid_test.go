package requestid_test

import (
	"net/http/httptest"
	"testing"

	"github.com/Journera/glutil/core/logger"
	"github.com/Journera/glutil/core/middleware/requestid"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	var seen string
	app := fiber.New()
	app.Use(requestid.New())
	app.Get("/", func(c *fiber.Ctx) error {
		seen, _ = c.Locals(logger.RequestIDKey).(string)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	_, err = uuid.Parse(seen)
	assert.NoError(t, err)
	assert.Equal(t, seen, resp.Header.Get(requestid.HeaderName))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(requestid.HeaderName, "from-client")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "from-client", seen)
	assert.Equal(t, "from-client", resp.Header.Get(requestid.HeaderName))
}
