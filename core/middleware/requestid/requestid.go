package requestid

import (
	"github.com/Journera/glutil/core/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HeaderName is the header carrying the request id.
const HeaderName = "X-Request-ID"

// New creates a middleware that assigns every request an id, reusing the one
// sent by the client when present. The id is stored in the locals under
// logger.RequestIDKey and echoed in the response header.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderName)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(logger.RequestIDKey, id)
		c.Set(HeaderName, id)
		return c.Next()
	}
}
