package trigger

import (
	"errors"

	"github.com/Journera/glutil/core/catalog"
	"github.com/Journera/glutil/core/logger"
	"github.com/Journera/glutil/core/scanner"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HealthPath is served without authentication.
const HealthPath = "/healthz"

// Handler handles HTTP requests for the trigger.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the trigger routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get(HealthPath, h.HandleHealth)
	app.Post("/partitions/create", h.HandleCreatePartitions)
}

// HandleHealth reports that the server is up.
// @Summary Health Check
// @Description Reports that the server is up. Served without an API key.
// @Tags trigger
// @Produce json
// @Success 200 {object} map[string]string "ok"
// @Router /healthz [get]
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// HandleCreatePartitions creates the missing partitions of one table.
// @Summary Create Partitions
// @Description Scans the table location in S3 and registers every partition the Glue catalog does not hold yet. Concurrent requests for the same table share one run.
// @Tags trigger
// @Accept json
// @Produce json
// @Param request body Request true "Target table"
// @Success 200 {object} Response "Created partitions and per-item errors"
// @Failure 400 {object} map[string]string "Invalid request or unknown profile"
// @Failure 401 {object} map[string]string "Invalid or missing API key"
// @Failure 403 {object} map[string]string "Access denied"
// @Failure 404 {object} map[string]string "Database or table not found"
// @Failure 500 {object} map[string]interface{} "Internal Server Error, with the partial result when the run stopped midway"
// @Security ApiKeyAuth
// @Router /partitions/create [post]
func (h *Handler) HandleCreatePartitions(c *fiber.Ctx) error {
	l := logger.WithRequestID(h.service.logger, c)

	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	l = l.With(zap.String("database", req.Database), zap.String("table", req.Table))
	l.Info("Triggering partition creation", zap.Int("limit_days", req.LimitDays))

	resp, shared, err := h.service.CreatePartitions(req, l)
	if err != nil {
		status, body := errorResponse(err)
		if resp != nil {
			body["found"] = resp.Found
			body["created"] = resp.Created
			body["errors"] = resp.Errors
		}
		if status >= fiber.StatusInternalServerError {
			l.Error("Partition creation failed", zap.Error(err))
		} else {
			l.Warn("Partition creation rejected", zap.Error(err))
		}
		return c.Status(status).JSON(body)
	}

	l.Info("Partition creation finished",
		zap.Int("created", resp.Created),
		zap.Int("failed", len(resp.Errors)),
		zap.Bool("shared", shared),
	)
	return c.JSON(resp)
}

func errorResponse(err error) (int, fiber.Map) {
	body := fiber.Map{"error": err.Error()}

	var ce *catalog.ConfigError
	switch {
	case errors.As(err, &ce):
		body["hint"] = ce.Hint()
		switch ce.Kind {
		case catalog.KindEntityNotFound:
			return fiber.StatusNotFound, body
		case catalog.KindAccessDenied:
			return fiber.StatusForbidden, body
		default:
			return fiber.StatusBadRequest, body
		}
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, scanner.ErrInvalidLimitDays),
		errors.Is(err, scanner.ErrLimitDaysSchema):
		return fiber.StatusBadRequest, body
	default:
		return fiber.StatusInternalServerError, body
	}
}
