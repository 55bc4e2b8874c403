package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const serviceName = "Rinku"

// HealthHandler reports whether the API can reach its store.
type HealthHandler struct {
	logger *zap.Logger
	ping   func(ctx context.Context) error
}

// NewHealthHandler creates a health handler. ping may be nil, in which case
// the service always reports ok.
func NewHealthHandler(logger *zap.Logger, ping func(ctx context.Context) error) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{logger: logger, ping: ping}
}

// Register wires health routes onto the provided router.
func (h *HealthHandler) Register(router fiber.Router) {
	router.Get("/", h.Health)
	router.Get("/health", h.Health)
}

// Health handles GET / and GET /health.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	now := time.Now().UTC().Format(time.RFC3339)

	if h.ping != nil {
		if err := h.ping(requestContext(c)); err != nil {
			h.logger.Warn("store unreachable", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"service": serviceName,
				"status":  "unavailable",
				"time":    now,
			})
		}
	}

	return c.JSON(fiber.Map{
		"service": serviceName,
		"status":  "ok",
		"time":    now,
	})
}
