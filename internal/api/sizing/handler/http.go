package sizingHandler

import (
	sizingService "TailorGolang/internal/api/sizing/service"
	"TailorGolang/internal/middleware"
	"TailorGolang/pkg/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type SizingHandler struct {
	log           *logrus.Logger
	validator     *validator.Validate
	middleware    middleware.Middleware
	sizingService sizingService.ISizingService
	utils         utils.IUtils
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	ss sizingService.ISizingService,
	utils utils.IUtils,
) *SizingHandler {
	return &SizingHandler{
		sizingService: ss,
		log:           log,
		validator:     validator,
		middleware:    middleware,
		utils:         utils,
	}
}

func (h *SizingHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	sizing := srv.Group("/sizing")

	measurements := sizing.Group("/measurements")
	measurements.Post("", h.middleware.NewRateLimiter, h.EstimateSize)
	measurements.Get("", h.middleware.NewTokenMiddleware, h.GetMeasurements)
	measurements.Get("/:id", h.middleware.NewTokenMiddleware, h.GetMeasurementByID)
	measurements.Delete("/:id", h.middleware.NewTokenMiddleware, h.DeleteMeasurement)

	sizing.Use("/live", wsMiddleware)
	sizing.Get("/live", websocket.New(h.handleLiveWebSocket))
}
