package exceptions

import (
	"sheet-reconciler/core/logger"
	"sheet-reconciler/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the exception table.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the exception routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/exceptions")
	group.Get("/", h.HandleList)
	group.Put("/", h.HandleSave)
	group.Delete("/", h.HandleDelete)
}

// HandleList lists the stored exceptions.
// @Summary List Exceptions
// @Description Lists the stored exception entries ordered by key.
// @Tags exceptions
// @Produce json
// @Success 200 {array} reconcile.ExceptionEntry
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /exceptions [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	entries, err := h.service.List(c.Context())
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Listing exceptions failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(entries)
}

// HandleSave upserts exceptions.
// @Summary Save Exceptions
// @Description Inserts or updates exception entries by key. The first of a repeated key wins.
// @Tags exceptions
// @Accept json
// @Produce json
// @Param entries body []reconcile.ExceptionEntry true "Entries"
// @Success 200 {object} map[string]int
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /exceptions [put]
func (h *Handler) HandleSave(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var entries []reconcile.ExceptionEntry
	if err := c.BodyParser(&entries); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body: " + err.Error()})
	}

	n, err := h.service.Save(c.Context(), entries)
	if err != nil {
		if eris.Is(err, ErrNoEntries) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		l.Error("Saving exceptions failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	l.Info("Exceptions saved", zap.Int("count", n))
	return c.JSON(fiber.Map{"saved": n})
}

// HandleDelete removes exceptions.
// @Summary Delete Exceptions
// @Description Removes the exception entries with the given keys.
// @Tags exceptions
// @Produce json
// @Param key query []string true "Exception key" collectionFormat(multi)
// @Success 200 {object} map[string]int
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /exceptions [delete]
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var keys []string
	for _, k := range c.Context().QueryArgs().PeekMulti("key") {
		keys = append(keys, string(k))
	}
	if len(keys) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "key is required"})
	}

	n, err := h.service.Remove(c.Context(), keys)
	if err != nil {
		l.Error("Deleting exceptions failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"deleted": n})
}
