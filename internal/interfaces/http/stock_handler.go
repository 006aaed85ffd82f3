package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/storenextdoor/stock-service/internal/application/dto"
	"github.com/storenextdoor/stock-service/internal/application/ports"
	appstock "github.com/storenextdoor/stock-service/internal/application/stock"
	"github.com/storenextdoor/stock-service/internal/domain/entity"
)

// StockHandler maneja las peticiones HTTP de stock y de sincronización manual
// del índice.
type StockHandler struct {
	uc     *appstock.UseCase
	search ports.SearchSync
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *appstock.UseCase, search ports.SearchSync) *StockHandler {
	return &StockHandler{uc: uc, search: search}
}

// FilterByStock godoc
// @Summary      Filtrar sitios por stock disponible
// @Tags         sites
// @Accept       json
// @Produce      json
// @Param        body  body  dto.FilterStockRequest  true  "Sitios y fechas"
// @Success      200   {object}  dto.FilterStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/sites/filter-by-stock [post]
func (h *StockHandler) FilterByStock(c *fiber.Ctx) error {
	var in dto.FilterStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.SiteIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "site_ids es requerido"})
	}
	moveIn, err := parseDate(in.MoveInDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "move_in_date inválido"})
	}
	var moveOut *time.Time
	if in.MoveOutDate != "" {
		d, err := parseDate(in.MoveOutDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "move_out_date inválido"})
		}
		moveOut = &d
	}

	sites, err := h.uc.FilterStock(c.Context(), in.SiteIDs, moveIn, moveOut)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if sites == nil {
		sites = []dto.AvailableSite{}
	}
	return c.JSON(dto.FilterStockResponse{Sites: sites})
}

// UpdateSpaceStock godoc
// @Summary      Recalcular stock de un espacio
// @Tags         sites
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateSpaceStockRequest  true  "Espacio a recalcular"
// @Success      200   {object}  map[string]string
// @Router       /api/sites/update-stock [post]
func (h *StockHandler) UpdateSpaceStock(c *fiber.Ctx) error {
	var in dto.UpdateSpaceStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.SpaceID == 0 || in.SiteID == 0 || in.StockManagementType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "space_id, site_id y stock_management_type son requeridos"})
	}

	if _, err := h.uc.UpdateSpaceStock(c.Context(), in.SpaceID, in.SiteID, entity.StockManagementType(in.StockManagementType), appstock.UpdateOptions{}); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "fail", "error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "success"})
}

// UpdateSpaceStockBySites recalcula el stock de todos los espacios de los
// sitios indicados y devuelve la estructura sitio/día/entradas resultante.
func (h *StockHandler) UpdateSpaceStockBySites(c *fiber.Ctx) error {
	var in dto.UpdateStockBySitesRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	updated, err := h.uc.UpdateSpaceStockBySites(c.Context(), in.SiteIDs)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "fail", "error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "success", "updatedSites": updated})
}

// UpdateESBySite dispara manualmente la sincronización del índice de búsqueda
// para uno o varios sitios.
func (h *StockHandler) UpdateESBySite(c *fiber.Ctx) error {
	var in dto.UpdateESBySiteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.SiteID == 0 && len(in.SiteIDs) == 0 {
		return c.JSON(fiber.Map{"status": "fail", "data": "Invalid request"})
	}

	ids := in.SiteIDs
	if in.SiteID != 0 {
		ids = []int64{in.SiteID}
	}

	// El fallo de un sitio no aborta el resto: se sincroniza lo que se pueda
	// y los fallidos se reportan como dato.
	var failed []int64
	for _, id := range ids {
		if err := h.search.UpsertSite(c.Context(), id); err != nil {
			failed = append(failed, id)
		}
	}
	if len(failed) > 0 {
		return c.JSON(fiber.Map{"status": "partial", "failed_site_ids": failed})
	}
	return c.JSON(fiber.Map{"status": "success"})
}

// parseDate acepta fechas YYYY-MM-DD o RFC3339.
func parseDate(s string) (time.Time, error) {
	if d, err := time.Parse("2006-01-02", s); err == nil {
		return d, nil
	}
	return time.Parse(time.RFC3339, s)
}
