package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/storenextdoor/stock-service/internal/application/ports"
	appstock "github.com/storenextdoor/stock-service/internal/application/stock"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	StockUC    *appstock.UseCase
	SearchSync ports.SearchSync
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	sites := api.Group("/sites")
	stockHandler := NewStockHandler(deps.StockUC, deps.SearchSync)
	sites.Post("/filter-by-stock", stockHandler.FilterByStock)
	sites.Post("/update-stock", stockHandler.UpdateSpaceStock)
	sites.Post("/update-stock-by-sites", stockHandler.UpdateSpaceStockBySites)
	sites.Post("/update-es-by-site", stockHandler.UpdateESBySite)
}
