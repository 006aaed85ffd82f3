package dto

import "time"

// FilterStockRequest filtro de sitios por stock disponible en una fecha de entrada.
type FilterStockRequest struct {
	SiteIDs     []int64 `json:"site_ids"`
	MoveInDate  string  `json:"move_in_date"`            // YYYY-MM-DD o RFC3339
	MoveOutDate string  `json:"move_out_date,omitempty"` // opcional
}

// UpdateSpaceStockRequest recálculo de stock para un espacio concreto.
type UpdateSpaceStockRequest struct {
	SpaceID             int64  `json:"space_id"`
	SiteID              int64  `json:"site_id"`
	StockManagementType string `json:"stock_management_type"`
}

// UpdateStockBySitesRequest recálculo masivo de stock por sitios.
type UpdateStockBySitesRequest struct {
	SiteIDs []int64 `json:"site_ids"`
}

// UpdateESBySiteRequest disparo manual de sincronización del índice de búsqueda.
type UpdateESBySiteRequest struct {
	SiteID     int64   `json:"site_id,omitempty"`
	SiteIDs    []int64 `json:"site_ids,omitempty"`
	CreateSite bool    `json:"create_site,omitempty"`
}

// AvailableSpace espacio con stock disponible para la fecha consultada.
type AvailableSpace struct {
	ID             int64      `json:"id"`
	AvailableUnits int        `json:"available_units"`
	AvailableUntil *time.Time `json:"available_until,omitempty"`
}

// AvailableSite sitio con al menos un espacio disponible.
type AvailableSite struct {
	ID     int64            `json:"id"`
	Spaces []AvailableSpace `json:"spaces"`
}

// FilterStockResponse respuesta del filtro por stock.
type FilterStockResponse struct {
	Sites []AvailableSite `json:"sites"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
