package entity

import "time"

// StockManagementType modo de gestión de stock de un sitio o espacio.
type StockManagementType string

const (
	// StockSND stock propio: se deriva de las reservas activas.
	StockSND StockManagementType = "SND"
	// StockThirdParty stock gestionado por un tercero: se publica el campo
	// available_units tal cual, sin mirar reservas.
	StockThirdParty StockManagementType = "THIRD_PARTY"
	// StockAffiliate stock de afiliado: origen externo, siempre se publica
	// como disponible.
	StockAffiliate StockManagementType = "AFFILIATE"
)

// SpaceStatus estado de publicación de un espacio.
type SpaceStatus string

const (
	SpaceActive        SpaceStatus = "ACTIVE"
	SpaceInactive      SpaceStatus = "IN_ACTIVE"
	SpaceArchived      SpaceStatus = "ARCHIVED"
	SpaceRejected      SpaceStatus = "REJECTED"
	SpaceReadyToReview SpaceStatus = "READY_TO_REVIEW"
	SpaceDraft         SpaceStatus = "DRAFT"
)

// Space espacio rentable dentro de un sitio. Bookings viene ordenado por
// move_in_date ascendente cuando se carga desde el booking store.
type Space struct {
	ID                  int64
	SiteID              int64
	Status              SpaceStatus
	TotalUnits          int // capacidad total
	AvailableUnits      int // base para modos gestionados externamente
	StockManagementType StockManagementType
	ThirdPartySpaceID   string
	Bookings            []*Booking
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
