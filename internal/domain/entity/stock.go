package entity

import "time"

// StockEntry stock de un espacio para un día concreto. Es el payload que se
// serializa dentro de una partición del cache (clave site:{id}:{YYYYMMDD}).
// AvailableUntil nil significa disponibilidad indefinida: la cifra publicada
// no tiene una reserva futura conocida que la invalide.
type StockEntry struct {
	SpaceID        int64      `json:"id"`
	SiteID         int64      `json:"site_id"`
	AvailableUnits int        `json:"available_units"`
	AvailableUntil *time.Time `json:"available_until,omitempty"`
}
