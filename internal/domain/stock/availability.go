// Package stock contiene el cálculo puro de disponibilidad por día:
// unidades disponibles según el modo de gestión y el horizonte hasta el que
// la cifra publicada sigue siendo válida.
package stock

import (
	"time"

	"github.com/storenextdoor/stock-service/internal/domain/entity"
)

const (
	// CleaningDays días que una unidad queda bloqueada tras el move-out
	// para limpieza de las instalaciones.
	CleaningDays = 3

	// AffiliateUnits stock fijo publicado para espacios de afiliados.
	// El valor real lo gestiona el afiliado; aquí solo importa que sea > 0
	// para que el espacio aparezca en los listados.
	AffiliateUnits = 10
)

// Occupies indica si la reserva ocupa una unidad en la fecha dada.
// Una reserva ocupa desde el día siguiente al move-in hasta move-out más el
// periodo de limpieza (exclusivo). Sin move-out, ocupa indefinidamente.
func Occupies(b *entity.Booking, date time.Time) bool {
	if !b.MoveInDate.Before(date) {
		return false
	}
	if b.MoveOutDate == nil {
		return true
	}
	withCleaning := b.MoveOutDate.AddDate(0, 0, CleaningDays)
	return date.Before(withCleaning)
}

// ActiveBookingsOn devuelve las reservas del espacio que ocupan unidades en
// la fecha dada. Asume que space.Bookings ya viene filtrado a estados activos.
func ActiveBookingsOn(space *entity.Space, date time.Time) []*entity.Booking {
	var active []*entity.Booking
	for _, b := range space.Bookings {
		if Occupies(b, date) {
			active = append(active, b)
		}
	}
	return active
}

// AvailableUnits calcula las unidades disponibles de un espacio en una fecha
// según el modo de gestión:
//
//   - SND: capacidad total menos reservas activas en la fecha, con piso en 0.
//   - AFFILIATE: constante AffiliateUnits, independiente de reservas.
//   - THIRD_PARTY: el campo available_units del espacio tal cual.
func AvailableUnits(t entity.StockManagementType, space *entity.Space, date time.Time) int {
	switch t {
	case entity.StockAffiliate:
		return AffiliateUnits
	case entity.StockSND:
		units := space.TotalUnits - len(ActiveBookingsOn(space, date))
		if units < 0 {
			return 0
		}
		return units
	default:
		return space.AvailableUnits
	}
}

// AvailableUntil devuelve el último día en que la cifra de disponibilidad
// sigue garantizada, o nil si es indefinida. Solo tiene sentido invocarlo con
// availableUnits > 0.
//
// Si quedan unidades libres por encima de la ocupación actual no hay horizonte
// (nil). Si no, el horizonte es el día anterior al move-in de la siguiente
// reserva futura; sin reserva futura, nil.
func AvailableUntil(space *entity.Space, availableUnits int, date time.Time) *time.Time {
	if availableUnits <= 0 {
		return nil
	}

	if space.TotalUnits > len(ActiveBookingsOn(space, date)) {
		return nil
	}

	// Bookings viene ordenado por move_in ascendente: el primero posterior a
	// la fecha es la próxima reserva que consume el espacio.
	for _, b := range space.Bookings {
		if b.MoveInDate.After(date) {
			until := b.MoveInDate.AddDate(0, 0, -1)
			return &until
		}
	}
	return nil
}

// KeyDate normaliza una fecha al día de la clave de cache (YYYYMMDD).
// El desplazamiento de 12 horas fija el corte de día usado por todos los
// productores y consumidores de las claves.
func KeyDate(date time.Time) string {
	return date.Add(12 * time.Hour).Format("20060102")
}
