package entity

import "time"

// BookingStatus estado del ciclo de vida de una reserva.
type BookingStatus string

const (
	BookingReserved   BookingStatus = "RESERVED"
	BookingConfirmed  BookingStatus = "CONFIRMED"
	BookingActive     BookingStatus = "ACTIVE"
	BookingTerminated BookingStatus = "TERMINATED"
	BookingCompleted  BookingStatus = "COMPLETED"
	BookingCancelled  BookingStatus = "CANCELLED"
)

// ActiveBookingStatuses estados que ocupan unidades a efectos de stock.
var ActiveBookingStatuses = []BookingStatus{
	BookingActive,
	BookingConfirmed,
	BookingReserved,
}

// Booking reserva de una unidad dentro de un espacio. MoveOutDate nil significa
// reserva abierta (sin fecha de salida).
type Booking struct {
	ID          int64
	SiteID      int64
	SpaceID     int64
	MoveInDate  time.Time
	MoveOutDate *time.Time
	AutoRenewal bool
	Status      BookingStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
