package repository

import (
	"context"
	"time"

	"github.com/storenextdoor/stock-service/internal/domain/entity"
)

// SpaceRepository puerto de lectura del booking store para un espacio.
// Este servicio nunca muta espacios ni reservas; solo los lee para recalcular stock.
type SpaceRepository interface {
	// FindSpaceWithActiveBookings carga el espacio (excluyendo el modo AFFILIATE)
	// junto con sus reservas en estado activo que tocan el rango [from, to] o no
	// tienen move-out, ordenadas por move_in_date ascendente.
	// Devuelve (nil, nil) si el espacio no existe.
	FindSpaceWithActiveBookings(ctx context.Context, spaceID int64, from, to time.Time) (*entity.Space, error)
}

// SiteRepository puerto de lectura del booking store para sitios.
type SiteRepository interface {
	// FindSitesWithSpaces carga los sitios indicados con los identificadores de
	// sus espacios. Los sitios inexistentes simplemente se omiten.
	FindSitesWithSpaces(ctx context.Context, siteIDs []int64) ([]*entity.Site, error)
}
