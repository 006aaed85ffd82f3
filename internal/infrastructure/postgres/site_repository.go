package postgres

import (
	"context"
	"fmt"

	"github.com/storenextdoor/stock-service/internal/domain/entity"
	"github.com/storenextdoor/stock-service/internal/domain/repository"
)

var _ repository.SiteRepository = (*SiteRepo)(nil)

// SiteRepo implementación de SiteRepository sobre PostgreSQL (solo lectura).
type SiteRepo struct {
	q Querier
}

// NewSiteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSiteRepository(q Querier) *SiteRepo {
	return &SiteRepo{q: q}
}

// FindSitesWithSpaces carga los sitios indicados con los identificadores de sus
// espacios. Para el recálculo masivo solo hacen falta los ids: las reservas se
// cargan después espacio a espacio.
func (r *SiteRepo) FindSitesWithSpaces(ctx context.Context, siteIDs []int64) ([]*entity.Site, error) {
	query := `
		SELECT s.id, COALESCE(s.stock_management_type, ''), sp.id
		FROM sites s
		LEFT JOIN spaces sp ON sp.site_id = s.id
		WHERE s.id = ANY($1)
		ORDER BY s.id, sp.id`

	rows, err := r.q.Query(ctx, query, siteIDs)
	if err != nil {
		return nil, fmt.Errorf("list sites with spaces: %w", err)
	}
	defer rows.Close()

	var sites []*entity.Site
	byID := map[int64]*entity.Site{}
	for rows.Next() {
		var (
			siteID  int64
			smt     string
			spaceID *int64
		)
		if err := rows.Scan(&siteID, &smt, &spaceID); err != nil {
			return nil, fmt.Errorf("scan site row: %w", err)
		}
		site, ok := byID[siteID]
		if !ok {
			site = &entity.Site{ID: siteID, StockManagementType: entity.StockManagementType(smt)}
			byID[siteID] = site
			sites = append(sites, site)
		}
		if spaceID != nil {
			site.Spaces = append(site.Spaces, &entity.Space{ID: *spaceID, SiteID: siteID})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sites: %w", err)
	}

	return sites, nil
}
