// Package stock orquesta el recálculo y la consulta de stock por día:
// calculadora de disponibilidad + cache particionado por (sitio, día).
package stock

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/storenextdoor/stock-service/internal/application/dto"
	"github.com/storenextdoor/stock-service/internal/application/ports"
	"github.com/storenextdoor/stock-service/internal/domain/entity"
	"github.com/storenextdoor/stock-service/internal/domain/repository"
	domstock "github.com/storenextdoor/stock-service/internal/domain/stock"
	"github.com/storenextdoor/stock-service/pkg/logger"
)

// UpdateOptions opciones de recálculo.
type UpdateOptions struct {
	// OnlyReturn calcula y devuelve las entradas sin escribirlas al cache.
	// Lo usa el recálculo masivo, que escribe todas las particiones en un
	// único upsert al final.
	OnlyReturn bool
}

// DayStock stock calculado de un espacio para un día del horizonte.
type DayStock struct {
	Date  string            `json:"date"` // día de la clave, YYYYMMDD
	Entry entity.StockEntry `json:"data"`

	day time.Time // día crudo, para derivar clave y expiración en el upsert masivo
}

// SiteStockMap resultado del recálculo masivo: sitio -> día (YYYYMMDD) -> entradas.
type SiteStockMap map[int64]map[string][]entity.StockEntry

// UseCase servicio de cálculo de stock. Orquesta el booking store (lectura),
// la calculadora de disponibilidad y el cache.
type UseCase struct {
	spaces repository.SpaceRepository
	sites  repository.SiteRepository
	cache  ports.StockCache
	log    *logger.Logger

	now func() time.Time
}

// NewUseCase construye el servicio de stock.
func NewUseCase(spaces repository.SpaceRepository, sites repository.SiteRepository, cache ports.StockCache, log *logger.Logger) *UseCase {
	return &UseCase{
		spaces: spaces,
		sites:  sites,
		cache:  cache,
		log:    log,
		now:    time.Now,
	}
}

// UpdateSpaceStock recalcula el stock de un espacio para la ventana rodante
// [hoy, hoy+1 mes). Los días sin unidades disponibles se omiten del resultado
// y del cache: ausencia significa cero.
//
// Si el espacio no existe devuelve (nil, nil): la condición se registra pero
// no se propaga como error. Con OnlyReturn no se escribe al cache.
func (uc *UseCase) UpdateSpaceStock(ctx context.Context, spaceID, siteID int64, t entity.StockManagementType, opts UpdateOptions) ([]DayStock, error) {
	uc.log.Info().
		Int64("space_id", spaceID).
		Int64("site_id", siteID).
		Str("type", string(t)).
		Msg("recálculo de stock de espacio")

	today := uc.now()
	horizon := today.AddDate(0, 1, 0)

	var space *entity.Space
	if t != entity.StockAffiliate {
		// El stock de afiliados no depende de reservas; para el resto hay que
		// cargar capacidad y reservas activas dentro del horizonte.
		var err error
		space, err = uc.spaces.FindSpaceWithActiveBookings(ctx, spaceID, today, horizon)
		if err != nil {
			return nil, err
		}
		if space == nil {
			uc.log.Error().Int64("space_id", spaceID).Msg("espacio no encontrado, se aborta el recálculo")
			return nil, nil
		}
	}

	var stocks []DayStock
	for date := today; date.Before(horizon); date = date.AddDate(0, 0, 1) {
		units := domstock.AvailableUnits(t, space, date)
		if units <= 0 {
			continue
		}

		var until *time.Time
		if t != entity.StockAffiliate {
			until = domstock.AvailableUntil(space, units, date)
		}

		entry := entity.StockEntry{
			SpaceID:        spaceID,
			SiteID:         siteID,
			AvailableUnits: units,
			AvailableUntil: until,
		}
		stocks = append(stocks, DayStock{Date: domstock.KeyDate(date), Entry: entry, day: date})

		if !opts.OnlyReturn {
			if err := uc.cache.UpsertOne(ctx, siteID, spaceID, date, entry); err != nil {
				// El recálculo es idempotente y se reintenta desde arriba;
				// un fallo de escritura puntual no invalida el resto de días.
				uc.log.Error().Err(err).
					Int64("site_id", siteID).
					Int64("space_id", spaceID).
					Str("date", domstock.KeyDate(date)).
					Msg("fallo al actualizar partición de stock")
			}
		}
	}

	uc.log.Info().Int64("space_id", spaceID).Int("days", len(stocks)).Msg("recálculo de espacio completado")
	return stocks, nil
}

// UpdateSpaceStockBySites recalcula el stock de todos los espacios de los
// sitios indicados y escribe el resultado en un único upsert masivo.
//
// Los sitios de afiliados se recalculan en paralelo (cálculo O(1), sin
// consultas de reservas); el resto secuencialmente para no saturar el booking
// store con consultas de historial simultáneas.
func (uc *UseCase) UpdateSpaceStockBySites(ctx context.Context, siteIDs []int64) (SiteStockMap, error) {
	uc.log.Info().Ints64("site_ids", siteIDs).Msg("recálculo masivo de stock por sitios")

	sites, err := uc.sites.FindSitesWithSpaces(ctx, siteIDs)
	if err != nil {
		return nil, err
	}
	if len(sites) == 0 {
		return SiteStockMap{}, nil
	}

	var affiliates, others []*entity.Site
	for _, site := range sites {
		if site.StockManagementType == entity.StockAffiliate {
			affiliates = append(affiliates, site)
		} else {
			others = append(others, site)
		}
	}

	type task struct {
		spaceID int64
		siteID  int64
		t       entity.StockManagementType
	}
	var tasks []task
	for _, site := range affiliates {
		for _, space := range site.Spaces {
			tasks = append(tasks, task{spaceID: space.ID, siteID: site.ID, t: site.StockManagementType})
		}
	}

	results := make([][]DayStock, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	for i, tk := range tasks {
		i, tk := i, tk
		g.Go(func() error {
			stocks, err := uc.UpdateSpaceStock(gctx, tk.spaceID, tk.siteID, tk.t, UpdateOptions{OnlyReturn: true})
			if err != nil {
				return err
			}
			results[i] = stocks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, site := range others {
		for _, space := range site.Spaces {
			stocks, err := uc.UpdateSpaceStock(ctx, space.ID, site.ID, site.StockManagementType, UpdateOptions{OnlyReturn: true})
			if err != nil {
				return nil, err
			}
			results = append(results, stocks)
		}
	}

	bySite, partitions := mergePartitions(results)

	if err := uc.cache.UpsertBulk(ctx, partitions); err != nil {
		return nil, err
	}

	uc.log.Info().Int("sites", len(bySite)).Msg("recálculo masivo completado")
	return bySite, nil
}

// mergePartitions agrupa las entradas por sitio y día y construye las
// particiones para el upsert masivo.
func mergePartitions(results [][]DayStock) (SiteStockMap, []ports.StockPartition) {
	bySite := SiteStockMap{}
	index := map[int64]map[string]int{}
	var partitions []ports.StockPartition

	for _, stocks := range results {
		for _, s := range stocks {
			siteID := s.Entry.SiteID
			if bySite[siteID] == nil {
				bySite[siteID] = map[string][]entity.StockEntry{}
				index[siteID] = map[string]int{}
			}
			bySite[siteID][s.Date] = append(bySite[siteID][s.Date], s.Entry)

			i, ok := index[siteID][s.Date]
			if !ok {
				i = len(partitions)
				index[siteID][s.Date] = i
				partitions = append(partitions, ports.StockPartition{SiteID: siteID, Date: s.day})
			}
			partitions[i].Entries = append(partitions[i].Entries, s.Entry)
		}
	}
	return bySite, partitions
}

// FilterStock devuelve, de entre los sitios pedidos, los que tienen espacios
// con stock para la fecha de entrada. Con fecha de salida, descarta además los
// espacios cuyo horizonte de disponibilidad no la cubre.
//
// Los fallos de parseo por entrada degradan a vacío; solo un fallo de
// transporte del cache se propaga al llamador.
func (uc *UseCase) FilterStock(ctx context.Context, siteIDs []int64, moveIn time.Time, moveOut *time.Time) ([]dto.AvailableSite, error) {
	uc.log.Info().Ints64("site_ids", siteIDs).Time("move_in", moveIn).Msg("filtro de sitios por stock")

	partitions, err := uc.cache.MGet(ctx, siteIDs, moveIn)
	if err != nil {
		return nil, err
	}

	var out []dto.AvailableSite
	for _, entries := range partitions {
		if len(entries) == 0 {
			continue
		}
		site := dto.AvailableSite{ID: entries[0].SiteID}
		for _, e := range entries {
			if e.AvailableUnits <= 0 {
				continue
			}
			if moveOut != nil && e.AvailableUntil != nil && !moveOut.Before(*e.AvailableUntil) {
				continue
			}
			site.Spaces = append(site.Spaces, dto.AvailableSpace{
				ID:             e.SpaceID,
				AvailableUnits: e.AvailableUnits,
				AvailableUntil: e.AvailableUntil,
			})
		}
		if len(site.Spaces) == 0 {
			continue
		}
		out = append(out, site)
	}
	return out, nil
}
