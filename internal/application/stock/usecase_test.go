package stock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storenextdoor/stock-service/internal/application/ports"
	"github.com/storenextdoor/stock-service/internal/domain/entity"
	"github.com/storenextdoor/stock-service/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes de los puertos
// ──────────────────────────────────────────────────────────────────────────────

type fakeSpaceRepo struct {
	spaces  map[int64]*entity.Space
	calls   int
	gotFrom time.Time
	gotTo   time.Time
}

func (f *fakeSpaceRepo) FindSpaceWithActiveBookings(_ context.Context, spaceID int64, from, to time.Time) (*entity.Space, error) {
	f.calls++
	f.gotFrom, f.gotTo = from, to
	return f.spaces[spaceID], nil
}

type fakeSiteRepo struct {
	sites []*entity.Site
}

func (f *fakeSiteRepo) FindSitesWithSpaces(context.Context, []int64) ([]*entity.Site, error) {
	return f.sites, nil
}

type upsertCall struct {
	siteID  int64
	spaceID int64
	date    time.Time
	entry   entity.StockEntry
}

type fakeCache struct {
	upserts    []upsertCall
	bulkCalls  [][]ports.StockPartition
	mgetResult [][]entity.StockEntry
	mgetErr    error
}

func (f *fakeCache) Get(context.Context, int64, time.Time) ([]entity.StockEntry, error) {
	return nil, nil
}

func (f *fakeCache) UpsertOne(_ context.Context, siteID, spaceID int64, date time.Time, entry entity.StockEntry) error {
	f.upserts = append(f.upserts, upsertCall{siteID: siteID, spaceID: spaceID, date: date, entry: entry})
	return nil
}

func (f *fakeCache) UpsertBulk(_ context.Context, partitions []ports.StockPartition) error {
	f.bulkCalls = append(f.bulkCalls, partitions)
	return nil
}

func (f *fakeCache) MGet(context.Context, []int64, time.Time) ([][]entity.StockEntry, error) {
	return f.mgetResult, f.mgetErr
}

// today fijo a medianoche: la ventana rodante [today, today+1 mes) son 31 días.
var today = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

const horizonDays = 31

func day(n int) time.Time { return today.AddDate(0, 0, n) }

func newTestUseCase(spaces *fakeSpaceRepo, sites *fakeSiteRepo, cache *fakeCache) *UseCase {
	uc := NewUseCase(spaces, sites, cache, logger.New(logger.Config{Env: "production", Level: "error"}))
	uc.now = func() time.Time { return today }
	return uc
}

// ──────────────────────────────────────────────────────────────────────────────
// UpdateSpaceStock
// ──────────────────────────────────────────────────────────────────────────────

// TestUpdateSpaceStock_EspacioNoEncontrado: la condición se reporta como
// (nil, nil), sin error ni escrituras.
func TestUpdateSpaceStock_EspacioNoEncontrado(t *testing.T) {
	cache := &fakeCache{}
	uc := newTestUseCase(&fakeSpaceRepo{}, &fakeSiteRepo{}, cache)

	stocks, err := uc.UpdateSpaceStock(context.Background(), 99, 1, entity.StockSND, UpdateOptions{})

	require.NoError(t, err, "espacio ausente no debe propagar error")
	assert.Nil(t, stocks)
	assert.Empty(t, cache.upserts)
}

// TestUpdateSpaceStock_VentanaCompleta: espacio SND con una reserva parcial;
// cada día del horizonte produce una entrada y una escritura al cache.
func TestUpdateSpaceStock_VentanaCompleta(t *testing.T) {
	moveOut := day(5)
	spaces := &fakeSpaceRepo{spaces: map[int64]*entity.Space{
		7: {
			ID: 7, SiteID: 3, TotalUnits: 3,
			Bookings: []*entity.Booking{
				{MoveInDate: day(-5), MoveOutDate: &moveOut, Status: entity.BookingActive},
			},
		},
	}}
	cache := &fakeCache{}
	uc := newTestUseCase(spaces, &fakeSiteRepo{}, cache)

	stocks, err := uc.UpdateSpaceStock(context.Background(), 7, 3, entity.StockSND, UpdateOptions{})

	require.NoError(t, err)
	require.Len(t, stocks, horizonDays, "todos los días del horizonte tienen stock > 0")
	assert.Len(t, cache.upserts, horizonDays, "una escritura por día con stock")

	// La reserva ocupa hasta move_out + 3 días de limpieza (exclusivo).
	assert.Equal(t, 2, stocks[0].Entry.AvailableUnits, "día ocupado: 3 - 1 reserva")
	assert.Equal(t, 3, stocks[8].Entry.AvailableUnits, "tras la limpieza vuelve la capacidad completa")
	assert.Nil(t, stocks[0].Entry.AvailableUntil, "con capacidad sobrante no hay horizonte")

	// El rango pedido al booking store es la ventana rodante completa.
	assert.Equal(t, today, spaces.gotFrom)
	assert.Equal(t, today.AddDate(0, 1, 0), spaces.gotTo)
}

// TestUpdateSpaceStock_DiasSinStockSeOmiten: ausencia significa cero; los días
// a cero no aparecen en el resultado ni en el cache.
func TestUpdateSpaceStock_DiasSinStockSeOmiten(t *testing.T) {
	spaces := &fakeSpaceRepo{spaces: map[int64]*entity.Space{
		7: {
			ID: 7, SiteID: 3, TotalUnits: 1,
			Bookings: []*entity.Booking{
				{MoveInDate: day(-1), Status: entity.BookingActive}, // abierta, ocupa todo
			},
		},
	}}
	cache := &fakeCache{}
	uc := newTestUseCase(spaces, &fakeSiteRepo{}, cache)

	stocks, err := uc.UpdateSpaceStock(context.Background(), 7, 3, entity.StockSND, UpdateOptions{})

	require.NoError(t, err)
	assert.Empty(t, stocks)
	assert.Empty(t, cache.upserts)
}

// TestUpdateSpaceStock_OnlyReturn: se devuelve el cálculo completo sin tocar
// el cache.
func TestUpdateSpaceStock_OnlyReturn(t *testing.T) {
	spaces := &fakeSpaceRepo{spaces: map[int64]*entity.Space{
		7: {ID: 7, SiteID: 3, TotalUnits: 2},
	}}
	cache := &fakeCache{}
	uc := newTestUseCase(spaces, &fakeSiteRepo{}, cache)

	stocks, err := uc.UpdateSpaceStock(context.Background(), 7, 3, entity.StockSND, UpdateOptions{OnlyReturn: true})

	require.NoError(t, err)
	assert.Len(t, stocks, horizonDays)
	assert.Empty(t, cache.upserts, "only_return no escribe al cache")
}

// TestUpdateSpaceStock_Affiliate: no se consulta el booking store y todos los
// días publican la constante de afiliados.
func TestUpdateSpaceStock_Affiliate(t *testing.T) {
	spaces := &fakeSpaceRepo{}
	cache := &fakeCache{}
	uc := newTestUseCase(spaces, &fakeSiteRepo{}, cache)

	stocks, err := uc.UpdateSpaceStock(context.Background(), 7, 3, entity.StockAffiliate, UpdateOptions{})

	require.NoError(t, err)
	assert.Zero(t, spaces.calls, "el stock de afiliados no carga el espacio")
	require.Len(t, stocks, horizonDays)
	for _, s := range stocks {
		assert.Equal(t, 10, s.Entry.AvailableUnits)
		assert.Nil(t, s.Entry.AvailableUntil)
	}
}

// TestUpdateSpaceStock_HorizonteThirdParty: con la capacidad llena y una
// reserva futura, el horizonte es el día anterior al próximo move-in.
func TestUpdateSpaceStock_HorizonteThirdParty(t *testing.T) {
	moveOut := day(2)
	spaces := &fakeSpaceRepo{spaces: map[int64]*entity.Space{
		7: {
			ID: 7, SiteID: 3, TotalUnits: 1, AvailableUnits: 2,
			Bookings: []*entity.Booking{
				{MoveInDate: day(-2), MoveOutDate: &moveOut, Status: entity.BookingActive},
				{MoveInDate: day(10), Status: entity.BookingReserved},
			},
		},
	}}
	cache := &fakeCache{}
	uc := newTestUseCase(spaces, &fakeSiteRepo{}, cache)

	stocks, err := uc.UpdateSpaceStock(context.Background(), 7, 3, entity.StockThirdParty, UpdateOptions{OnlyReturn: true})

	require.NoError(t, err)
	require.NotEmpty(t, stocks)

	first := stocks[0]
	assert.Equal(t, 2, first.Entry.AvailableUnits, "el modo de terceros publica available_units tal cual")
	require.NotNil(t, first.Entry.AvailableUntil, "capacidad llena con reserva futura produce horizonte")
	assert.Equal(t, day(9), *first.Entry.AvailableUntil)
}

// ──────────────────────────────────────────────────────────────────────────────
// UpdateSpaceStockBySites
// ──────────────────────────────────────────────────────────────────────────────

// TestUpdateSpaceStockBySites_MezclaDeModos: un sitio de afiliado (camino
// concurrente) y uno propio (camino secuencial) acaban mezclados en un único
// upsert masivo.
func TestUpdateSpaceStockBySites_MezclaDeModos(t *testing.T) {
	sites := &fakeSiteRepo{sites: []*entity.Site{
		{
			ID: 1, StockManagementType: entity.StockAffiliate,
			Spaces: []*entity.Space{{ID: 11, SiteID: 1}, {ID: 12, SiteID: 1}},
		},
		{
			ID: 2, StockManagementType: entity.StockSND,
			Spaces: []*entity.Space{{ID: 21, SiteID: 2}},
		},
	}}
	spaces := &fakeSpaceRepo{spaces: map[int64]*entity.Space{
		21: {ID: 21, SiteID: 2, TotalUnits: 2},
	}}
	cache := &fakeCache{}
	uc := newTestUseCase(spaces, sites, cache)

	result, err := uc.UpdateSpaceStockBySites(context.Background(), []int64{1, 2})

	require.NoError(t, err)
	require.Len(t, result, 2, "ambos sitios deben aparecer en el resultado")
	assert.Len(t, result[1], horizonDays, "el sitio de afiliado cubre todo el horizonte")
	assert.Len(t, result[2], horizonDays)

	require.Len(t, cache.bulkCalls, 1, "una única escritura masiva")
	partitions := cache.bulkCalls[0]
	assert.Len(t, partitions, 2*horizonDays, "una partición por sitio y día")

	var affiliatePartitions int
	for _, p := range partitions {
		if p.SiteID == 1 {
			affiliatePartitions++
			assert.Len(t, p.Entries, 2, "los dos espacios del afiliado comparten partición")
			assert.Equal(t, 10, p.Entries[0].AvailableUnits)
		}
	}
	assert.Equal(t, horizonDays, affiliatePartitions)
	assert.Empty(t, cache.upserts, "el recálculo masivo no hace escrituras incrementales")
}

func TestUpdateSpaceStockBySites_SinSitios(t *testing.T) {
	cache := &fakeCache{}
	uc := newTestUseCase(&fakeSpaceRepo{}, &fakeSiteRepo{}, cache)

	result, err := uc.UpdateSpaceStockBySites(context.Background(), []int64{9})

	require.NoError(t, err)
	assert.Empty(t, result)
	assert.Empty(t, cache.bulkCalls, "sin sitios no hay nada que escribir")
}

// ──────────────────────────────────────────────────────────────────────────────
// FilterStock
// ──────────────────────────────────────────────────────────────────────────────

func TestFilterStock_FiltraUnidadesYHorizonte(t *testing.T) {
	until := day(10)
	cache := &fakeCache{mgetResult: [][]entity.StockEntry{
		{
			{SpaceID: 11, SiteID: 1, AvailableUnits: 2},
			{SpaceID: 12, SiteID: 1, AvailableUnits: 0},
			{SpaceID: 13, SiteID: 1, AvailableUnits: 1, AvailableUntil: &until},
		},
		nil, // sitio sin partición (miss o payload corrupto)
	}}
	uc := newTestUseCase(&fakeSpaceRepo{}, &fakeSiteRepo{}, cache)

	moveOut := day(15)
	sitesOut, err := uc.FilterStock(context.Background(), []int64{1, 2}, day(0), &moveOut)

	require.NoError(t, err)
	require.Len(t, sitesOut, 1, "el sitio sin datos se descarta")
	require.Len(t, sitesOut[0].Spaces, 1)
	assert.Equal(t, int64(11), sitesOut[0].Spaces[0].ID,
		"sobreviven solo espacios con unidades y horizonte que cubra el move-out")
}

// TestFilterStock_SinMoveOut: sin fecha de salida el horizonte no filtra.
func TestFilterStock_SinMoveOut(t *testing.T) {
	until := day(10)
	cache := &fakeCache{mgetResult: [][]entity.StockEntry{
		{{SpaceID: 13, SiteID: 1, AvailableUnits: 1, AvailableUntil: &until}},
	}}
	uc := newTestUseCase(&fakeSpaceRepo{}, &fakeSiteRepo{}, cache)

	sitesOut, err := uc.FilterStock(context.Background(), []int64{1}, day(0), nil)

	require.NoError(t, err)
	require.Len(t, sitesOut, 1)
	assert.Len(t, sitesOut[0].Spaces, 1)
}

// TestFilterStock_MoveOutDentroDelHorizonte: el espacio se conserva si el
// move-out es estrictamente anterior al horizonte publicado.
func TestFilterStock_MoveOutDentroDelHorizonte(t *testing.T) {
	until := day(10)
	cache := &fakeCache{mgetResult: [][]entity.StockEntry{
		{{SpaceID: 13, SiteID: 1, AvailableUnits: 1, AvailableUntil: &until}},
	}}
	uc := newTestUseCase(&fakeSpaceRepo{}, &fakeSiteRepo{}, cache)

	moveOut := day(9)
	sitesOut, err := uc.FilterStock(context.Background(), []int64{1}, day(0), &moveOut)

	require.NoError(t, err)
	require.Len(t, sitesOut, 1)

	// El mismo día del horizonte ya no vale.
	moveOut = day(10)
	sitesOut, err = uc.FilterStock(context.Background(), []int64{1}, day(0), &moveOut)
	require.NoError(t, err)
	assert.Empty(t, sitesOut)
}

func TestFilterStock_FalloDeTransporte(t *testing.T) {
	cache := &fakeCache{mgetErr: assert.AnError}
	uc := newTestUseCase(&fakeSpaceRepo{}, &fakeSiteRepo{}, cache)

	_, err := uc.FilterStock(context.Background(), []int64{1}, day(0), nil)

	assert.Error(t, err, "un fallo del cache sí se propaga al llamador")
}
