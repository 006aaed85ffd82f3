package ports

import (
	"context"
	"time"

	"github.com/storenextdoor/stock-service/internal/domain/entity"
)

// StockPartition valor completo de una partición del cache: todas las entradas
// de stock de un sitio para un día. Date es el día crudo usado para derivar la
// clave y la expiración.
type StockPartition struct {
	SiteID  int64
	Date    time.Time
	Entries []entity.StockEntry
}

// StockCache puerto del cache de stock particionado por (sitio, día).
// Las particiones expiran solas al día siguiente de la fecha que representan;
// nunca se borran explícitamente, solo se sobreescriben.
type StockCache interface {
	// Get devuelve las entradas de la partición. Miss o payload corrupto
	// degradan a lista vacía, nunca a error.
	Get(ctx context.Context, siteID int64, date time.Time) ([]entity.StockEntry, error)

	// UpsertOne mezcla la entrada de un espacio dentro de su partición:
	// lee el valor actual, reemplaza la entrada del espacio y reescribe con la
	// expiración recalculada. Un fallo de lectura se propaga sin escribir,
	// para no pisar las entradas del resto de espacios.
	UpsertOne(ctx context.Context, siteID, spaceID int64, date time.Time, entry entity.StockEntry) error

	// UpsertBulk reemplaza cada partición al completo por el conjunto recién
	// calculado. No se mezcla con lo almacenado: el recálculo masivo gana a
	// cualquier actualización concurrente de espacios sueltos sobre la misma
	// partición (last-writer-wins a nivel de partición).
	UpsertBulk(ctx context.Context, partitions []StockPartition) error

	// MGet lee en lote las particiones de varios sitios para un mismo día.
	// El resultado conserva el orden de siteIDs; los slots sin datos o con
	// payload corrupto quedan vacíos.
	MGet(ctx context.Context, siteIDs []int64, date time.Time) ([][]entity.StockEntry, error)
}
