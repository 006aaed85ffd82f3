package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/storenextdoor/stock-service/internal/application/ports"
	"github.com/storenextdoor/stock-service/internal/domain/entity"
	domstock "github.com/storenextdoor/stock-service/internal/domain/stock"
	"github.com/storenextdoor/stock-service/pkg/logger"
)

var _ ports.StockCache = (*StockCache)(nil)

// StockCache implementación del cache de stock sobre Redis.
// Cada clave site:{id}:{YYYYMMDD} guarda el JSON de las entradas del sitio
// para ese día, con expiración al día siguiente de la fecha representada.
type StockCache struct {
	rdb *redis.Client
	log *logger.Logger

	now func() time.Time
}

// NewStockCache construye el adaptador sobre el cliente compartido.
func NewStockCache(rdb *redis.Client, log *logger.Logger) *StockCache {
	return &StockCache{rdb: rdb, log: log, now: time.Now}
}

// siteKey deriva la clave de la partición (sitio, día).
func siteKey(siteID int64, date time.Time) string {
	return fmt.Sprintf("site:%d:%s", siteID, domstock.KeyDate(date))
}

// ttlUntil expiración de una partición: del instante actual al día siguiente
// de la fecha representada. Garantiza que nunca se sirva stock de un día pasado.
func ttlUntil(date, now time.Time) time.Duration {
	return date.AddDate(0, 0, 1).Sub(now)
}

// decodeEntries parsea el payload de una partición. Un payload corrupto
// degrada a vacío: el dato se regenerará en el próximo recálculo.
func decodeEntries(raw string) []entity.StockEntry {
	var entries []entity.StockEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil
	}
	return entries
}

// Get devuelve las entradas de la partición; miss o payload corrupto -> vacío.
func (c *StockCache) Get(ctx context.Context, siteID int64, date time.Time) ([]entity.StockEntry, error) {
	raw, err := c.rdb.Get(ctx, siteKey(siteID, date)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("get partición %s: %w", siteKey(siteID, date), err)
	}
	return decodeEntries(raw), nil
}

// mergeEntry sustituye la entrada del espacio dentro de la partición,
// conservando las del resto de espacios. Garantiza a lo sumo una entrada por
// espacio.
func mergeEntry(entries []entity.StockEntry, spaceID int64, entry entity.StockEntry) []entity.StockEntry {
	merged := make([]entity.StockEntry, 0, len(entries)+1)
	for _, e := range entries {
		if e.SpaceID != spaceID {
			merged = append(merged, e)
		}
	}
	return append(merged, entry)
}

// UpsertOne mezcla la entrada de un espacio en su partición: lee el valor
// actual, sustituye la entrada del espacio y reescribe con la expiración
// recalculada. Si la lectura falla se propaga el error sin escribir: sin el
// valor actual, reescribir borraría las entradas hermanas de la partición.
// La secuencia leer-modificar-escribir no es atómica; dos escritores
// concurrentes sobre la misma partición pueden pisarse (el recálculo
// idempotente desde la cola lo corrige en el siguiente evento).
func (c *StockCache) UpsertOne(ctx context.Context, siteID, spaceID int64, date time.Time, entry entity.StockEntry) error {
	key := siteKey(siteID, date)

	raw, err := c.rdb.Get(ctx, key).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("get partición %s: %w", key, err)
	}

	merged := mergeEntry(decodeEntries(raw), spaceID, entry)

	return c.write(ctx, key, merged, ttlUntil(date, c.now()))
}

// UpsertBulk reemplaza cada partición al completo por el conjunto recién
// calculado (sin mezclar con lo almacenado).
func (c *StockCache) UpsertBulk(ctx context.Context, partitions []ports.StockPartition) error {
	now := c.now()
	for _, p := range partitions {
		if len(p.Entries) == 0 {
			continue
		}
		if err := c.write(ctx, siteKey(p.SiteID, p.Date), p.Entries, ttlUntil(p.Date, now)); err != nil {
			return err
		}
	}
	return nil
}

// MGet lee en lote las particiones de varios sitios para un mismo día,
// conservando el orden de siteIDs. Slots ausentes o corruptos quedan vacíos.
func (c *StockCache) MGet(ctx context.Context, siteIDs []int64, date time.Time) ([][]entity.StockEntry, error) {
	keys := make([]string, 0, len(siteIDs))
	for _, id := range siteIDs {
		keys = append(keys, siteKey(id, date))
	}

	values, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget particiones: %w", err)
	}

	out := make([][]entity.StockEntry, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		out[i] = decodeEntries(raw)
	}
	return out, nil
}

func (c *StockCache) write(ctx context.Context, key string, entries []entity.StockEntry, ttl time.Duration) error {
	if ttl <= 0 {
		// La partición ya habría expirado; no tiene sentido escribirla.
		c.log.Debug().Str("key", key).Msg("partición de un día pasado, no se escribe")
		return nil
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("serializar partición %s: %w", key, err)
	}
	if err := c.rdb.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("set partición %s: %w", key, err)
	}
	return nil
}
