// Package queue consume los dos flujos de eventos del servicio: cambios de
// stock (reservas, espacios) y refrescos del índice de búsqueda (sitios).
package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/storenextdoor/stock-service/internal/application/ports"
	appstock "github.com/storenextdoor/stock-service/internal/application/stock"
	"github.com/storenextdoor/stock-service/internal/domain/entity"
	"github.com/storenextdoor/stock-service/internal/infrastructure/rabbitmq"
	"github.com/storenextdoor/stock-service/pkg/config"
	"github.com/storenextdoor/stock-service/pkg/logger"
)

const consumerTag = "snd-stock-service-consumer"

// defaultCreateDelay espera antes de sincronizar un sitio recién creado, para
// dar tiempo a que la transacción del API de origen quede confirmada.
const defaultCreateDelay = 10 * time.Second

// StockService operaciones del servicio de stock que invoca el listener.
type StockService interface {
	UpdateSpaceStock(ctx context.Context, spaceID, siteID int64, t entity.StockManagementType, opts appstock.UpdateOptions) ([]appstock.DayStock, error)
	UpdateSpaceStockBySites(ctx context.Context, siteIDs []int64) (appstock.SiteStockMap, error)
}

// event payload de ambas colas. Los campos ausentes quedan en cero; la forma
// presente decide el despacho.
type event struct {
	SiteID              int64                      `json:"site_id"`
	SiteIDs             []int64                    `json:"site_ids"`
	SpaceID             int64                      `json:"space_id"`
	StockManagementType entity.StockManagementType `json:"stock_management_type"`
	IsCreated           bool                       `json:"is_created"`
	IsDeleted           bool                       `json:"is_deleted"`
}

// Listener despachador de eventos. Cada mensaje se confirma (ack) justo
// después de despachar el trabajo: el recálculo es idempotente y el productor
// reemite ante cambios posteriores, así que la cola nunca se bloquea por un
// recálculo lento.
type Listener struct {
	stock  StockService
	search ports.SearchSync
	log    *logger.Logger

	// CreateDelay espera antes del upsert de un sitio recién creado.
	CreateDelay time.Duration
}

// NewListener construye el despachador.
func NewListener(stock StockService, search ports.SearchSync, log *logger.Logger) *Listener {
	return &Listener{
		stock:       stock,
		search:      search,
		log:         log,
		CreateDelay: defaultCreateDelay,
	}
}

// Subscribe abre los dos consumidores y arranca sus bucles de consumo.
func (l *Listener) Subscribe(ctx context.Context, broker *rabbitmq.Broker, cfg config.RabbitMQConfig) error {
	esMsgs, err := broker.Consume(cfg.UpdateESQueue, consumerTag+"-es")
	if err != nil {
		return err
	}
	stockMsgs, err := broker.Consume(cfg.UpdateStockQueue, consumerTag+"-stock")
	if err != nil {
		return err
	}

	go l.run(ctx, cfg.UpdateESQueue, esMsgs, l.handleIndexEvent)
	go l.run(ctx, cfg.UpdateStockQueue, stockMsgs, l.handleStockEvent)

	l.log.Info().
		Str("stock_queue", cfg.UpdateStockQueue).
		Str("es_queue", cfg.UpdateESQueue).
		Msg("suscrito a las colas de eventos")
	return nil
}

// run bucle de consumo: despacha cada mensaje en su propia goroutine y
// confirma inmediatamente.
func (l *Listener) run(ctx context.Context, queue string, msgs <-chan amqp.Delivery, handle func(ctx context.Context, corrID string, body []byte)) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				l.log.Warn().Str("queue", queue).Msg("canal de consumo cerrado")
				return
			}
			corrID := uuid.NewString()
			l.log.Info().Str("queue", queue).Str("correlation_id", corrID).Msg("mensaje recibido")

			go handle(ctx, corrID, msg.Body)

			if err := msg.Ack(false); err != nil {
				l.log.Error().Err(err).Str("correlation_id", corrID).Msg("fallo al confirmar mensaje")
			}
		}
	}
}

// handleStockEvent despacha eventos de la cola de stock: lista de sitios ->
// recálculo masivo; espacio suelto -> recálculo de espacio; otra forma -> se
// registra y se descarta.
func (l *Listener) handleStockEvent(ctx context.Context, corrID string, body []byte) {
	var data event
	if err := json.Unmarshal(body, &data); err != nil {
		l.log.Error().Err(err).Str("correlation_id", corrID).Msg("payload de stock ilegible, descartado")
		return
	}

	switch {
	case len(data.SiteIDs) > 0:
		if _, err := l.stock.UpdateSpaceStockBySites(ctx, data.SiteIDs); err != nil {
			l.log.Error().Err(err).Str("correlation_id", corrID).Msg("fallo en recálculo masivo")
		}
	case data.SpaceID != 0:
		t := data.StockManagementType
		if t == "" {
			t = entity.StockSND
		}
		if _, err := l.stock.UpdateSpaceStock(ctx, data.SpaceID, data.SiteID, t, appstock.UpdateOptions{}); err != nil {
			l.log.Error().Err(err).Str("correlation_id", corrID).Msg("fallo en recálculo de espacio")
		}
	default:
		l.log.Info().Str("correlation_id", corrID).RawJSON("payload", body).Msg("evento de stock no atendido")
	}
}

// handleIndexEvent despacha eventos de la cola de sincronización del índice.
// El alta de sitio se difiere CreateDelay; borrado y cambio se atienden al
// momento; otra forma se registra y se descarta.
func (l *Listener) handleIndexEvent(ctx context.Context, corrID string, body []byte) {
	var data event
	if err := json.Unmarshal(body, &data); err != nil {
		l.log.Error().Err(err).Str("correlation_id", corrID).Msg("payload de índice ilegible, descartado")
		return
	}

	switch {
	case data.SiteID != 0 && data.IsCreated:
		siteID := data.SiteID
		time.AfterFunc(l.CreateDelay, func() {
			l.log.Info().Int64("site_id", siteID).Str("correlation_id", corrID).Msg("sincronizando sitio recién creado")
			if err := l.search.UpsertSite(context.Background(), siteID); err != nil {
				l.log.Error().Err(err).Int64("site_id", siteID).Str("correlation_id", corrID).Msg("fallo al indexar sitio")
			}
		})
	case data.SiteID != 0 && data.IsDeleted:
		if err := l.search.DeleteSite(ctx, data.SiteID); err != nil {
			l.log.Error().Err(err).Int64("site_id", data.SiteID).Str("correlation_id", corrID).Msg("fallo al borrar sitio del índice")
		}
	case data.SiteID != 0:
		if err := l.search.UpsertSite(ctx, data.SiteID); err != nil {
			l.log.Error().Err(err).Int64("site_id", data.SiteID).Str("correlation_id", corrID).Msg("fallo al actualizar sitio en el índice")
		}
	default:
		l.log.Info().Str("correlation_id", corrID).RawJSON("payload", body).Msg("evento de índice no atendido")
	}
}
