package rabbitmq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/storenextdoor/stock-service/pkg/config"
	"github.com/storenextdoor/stock-service/pkg/logger"
)

const exchangeType = "direct"

// Broker conexión y canal AMQP compartidos del proceso. Se construye una vez
// en el arranque y se inyecta por referencia a los consumidores.
type Broker struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	log  *logger.Logger
}

// Connect abre la conexión, declara el exchange direct y las dos colas del
// servicio (stock y sincronización del índice) con sus bindings.
func Connect(cfg config.RabbitMQConfig, log *logger.Logger) (*Broker, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("conectar a rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("crear canal: %w", err)
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, exchangeType, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declarar exchange %s: %w", cfg.Exchange, err)
	}

	for _, q := range []struct{ name, key string }{
		{cfg.UpdateStockQueue, cfg.UpdateStockKey},
		{cfg.UpdateESQueue, cfg.UpdateESKey},
	} {
		if _, err := ch.QueueDeclare(q.name, true, false, false, false, nil); err != nil {
			conn.Close()
			return nil, fmt.Errorf("declarar cola %s: %w", q.name, err)
		}
		if err := ch.QueueBind(q.name, q.key, cfg.Exchange, false, nil); err != nil {
			conn.Close()
			return nil, fmt.Errorf("bind cola %s: %w", q.name, err)
		}
	}

	b := &Broker{conn: conn, ch: ch, log: log}

	go func() {
		err := <-conn.NotifyClose(make(chan *amqp.Error, 1))
		if err != nil {
			log.Error().Err(err).Msg("conexión rabbitmq cerrada")
		}
	}()

	log.Info().Str("exchange", cfg.Exchange).Msg("conectado a rabbitmq")
	return b, nil
}

// Consume abre un consumidor con ack manual sobre la cola indicada.
func (b *Broker) Consume(queue, consumerTag string) (<-chan amqp.Delivery, error) {
	deliveries, err := b.ch.Consume(queue, consumerTag, false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consumir cola %s: %w", queue, err)
	}
	return deliveries, nil
}

// Close cierra canal y conexión.
func (b *Broker) Close() {
	if b.ch != nil {
		_ = b.ch.Close()
	}
	if b.conn != nil {
		_ = b.conn.Close()
	}
}
