package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	appinventory "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Tipos de evento publicados en el topic del historial.
const (
	EventTypeDeduction = "stock.deduction"
	EventTypeTransfer  = "stock.transfer"
)

var _ appinventory.LedgerPublisher = (*Publisher)(nil)

// LedgerEvent es el JSON publicado por cada registro confirmado del historial.
type LedgerEvent struct {
	EventID              string          `json:"event_id"`
	EventType            string          `json:"event_type"`
	OperationID          string          `json:"operation_id"`
	LedgerID             int64           `json:"ledger_id"`
	User                 string          `json:"user"`
	Code                 string          `json:"code"`
	Name                 string          `json:"name"`
	Quantity             decimal.Decimal `json:"quantity"`
	Reason               string          `json:"reason,omitempty"`
	Warehouse            string          `json:"warehouse"`
	OriginWarehouse      string          `json:"origin_warehouse"`
	DestinationWarehouse *string         `json:"destination_warehouse"`
	Lot                  string          `json:"lot"`
	Expiration           string          `json:"expiration"`
	QuantityBeforeLot    decimal.Decimal `json:"quantity_before_lot"`
	QuantityAfterLot     decimal.Decimal `json:"quantity_after_lot"`
	TotalArticle         decimal.Decimal `json:"total_article"`
	TotalWarehouse       decimal.Decimal `json:"total_warehouse"`
	TotalMainWarehouse   decimal.Decimal `json:"total_main_warehouse"`
	OccurredAt           time.Time       `json:"occurred_at"`
}

// NewLedgerEvent arma el evento a partir del registro escrito.
func NewLedgerEvent(e *entity.LedgerEntry) LedgerEvent {
	evType := EventTypeDeduction
	if e.IsTransfer() {
		evType = EventTypeTransfer
	}
	return LedgerEvent{
		EventID:              e.OperationID,
		EventType:            evType,
		OperationID:          e.OperationID,
		LedgerID:             e.ID,
		User:                 e.User,
		Code:                 e.Code,
		Name:                 e.Name,
		Quantity:             e.Quantity,
		Reason:               e.Reason,
		Warehouse:            e.Warehouse,
		OriginWarehouse:      e.OriginWarehouse,
		DestinationWarehouse: e.DestinationWarehouse,
		Lot:                  e.Lot,
		Expiration:           e.Expiration,
		QuantityBeforeLot:    e.QuantityBeforeLot,
		QuantityAfterLot:     e.QuantityAfterLot,
		TotalArticle:         e.TotalArticle,
		TotalWarehouse:       e.TotalWarehouse,
		TotalMainWarehouse:   e.TotalMainWarehouse,
		OccurredAt:           e.Date,
	}
}

// Publisher envía los registros del historial a Kafka (clave = código de artículo,
// así los eventos de un mismo artículo conservan el orden en su partición).
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	log      zerolog.Logger
}

// NewPublisher crea el producer síncrono contra los brokers.
func NewPublisher(brokers []string, topic string, log zerolog.Logger) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.MaxMessageBytes = 1000000

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("crear producer Kafka: %w", err)
	}
	log.Info().Strs("brokers", brokers).Str("topic", topic).Msg("publicador Kafka inicializado")
	return NewPublisherWithProducer(producer, topic, log), nil
}

// NewPublisherWithProducer usa un producer ya construido (tests con sarama/mocks).
func NewPublisherWithProducer(producer sarama.SyncProducer, topic string, log zerolog.Logger) *Publisher {
	return &Publisher{producer: producer, topic: topic, log: log}
}

// PublishLedgerEntry publica el registro con el contexto de traza en los headers.
func (p *Publisher) PublishLedgerEntry(ctx context.Context, entry *entity.LedgerEntry) error {
	event := NewLedgerEvent(entry)

	ctx, span := otel.Tracer("stock-ledger/kafka").Start(ctx, "kafka.publish.ledger_entry",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", p.topic),
			attribute.String("event.type", event.EventType),
			attribute.String("event.id", event.EventID),
			attribute.String("article.code", event.Code),
		),
	)
	defer span.End()

	body, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "marshal")
		return fmt.Errorf("serializar evento: %w", err)
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	headers := []sarama.RecordHeader{
		{Key: []byte("event_type"), Value: []byte(event.EventType)},
		{Key: []byte("event_id"), Value: []byte(event.EventID)},
	}
	for k, v := range carrier {
		headers = append(headers, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic:   p.topic,
		Key:     sarama.StringEncoder(event.Code),
		Value:   sarama.ByteEncoder(body),
		Headers: headers,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send")
		return fmt.Errorf("enviar a Kafka: %w", err)
	}

	span.SetAttributes(
		attribute.Int("messaging.kafka.partition", int(partition)),
		attribute.Int64("messaging.kafka.offset", offset),
	)
	p.log.Debug().
		Str("event_id", event.EventID).
		Str("topic", p.topic).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("registro de historial publicado")
	return nil
}

// Close cierra el producer.
func (p *Publisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
