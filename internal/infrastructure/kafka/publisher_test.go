package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func transferEntry() *entity.LedgerEntry {
	dest := "Generales"
	return &entity.LedgerEntry{
		ID: 7, OperationID: "op-1", User: "ana",
		Date: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Code: "1001", Name: "Reactivo Glucosa", Quantity: decimal.NewFromInt(4),
		RecordType: entity.RecordTypeTransfer, Warehouse: "Casa Central",
		OriginWarehouse: "Casa Central", DestinationWarehouse: &dest,
		QuantityBeforeLot: decimal.NewFromInt(10), QuantityAfterLot: decimal.NewFromInt(6),
	}
}

func TestPublishLedgerEntry_ClaveYCuerpo(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var ev LedgerEvent
		if err := json.Unmarshal(val, &ev); err != nil {
			return err
		}
		if ev.EventType != EventTypeTransfer || ev.OperationID != "op-1" {
			return errors.New("evento inesperado")
		}
		if ev.DestinationWarehouse == nil || *ev.DestinationWarehouse != "Generales" {
			return errors.New("destino faltante")
		}
		if !ev.Quantity.Equal(decimal.NewFromInt(4)) {
			return errors.New("cantidad incorrecta")
		}
		return nil
	})

	p := NewPublisherWithProducer(producer, "stock.ledger", zerolog.Nop())
	require.NoError(t, p.PublishLedgerEntry(context.Background(), transferEntry()))
	require.NoError(t, p.Close())
}

func TestPublishLedgerEntry_ErrorDelBroker(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewPublisherWithProducer(producer, "stock.ledger", zerolog.Nop())
	err := p.PublishLedgerEntry(context.Background(), transferEntry())
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func TestNewLedgerEvent_Baja(t *testing.T) {
	e := transferEntry()
	e.RecordType = entity.RecordTypeDeduction
	e.DestinationWarehouse = nil

	ev := NewLedgerEvent(e)
	assert.Equal(t, EventTypeDeduction, ev.EventType)
	assert.Equal(t, int64(7), ev.LedgerID)

	body, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"destination_warehouse":null`)
	assert.Contains(t, string(body), `"quantity":"4"`)
}
