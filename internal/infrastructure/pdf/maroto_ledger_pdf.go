// Package pdf genera la versión imprimible del historial de bajas y movimientos.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título  │  Fecha de emisión + cantidad de registros │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Tipo | Artículo | Depósito | Lote | Cant |   │
//	│         Antes -> Después                                      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: unidades dadas de baja / movidas                   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	appinventory "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

var _ appinventory.LedgerPDFGenerator = (*MarotoLedgerPDF)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 160, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoLedgerPDF implementa inventory.LedgerPDFGenerator usando Maroto v2.
type MarotoLedgerPDF struct {
	now func() time.Time
}

// NewMarotoLedgerPDF construye el generador.
func NewMarotoLedgerPDF() *MarotoLedgerPDF { return &MarotoLedgerPDF{now: time.Now} }

// GenerateLedgerPDF genera el PDF y devuelve sus bytes.
func (g *MarotoLedgerPDF) GenerateLedgerPDF(_ context.Context, title string, entries []*entity.LedgerEntry) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(8).WithRightMargin(8).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle(title, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(title, g.now(), len(entries)))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	for _, r := range entryRows(entries) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(summaryRow(entries))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(title string, issued time.Time, count int) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(4).Add(
			text.New("Emitido: "+issued.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
			text.New(fmt.Sprintf("%d registros", count), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 7.5, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 2, align.Left),
		h("Tipo", 1, align.Left),
		h("Artículo", 3, align.Left),
		h("Depósito", 2, align.Left),
		h("Lote / Venc.", 2, align.Left),
		h("Cant.", 1, align.Right),
		h("Lote antes -> después", 1, align.Right),
	)
}

// entryRows: una fila por registro; los movimientos muestran origen -> destino.
func entryRows(entries []*entity.LedgerEntry) []core.Row {
	result := make([]core.Row, 0, len(entries))
	for _, e := range entries {
		typeColor := colorAlert
		warehouse := e.Warehouse
		if e.IsTransfer() {
			typeColor = colorPrimary
			dest := "?"
			if e.DestinationWarehouse != nil {
				dest = *e.DestinationWarehouse
			}
			warehouse = e.OriginWarehouse + " -> " + dest
		}
		lot := nonEmpty(e.Lot, "-")
		if e.Expiration != "" {
			lot += " / " + e.Expiration
		}
		result = append(result, row.New(9).Add(
			col.New(2).Add(
				text.New(e.Date.Format("02/01/2006 15:04"), props.Text{Size: 7, Top: 1, Left: 1}),
				text.New(nonEmpty(e.User, "-"), props.Text{Size: 6.5, Top: 5, Left: 1, Color: colorGray}),
			),
			col.New(1).Add(text.New(e.RecordType, props.Text{
				Style: fontstyle.Bold, Size: 7, Top: 1, Color: typeColor,
			})),
			col.New(3).Add(
				text.New(e.Code+" · "+e.Name, props.Text{Size: 7, Top: 1, Left: 1}),
				text.New(e.Reason, props.Text{Size: 6.5, Top: 5, Left: 1, Color: colorGray}),
			),
			col.New(2).Add(text.New(warehouse, props.Text{Size: 7, Top: 1, Left: 1})),
			col.New(2).Add(text.New(lot, props.Text{Size: 7, Top: 1, Left: 1})),
			col.New(1).Add(text.New(inventory.FormatQuantity(e.Quantity), props.Text{
				Style: fontstyle.Bold, Size: 7, Align: align.Right, Top: 1, Right: 1,
			})),
			col.New(1).Add(text.New(
				inventory.FormatQuantity(e.QuantityBeforeLot)+" -> "+inventory.FormatQuantity(e.QuantityAfterLot),
				props.Text{Size: 7, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

func summaryRow(entries []*entity.LedgerEntry) core.Row {
	deducted, moved := decimal.Zero, decimal.Zero
	for _, e := range entries {
		if e.IsTransfer() {
			moved = moved.Add(e.Quantity)
		} else {
			deducted = deducted.Add(e.Quantity)
		}
	}
	return row.New(12).Add(
		col.New(6),
		col.New(6).Add(
			text.New("Unidades dadas de baja: "+inventory.FormatQuantity(deducted), props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 2, Right: 1,
			}),
			text.New("Unidades movidas: "+inventory.FormatQuantity(moved), props.Text{
				Size: 9, Align: align.Right, Top: 7, Right: 1, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
