// Package pdf implementa la generación de la Guía de Traslado entre
// sucursales (documento que acompaña físicamente la mercadería).
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: GUÍA DE TRASLADO  │  N° Traslado + Fecha de envío  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ORIGEN: sucursal + dirección                                │
//	│  DESTINO: sucursal + dirección                               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Producto | Lote | Vence                       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FIRMAS: Bodeguero receptor / Controlador de inventario      │
//	└─────────────────────────────────────────────────────────────┘
//
// La guía NO incluye los códigos de verificación: viajan por canales
// separados al bodeguero y al controlador del destino.
package pdf

import (
	"context"
	"fmt"

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

	apptransfer "github.com/jhoicas/Farmacia-api/internal/application/transfer"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

var _ apptransfer.NoteGenerator = (*TransferNoteGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 96, Blue: 72}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// TransferNoteGenerator implementa transfer.NoteGenerator usando Maroto v2.
type TransferNoteGenerator struct{}

// NewTransferNoteGenerator construye el generador.
func NewTransferNoteGenerator() *TransferNoteGenerator { return &TransferNoteGenerator{} }

// GenerateTransferNote genera el PDF de la guía y devuelve sus bytes.
func (g *TransferNoteGenerator) GenerateTransferNote(
	_ context.Context,
	transfer *entity.Transfer,
	source, target *entity.Branch,
	products map[string]*entity.Product,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Guía de Traslado", true).
		WithAuthor(source.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(transfer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(branchRow("ORIGEN", source))
	m.AddRows(branchRow("DESTINO", target))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableItemRows(transfer, products) {
		m.AddRows(r)
	}

	if transfer.Notes != "" {
		m.AddRows(line.NewRow(2))
		m.AddRows(notesRow(transfer.Notes))
	}

	m.AddRows(line.NewRow(6))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(signatureRow())

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar guía de traslado: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título (izq) y N° de traslado + fecha de envío (der).
func headerRow(transfer *entity.Transfer) core.Row {
	fecha := transfer.DateSent.Format("02/01/2006")

	return row.New(18).Add(
		col.New(7).Add(
			text.New("GUÍA DE TRASLADO ENTRE SUCURSALES", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Estado: "+string(transfer.Status), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("TRASLADO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(shortID(transfer.ID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha de envío: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// branchRow: datos de una sucursal (origen o destino).
func branchRow(label string, branch *entity.Branch) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New(label, props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s (%s)   |   %s   |   Tel: %s",
				branch.Name, branch.Code,
				nonEmpty(branch.Address, "—"),
				nonEmpty(branch.Phone, "—"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	header := props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}
	return row.New(7).Add(
		col.New(2).Add(text.New("Cantidad", header)),
		col.New(6).Add(text.New("Producto", header)),
		col.New(2).Add(text.New("Lote", header)),
		col.New(2).Add(text.New("Vence", header)),
	)
}

// tableItemRows: una fila por línea del traslado.
func tableItemRows(transfer *entity.Transfer, products map[string]*entity.Product) []core.Row {
	cell := props.Text{Size: 8, Top: 1}
	rows := make([]core.Row, 0, len(transfer.Items))
	for _, it := range transfer.Items {
		name := it.ProductID
		if p, ok := products[it.ProductID]; ok {
			name = fmt.Sprintf("%s — %s", p.SKU, p.Name)
		}
		rows = append(rows, row.New(6).Add(
			col.New(2).Add(text.New(it.Quantity.String(), cell)),
			col.New(6).Add(text.New(name, cell)),
			col.New(2).Add(text.New(it.BatchNumber, cell)),
			col.New(2).Add(text.New(it.ExpiryDate.Format("02/01/2006"), cell)),
		))
	}
	return rows
}

// notesRow: observaciones del despacho.
func notesRow(notes string) core.Row {
	return row.New(10).Add(
		col.New(12).Add(
			text.New("OBSERVACIONES", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(notes, props.Text{Size: 8, Top: 6, Color: colorGray}),
		),
	)
}

// signatureRow: espacios de firma para los dos verificadores del destino.
func signatureRow() core.Row {
	sig := props.Text{Size: 8, Top: 12, Align: align.Center, Color: colorGray}
	return row.New(18).Add(
		col.New(6).Add(
			text.New("_____________________________", props.Text{Size: 8, Top: 8, Align: align.Center}),
			text.New("Bodeguero receptor", sig),
		),
		col.New(6).Add(
			text.New("_____________________________", props.Text{Size: 8, Top: 8, Align: align.Center}),
			text.New("Controlador de inventario", sig),
		),
	)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// shortID devuelve el prefijo del UUID para mostrar en el documento.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
