// Package pdf implementa la salida PDF del reporte de período del ledger
// (saldo inicial, entradas, salidas y saldo final por producto+tamaño).
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

	ledgerapp "github.com/p-perotti/gobrewery-sub000/internal/application/ledger"
	"github.com/p-perotti/gobrewery-sub000/internal/application/dto"
	"github.com/p-perotti/gobrewery-sub000/internal/domain/entity"
)

var _ ledgerapp.ReportPDFGenerator = (*MarotoReportGenerator)(nil)

var (
	colorPrimary = &props.Color{Red: 120, Green: 70, Blue: 20}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// MarotoReportGenerator implementa ledger.ReportPDFGenerator usando Maroto v2.
type MarotoReportGenerator struct{}

// NewMarotoReportGenerator construye el generador.
func NewMarotoReportGenerator() *MarotoReportGenerator { return &MarotoReportGenerator{} }

// GeneratePeriodReportPDF genera el PDF del reporte de período y devuelve sus bytes.
func (g *MarotoReportGenerator) GeneratePeriodReportPDF(
	_ context.Context,
	kind string,
	from, to time.Time,
	rows []dto.PeriodReportRow,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de movimientos", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(kind, from, to))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	for _, r := range rows {
		m.AddRows(detailRow(r))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(len(rows)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func kindLabel(kind string) string {
	if kind == entity.LedgerKindStock {
		return "Stock"
	}
	return "Inventario"
}

func headerRow(kind string, from, to time.Time) core.Row {
	rango := fmt.Sprintf("%s — %s", from.Format("02/01/2006"), to.Format("02/01/2006"))
	return row.New(14).Add(
		col.New(8).Add(
			text.New("Reporte de movimientos de "+kindLabel(kind), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(4).Add(
			text.New("Período: "+rango, props.Text{
				Size: 9, Top: 3, Align: align.Right, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	header := func(al align.Type) props.Text {
		return props.Text{Style: fontstyle.Bold, Size: 9, Align: al, Top: 1}
	}
	return row.New(8).Add(
		col.New(3).Add(text.New("Producto", header(align.Left))),
		col.New(2).Add(text.New("Tamaño", header(align.Left))),
		col.New(2).Add(text.New("Inicial", header(align.Right))),
		col.New(1).Add(text.New("Entradas", header(align.Right))),
		col.New(2).Add(text.New("Salidas", header(align.Right))),
		col.New(2).Add(text.New("Final", header(align.Right))),
	)
}

func detailRow(r dto.PeriodReportRow) core.Row {
	cell := func(al align.Type) props.Text {
		return props.Text{Size: 8, Align: al, Top: 1}
	}
	size := ""
	if r.SizeID != nil {
		size = *r.SizeID
	}
	return row.New(6).Add(
		col.New(3).Add(text.New(r.ProductID, cell(align.Left))),
		col.New(2).Add(text.New(size, cell(align.Left))),
		col.New(2).Add(text.New(r.Initial.String(), cell(align.Right))),
		col.New(1).Add(text.New(r.Inward.String(), cell(align.Right))),
		col.New(2).Add(text.New(r.Outward.String(), cell(align.Right))),
		col.New(2).Add(text.New(r.Final.String(), cell(align.Right))),
	)
}

func footerRow(total int) core.Row {
	return row.New(8).Add(
		col.New(12).Add(
			text.New(fmt.Sprintf("%d claves reportadas", total), props.Text{
				Size: 8, Color: colorGray, Top: 2,
			}),
		),
	)
}
