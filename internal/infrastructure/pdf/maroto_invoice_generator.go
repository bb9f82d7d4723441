// Package pdf implementa la representación imprimible del rēķins:
// página A4 con cajas de emisor/comprador, tabla de líneas, totales por
// tipo de IVA, la suma en palabras y los datos bancarios de pago.
//
// Layout de la página:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  RĒĶINS Nr. NC-000123        │  Datums / Apmaksas termiņš   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PIEGĀDĀTĀJS (emisor)        │  PIRCĒJS (comprador)         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Nr | Apraksts | Mērv. | Daudz. | Cena | PVN | Summa │
//	│  ─────────────────────────────────────────────────────────  │
//	│  Summa bez PVN / PVN por tipo / KOPĀ APMAKSAI               │
//	│  SUMMA VĀRDIEM: ...                                          │
//	│  Datos de pago (banco, IBAN) + nota legal                    │
//	└─────────────────────────────────────────────────────────────┘
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
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tu-usuario/factura-lv/internal/domain/billing"
	"github.com/tu-usuario/factura-lv/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 30, Green: 60, Blue: 110}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// lvPrinter formatea enteros con separador de miles letón (espacio fino).
var lvPrinter = message.NewPrinter(language.Latvian)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoInvoiceGenerator genera el PDF del rēķins usando Maroto v2.
type MarotoInvoiceGenerator struct{}

// NewMarotoInvoiceGenerator construye el generador.
func NewMarotoInvoiceGenerator() *MarotoInvoiceGenerator { return &MarotoInvoiceGenerator{} }

// Generate genera el PDF y devuelve sus bytes. El desglose de IVA se
// recalcula desde las líneas: el PDF y el XML muestran siempre el mismo
// desglose.
func (g *MarotoInvoiceGenerator) Generate(_ context.Context, inv *entity.Invoice) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Rēķins "+displayNumber(inv), true).
		WithAuthor(inv.Issuer.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(inv))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partiesRow(inv))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableItemRows(inv.Items) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	for _, r := range totalsRows(inv) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(2))
	m.AddRows(amountInWordsRow(inv))
	for _, r := range footerRows(inv) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: número del rēķins (izq), fechas (der).
func headerRow(inv *entity.Invoice) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("RĒĶINS", props.Text{
				Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1,
			}),
			text.New("Nr. "+displayNumber(inv), props.Text{
				Style: fontstyle.Bold, Size: 11, Top: 9,
			}),
		),
		col.New(5).Add(
			text.New("Datums: "+inv.IssueDate.Format("02.01.2006."), props.Text{
				Size: 9, Align: align.Right, Top: 3, Color: colorGray,
			}),
			text.New("Apmaksas termiņš: "+inv.DueDate.Format("02.01.2006."), props.Text{
				Size: 9, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

// partiesRow: cajas de emisor y comprador lado a lado.
func partiesRow(inv *entity.Invoice) core.Row {
	return row.New(34).Add(
		partyCol("PIEGĀDĀTĀJS", inv.Issuer),
		partyCol("PIRCĒJS", inv.Buyer),
	)
}

func partyCol(title string, p entity.Party) core.Col {
	components := []core.Component{
		text.New(title, props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
		}),
		text.New(p.Name, props.Text{Style: fontstyle.Bold, Size: 9, Top: 6}),
	}
	top := 11.0
	addLine := func(s string) {
		if s == "" {
			return
		}
		components = append(components, text.New(s, props.Text{
			Size: 8, Top: top, Color: colorGray,
		}))
		top += 4.5
	}
	addLine("Reģ. Nr.: " + p.RegNumber)
	if p.VatNumber != "" {
		addLine("PVN Nr.: " + p.VatNumber)
	}
	addLine(p.LegalAddress + addressTail(p))
	if p.BankAccount != "" {
		addLine(p.BankName + " " + p.BankSwift)
		addLine("Konts: " + p.BankAccount)
	}
	return col.New(6).Add(components...)
}

func addressTail(p entity.Party) string {
	tail := ""
	if p.City != "" {
		tail += ", " + p.City
	}
	if p.PostalCode != "" {
		tail += ", " + p.PostalCode
	}
	return tail
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Nr.", 1, align.Center),
		h("Apraksts", 4, align.Left),
		h("Mērv.", 1, align.Center),
		h("Daudz.", 1, align.Right),
		h("Cena", 2, align.Right),
		h("PVN %", 1, align.Center),
		h("Summa", 2, align.Right),
	)
}

// tableItemRows: una fila por línea de la factura, en su orden.
func tableItemRows(items []entity.InvoiceItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for i, it := range items {
		result = append(result, row.New(7).Add(
			col.New(1).Add(cell(fmt.Sprintf("%d", i+1), align.Center)),
			col.New(4).Add(cell(it.Description, align.Left)),
			col.New(1).Add(cell(it.Unit, align.Center)),
			col.New(1).Add(cell(it.Quantity.String(), align.Right)),
			col.New(2).Add(cell(formatEUR(it.UnitPrice), align.Right)),
			col.New(1).Add(cell(it.VatRate.StringFixed(0), align.Center)),
			col.New(2).Add(cell(formatEUR(it.LineNet), align.Right)),
		))
	}
	return result
}

func cell(s string, a align.Type) core.Component {
	return text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1})
}

// totalsRows: neto, una fila de PVN por tipo presente, y total a pagar.
func totalsRows(inv *entity.Invoice) []core.Row {
	rows := []core.Row{
		totalLine("Summa bez PVN:", formatEUR(inv.TotalNet), false),
	}
	// Desglose por tipo desde las líneas ya redondeadas.
	for _, sub := range billing.BreakdownOf(inv.Items) {
		label := fmt.Sprintf("PVN %s%%:", sub.Rate.StringFixed(0))
		rows = append(rows, totalLine(label, formatEUR(sub.TaxAmount), false))
	}
	rows = append(rows, totalLine("KOPĀ APMAKSAI:", formatEUR(inv.TotalGross), true))
	return rows
}

func totalLine(label, value string, grand bool) core.Row {
	size := 9.0
	style := fontstyle.Bold
	color := colorGray
	if grand {
		size = 11
		color = colorPrimary
	}
	return row.New(6).Add(
		col.New(7),
		col.New(3).Add(text.New(label, props.Text{
			Style: style, Size: size, Align: align.Right, Color: color, Right: 2,
		})),
		col.New(2).Add(text.New(value, props.Text{
			Style: style, Size: size, Align: align.Right, Color: color, Right: 1,
		})),
	)
}

// amountInWordsRow: "SUMMA VĀRDIEM: ...".
func amountInWordsRow(inv *entity.Invoice) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New("SUMMA VĀRDIEM: "+AmountInWordsLV(inv.TotalGross)+".", props.Text{
			Style: fontstyle.Bold, Size: 9, Top: 2,
		}),
	))
}

// footerRows: datos de pago y nota legal.
func footerRows(inv *entity.Invoice) []core.Row {
	var rows []core.Row
	if inv.Issuer.BankAccount != "" {
		rows = append(rows, row.New(10).Add(col.New(12).Add(
			text.New("Apmaksa ar pārskaitījumu:", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2,
			}),
			text.New(fmt.Sprintf("%s %s, konts %s",
				inv.Issuer.BankName, inv.Issuer.BankSwift, inv.Issuer.BankAccount,
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		)))
	}
	if inv.Notes != "" {
		rows = append(rows, row.New(8).Add(col.New(12).Add(
			text.New("Piezīmes: "+inv.Notes, props.Text{Size: 8, Top: 2, Color: colorGray}),
		)))
	}
	rows = append(rows, row.New(8).Add(col.New(12).Add(
		text.New("Rēķins sagatavots elektroniski un ir derīgs bez paraksta.", props.Text{
			Size: 7, Color: colorGray, Top: 3,
		}),
	)))
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func displayNumber(inv *entity.Invoice) string {
	if inv.Number != "" {
		return inv.Number
	}
	return "MELNRAKSTS" // borrador sin número asignado
}

// formatEUR formatea un importe con separador de miles de la localización
// letona y coma decimal, sin pasar jamás por float.
func formatEUR(d decimal.Decimal) string {
	d = d.Round(2)
	euros := d.IntPart()
	cents := d.Sub(decimal.New(euros, 0)).Mul(decimal.New(100, 0)).IntPart()
	if cents < 0 {
		cents = -cents
	}
	return lvPrinter.Sprintf("%d", euros) + "," + twoDigits(cents) + " €"
}
