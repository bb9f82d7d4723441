// Package billing contiene el núcleo puro de facturación: cálculo de
// importes con IVA y las operaciones del agregado Invoice.
//
// Regla de redondeo: cada línea se redondea de forma independiente a 2
// decimales con redondeo half-up (la mitad se aleja de cero), y los totales
// son la suma de líneas ya redondeadas. Nunca se redondea la suma: los
// totales deben cuadrar céntimo a céntimo con las líneas impresas.
package billing

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/factura-lv/internal/domain"
	"github.com/tu-usuario/factura-lv/internal/domain/entity"
)

// Totals son los importes derivados de una factura completa.
type Totals struct {
	TotalNet   decimal.Decimal
	TotalVat   decimal.Decimal
	TotalGross decimal.Decimal
	// Breakdown agrupa base e IVA por cada tipo distinto presente,
	// ordenado por tipo ascendente (requerido por los TaxSubtotal del
	// documento de exportación y determinista para el XML).
	Breakdown []TaxSubtotal
}

// TaxSubtotal es el subtotal de impuesto para un tipo de IVA concreto.
type TaxSubtotal struct {
	Rate          decimal.Decimal
	TaxableAmount decimal.Decimal
	TaxAmount     decimal.Decimal
}

// SubtotalFor devuelve el subtotal del tipo dado, o false si no existe.
func (t Totals) SubtotalFor(rate decimal.Decimal) (TaxSubtotal, bool) {
	for _, s := range t.Breakdown {
		if s.Rate.Equal(rate) {
			return s, true
		}
	}
	return TaxSubtotal{}, false
}

// round2 redondea a 2 decimales; decimal.Round usa half away from zero,
// que para importes no negativos equivale al half-up del documento impreso.
func round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// ComputeLine deriva los importes de una línea:
// neto = round(cantidad × precio, 2); IVA = round(neto × tipo/100, 2);
// bruto = neto + IVA (sin re-redondeo).
func ComputeLine(item entity.InvoiceItem) (net, vat, gross decimal.Decimal) {
	net = round2(item.Quantity.Mul(item.UnitPrice))
	vat = round2(net.Mul(item.VatRate).Div(decimal.NewFromInt(100)))
	gross = net.Add(vat)
	return net, vat, gross
}

// ValidateItem valida una línea contra los tipos de IVA permitidos.
// Los nombres de campo siguen el índice de la línea ("items[2].quantity").
func ValidateItem(idx int, item entity.InvoiceItem, allowedRates []decimal.Decimal) error {
	field := func(name string) string { return fmt.Sprintf("items[%d].%s", idx, name) }

	if item.Description == "" {
		return domain.NewValidationError(field("description"), "no puede estar vacía")
	}
	if !item.Quantity.IsPositive() {
		return domain.NewValidationError(field("quantity"), "debe ser mayor que cero")
	}
	if item.UnitPrice.IsNegative() {
		return domain.NewValidationError(field("unitPrice"), "no puede ser negativo")
	}
	if item.UnitPrice.Exponent() < -2 {
		return domain.NewValidationError(field("unitPrice"), "máximo 2 decimales (precisión de céntimos)")
	}
	for _, rate := range allowedRates {
		if item.VatRate.Equal(rate) {
			return nil
		}
	}
	return domain.NewValidationError(field("vatRate"),
		fmt.Sprintf("tipo %s fuera del conjunto configurado", item.VatRate.String()))
}

// BreakdownOf agrupa base e IVA por tipo a partir de líneas ya derivadas
// (LineNet/LineVat), ordenado por tipo ascendente. No valida: sirve para
// reimprimir o exportar facturas emitidas aunque la configuración de tipos
// haya cambiado después de la emisión.
func BreakdownOf(items []entity.InvoiceItem) []TaxSubtotal {
	byRate := make(map[string]*TaxSubtotal)
	for _, item := range items {
		key := item.VatRate.Round(2).StringFixed(2)
		sub, ok := byRate[key]
		if !ok {
			sub = &TaxSubtotal{Rate: item.VatRate}
			byRate[key] = sub
		}
		sub.TaxableAmount = sub.TaxableAmount.Add(item.LineNet)
		sub.TaxAmount = sub.TaxAmount.Add(item.LineVat)
	}
	breakdown := make([]TaxSubtotal, 0, len(byRate))
	for _, sub := range byRate {
		breakdown = append(breakdown, *sub)
	}
	sort.Slice(breakdown, func(a, b int) bool {
		return breakdown[a].Rate.LessThan(breakdown[b].Rate)
	})
	return breakdown
}

// ComputeTotals deriva los importes de cada línea y los totales de la
// factura. Función pura: sin I/O ni estado compartido; segura para llamadas
// concurrentes e idempotente para el mismo input.
//
// Los totales son sumas de líneas ya redondeadas (nunca round-after-sum) y
// el desglose por tipo se construye sobre esos mismos importes, de modo que
// la suma de los TaxSubtotal reproduce exactamente TotalNet y TotalVat.
func ComputeTotals(items []entity.InvoiceItem, allowedRates []decimal.Decimal) (Totals, error) {
	if len(items) == 0 {
		return Totals{}, domain.NewValidationError("items", "la factura debe tener al menos una línea")
	}

	var totals Totals
	byRate := make(map[string]*TaxSubtotal)

	for i, item := range items {
		if err := ValidateItem(i, item, allowedRates); err != nil {
			return Totals{}, err
		}
		net, vat, _ := ComputeLine(item)

		totals.TotalNet = totals.TotalNet.Add(net)
		totals.TotalVat = totals.TotalVat.Add(vat)

		key := item.VatRate.Round(2).StringFixed(2)
		sub, ok := byRate[key]
		if !ok {
			sub = &TaxSubtotal{Rate: item.VatRate}
			byRate[key] = sub
		}
		sub.TaxableAmount = sub.TaxableAmount.Add(net)
		sub.TaxAmount = sub.TaxAmount.Add(vat)
	}
	totals.TotalGross = totals.TotalNet.Add(totals.TotalVat)

	totals.Breakdown = make([]TaxSubtotal, 0, len(byRate))
	for _, sub := range byRate {
		totals.Breakdown = append(totals.Breakdown, *sub)
	}
	sort.Slice(totals.Breakdown, func(a, b int) bool {
		return totals.Breakdown[a].Rate.LessThan(totals.Breakdown[b].Rate)
	})

	return totals, nil
}
