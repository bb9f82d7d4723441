package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus es el estado de ciclo de vida de una factura.
type InvoiceStatus string

// Ciclo de vida: Draft → Issued → {Paid | Cancelled}.
// La asignación de número ocurre en Draft→Issued y es irreversible.
const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusIssued    InvoiceStatus = "ISSUED"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// Invoice representa la cabecera de una factura con sus líneas.
// Todos los campos monetarios son derivados por el calculador de billing;
// nunca los fija el caller directamente.
type Invoice struct {
	ID        string
	Series    string // serie de numeración (prefijo configurado del emisor)
	Number    string // "<PREFIX>-NNNNNN"; vacío mientras está en Draft; inmutable tras Issue
	IssueDate time.Time
	DueDate   time.Time
	Issuer    Party // copia por valor al momento de crear; congelada al emitir
	Buyer     Party
	Items     []InvoiceItem // orden significativo: se imprime y exporta en este orden
	Notes     string

	TotalNet   decimal.Decimal
	TotalVat   decimal.Decimal
	TotalGross decimal.Decimal

	Status   InvoiceStatus
	Currency string // fijo por despliegue (EUR)

	CreatedAt time.Time
	UpdatedAt time.Time
}

// InvoiceItem es una línea de factura. Los campos LineNet, LineVat y
// LineGross son derivados (redondeo por línea, nunca sobre la suma).
type InvoiceItem struct {
	ID          string
	InvoiceID   string
	Description string
	Unit        string // código de unidad UBL (ej. "EA", "HUR")
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	VatRate     decimal.Decimal // porcentaje: 0, 5, 12, 21

	LineNet   decimal.Decimal
	LineVat   decimal.Decimal
	LineGross decimal.Decimal
}

// IsDraft indica si la factura todavía admite mutaciones.
func (i *Invoice) IsDraft() bool { return i.Status == InvoiceStatusDraft }

// CloneItems devuelve una copia profunda de las líneas (para DuplicateAsDraft:
// ninguna línea se comparte entre agregados).
func (i *Invoice) CloneItems() []InvoiceItem {
	out := make([]InvoiceItem, len(i.Items))
	copy(out, i.Items)
	for idx := range out {
		out[idx].ID = ""
		out[idx].InvoiceID = ""
	}
	return out
}
