package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/factura-lv/internal/domain"
	"github.com/tu-usuario/factura-lv/internal/domain/entity"
)

// NumberSource asigna números de factura por serie. Lo implementa la
// autoridad de numeración (internal/domain/numbering).
type NumberSource interface {
	// NextNumber es una lectura-incremento-escritura atómica: dos callers
	// concurrentes de la misma serie nunca reciben el mismo número.
	NextNumber(ctx context.Context, series string) (string, error)
}

// InvoiceHeader son los campos de cabecera que aporta el caller.
type InvoiceHeader struct {
	Series    string
	IssueDate time.Time
	DueDate   time.Time
	Currency  string // vacío = EUR
	Notes     string
}

// NewInvoice valida cabecera, partes y líneas, deriva importes y devuelve
// la factura en estado Draft. Toda mutación posterior pasa por las
// operaciones de este paquete; ningún campo se fija directamente sobre una
// factura emitida.
func NewInvoice(header InvoiceHeader, issuer, buyer entity.Party, items []entity.InvoiceItem, allowedRates []decimal.Decimal) (*entity.Invoice, error) {
	if header.Series == "" {
		return nil, domain.NewValidationError("series", "no puede estar vacía")
	}
	if header.IssueDate.IsZero() {
		return nil, domain.NewValidationError("issueDate", "obligatoria")
	}
	if header.DueDate.Before(header.IssueDate) {
		return nil, domain.NewValidationError("dueDate", "no puede ser anterior a la fecha de emisión")
	}
	if buyer.Name == "" {
		return nil, domain.NewValidationError("buyer.name", "obligatorio")
	}

	totals, err := ComputeTotals(items, allowedRates)
	if err != nil {
		return nil, err
	}

	currency := header.Currency
	if currency == "" {
		currency = "EUR"
	}

	now := time.Now()
	inv := &entity.Invoice{
		ID:         uuid.New().String(),
		Series:     header.Series,
		IssueDate:  header.IssueDate,
		DueDate:    header.DueDate,
		Issuer:     issuer,
		Buyer:      buyer,
		Notes:      header.Notes,
		TotalNet:   totals.TotalNet,
		TotalVat:   totals.TotalVat,
		TotalGross: totals.TotalGross,
		Status:     entity.InvoiceStatusDraft,
		Currency:   currency,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	inv.Items = make([]entity.InvoiceItem, len(items))
	copy(inv.Items, items)
	for i := range inv.Items {
		if inv.Items[i].ID == "" {
			inv.Items[i].ID = uuid.New().String()
		}
		inv.Items[i].InvoiceID = inv.ID
		net, vat, gross := ComputeLine(inv.Items[i])
		inv.Items[i].LineNet = net
		inv.Items[i].LineVat = vat
		inv.Items[i].LineGross = gross
	}

	return inv, nil
}

// Issue transiciona Draft→Issued: pide a la autoridad exactamente un número
// y congela líneas, partes e importes. Si la numeración falla, la factura
// queda intacta y el caller debe reintentar la emisión completa.
func Issue(ctx context.Context, inv *entity.Invoice, src NumberSource) error {
	if inv.Status != entity.InvoiceStatusDraft {
		return domain.NewInvalidStateError("issue", string(inv.Status))
	}
	number, err := src.NextNumber(ctx, inv.Series)
	if err != nil {
		return err
	}
	inv.Number = number
	inv.Status = entity.InvoiceStatusIssued
	inv.UpdatedAt = time.Now()
	return nil
}

// MarkPaid marca como pagada una factura emitida. Estado terminal.
func MarkPaid(inv *entity.Invoice) error {
	if inv.Status != entity.InvoiceStatusIssued {
		return domain.NewInvalidStateError("markPaid", string(inv.Status))
	}
	inv.Status = entity.InvoiceStatusPaid
	inv.UpdatedAt = time.Now()
	return nil
}

// Cancel anula una factura emitida. El número consumido no se reutiliza.
func Cancel(inv *entity.Invoice) error {
	if inv.Status != entity.InvoiceStatusIssued {
		return domain.NewInvalidStateError("cancel", string(inv.Status))
	}
	inv.Status = entity.InvoiceStatusCancelled
	inv.UpdatedAt = time.Now()
	return nil
}

// DuplicateAsDraft produce un borrador nuevo copiando partes y líneas tal
// cual, con identidad fresca y sin número ("guardar como nueva"). La
// factura origen no se modifica.
func DuplicateAsDraft(inv *entity.Invoice) *entity.Invoice {
	now := time.Now()
	dup := &entity.Invoice{
		ID:         uuid.New().String(),
		Series:     inv.Series,
		IssueDate:  inv.IssueDate,
		DueDate:    inv.DueDate,
		Issuer:     inv.Issuer,
		Buyer:      inv.Buyer,
		Notes:      inv.Notes,
		TotalNet:   inv.TotalNet,
		TotalVat:   inv.TotalVat,
		TotalGross: inv.TotalGross,
		Status:     entity.InvoiceStatusDraft,
		Currency:   inv.Currency,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	dup.Items = inv.CloneItems()
	for i := range dup.Items {
		dup.Items[i].ID = uuid.New().String()
		dup.Items[i].InvoiceID = dup.ID
	}
	return dup
}
