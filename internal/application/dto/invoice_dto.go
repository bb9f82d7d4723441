package dto

import "github.com/shopspring/decimal"

// CreateInvoiceRequest body para POST /api/invoices. Crea un borrador:
// el número se asigna en la emisión, nunca aquí.
type CreateInvoiceRequest struct {
	ClientID  string               `json:"client_id"`
	IssueDate string               `json:"issue_date"` // "2006-01-02"; vacío = hoy
	DueDate   string               `json:"due_date"`   // vacío = issue_date + plazo configurado
	Notes     string               `json:"notes,omitempty"`
	Items     []InvoiceItemRequest `json:"items"`
}

// UpdateInvoiceRequest body para PUT /api/invoices/:id (solo borradores).
type UpdateInvoiceRequest struct {
	ClientID  string               `json:"client_id,omitempty"`
	IssueDate string               `json:"issue_date,omitempty"`
	DueDate   string               `json:"due_date,omitempty"`
	Notes     string               `json:"notes"`
	Items     []InvoiceItemRequest `json:"items"`
}

// InvoiceItemRequest línea de factura.
type InvoiceItemRequest struct {
	Description string          `json:"description"`
	Unit        string          `json:"unit,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	VatRate     decimal.Decimal `json:"vat_rate"`
}

// InvoiceResponse factura con líneas para GET /api/invoices/:id.
type InvoiceResponse struct {
	ID         string                `json:"id"`
	Series     string                `json:"series"`
	Number     string                `json:"number,omitempty"` // vacío en borrador
	Status     string                `json:"status"`
	IssueDate  string                `json:"issue_date"`
	DueDate    string                `json:"due_date"`
	BuyerName  string                `json:"buyer_name"`
	Notes      string                `json:"notes,omitempty"`
	Currency   string                `json:"currency"`
	TotalNet   decimal.Decimal       `json:"total_net"`
	TotalVat   decimal.Decimal       `json:"total_vat"`
	TotalGross decimal.Decimal       `json:"total_gross"`
	Items      []InvoiceItemResponse `json:"items,omitempty"`
}

// InvoiceItemResponse línea en la respuesta, con importes derivados.
type InvoiceItemResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Unit        string          `json:"unit,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	VatRate     decimal.Decimal `json:"vat_rate"`
	LineNet     decimal.Decimal `json:"line_net"`
	LineVat     decimal.Decimal `json:"line_vat"`
	LineGross   decimal.Decimal `json:"line_gross"`
}

// InvoiceListResponse página de facturas (sin líneas).
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// ListInvoicesRequest filtros de GET /api/invoices.
type ListInvoicesRequest struct {
	PageRequest
	Search   string `query:"search"`
	Status   string `query:"status"`
	DateFrom string `query:"date_from"`
	DateTo   string `query:"date_to"`
}

// PeekNumberResponse respuesta de GET /api/invoices/next-number.
// El valor es informativo: no reserva el número.
type PeekNumberResponse struct {
	Series string `json:"series"`
	Number string `json:"number"`
}

// SubmitEDSResponse resultado de la presentación ante el EDS.
type SubmitEDSResponse struct {
	Accepted   bool   `json:"accepted"`
	StatusCode int    `json:"status_code"`
	Details    string `json:"details,omitempty"`
	Checksum   string `json:"checksum"` // SHA-256 del XML canónico presentado
}

// EmailInvoiceRequest body para POST /api/invoices/:id/email.
type EmailInvoiceRequest struct {
	To string `json:"to"` // vacío = email del comprador
}
