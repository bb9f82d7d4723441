// Package billing orquesta el ciclo de vida de las facturas: borradores,
// emisión con número de la autoridad, cobro/anulación, duplicado y los
// documentos derivados (XML PEPPOL, PDF, CSV).
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/tu-usuario/factura-lv/internal/application/dto"
	"github.com/tu-usuario/factura-lv/internal/application/settings"
	"github.com/tu-usuario/factura-lv/internal/domain"
	domainbilling "github.com/tu-usuario/factura-lv/internal/domain/billing"
	"github.com/tu-usuario/factura-lv/internal/domain/entity"
	"github.com/tu-usuario/factura-lv/internal/domain/repository"
	"github.com/tu-usuario/factura-lv/pkg/logger"
)

const dateLayout = "2006-01-02"

// InvoiceUseCase casos de uso del ciclo de vida de facturas.
type InvoiceUseCase struct {
	invoiceRepo repository.InvoiceRepository
	clientRepo  repository.ClientRepository
	settings    *settings.UseCase
	authority   NumberAuthority
	txRunner    TxRunner
	cfg         Config
	log         *logger.Logger
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	settingsUC *settings.UseCase,
	authority NumberAuthority,
	txRunner TxRunner,
	cfg Config,
	log *logger.Logger,
) *InvoiceUseCase {
	return &InvoiceUseCase{
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		settings:    settingsUC,
		authority:   authority,
		txRunner:    txRunner,
		cfg:         cfg,
		log:         log.Component("billing"),
	}
}

// CreateDraft crea un borrador: emisor desde configuración, comprador desde
// el cliente elegido, importes derivados por el calculador. Sin número.
func (uc *InvoiceUseCase) CreateDraft(ctx context.Context, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if in.ClientID == "" {
		return nil, domain.NewValidationError("client_id", "obligatorio")
	}
	client, err := uc.clientRepo.GetByID(in.ClientID)
	if err != nil {
		return nil, err
	}
	issuer, err := uc.settings.IssuerParty()
	if err != nil {
		return nil, err
	}

	issueDate, dueDate, err := uc.parseDates(in.IssueDate, in.DueDate)
	if err != nil {
		return nil, err
	}

	// La serie es la clave estable del contador: el prefijo de visualización
	// editable en ajustes lo resuelve la autoridad al formatear el número.
	header := domainbilling.InvoiceHeader{
		Series:    uc.cfg.SeriesPrefix,
		IssueDate: issueDate,
		DueDate:   dueDate,
		Currency:  uc.cfg.Currency,
		Notes:     in.Notes,
	}
	inv, err := domainbilling.NewInvoice(header, issuer, client.AsParty(), toItems(in.Items), uc.cfg.AllowedRates)
	if err != nil {
		return nil, err
	}

	err = uc.txRunner.Run(ctx, func(invoices repository.InvoiceRepository) error {
		return invoices.Create(inv)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("invoice_id", inv.ID).Str("buyer", inv.Buyer.Name).Msg("borrador creado")
	return toInvoiceResponse(inv, true), nil
}

// UpdateDraft reemplaza cabecera y líneas de un borrador. Una factura
// emitida no admite mutación alguna.
func (uc *InvoiceUseCase) UpdateDraft(ctx context.Context, id string, in dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !inv.IsDraft() {
		return nil, domain.NewInvalidStateError("update", string(inv.Status))
	}

	if in.ClientID != "" {
		client, err := uc.clientRepo.GetByID(in.ClientID)
		if err != nil {
			return nil, err
		}
		inv.Buyer = client.AsParty()
	}
	if in.IssueDate != "" {
		d, err := time.Parse(dateLayout, in.IssueDate)
		if err != nil {
			return nil, domain.NewValidationError("issue_date", "formato de fecha inválido (YYYY-MM-DD)")
		}
		inv.IssueDate = d
	}
	if in.DueDate != "" {
		d, err := time.Parse(dateLayout, in.DueDate)
		if err != nil {
			return nil, domain.NewValidationError("due_date", "formato de fecha inválido (YYYY-MM-DD)")
		}
		inv.DueDate = d
	}
	if inv.DueDate.Before(inv.IssueDate) {
		return nil, domain.NewValidationError("due_date", "no puede ser anterior a la fecha de emisión")
	}
	inv.Notes = in.Notes

	items := toItems(in.Items)
	totals, err := domainbilling.ComputeTotals(items, uc.cfg.AllowedRates)
	if err != nil {
		return nil, err
	}
	for i := range items {
		net, vat, gross := domainbilling.ComputeLine(items[i])
		items[i].LineNet, items[i].LineVat, items[i].LineGross = net, vat, gross
	}
	inv.Items = items
	inv.TotalNet = totals.TotalNet
	inv.TotalVat = totals.TotalVat
	inv.TotalGross = totals.TotalGross
	inv.UpdatedAt = time.Now()

	err = uc.txRunner.Run(ctx, func(invoices repository.InvoiceRepository) error {
		return invoices.Update(inv)
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, true), nil
}

// Get devuelve una factura con líneas.
func (uc *InvoiceUseCase) Get(id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, true), nil
}

// GetByNumber busca una factura emitida por su número asignado (único
// global): es la consulta del operador cuando parte de un documento impreso.
func (uc *InvoiceUseCase) GetByNumber(number string) (*dto.InvoiceResponse, error) {
	if number == "" {
		return nil, domain.NewValidationError("number", "obligatorio")
	}
	inv, err := uc.invoiceRepo.GetByNumber(number)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, true), nil
}

// List devuelve una página de facturas (sin líneas).
func (uc *InvoiceUseCase) List(in dto.ListInvoicesRequest) (*dto.InvoiceListResponse, error) {
	in.DefaultPage()
	filter := repository.InvoiceFilter{
		Search: in.Search,
		Status: entity.InvoiceStatus(in.Status),
		Limit:  in.Limit,
		Offset: in.Offset,
	}
	if in.DateFrom != "" {
		d, err := time.Parse(dateLayout, in.DateFrom)
		if err != nil {
			return nil, domain.NewValidationError("date_from", "formato de fecha inválido (YYYY-MM-DD)")
		}
		filter.DateFrom = &d
	}
	if in.DateTo != "" {
		d, err := time.Parse(dateLayout, in.DateTo)
		if err != nil {
			return nil, domain.NewValidationError("date_to", "formato de fecha inválido (YYYY-MM-DD)")
		}
		filter.DateTo = &d
	}

	invoices, total, err := uc.invoiceRepo.List(filter)
	if err != nil {
		return nil, err
	}
	out := &dto.InvoiceListResponse{
		Items: make([]dto.InvoiceResponse, 0, len(invoices)),
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}
	for _, inv := range invoices {
		out.Items = append(out.Items, *toInvoiceResponse(inv, false))
	}
	return out, nil
}

// DeleteDraft elimina un borrador. Una factura emitida se anula, nunca se
// borra: su número ya está consumido.
func (uc *InvoiceUseCase) DeleteDraft(ctx context.Context, id string) error {
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return err
	}
	if !inv.IsDraft() {
		return domain.NewInvalidStateError("delete", string(inv.Status))
	}
	return uc.txRunner.Run(ctx, func(invoices repository.InvoiceRepository) error {
		return invoices.Delete(id)
	})
}

// Issue emite un borrador: pide exactamente un número a la autoridad y
// persiste la transición. Si la escritura posterior falla, el número queda
// consumido (hueco en la serie): se acepta antes que arriesgar duplicados.
func (uc *InvoiceUseCase) Issue(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := domainbilling.Issue(ctx, inv, uc.authority); err != nil {
		return nil, err
	}

	err = uc.txRunner.Run(ctx, func(invoices repository.InvoiceRepository) error {
		return invoices.Update(inv)
	})
	if err != nil {
		uc.log.Error().Err(err).Str("invoice_id", inv.ID).Str("number", inv.Number).
			Msg("número asignado pero emisión no persistida; la serie queda con hueco")
		return nil, fmt.Errorf("persistir emisión: %w", err)
	}
	uc.log.Info().Str("invoice_id", inv.ID).Str("number", inv.Number).Msg("factura emitida")
	return toInvoiceResponse(inv, true), nil
}

// MarkPaid marca como pagada una factura emitida.
func (uc *InvoiceUseCase) MarkPaid(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	return uc.transition(ctx, id, domainbilling.MarkPaid)
}

// Cancel anula una factura emitida. El número no se reutiliza.
func (uc *InvoiceUseCase) Cancel(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	return uc.transition(ctx, id, domainbilling.Cancel)
}

func (uc *InvoiceUseCase) transition(ctx context.Context, id string, op func(*entity.Invoice) error) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := op(inv); err != nil {
		return nil, err
	}
	err = uc.txRunner.Run(ctx, func(invoices repository.InvoiceRepository) error {
		return invoices.Update(inv)
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, true), nil
}

// Duplicate crea un borrador nuevo copiando partes y líneas de una factura
// existente ("guardar como nueva"). Identidad fresca, sin número.
func (uc *InvoiceUseCase) Duplicate(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	dup := domainbilling.DuplicateAsDraft(inv)
	err = uc.txRunner.Run(ctx, func(invoices repository.InvoiceRepository) error {
		return invoices.Create(dup)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("source_id", inv.ID).Str("invoice_id", dup.ID).Msg("factura duplicada como borrador")
	return toInvoiceResponse(dup, true), nil
}

// PeekNextNumber devuelve el próximo número de la serie sin consumirlo.
// Informativo: otro caller puede emitir entre la consulta y la emisión.
func (uc *InvoiceUseCase) PeekNextNumber(ctx context.Context) (*dto.PeekNumberResponse, error) {
	series := uc.cfg.SeriesPrefix
	number, err := uc.authority.PeekNextNumber(ctx, series)
	if err != nil {
		return nil, err
	}
	return &dto.PeekNumberResponse{Series: series, Number: number}, nil
}

func (uc *InvoiceUseCase) parseDates(issueStr, dueStr string) (issue, due time.Time, err error) {
	issue = time.Now().Truncate(24 * time.Hour)
	if issueStr != "" {
		issue, err = time.Parse(dateLayout, issueStr)
		if err != nil {
			return time.Time{}, time.Time{}, domain.NewValidationError("issue_date", "formato de fecha inválido (YYYY-MM-DD)")
		}
	}
	due = issue.AddDate(0, 0, uc.cfg.DueDays)
	if dueStr != "" {
		due, err = time.Parse(dateLayout, dueStr)
		if err != nil {
			return time.Time{}, time.Time{}, domain.NewValidationError("due_date", "formato de fecha inválido (YYYY-MM-DD)")
		}
	}
	return issue, due, nil
}

func toItems(in []dto.InvoiceItemRequest) []entity.InvoiceItem {
	items := make([]entity.InvoiceItem, 0, len(in))
	for _, it := range in {
		items = append(items, entity.InvoiceItem{
			Description: it.Description,
			Unit:        it.Unit,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			VatRate:     it.VatRate,
		})
	}
	return items
}

func toInvoiceResponse(inv *entity.Invoice, withItems bool) *dto.InvoiceResponse {
	out := &dto.InvoiceResponse{
		ID:         inv.ID,
		Series:     inv.Series,
		Number:     inv.Number,
		Status:     string(inv.Status),
		IssueDate:  inv.IssueDate.Format(dateLayout),
		DueDate:    inv.DueDate.Format(dateLayout),
		BuyerName:  inv.Buyer.Name,
		Notes:      inv.Notes,
		Currency:   inv.Currency,
		TotalNet:   inv.TotalNet,
		TotalVat:   inv.TotalVat,
		TotalGross: inv.TotalGross,
	}
	if withItems {
		out.Items = make([]dto.InvoiceItemResponse, 0, len(inv.Items))
		for _, it := range inv.Items {
			out.Items = append(out.Items, dto.InvoiceItemResponse{
				ID:          it.ID,
				Description: it.Description,
				Unit:        it.Unit,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
				VatRate:     it.VatRate,
				LineNet:     it.LineNet,
				LineVat:     it.LineVat,
				LineGross:   it.LineGross,
			})
		}
	}
	return out
}
