package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/factura-lv/internal/domain"
	"github.com/tu-usuario/factura-lv/internal/domain/entity"
	"github.com/tu-usuario/factura-lv/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
// Las partes se persisten aplanadas (issuer_*, buyer_*): son una foto al
// momento de crear la factura, no referencias a datos maestros.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, series, number, issue_date, due_date, notes,
	total_net, total_vat, total_gross, status, currency,
	issuer_name, issuer_reg_number, issuer_vat_number, issuer_legal_address,
	issuer_postal_code, issuer_city, issuer_country_code,
	issuer_bank_name, issuer_bank_swift, issuer_bank_account, issuer_email, issuer_phone,
	buyer_name, buyer_reg_number, buyer_vat_number, buyer_legal_address,
	buyer_postal_code, buyer_city, buyer_country_code,
	buyer_bank_name, buyer_bank_swift, buyer_bank_account, buyer_email, buyer_phone,
	created_at, updated_at`

// Create persiste cabecera y líneas de un borrador nuevo.
func (r *InvoiceRepo) Create(invoice *entity.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
		        $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23,
		        $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34, $35,
		        $36, $37)`
	_, err := r.q.Exec(context.Background(), query, r.headerArgs(invoice)...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("número de factura ya existe: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return r.insertItems(invoice)
}

// Update actualiza la cabecera y, solo mientras la factura sigue en Draft,
// reescribe las líneas. Emitida, las líneas son inmutables.
func (r *InvoiceRepo) Update(invoice *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET number = $2, issue_date = $3, due_date = $4, notes = $5,
		    total_net = $6, total_vat = $7, total_gross = $8,
		    status = $9, updated_at = $10
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		invoice.ID, nullIfEmpty(invoice.Number), invoice.IssueDate, invoice.DueDate,
		invoice.Notes, invoice.TotalNet, invoice.TotalVat, invoice.TotalGross,
		string(invoice.Status), invoice.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("número de factura ya existe: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("update invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	if invoice.IsDraft() {
		if _, err := r.q.Exec(context.Background(),
			`DELETE FROM invoice_items WHERE invoice_id = $1`, invoice.ID); err != nil {
			return fmt.Errorf("delete invoice items: %w", err)
		}
		return r.insertItems(invoice)
	}
	return nil
}

// GetByID obtiene una factura completa (cabecera + líneas) por ID.
func (r *InvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	inv, err := r.scanInvoice(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// GetByNumber busca por número asignado (único global).
func (r *InvoiceRepo) GetByNumber(number string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE number = $1`
	inv, err := r.scanInvoice(r.q.QueryRow(context.Background(), query, number))
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// List devuelve la página filtrada (sin líneas) y el total sin paginar.
func (r *InvoiceRepo) List(filter repository.InvoiceFilter) ([]*entity.Invoice, int, error) {
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conds = append(conds, fmt.Sprintf("(number ILIKE %s OR buyer_name ILIKE %s)", p, p))
	}
	if filter.Status != "" {
		conds = append(conds, "status = "+arg(string(filter.Status)))
	}
	if filter.DateFrom != nil {
		conds = append(conds, "issue_date >= "+arg(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		conds = append(conds, "issue_date <= "+arg(*filter.DateTo))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM invoices` + where
	if err := r.q.QueryRow(context.Background(), countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + invoiceColumns + ` FROM invoices` + where +
		` ORDER BY created_at DESC LIMIT ` + arg(limit) + ` OFFSET ` + arg(filter.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var list []*entity.Invoice
	for rows.Next() {
		inv, err := r.scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, inv)
	}
	return list, total, rows.Err()
}

// Delete elimina cabecera y líneas. El caso de uso solo lo permite para
// borradores.
func (r *InvoiceRepo) Delete(id string) error {
	if _, err := r.q.Exec(context.Background(),
		`DELETE FROM invoice_items WHERE invoice_id = $1`, id); err != nil {
		return fmt.Errorf("delete invoice items: %w", err)
	}
	tag, err := r.q.Exec(context.Background(), `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *InvoiceRepo) headerArgs(inv *entity.Invoice) []any {
	is, b := inv.Issuer, inv.Buyer
	return []any{
		inv.ID, inv.Series, nullIfEmpty(inv.Number), inv.IssueDate, inv.DueDate, inv.Notes,
		inv.TotalNet, inv.TotalVat, inv.TotalGross, string(inv.Status), inv.Currency,
		is.Name, is.RegNumber, is.VatNumber, is.LegalAddress,
		is.PostalCode, is.City, is.CountryCode,
		is.BankName, is.BankSwift, is.BankAccount, is.Email, is.Phone,
		b.Name, b.RegNumber, b.VatNumber, b.LegalAddress,
		b.PostalCode, b.City, b.CountryCode,
		b.BankName, b.BankSwift, b.BankAccount, b.Email, b.Phone,
		inv.CreatedAt, inv.UpdatedAt,
	}
}

func (r *InvoiceRepo) scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	var number *string
	var status string
	err := row.Scan(
		&inv.ID, &inv.Series, &number, &inv.IssueDate, &inv.DueDate, &inv.Notes,
		&inv.TotalNet, &inv.TotalVat, &inv.TotalGross, &status, &inv.Currency,
		&inv.Issuer.Name, &inv.Issuer.RegNumber, &inv.Issuer.VatNumber, &inv.Issuer.LegalAddress,
		&inv.Issuer.PostalCode, &inv.Issuer.City, &inv.Issuer.CountryCode,
		&inv.Issuer.BankName, &inv.Issuer.BankSwift, &inv.Issuer.BankAccount, &inv.Issuer.Email, &inv.Issuer.Phone,
		&inv.Buyer.Name, &inv.Buyer.RegNumber, &inv.Buyer.VatNumber, &inv.Buyer.LegalAddress,
		&inv.Buyer.PostalCode, &inv.Buyer.City, &inv.Buyer.CountryCode,
		&inv.Buyer.BankName, &inv.Buyer.BankSwift, &inv.Buyer.BankAccount, &inv.Buyer.Email, &inv.Buyer.Phone,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	inv.Number = derefStr(number)
	inv.Status = entity.InvoiceStatus(status)
	return &inv, nil
}

func (r *InvoiceRepo) insertItems(inv *entity.Invoice) error {
	query := `
		INSERT INTO invoice_items (id, invoice_id, position, description, unit,
		                           quantity, unit_price, vat_rate,
		                           line_net, line_vat, line_gross)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	for i := range inv.Items {
		it := &inv.Items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.InvoiceID = inv.ID
		_, err := r.q.Exec(context.Background(), query,
			it.ID, it.InvoiceID, i, it.Description, it.Unit,
			it.Quantity, it.UnitPrice, it.VatRate,
			it.LineNet, it.LineVat, it.LineGross,
		)
		if err != nil {
			return fmt.Errorf("insert invoice item: %w", err)
		}
	}
	return nil
}

func (r *InvoiceRepo) loadItems(inv *entity.Invoice) error {
	query := `
		SELECT id, invoice_id, description, unit, quantity, unit_price, vat_rate,
		       line_net, line_vat, line_gross
		FROM invoice_items WHERE invoice_id = $1 ORDER BY position`
	rows, err := r.q.Query(context.Background(), query, inv.ID)
	if err != nil {
		return fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.InvoiceItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.Description, &it.Unit,
			&it.Quantity, &it.UnitPrice, &it.VatRate,
			&it.LineNet, &it.LineVat, &it.LineGross); err != nil {
			return fmt.Errorf("scan invoice item: %w", err)
		}
		inv.Items = append(inv.Items, it)
	}
	return rows.Err()
}
