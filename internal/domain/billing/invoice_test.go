package billing_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/factura-lv/internal/domain"
	"github.com/tu-usuario/factura-lv/internal/domain/billing"
	"github.com/tu-usuario/factura-lv/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests del agregado Invoice: máquina de estados Draft → Issued → {Paid,
// Cancelled}, congelación de campos tras la emisión y "guardar como nueva".
// ──────────────────────────────────────────────────────────────────────────────

// fakeNumberSource cuenta las llamadas y entrega números secuenciales.
type fakeNumberSource struct {
	calls int
	fail  error
}

func (f *fakeNumberSource) NextNumber(_ context.Context, series string) (string, error) {
	if f.fail != nil {
		return "", f.fail
	}
	f.calls++
	return fmt.Sprintf("%s-%06d", series, f.calls), nil
}

func testParties() (issuer, buyer entity.Party) {
	issuer = entity.Party{
		Name:         "SIA Neatkarīgā Konsultācija",
		RegNumber:    "40003456789",
		VatNumber:    "LV40003456789",
		LegalAddress: "Brīvības iela 1",
		City:         "Rīga",
		CountryCode:  "LV",
		BankAccount:  "LV80BANK0000435195001",
		BankSwift:    "HABALV22",
	}
	buyer = entity.Party{
		Name:         "SIA Pircējs",
		RegNumber:    "40009876543",
		LegalAddress: "Elizabetes iela 2",
		City:         "Rīga",
		CountryCode:  "LV",
	}
	return issuer, buyer
}

func testHeader() billing.InvoiceHeader {
	issue := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	return billing.InvoiceHeader{
		Series:    "NC",
		IssueDate: issue,
		DueDate:   issue.AddDate(0, 0, 14),
	}
}

func draftInvoice(t *testing.T) *entity.Invoice {
	t.Helper()
	issuer, buyer := testParties()
	inv, err := billing.NewInvoice(testHeader(), issuer, buyer, []entity.InvoiceItem{
		item("Consulting", "10", "50.00", "21"),
		item("Hosting", "1", "100.00", "0"),
	}, allowedRates())
	require.NoError(t, err)
	return inv
}

func TestNewInvoice_CreaBorradorValido(t *testing.T) {
	inv := draftInvoice(t)

	assert.Equal(t, entity.InvoiceStatusDraft, inv.Status)
	assert.Empty(t, inv.Number, "un borrador no tiene número asignado")
	assert.Equal(t, "EUR", inv.Currency)
	assert.NotEmpty(t, inv.ID)

	// Importes derivados, nunca aportados por el caller.
	assert.True(t, dec("600.00").Equal(inv.TotalNet))
	assert.True(t, dec("105.00").Equal(inv.TotalVat))
	assert.True(t, dec("705.00").Equal(inv.TotalGross))

	require.Len(t, inv.Items, 2)
	assert.True(t, dec("500.00").Equal(inv.Items[0].LineNet))
	assert.True(t, dec("605.00").Equal(inv.Items[0].LineGross))
	assert.Equal(t, inv.ID, inv.Items[0].InvoiceID)
}

func TestNewInvoice_Invalida(t *testing.T) {
	issuer, buyer := testParties()
	items := []entity.InvoiceItem{item("x", "1", "10.00", "21")}

	t.Run("vencimiento anterior a emisión", func(t *testing.T) {
		h := testHeader()
		h.DueDate = h.IssueDate.AddDate(0, 0, -1)
		_, err := billing.NewInvoice(h, issuer, buyer, items, allowedRates())
		require.ErrorIs(t, err, domain.ErrValidation)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "dueDate", verr.Field)
	})

	t.Run("serie vacía", func(t *testing.T) {
		h := testHeader()
		h.Series = ""
		_, err := billing.NewInvoice(h, issuer, buyer, items, allowedRates())
		require.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("comprador sin nombre", func(t *testing.T) {
		_, err := billing.NewInvoice(testHeader(), issuer, entity.Party{}, items, allowedRates())
		require.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("sin líneas", func(t *testing.T) {
		_, err := billing.NewInvoice(testHeader(), issuer, buyer, nil, allowedRates())
		require.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestIssue_AsignaNumeroExactamenteUnaVez(t *testing.T) {
	inv := draftInvoice(t)
	src := &fakeNumberSource{}

	require.NoError(t, billing.Issue(context.Background(), inv, src))

	assert.Equal(t, 1, src.calls, "la emisión llama a la autoridad exactamente una vez")
	assert.Equal(t, "NC-000001", inv.Number)
	assert.Equal(t, entity.InvoiceStatusIssued, inv.Status)
}

func TestIssue_FallaSiYaEmitida(t *testing.T) {
	inv := draftInvoice(t)
	src := &fakeNumberSource{}
	require.NoError(t, billing.Issue(context.Background(), inv, src))

	err := billing.Issue(context.Background(), inv, src)
	require.ErrorIs(t, err, domain.ErrInvalidState)

	// Tras la transición fallida nada cambió: mismo número, una sola llamada.
	assert.Equal(t, "NC-000001", inv.Number)
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, entity.InvoiceStatusIssued, inv.Status)
}

func TestIssue_ErrorDeNumeracionDejaElBorradorIntacto(t *testing.T) {
	inv := draftInvoice(t)
	src := &fakeNumberSource{fail: domain.NewConcurrencyError("NC")}

	err := billing.Issue(context.Background(), inv, src)
	require.ErrorIs(t, err, domain.ErrConcurrency)

	assert.Equal(t, entity.InvoiceStatusDraft, inv.Status)
	assert.Empty(t, inv.Number)
}

func TestMarkPaid_SoloDesdeIssued(t *testing.T) {
	inv := draftInvoice(t)

	err := billing.MarkPaid(inv)
	require.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, entity.InvoiceStatusDraft, inv.Status, "la transición fallida no toca campos")

	require.NoError(t, billing.Issue(context.Background(), inv, &fakeNumberSource{}))
	require.NoError(t, billing.MarkPaid(inv))
	assert.Equal(t, entity.InvoiceStatusPaid, inv.Status)

	// Paid es terminal.
	require.ErrorIs(t, billing.Cancel(inv), domain.ErrInvalidState)
	require.ErrorIs(t, billing.MarkPaid(inv), domain.ErrInvalidState)
}

func TestCancel_SoloDesdeIssued(t *testing.T) {
	inv := draftInvoice(t)
	require.ErrorIs(t, billing.Cancel(inv), domain.ErrInvalidState)

	require.NoError(t, billing.Issue(context.Background(), inv, &fakeNumberSource{}))
	require.NoError(t, billing.Cancel(inv))
	assert.Equal(t, entity.InvoiceStatusCancelled, inv.Status)
	assert.Equal(t, "NC-000001", inv.Number, "el número consumido se conserva, nunca se reutiliza")

	require.ErrorIs(t, billing.MarkPaid(inv), domain.ErrInvalidState)
}

func TestDuplicateAsDraft(t *testing.T) {
	src := &fakeNumberSource{}
	orig := draftInvoice(t)
	require.NoError(t, billing.Issue(context.Background(), orig, src))

	dup := billing.DuplicateAsDraft(orig)

	// Identidad fresca, sin número, en borrador.
	assert.NotEqual(t, orig.ID, dup.ID)
	assert.Empty(t, dup.Number)
	assert.Equal(t, entity.InvoiceStatusDraft, dup.Status)

	// Partes, líneas y totales idénticos a la origen.
	assert.Equal(t, orig.Issuer, dup.Issuer)
	assert.Equal(t, orig.Buyer, dup.Buyer)
	require.Len(t, dup.Items, len(orig.Items))
	for i := range dup.Items {
		assert.Equal(t, orig.Items[i].Description, dup.Items[i].Description)
		assert.True(t, orig.Items[i].LineNet.Equal(dup.Items[i].LineNet))
		assert.NotEqual(t, orig.Items[i].ID, dup.Items[i].ID, "ninguna línea se comparte entre agregados")
		assert.Equal(t, dup.ID, dup.Items[i].InvoiceID)
	}
	assert.True(t, orig.TotalGross.Equal(dup.TotalGross))

	// La origen no se modificó.
	assert.Equal(t, entity.InvoiceStatusIssued, orig.Status)
	assert.Equal(t, "NC-000001", orig.Number)
}
