package billing_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbilling "github.com/tu-usuario/factura-lv/internal/application/billing"
	"github.com/tu-usuario/factura-lv/internal/application/dto"
	appsettings "github.com/tu-usuario/factura-lv/internal/application/settings"
	"github.com/tu-usuario/factura-lv/internal/domain"
	"github.com/tu-usuario/factura-lv/internal/domain/entity"
	"github.com/tu-usuario/factura-lv/internal/domain/numbering"
	"github.com/tu-usuario/factura-lv/internal/domain/repository"
	"github.com/tu-usuario/factura-lv/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeInvoiceRepo struct {
	mu       sync.Mutex
	invoices map[string]*entity.Invoice

	failNextUpdate bool // simula un fallo de persistencia en el Update siguiente
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: make(map[string]*entity.Invoice)}
}

func (r *fakeInvoiceRepo) Create(inv *entity.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *inv
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *fakeInvoiceRepo) Update(inv *entity.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNextUpdate {
		r.failNextUpdate = false
		return errors.New("fallo simulado de escritura")
	}
	if _, ok := r.invoices[inv.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *inv
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *fakeInvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r *fakeInvoiceRepo) GetByNumber(number string) (*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		if inv.Number == number {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeInvoiceRepo) List(filter repository.InvoiceFilter) ([]*entity.Invoice, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Invoice
	for _, inv := range r.invoices {
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		cp := *inv
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (r *fakeInvoiceRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invoices[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.invoices, id)
	return nil
}

type fakeClientRepo struct {
	clients map[string]*entity.Client
}

func (r *fakeClientRepo) Create(c *entity.Client) error { r.clients[c.ID] = c; return nil }
func (r *fakeClientRepo) GetByID(id string) (*entity.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}
func (r *fakeClientRepo) List(string, int, int) ([]*entity.Client, int, error) {
	return nil, 0, nil
}
func (r *fakeClientRepo) Update(c *entity.Client) error { r.clients[c.ID] = c; return nil }
func (r *fakeClientRepo) Delete(id string) error        { delete(r.clients, id); return nil }

type fakeSettingsRepo struct {
	values map[string]string
}

func (r *fakeSettingsRepo) GetAll() (map[string]string, error) { return r.values, nil }
func (r *fakeSettingsRepo) Set(key, value string) error        { r.values[key] = value; return nil }
func (r *fakeSettingsRepo) SetMany(values map[string]string) error {
	for k, v := range values {
		r.values[k] = v
	}
	return nil
}

// fakeTxRunner ejecuta fn directamente contra el repositorio; el contrato de
// atomicidad se verifica contra PostgreSQL, no aquí.
type fakeTxRunner struct {
	repo repository.InvoiceRepository
}

func (t *fakeTxRunner) Run(_ context.Context, fn func(repository.InvoiceRepository) error) error {
	return fn(t.repo)
}

// ──────────────────────────────────────────────────────────────────────────────
// Arnés de test
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	uc      *appbilling.InvoiceUseCase
	repo    *fakeInvoiceRepo
	clients *fakeClientRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := newFakeInvoiceRepo()
	clients := &fakeClientRepo{clients: map[string]*entity.Client{
		"client-1": {
			ID:        "client-1",
			Name:      "SIA Pircējs",
			RegNumber: "40003000001",
			Email:     "pircejs@example.lv",
		},
	}}
	settingsUC := appsettings.NewUseCase(&fakeSettingsRepo{values: map[string]string{
		appsettings.KeyCompanyName: "SIA Piegādātājs",
		appsettings.KeyRegNumber:   "40103000002",
		appsettings.KeyVatNumber:   "LV40103000002",
	}})
	authority := numbering.NewAuthority(numbering.NewMemoryStore(), numbering.Config{})

	cfg := appbilling.Config{
		Currency: "EUR",
		AllowedRates: []decimal.Decimal{
			decimal.Zero, decimal.NewFromInt(5),
			decimal.NewFromInt(12), decimal.NewFromInt(21),
		},
		SeriesPrefix: "NC",
		DueDays:      14,
	}
	uc := appbilling.NewInvoiceUseCase(
		repo, clients, settingsUC, authority, &fakeTxRunner{repo: repo}, cfg, logger.Nop(),
	)
	return &fixture{uc: uc, repo: repo, clients: clients}
}

func draftRequest() dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		ClientID:  "client-1",
		IssueDate: "2026-01-15",
		Items: []dto.InvoiceItemRequest{
			{
				Description: "Konsultācijas",
				Unit:        "h",
				Quantity:    decimal.NewFromInt(10),
				UnitPrice:   decimal.NewFromInt(50),
				VatRate:     decimal.NewFromInt(21),
			},
		},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests del ciclo de vida
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateDraft_SinNumeroYConTotales(t *testing.T) {
	f := newFixture(t)

	out, err := f.uc.CreateDraft(context.Background(), draftRequest())
	require.NoError(t, err)

	assert.Empty(t, out.Number, "un borrador no lleva número")
	assert.Equal(t, "DRAFT", out.Status)
	assert.Equal(t, "SIA Pircējs", out.BuyerName)
	assert.True(t, out.TotalNet.Equal(decimal.NewFromInt(500)), "neto: %s", out.TotalNet)
	assert.True(t, out.TotalVat.Equal(decimal.NewFromInt(105)), "IVA: %s", out.TotalVat)
	assert.True(t, out.TotalGross.Equal(decimal.NewFromInt(605)), "bruto: %s", out.TotalGross)
	// Fecha de vencimiento por defecto: emisión + plazo configurado (14 días).
	assert.Equal(t, "2026-01-29", out.DueDate)
}

func TestCreateDraft_ClienteInexistente(t *testing.T) {
	f := newFixture(t)
	in := draftRequest()
	in.ClientID = "no-existe"

	_, err := f.uc.CreateDraft(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateDraft_TipoDeIVANoAdmitido(t *testing.T) {
	f := newFixture(t)
	in := draftRequest()
	in.Items[0].VatRate = decimal.NewFromInt(19) // tipo alemán, no letón

	_, err := f.uc.CreateDraft(context.Background(), in)
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestIssue_AsignaNumeroSecuencialYPersiste(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.uc.CreateDraft(ctx, draftRequest())
	require.NoError(t, err)
	second, err := f.uc.CreateDraft(ctx, draftRequest())
	require.NoError(t, err)

	out1, err := f.uc.Issue(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "NC-000001", out1.Number)
	assert.Equal(t, "ISSUED", out1.Status)

	out2, err := f.uc.Issue(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "NC-000002", out2.Number)

	// El estado persistido coincide con la respuesta.
	stored, err := f.repo.GetByID(first.ID)
	require.NoError(t, err)
	assert.Equal(t, "NC-000001", stored.Number)
	assert.Equal(t, entity.InvoiceStatusIssued, stored.Status)
}

func TestGetByNumber_EncuentraFacturaEmitida(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.uc.CreateDraft(ctx, draftRequest())
	require.NoError(t, err)
	issued, err := f.uc.Issue(ctx, created.ID)
	require.NoError(t, err)

	out, err := f.uc.GetByNumber(issued.Number)
	require.NoError(t, err)
	assert.Equal(t, created.ID, out.ID)
	assert.Equal(t, "NC-000001", out.Number)

	_, err = f.uc.GetByNumber("NC-999999")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var verr *domain.ValidationError
	_, err = f.uc.GetByNumber("")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "number", verr.Field)
}

// Réplica del cableado de cmd/api: la autoridad resuelve el prefijo desde
// ajustes al formatear. Editar el prefijo en ajustes cambia cómo se muestran
// los números siguientes, pero la clave del contador es la serie de
// configuración y la secuencia continúa.
func TestIssue_PrefijoEditadoEnAjustesNoReiniciaContador(t *testing.T) {
	ctx := context.Background()
	repo := newFakeInvoiceRepo()
	clients := &fakeClientRepo{clients: map[string]*entity.Client{
		"client-1": {ID: "client-1", Name: "SIA Pircējs", RegNumber: "40003000001"},
	}}
	settingsUC := appsettings.NewUseCase(&fakeSettingsRepo{values: map[string]string{
		appsettings.KeyCompanyName: "SIA Piegādātājs",
		appsettings.KeyRegNumber:   "40103000002",
	}})
	cfg := appbilling.Config{
		Currency: "EUR",
		AllowedRates: []decimal.Decimal{
			decimal.Zero, decimal.NewFromInt(5),
			decimal.NewFromInt(12), decimal.NewFromInt(21),
		},
		SeriesPrefix: "NC",
		DueDays:      14,
	}
	authority := numbering.NewAuthority(numbering.NewMemoryStore(), numbering.Config{
		PrefixFor: func(string) string { return settingsUC.SeriesPrefix(cfg.SeriesPrefix) },
	})
	uc := appbilling.NewInvoiceUseCase(
		repo, clients, settingsUC, authority, &fakeTxRunner{repo: repo}, cfg, logger.Nop(),
	)

	first, err := uc.CreateDraft(ctx, draftRequest())
	require.NoError(t, err)
	out1, err := uc.Issue(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "NC-000001", out1.Number)

	// El operador edita el prefijo en ajustes.
	require.NoError(t, settingsUC.Update(map[string]string{appsettings.KeySeriesPrefix: "INV"}))

	second, err := uc.CreateDraft(ctx, draftRequest())
	require.NoError(t, err)
	out2, err := uc.Issue(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "INV-000002", out2.Number, "prefijo nuevo, secuencia continua")
}

func TestIssue_DosVecesFalla(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draft, err := f.uc.CreateDraft(ctx, draftRequest())
	require.NoError(t, err)
	_, err = f.uc.Issue(ctx, draft.ID)
	require.NoError(t, err)

	_, err = f.uc.Issue(ctx, draft.ID)
	var serr *domain.InvalidStateError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "issue", serr.Op)
}

func TestIssue_FalloDePersistenciaDejaHueco(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.uc.CreateDraft(ctx, draftRequest())
	require.NoError(t, err)
	second, err := f.uc.CreateDraft(ctx, draftRequest())
	require.NoError(t, err)

	// El número se consume aunque la escritura posterior falle: queda un
	// hueco en la serie en lugar de arriesgar un duplicado.
	f.repo.failNextUpdate = true
	_, err = f.uc.Issue(ctx, first.ID)
	require.Error(t, err)

	out, err := f.uc.Issue(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "NC-000002", out.Number, "el 000001 quedó consumido por el intento fallido")
}

func TestUpdateDraft_EmitidaEsInmutable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draft, err := f.uc.CreateDraft(ctx, draftRequest())
	require.NoError(t, err)
	_, err = f.uc.Issue(ctx, draft.ID)
	require.NoError(t, err)

	_, err = f.uc.UpdateDraft(ctx, draft.ID, dto.UpdateInvoiceRequest{Notes: "cambio"})
	var serr *domain.InvalidStateError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "update", serr.Op)
}

func TestDeleteDraft_EmitidaNoSeBorra(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draft, err := f.uc.CreateDraft(ctx, draftRequest())
	require.NoError(t, err)
	require.NoError(t, f.uc.DeleteDraft(ctx, draft.ID))

	issued, err := f.uc.CreateDraft(ctx, draftRequest())
	require.NoError(t, err)
	_, err = f.uc.Issue(ctx, issued.ID)
	require.NoError(t, err)

	err = f.uc.DeleteDraft(ctx, issued.ID)
	var serr *domain.InvalidStateError
	assert.ErrorAs(t, err, &serr)
}

func TestMarkPaidYCancel_SoloDesdeEmitida(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draft, err := f.uc.CreateDraft(ctx, draftRequest())
	require.NoError(t, err)

	// Borrador no se puede pagar ni anular.
	_, err = f.uc.MarkPaid(ctx, draft.ID)
	assert.Error(t, err)
	_, err = f.uc.Cancel(ctx, draft.ID)
	assert.Error(t, err)

	_, err = f.uc.Issue(ctx, draft.ID)
	require.NoError(t, err)

	paid, err := f.uc.MarkPaid(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "PAID", paid.Status)

	// Pagada es terminal.
	_, err = f.uc.Cancel(ctx, draft.ID)
	var serr *domain.InvalidStateError
	assert.ErrorAs(t, err, &serr)
}

func TestDuplicate_CopiaComoBorradorSinNumero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draft, err := f.uc.CreateDraft(ctx, draftRequest())
	require.NoError(t, err)
	issued, err := f.uc.Issue(ctx, draft.ID)
	require.NoError(t, err)

	dup, err := f.uc.Duplicate(ctx, issued.ID)
	require.NoError(t, err)

	assert.NotEqual(t, issued.ID, dup.ID)
	assert.Empty(t, dup.Number)
	assert.Equal(t, "DRAFT", dup.Status)
	assert.True(t, dup.TotalGross.Equal(issued.TotalGross))
	require.Len(t, dup.Items, 1)
	assert.Equal(t, "Konsultācijas", dup.Items[0].Description)
}

func TestPeekNextNumber_NoConsume(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	peek1, err := f.uc.PeekNextNumber(ctx)
	require.NoError(t, err)
	peek2, err := f.uc.PeekNextNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, peek1.Number, peek2.Number, "peek no debe consumir el número")
	assert.Equal(t, "NC-000001", peek1.Number)

	draft, err := f.uc.CreateDraft(ctx, draftRequest())
	require.NoError(t, err)
	out, err := f.uc.Issue(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, peek1.Number, out.Number)
}
