package billing_test

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/factura-lv/internal/domain"
	"github.com/tu-usuario/factura-lv/internal/domain/billing"
	"github.com/tu-usuario/factura-lv/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests del calculador de importes. La regla crítica es el orden de redondeo:
// cada línea se redondea a 2 decimales (half-up) y los totales son la suma de
// líneas YA redondeadas. Si alguien cambia esto por redondear la suma, los
// totales dejan de cuadrar con el documento impreso y el validador del
// organismo tributario rechaza la exportación.
// ──────────────────────────────────────────────────────────────────────────────

func allowedRates() []decimal.Decimal {
	return []decimal.Decimal{
		decimal.Zero,
		decimal.NewFromInt(5),
		decimal.NewFromInt(12),
		decimal.NewFromInt(21),
	}
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func item(desc, qty, price, rate string) entity.InvoiceItem {
	return entity.InvoiceItem{
		Description: desc,
		Unit:        "EA",
		Quantity:    dec(qty),
		UnitPrice:   dec(price),
		VatRate:     dec(rate),
	}
}

// TestComputeTotals_EjemploConsultoria es el vector de referencia:
// 10 × 50.00 al 21% → neto 500.00, IVA 105.00, bruto 605.00.
func TestComputeTotals_EjemploConsultoria(t *testing.T) {
	items := []entity.InvoiceItem{item("Consulting", "10", "50.00", "21")}

	totals, err := billing.ComputeTotals(items, allowedRates())
	require.NoError(t, err)

	assert.True(t, dec("500.00").Equal(totals.TotalNet), "neto: %s", totals.TotalNet)
	assert.True(t, dec("105.00").Equal(totals.TotalVat), "IVA: %s", totals.TotalVat)
	assert.True(t, dec("605.00").Equal(totals.TotalGross), "bruto: %s", totals.TotalGross)

	net, vat, gross := billing.ComputeLine(items[0])
	assert.True(t, dec("500.00").Equal(net))
	assert.True(t, dec("105.00").Equal(vat))
	assert.True(t, dec("605.00").Equal(gross))
}

// TestComputeTotals_SumaTrasRedondeo usa tres líneas cuyo neto crudo es
// 0.005: cada una redondea half-up a 0.01, así que el total correcto es
// 0.03. Redondear la suma (0.015 → 0.02) sería el error que este test caza.
func TestComputeTotals_SumaTrasRedondeo(t *testing.T) {
	items := []entity.InvoiceItem{
		item("a", "0.5", "0.01", "0"),
		item("b", "0.5", "0.01", "0"),
		item("c", "0.5", "0.01", "0"),
	}

	totals, err := billing.ComputeTotals(items, allowedRates())
	require.NoError(t, err)

	assert.True(t, dec("0.03").Equal(totals.TotalNet),
		"el total debe ser suma de líneas redondeadas (0.03), no redondeo de la suma: %s", totals.TotalNet)
	assert.True(t, totals.TotalGross.Equal(totals.TotalNet.Add(totals.TotalVat)))
}

// TestComputeTotals_DesgloseMixto comprueba el desglose por tipo con tipos
// mezclados en una factura, ordenado ascendente y cuadrado con los totales.
func TestComputeTotals_DesgloseMixto(t *testing.T) {
	items := []entity.InvoiceItem{
		item("consultoría", "10", "50.00", "21"),
		item("libro", "2", "10.00", "12"),
		item("exportación", "1", "100.00", "0"),
		item("asesoría", "1", "200.00", "21"),
	}

	totals, err := billing.ComputeTotals(items, allowedRates())
	require.NoError(t, err)
	require.Len(t, totals.Breakdown, 3, "un subtotal por cada tipo distinto")

	// Ordenado por tipo ascendente: 0, 12, 21.
	assert.True(t, totals.Breakdown[0].Rate.Equal(decimal.Zero))
	assert.True(t, totals.Breakdown[1].Rate.Equal(dec("12")))
	assert.True(t, totals.Breakdown[2].Rate.Equal(dec("21")))

	s21, ok := totals.SubtotalFor(dec("21"))
	require.True(t, ok)
	assert.True(t, dec("700.00").Equal(s21.TaxableAmount))
	assert.True(t, dec("147.00").Equal(s21.TaxAmount))

	s0, ok := totals.SubtotalFor(decimal.Zero)
	require.True(t, ok)
	assert.True(t, dec("100.00").Equal(s0.TaxableAmount))
	assert.True(t, s0.TaxAmount.IsZero())

	// El desglose reproduce exactamente los totales.
	var sumBase, sumTax decimal.Decimal
	for _, s := range totals.Breakdown {
		sumBase = sumBase.Add(s.TaxableAmount)
		sumTax = sumTax.Add(s.TaxAmount)
	}
	assert.True(t, sumBase.Equal(totals.TotalNet))
	assert.True(t, sumTax.Equal(totals.TotalVat))
}

// TestComputeTotals_LineasInvalidas valida el rechazo campo a campo.
func TestComputeTotals_LineasInvalidas(t *testing.T) {
	cases := []struct {
		name  string
		items []entity.InvoiceItem
		field string
	}{
		{"cantidad cero", []entity.InvoiceItem{item("x", "0", "10.00", "21")}, "items[0].quantity"},
		{"cantidad negativa", []entity.InvoiceItem{item("x", "-1", "10.00", "21")}, "items[0].quantity"},
		{"precio negativo", []entity.InvoiceItem{item("x", "1", "-0.01", "21")}, "items[0].unitPrice"},
		{"precio con 3 decimales", []entity.InvoiceItem{item("x", "1", "0.005", "21")}, "items[0].unitPrice"},
		{"tipo no configurado", []entity.InvoiceItem{item("x", "1", "10.00", "7")}, "items[0].vatRate"},
		{"descripción vacía", []entity.InvoiceItem{item("", "1", "10.00", "21")}, "items[0].description"},
		{"segunda línea inválida", []entity.InvoiceItem{
			item("ok", "1", "10.00", "21"),
			item("mala", "1", "10.00", "19"),
		}, "items[1].vatRate"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := billing.ComputeTotals(tc.items, allowedRates())
			require.ErrorIs(t, err, domain.ErrValidation)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field, "debe nombrar el campo ofensor")
		})
	}
}

func TestComputeTotals_SinLineas(t *testing.T) {
	_, err := billing.ComputeTotals(nil, allowedRates())
	require.ErrorIs(t, err, domain.ErrValidation)
}

// TestComputeLine_PropiedadesAleatorias verifica con 1000 inputs decimales
// aleatorios (semilla fija) que las invariantes de línea se cumplen exactas,
// sin deriva de coma flotante: lineNet = round(qty×price, 2) y
// lineGross = lineNet + lineVat.
func TestComputeLine_PropiedadesAleatorias(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	rates := allowedRates()

	for i := 0; i < 1000; i++ {
		// cantidad con 3 decimales (1..100.000 milésimas), precio en céntimos
		qty := decimal.New(int64(rng.Intn(100_000)+1), -3)
		price := decimal.New(int64(rng.Intn(1_000_000)), -2)
		rate := rates[rng.Intn(len(rates))]

		it := entity.InvoiceItem{Description: "x", Quantity: qty, UnitPrice: price, VatRate: rate}
		net, vat, gross := billing.ComputeLine(it)

		wantNet := qty.Mul(price).Round(2)
		wantVat := wantNet.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)

		require.True(t, wantNet.Equal(net), "iter %d: net %s ≠ %s (qty=%s price=%s)", i, net, wantNet, qty, price)
		require.True(t, wantVat.Equal(vat), "iter %d: vat %s ≠ %s", i, vat, wantVat)
		require.True(t, net.Add(vat).Equal(gross), "iter %d: gross ≠ net+vat", i)
		require.True(t, gross.Exponent() >= -2, "iter %d: más de 2 decimales en bruto", i)
	}
}

// TestComputeTotals_Idempotente: misma entrada, mismo resultado, sin estado.
func TestComputeTotals_Idempotente(t *testing.T) {
	items := []entity.InvoiceItem{
		item("a", "3.333", "9.99", "21"),
		item("b", "1", "0.01", "12"),
	}
	t1, err1 := billing.ComputeTotals(items, allowedRates())
	t2, err2 := billing.ComputeTotals(items, allowedRates())
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.True(t, t1.TotalNet.Equal(t2.TotalNet))
	assert.True(t, t1.TotalVat.Equal(t2.TotalVat))
	assert.True(t, t1.TotalGross.Equal(t2.TotalGross))
}
