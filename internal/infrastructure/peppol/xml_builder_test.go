package peppol_test

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/factura-lv/internal/domain"
	"github.com/tu-usuario/factura-lv/internal/domain/billing"
	"github.com/tu-usuario/factura-lv/internal/domain/entity"
	infrapeppol "github.com/tu-usuario/factura-lv/internal/infrastructure/peppol"
	pkgpeppol "github.com/tu-usuario/factura-lv/pkg/peppol"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests del serializador PEPPOL BIS 3.0. La corrección final la juzga el
// validador externo del organismo tributario; aquí se fija la estructura que
// ese validador exige: bloques de parte, un TaxSubtotal por tipo de IVA,
// totales monetarios y todos los importes como decimal fijo de 2 dígitos.
// ──────────────────────────────────────────────────────────────────────────────

type seqSource struct{ n int }

func (s *seqSource) NextNumber(_ context.Context, series string) (string, error) {
	s.n++
	return fmt.Sprintf("%s-%06d", series, s.n), nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func allowedRates() []decimal.Decimal {
	return []decimal.Decimal{decimal.Zero, dec("5"), dec("12"), dec("21")}
}

func issuedInvoice(t *testing.T) *entity.Invoice {
	t.Helper()
	issue := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	issuer := entity.Party{
		Name: "SIA Neatkarīgā Konsultācija", RegNumber: "40003456789",
		VatNumber: "LV40003456789", LegalAddress: "Brīvības iela 1",
		City: "Rīga", PostalCode: "LV-1010", CountryCode: "LV",
		BankName: "Swedbank", BankSwift: "HABALV22", BankAccount: "LV80HABA0551000000001",
	}
	buyer := entity.Party{
		Name: "SIA Pircējs", RegNumber: "40009876543",
		LegalAddress: "Elizabetes iela 2", City: "Rīga", CountryCode: "LV",
	}
	inv, err := billing.NewInvoice(billing.InvoiceHeader{
		Series: "NC", IssueDate: issue, DueDate: issue.AddDate(0, 0, 14),
	}, issuer, buyer, []entity.InvoiceItem{
		{Description: "Consulting", Unit: "HUR", Quantity: dec("10"), UnitPrice: dec("50.00"), VatRate: dec("21")},
		{Description: "Export service", Unit: "EA", Quantity: dec("1"), UnitPrice: dec("100.00"), VatRate: decimal.Zero},
	}, allowedRates())
	require.NoError(t, err)
	require.NoError(t, billing.Issue(context.Background(), inv, &seqSource{}))
	return inv
}

func exportCtx(inv *entity.Invoice) *infrapeppol.ExportContext {
	return &infrapeppol.ExportContext{
		Invoice:        inv,
		RateCategories: pkgpeppol.DefaultRateCategories(),
	}
}

// findAll busca descendientes por nombre local, ignorando prefijos de
// namespace (el encoder puede emitirlos como prefijo o como xmlns inline).
func findAll(e *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	for _, child := range e.ChildElements() {
		if child.Tag == tag {
			out = append(out, child)
		}
		out = append(out, findAll(child, tag)...)
	}
	return out
}

func findOne(t *testing.T, e *etree.Element, tag string) *etree.Element {
	t.Helper()
	els := findAll(e, tag)
	require.Len(t, els, 1, "esperaba exactamente un <%s>", tag)
	return els[0]
}

func childText(t *testing.T, e *etree.Element, tag string) string {
	t.Helper()
	for _, child := range e.ChildElements() {
		if child.Tag == tag {
			return child.Text()
		}
	}
	t.Fatalf("no existe hijo <%s> en <%s>", tag, e.Tag)
	return ""
}

func parse(t *testing.T, xmlBytes []byte) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(xmlBytes))
	root := doc.Root()
	require.NotNil(t, root)
	require.Equal(t, "Invoice", root.Tag)
	return root
}

// El parser de etree tolera atributos repetidos, así que la buena formación
// de la etiqueta raíz se comprueba sobre el texto: cada declaración de
// namespace debe aparecer exactamente una vez. Un xmlns duplicado hace que
// el validador externo rechace el documento antes de mirar el esquema.
func TestBuild_RaizBienFormada(t *testing.T) {
	inv := issuedInvoice(t)
	out, err := infrapeppol.NewXMLBuilderService().Build(exportCtx(inv))
	require.NoError(t, err)

	doc := string(out)
	start := strings.Index(doc, "<Invoice")
	require.GreaterOrEqual(t, start, 0)
	end := strings.Index(doc[start:], ">")
	require.Greater(t, end, 0)
	rootTag := doc[start : start+end+1]

	assert.Equal(t, 1, strings.Count(rootTag, `xmlns="`), "raíz: %s", rootTag)
	assert.Contains(t, rootTag, `xmlns="`+infrapeppol.NsInvoice+`"`)
	assert.Equal(t, 1, strings.Count(rootTag, "xmlns:cac="))
	assert.Equal(t, 1, strings.Count(rootTag, "xmlns:cbc="))
}

func TestBuild_CabeceraDelPerfil(t *testing.T) {
	inv := issuedInvoice(t)
	out, err := infrapeppol.NewXMLBuilderService().Build(exportCtx(inv))
	require.NoError(t, err)

	root := parse(t, out)
	assert.Equal(t, pkgpeppol.CustomizationID, findOne(t, root, "CustomizationID").Text())
	assert.Equal(t, pkgpeppol.ProfileID, findOne(t, root, "ProfileID").Text())
	assert.Equal(t, "NC-000001", childText(t, root, "ID"))
	assert.Equal(t, "2026-03-10", findOne(t, root, "IssueDate").Text())
	assert.Equal(t, "2026-03-24", findOne(t, root, "DueDate").Text())
	assert.Equal(t, "380", findOne(t, root, "InvoiceTypeCode").Text())
	assert.Equal(t, "EUR", findOne(t, root, "DocumentCurrencyCode").Text())
}

func TestBuild_BloquesDeParte(t *testing.T) {
	inv := issuedInvoice(t)
	out, err := infrapeppol.NewXMLBuilderService().Build(exportCtx(inv))
	require.NoError(t, err)
	root := parse(t, out)

	supplier := findOne(t, root, "AccountingSupplierParty")
	customer := findOne(t, root, "AccountingCustomerParty")

	// Emisor con IVA: EndpointID esquema 9936 (NIF-IVA letón).
	endpoint := findOne(t, supplier, "EndpointID")
	assert.Equal(t, "LV40003456789", endpoint.Text())
	assert.Equal(t, "9936", endpoint.SelectAttrValue("schemeID", ""))
	legal := findOne(t, supplier, "PartyLegalEntity")
	assert.Equal(t, "40003456789", childText(t, legal, "CompanyID"))
	require.Len(t, findAll(supplier, "PartyTaxScheme"), 1)

	// Comprador sin IVA: esquema 0184 (registro mercantil) y sin TaxScheme.
	cEndpoint := findOne(t, customer, "EndpointID")
	assert.Equal(t, "40009876543", cEndpoint.Text())
	assert.Equal(t, "0184", cEndpoint.SelectAttrValue("schemeID", ""))
	assert.Empty(t, findAll(customer, "PartyTaxScheme"))

	country := findOne(t, customer, "Country")
	assert.Equal(t, "LV", childText(t, country, "IdentificationCode"))
}

// TestBuild_UnTaxSubtotalPorTipo: con líneas al 21% y al 0% salen
// exactamente dos TaxSubtotal, con importes idénticos al desglose del
// calculador.
func TestBuild_UnTaxSubtotalPorTipo(t *testing.T) {
	inv := issuedInvoice(t)
	out, err := infrapeppol.NewXMLBuilderService().Build(exportCtx(inv))
	require.NoError(t, err)
	root := parse(t, out)

	taxTotal := findOne(t, root, "TaxTotal")
	assert.Equal(t, "105.00", childText(t, taxTotal, "TaxAmount"))

	subtotals := findAll(taxTotal, "TaxSubtotal")
	require.Len(t, subtotals, 2, "un bloque por cada tipo de IVA presente")

	// Ordenado por tipo ascendente: primero 0% (exento), luego 21%.
	assert.Equal(t, "100.00", childText(t, subtotals[0], "TaxableAmount"))
	assert.Equal(t, "0.00", childText(t, subtotals[0], "TaxAmount"))
	cat0 := findOne(t, subtotals[0], "TaxCategory")
	assert.Equal(t, "E", childText(t, cat0, "ID"))
	assert.Equal(t, "0.00", childText(t, cat0, "Percent"))

	assert.Equal(t, "500.00", childText(t, subtotals[1], "TaxableAmount"))
	assert.Equal(t, "105.00", childText(t, subtotals[1], "TaxAmount"))
	cat21 := findOne(t, subtotals[1], "TaxCategory")
	assert.Equal(t, "S", childText(t, cat21, "ID"))
	assert.Equal(t, "21.00", childText(t, cat21, "Percent"))
}

func TestBuild_TotalesMonetariosYLineas(t *testing.T) {
	inv := issuedInvoice(t)
	out, err := infrapeppol.NewXMLBuilderService().Build(exportCtx(inv))
	require.NoError(t, err)
	root := parse(t, out)

	lmt := findOne(t, root, "LegalMonetaryTotal")
	assert.Equal(t, "600.00", childText(t, lmt, "LineExtensionAmount"))
	assert.Equal(t, "600.00", childText(t, lmt, "TaxExclusiveAmount"))
	assert.Equal(t, "705.00", childText(t, lmt, "TaxInclusiveAmount"))
	assert.Equal(t, "705.00", childText(t, lmt, "PayableAmount"))

	lines := findAll(root, "InvoiceLine")
	require.Len(t, lines, 2, "una línea exportada por cada línea del agregado, en orden")

	assert.Equal(t, "1", childText(t, lines[0], "ID"))
	qty := findOne(t, lines[0], "InvoicedQuantity")
	assert.Equal(t, "HUR", qty.SelectAttrValue("unitCode", ""))
	assert.Equal(t, "500.00", childText(t, lines[0], "LineExtensionAmount"))
	item0 := findOne(t, lines[0], "Item")
	assert.Equal(t, "Consulting", childText(t, item0, "Name"))
	price0 := findOne(t, lines[0], "Price")
	assert.Equal(t, "50.00", childText(t, price0, "PriceAmount"))

	assert.Equal(t, "2", childText(t, lines[1], "ID"))
}

// TestBuild_ImportesDecimalFijo: todo importe serializado con exactamente 2
// dígitos de fracción; jamás notación científica ni representación float.
func TestBuild_ImportesDecimalFijo(t *testing.T) {
	inv := issuedInvoice(t)
	out, err := infrapeppol.NewXMLBuilderService().Build(exportCtx(inv))
	require.NoError(t, err)
	root := parse(t, out)

	fixed2 := regexp.MustCompile(`^\d+\.\d{2}$`)
	for _, tag := range []string{"TaxAmount", "TaxableAmount", "LineExtensionAmount",
		"TaxExclusiveAmount", "TaxInclusiveAmount", "PayableAmount", "PriceAmount"} {
		for _, el := range findAll(root, tag) {
			assert.Regexp(t, fixed2, el.Text(), "<%s> debe ser decimal fijo de 2 dígitos", tag)
		}
	}
}

func TestBuild_RechazaBorrador(t *testing.T) {
	inv := issuedInvoice(t)
	draft := billing.DuplicateAsDraft(inv) // mismo contenido, sin número

	_, err := infrapeppol.NewXMLBuilderService().Build(exportCtx(draft))
	require.ErrorIs(t, err, domain.ErrExportValidation)
}

func TestBuild_CamposObligatoriosDeParte(t *testing.T) {
	t.Run("emisor sin registro ni IVA", func(t *testing.T) {
		inv := issuedInvoice(t)
		inv.Issuer.RegNumber = ""
		inv.Issuer.VatNumber = ""
		_, err := infrapeppol.NewXMLBuilderService().Build(exportCtx(inv))
		require.ErrorIs(t, err, domain.ErrExportValidation)
		var eerr *domain.ExportValidationError
		require.ErrorAs(t, err, &eerr)
		assert.Equal(t, "issuer.regNumber", eerr.Field)
	})

	t.Run("comprador sin dirección", func(t *testing.T) {
		inv := issuedInvoice(t)
		inv.Buyer.LegalAddress = ""
		_, err := infrapeppol.NewXMLBuilderService().Build(exportCtx(inv))
		require.ErrorIs(t, err, domain.ErrExportValidation)
		var eerr *domain.ExportValidationError
		require.ErrorAs(t, err, &eerr)
		assert.Equal(t, "buyer.legalAddress", eerr.Field)
	})
}

// TestBuild_TipoSinCategoriaMapeada: un tipo de IVA sin entrada en el mapa
// hace fallar la exportación en lugar de codificarse en silencio.
func TestBuild_TipoSinCategoriaMapeada(t *testing.T) {
	inv := issuedInvoice(t)
	ctx := exportCtx(inv)
	ctx.RateCategories = pkgpeppol.RateCategoryMap{"0.00": pkgpeppol.TaxCategoryExempt} // falta el 21%

	_, err := infrapeppol.NewXMLBuilderService().Build(ctx)
	require.ErrorIs(t, err, domain.ErrExportValidation)
	var eerr *domain.ExportValidationError
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, "items[0].vatRate", eerr.Field)
}
