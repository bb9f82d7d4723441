package peppol

import (
	"bytes"
	"encoding/xml"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/factura-lv/internal/domain/billing"
	"github.com/tu-usuario/factura-lv/internal/domain/entity"
	pkgpeppol "github.com/tu-usuario/factura-lv/pkg/peppol"
)

// Namespaces UBL 2.1.
const (
	// Namespace por defecto (UBL Invoice)
	NsInvoice = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	// Common Aggregate Components
	NsCac = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	// Common Basic Components
	NsCbc = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
)

// XMLBuilderService construye el XML UBL 2.1 / PEPPOL BIS 3.0 de la factura.
// Sin estado: seguro para uso concurrente.
type XMLBuilderService struct{}

// NewXMLBuilderService crea el servicio.
func NewXMLBuilderService() *XMLBuilderService {
	return &XMLBuilderService{}
}

// Build valida los campos obligatorios del perfil y genera el []byte del
// documento Invoice. El orden de los elementos lo dicta el esquema UBL:
// cabecera cbc, partes, medios de pago, TaxTotal, LegalMonetaryTotal y por
// último las líneas.
func (s *XMLBuilderService) Build(ctx *ExportContext) ([]byte, error) {
	if err := validateForExport(ctx); err != nil {
		return nil, err
	}
	inv := ctx.Invoice
	currency := inv.Currency

	// El desglose por tipo sale de las líneas ya redondeadas: los
	// TaxSubtotal cuadran céntimo a céntimo con lo impreso.
	totals := billing.Totals{
		TotalNet:   inv.TotalNet,
		TotalVat:   inv.TotalVat,
		TotalGross: inv.TotalGross,
		Breakdown:  billing.BreakdownOf(inv.Items),
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	// El encoder ya declara xmlns= a partir de Name.Space; añadirlo también
	// como atributo lo duplicaría y el documento dejaría de estar bien formado.
	root := xml.StartElement{
		Name: xml.Name{Space: NsInvoice, Local: "Invoice"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "xmlns:cac"}, Value: NsCac},
			{Name: xml.Name{Local: "xmlns:cbc"}, Value: NsCbc},
		},
	}
	if err := enc.EncodeToken(root); err != nil {
		return nil, err
	}

	// ---- cbc: cabecera obligatoria del perfil
	writeCbc(enc, "CustomizationID", pkgpeppol.CustomizationID)
	writeCbc(enc, "ProfileID", pkgpeppol.ProfileID)
	writeCbc(enc, "ID", inv.Number)
	writeCbc(enc, "IssueDate", inv.IssueDate.Format("2006-01-02"))
	writeCbc(enc, "DueDate", inv.DueDate.Format("2006-01-02"))
	writeCbc(enc, "InvoiceTypeCode", pkgpeppol.InvoiceTypeCode)
	if inv.Notes != "" {
		writeCbc(enc, "Note", inv.Notes)
	}
	writeCbc(enc, "DocumentCurrencyCode", currency)

	// ---- cac:AccountingSupplierParty / cac:AccountingCustomerParty
	s.writeParty(enc, "AccountingSupplierParty", inv.Issuer)
	s.writeParty(enc, "AccountingCustomerParty", inv.Buyer)

	// ---- cac:PaymentMeans (transferencia a la cuenta del emisor)
	s.writePaymentMeans(enc, ctx)

	// ---- cac:TaxTotal con un TaxSubtotal por tipo distinto
	s.writeTaxTotal(enc, ctx, totals, currency)

	// ---- cac:LegalMonetaryTotal
	s.writeLegalMonetaryTotal(enc, inv, currency)

	// ---- cac:InvoiceLine (una por línea, en el orden del agregado)
	for i, line := range inv.Items {
		s.writeInvoiceLine(enc, i+1, line, ctx.RateCategories, currency)
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCbc(enc *xml.Encoder, local, value string) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCbc, Local: local}})
	_ = enc.EncodeToken(xml.CharData(value))
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCbc, Local: local}})
}

func writeCbcAmount(enc *xml.Encoder, local, value, currency string) {
	attr := []xml.Attr{{Name: xml.Name{Local: "currencyID"}, Value: currency}}
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCbc, Local: local}, Attr: attr})
	_ = enc.EncodeToken(xml.CharData(value))
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCbc, Local: local}})
}

func writeCbcWithAttr(enc *xml.Encoder, local, value, attrLocal, attrValue string) {
	_ = enc.EncodeToken(xml.StartElement{
		Name: xml.Name{Space: NsCbc, Local: local},
		Attr: []xml.Attr{{Name: xml.Name{Local: attrLocal}, Value: attrValue}},
	})
	_ = enc.EncodeToken(xml.CharData(value))
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCbc, Local: local}})
}

func startCac(enc *xml.Encoder, local string) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: local}})
}

func endCac(enc *xml.Encoder, local string) {
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: local}})
}

// formatDecimal serializa un importe como decimal de punto fijo con
// exactamente 2 dígitos de fracción. Nunca notación científica ni float.
func formatDecimal(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}

// writeParty emite un bloque de parte en el orden del esquema UBL:
// EndpointID, PartyName, PostalAddress, PartyTaxScheme, PartyLegalEntity.
func (s *XMLBuilderService) writeParty(enc *xml.Encoder, wrapper string, p entity.Party) {
	startCac(enc, wrapper)
	startCac(enc, "Party")

	scheme, id := p.EndpointID()
	writeCbcWithAttr(enc, "EndpointID", id, "schemeID", scheme)

	startCac(enc, "PartyName")
	writeCbc(enc, "Name", p.Name)
	endCac(enc, "PartyName")

	startCac(enc, "PostalAddress")
	writeCbc(enc, "StreetName", p.LegalAddress)
	if p.City != "" {
		writeCbc(enc, "CityName", p.City)
	}
	if p.PostalCode != "" {
		writeCbc(enc, "PostalZone", p.PostalCode)
	}
	startCac(enc, "Country")
	writeCbc(enc, "IdentificationCode", p.CountryCode)
	endCac(enc, "Country")
	endCac(enc, "PostalAddress")

	if p.VatNumber != "" {
		startCac(enc, "PartyTaxScheme")
		writeCbc(enc, "CompanyID", p.VatNumber)
		startCac(enc, "TaxScheme")
		writeCbc(enc, "ID", pkgpeppol.TaxSchemeVAT)
		endCac(enc, "TaxScheme")
		endCac(enc, "PartyTaxScheme")
	}

	startCac(enc, "PartyLegalEntity")
	writeCbc(enc, "RegistrationName", p.Name)
	if p.RegNumber != "" {
		writeCbc(enc, "CompanyID", p.RegNumber)
	}
	endCac(enc, "PartyLegalEntity")

	endCac(enc, "Party")
	endCac(enc, wrapper)
}

func (s *XMLBuilderService) writePaymentMeans(enc *xml.Encoder, ctx *ExportContext) {
	issuer := ctx.Invoice.Issuer
	if issuer.BankAccount == "" {
		return
	}
	code := ctx.PaymentMeansCode
	if code == "" {
		code = pkgpeppol.PaymentMeansCreditTransfer
	}
	startCac(enc, "PaymentMeans")
	writeCbc(enc, "PaymentMeansCode", code)
	startCac(enc, "PayeeFinancialAccount")
	writeCbc(enc, "ID", issuer.BankAccount)
	if issuer.BankName != "" {
		writeCbc(enc, "Name", issuer.BankName)
	}
	if issuer.BankSwift != "" {
		startCac(enc, "FinancialInstitutionBranch")
		writeCbc(enc, "ID", issuer.BankSwift)
		endCac(enc, "FinancialInstitutionBranch")
	}
	endCac(enc, "PayeeFinancialAccount")
	endCac(enc, "PaymentMeans")
}

func (s *XMLBuilderService) writeTaxTotal(enc *xml.Encoder, ctx *ExportContext, totals billing.Totals, currency string) {
	startCac(enc, "TaxTotal")
	writeCbcAmount(enc, "TaxAmount", formatDecimal(totals.TotalVat), currency)

	for _, sub := range totals.Breakdown {
		category, _ := ctx.RateCategories.Category(sub.Rate)
		startCac(enc, "TaxSubtotal")
		writeCbcAmount(enc, "TaxableAmount", formatDecimal(sub.TaxableAmount), currency)
		writeCbcAmount(enc, "TaxAmount", formatDecimal(sub.TaxAmount), currency)
		startCac(enc, "TaxCategory")
		writeCbc(enc, "ID", category)
		writeCbc(enc, "Percent", formatDecimal(sub.Rate))
		startCac(enc, "TaxScheme")
		writeCbc(enc, "ID", pkgpeppol.TaxSchemeVAT)
		endCac(enc, "TaxScheme")
		endCac(enc, "TaxCategory")
		endCac(enc, "TaxSubtotal")
	}
	endCac(enc, "TaxTotal")
}

func (s *XMLBuilderService) writeLegalMonetaryTotal(enc *xml.Encoder, inv *entity.Invoice, currency string) {
	startCac(enc, "LegalMonetaryTotal")
	writeCbcAmount(enc, "LineExtensionAmount", formatDecimal(inv.TotalNet), currency)
	writeCbcAmount(enc, "TaxExclusiveAmount", formatDecimal(inv.TotalNet), currency)
	writeCbcAmount(enc, "TaxInclusiveAmount", formatDecimal(inv.TotalGross), currency)
	writeCbcAmount(enc, "PayableAmount", formatDecimal(inv.TotalGross), currency)
	endCac(enc, "LegalMonetaryTotal")
}

func (s *XMLBuilderService) writeInvoiceLine(enc *xml.Encoder, lineNum int, line entity.InvoiceItem, categories pkgpeppol.RateCategoryMap, currency string) {
	unitCode := line.Unit
	if unitCode == "" {
		unitCode = pkgpeppol.UnitEach
	}
	category, _ := categories.Category(line.VatRate)

	startCac(enc, "InvoiceLine")
	writeCbc(enc, "ID", strconv.Itoa(lineNum))
	writeCbcWithAttr(enc, "InvoicedQuantity", formatDecimal(line.Quantity), "unitCode", unitCode)
	writeCbcAmount(enc, "LineExtensionAmount", formatDecimal(line.LineNet), currency)

	// cac:Item
	startCac(enc, "Item")
	writeCbc(enc, "Name", line.Description)
	startCac(enc, "ClassifiedTaxCategory")
	writeCbc(enc, "ID", category)
	writeCbc(enc, "Percent", formatDecimal(line.VatRate))
	startCac(enc, "TaxScheme")
	writeCbc(enc, "ID", pkgpeppol.TaxSchemeVAT)
	endCac(enc, "TaxScheme")
	endCac(enc, "ClassifiedTaxCategory")
	endCac(enc, "Item")

	// cac:Price
	startCac(enc, "Price")
	writeCbcAmount(enc, "PriceAmount", formatDecimal(line.UnitPrice), currency)
	writeCbcWithAttr(enc, "BaseQuantity", "1", "unitCode", unitCode)
	endCac(enc, "Price")

	endCac(enc, "InvoiceLine")
}
