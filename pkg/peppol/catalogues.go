// Package peppol contiene catálogos y reglas alineados al perfil
// PEPPOL BIS Billing 3.0 (EN 16931) sobre UBL 2.1, con los esquemas de
// identificación usados en Letonia.
package peppol

// =============================================================================
// Identificadores del perfil (cabecera obligatoria del documento)
// =============================================================================

const (
	// CustomizationID identifica la especificación EN 16931 + PEPPOL BIS 3.0.
	CustomizationID = "urn:cen.eu:en16931:2017#compliant#urn:fdc:peppol.eu:2017:poacc:billing:3.0"
	// ProfileID identifica el proceso de facturación PEPPOL.
	ProfileID = "urn:fdc:peppol.eu:2017:poacc:billing:01:1.0"
	// InvoiceTypeCode 380 = factura comercial (UNTDID 1001).
	InvoiceTypeCode = "380"
)

// =============================================================================
// Esquemas de EndpointID (EAS) para Letonia
// =============================================================================

const (
	// EndpointSchemeVATLV NIF-IVA letón.
	EndpointSchemeVATLV = "9936"
	// EndpointSchemeRegLV número de registro mercantil letón.
	EndpointSchemeRegLV = "0184"
)

// =============================================================================
// Medios de pago (UNTDID 4461), códigos de uso frecuente
// =============================================================================

const (
	PaymentMeansCreditTransfer = "30" // transferencia bancaria
	PaymentMeansCash           = "10" // efectivo
	PaymentMeansCard           = "48" // tarjeta
)

// =============================================================================
// Unidades de medida (UN/ECE Rec. 20) usadas en líneas de factura
// =============================================================================

const (
	UnitEach  = "EA"  // unidad ("gab.")
	UnitHour  = "HUR" // hora
	UnitDay   = "DAY" // día
	UnitMonth = "MON" // mes
	UnitKilo  = "KGM" // kilogramo
	UnitKM    = "KMT" // kilómetro
)

// ValidUnitCodes unidades admitidas en el catálogo de servicios.
var ValidUnitCodes = map[string]bool{
	UnitEach: true, UnitHour: true, UnitDay: true,
	UnitMonth: true, UnitKilo: true, UnitKM: true,
}

// =============================================================================
// Categorías de impuesto (UNTDID 5305, subconjunto EN 16931)
// =============================================================================

const (
	TaxCategoryStandard  = "S"  // tipo estándar o reducido (> 0%)
	TaxCategoryZeroRated = "Z"  // tipo cero
	TaxCategoryExempt    = "E"  // exento
	TaxSchemeVAT         = "VAT"
)
