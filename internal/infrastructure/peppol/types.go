// Package peppol construye el documento estructurado de exportación de una
// factura: XML UBL 2.1 conforme al perfil PEPPOL BIS Billing 3.0 (EN 16931),
// el formato que valida el organismo tributario al recibir el e-rēķins.
//
// El serializador no hace I/O de red: el transporte (EDS, fichero) es
// responsabilidad de colaboradores externos.
package peppol

import (
	"github.com/tu-usuario/factura-lv/internal/domain/entity"
	pkgpeppol "github.com/tu-usuario/factura-lv/pkg/peppol"
)

// ExportContext agrupa lo necesario para emitir el documento. Las partes
// (emisor y comprador) viajan por valor dentro de la factura: este
// componente no consulta catálogos ni configuración.
type ExportContext struct {
	Invoice *entity.Invoice
	// RateCategories mapea cada tipo de IVA configurado a su categoría
	// UNTDID 5305. Un tipo sin entrada hace fallar la exportación en vez
	// de codificarse en silencio.
	RateCategories pkgpeppol.RateCategoryMap
	// PaymentMeansCode código UNTDID 4461; vacío = transferencia (30).
	PaymentMeansCode string
}
